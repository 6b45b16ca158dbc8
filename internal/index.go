// Copyright ©2014 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package internal provides the BAI binning scheme and index
// accumulation used by the CRAM indexer.
package internal

import (
	"errors"
	"sort"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
)

const (
	// TileWidth is the length of the interval tiling used
	// in BAI indexes.
	TileWidth = 0x4000

	// StatsDummyBin is the bin number of the reference
	// statistics bin used in BAI indexes.
	StatsDummyBin = 0x924a
)

var (
	// ErrRefOrder is returned when a span is added for a reference
	// that precedes the last reference added.
	ErrRefOrder = errors.New("index: attempt to add span out of reference ID sort order")

	// ErrPosOrder is returned when a span is added that starts before
	// the last span added for the same reference.
	ErrPosOrder = errors.New("index: attempt to add span out of position sort order")

	errRange = errors.New("index: attempt to add span outside indexable range")
)

// Index is a BAI index built from alignment spans rather than
// individual records.
type Index struct {
	Refs     []RefIndex
	Unmapped *uint64

	lastRef   int
	lastStart int
}

// RefIndex is the index of a single reference.
type RefIndex struct {
	Bins      []Bin
	Stats     *ReferenceStats
	Intervals []bgzf.Offset
}

// Bin is an index bin.
type Bin struct {
	Bin    uint32
	Chunks []bgzf.Chunk
}

// ReferenceStats holds mapping statistics for a genomic reference.
type ReferenceStats struct {
	// Chunk is the span of the indexed stream
	// holding alignments to the reference.
	Chunk bgzf.Chunk

	// Mapped is the count of mapped reads.
	Mapped uint64

	// Unmapped is the count of unmapped reads
	// placed on the reference.
	Unmapped uint64
}

// Grow ensures the index holds at least n references.
func (i *Index) Grow(n int) {
	if n > len(i.Refs) {
		refs := make([]RefIndex, n)
		copy(refs, i.Refs)
		i.Refs = refs
	}
}

// AddUnplaced adds n to the count of records with no reference.
func (i *Index) AddUnplaced(n uint64) {
	if i.Unmapped == nil {
		i.Unmapped = new(uint64)
	}
	*i.Unmapped += n
}

// AddSpan records alignments to reference rid covering [beg,end)
// (zero-based, half-close-half-open) as being located at chunk c.
// Spans must be added in reference and start order.
func (i *Index) AddSpan(rid, beg, end int, c bgzf.Chunk, mapped, unmapped uint64) error {
	if !IsValidIndexPos(beg) || !IsValidIndexPos(end) || beg < 0 || end < beg {
		return errRange
	}
	ref, err := i.ref(rid)
	if err != nil {
		return err
	}
	if beg < i.lastStart {
		return ErrPosOrder
	}
	i.lastStart = beg
	if end == beg {
		end++
	}

	// Record bin information.
	b := BinFor(beg, end)
	for k, bin := range ref.Bins {
		if bin.Bin == b {
			for j, chunk := range bin.Chunks {
				if vOffset(chunk.End) > vOffset(c.Begin) {
					if vOffset(c.End) > vOffset(chunk.End) {
						ref.Bins[k].Chunks[j].End = c.End
					}
					goto found
				}
			}
			ref.Bins[k].Chunks = append(ref.Bins[k].Chunks, c)
			goto found
		}
	}
	ref.Bins = append(ref.Bins, Bin{
		Bin:    b,
		Chunks: []bgzf.Chunk{c},
	})
found:

	// Record interval tile information.
	biv := beg / TileWidth
	eiv := (end - 1) / TileWidth
	if eiv >= len(ref.Intervals) {
		intvs := make([]bgzf.Offset, eiv+1)
		copy(intvs, ref.Intervals)
		ref.Intervals = intvs
	}
	for k := biv; k <= eiv; k++ {
		if isZero(ref.Intervals[k]) {
			ref.Intervals[k] = c.Begin
		}
	}

	i.addStats(ref, c, mapped, unmapped)
	return nil
}

// AddStats records mapping counts for reference rid for records that
// have no position, located at chunk c.
func (i *Index) AddStats(rid int, c bgzf.Chunk, mapped, unmapped uint64) error {
	ref, err := i.ref(rid)
	if err != nil {
		return err
	}
	i.addStats(ref, c, mapped, unmapped)
	return nil
}

func (i *Index) ref(rid int) (*RefIndex, error) {
	if rid < 0 {
		return nil, errRange
	}
	if rid < i.lastRef {
		return nil, ErrRefOrder
	}
	if rid != i.lastRef {
		i.lastStart = 0
	}
	i.lastRef = rid
	i.Grow(rid + 1)
	return &i.Refs[rid], nil
}

func (i *Index) addStats(ref *RefIndex, c bgzf.Chunk, mapped, unmapped uint64) {
	if ref.Stats == nil {
		ref.Stats = &ReferenceStats{Chunk: c}
	} else if vOffset(c.End) > vOffset(ref.Stats.Chunk.End) {
		ref.Stats.Chunk.End = c.End
	}
	ref.Stats.Mapped += mapped
	ref.Stats.Unmapped += unmapped
}

// MergeChunks applies the given MergeStrategy to all bins in the Index.
func (i *Index) MergeChunks(s index.MergeStrategy) {
	if s == nil {
		return
	}
	for _, ref := range i.Refs {
		for b, bin := range ref.Bins {
			if !sort.IsSorted(byBeginOffset(bin.Chunks)) {
				sort.Sort(byBeginOffset(bin.Chunks))
			}
			ref.Bins[b].Chunks = s(bin.Chunks)
		}
	}
}

func (i *Index) sort() {
	for _, ref := range i.Refs {
		sort.Sort(byBinNumber(ref.Bins))
		for _, bin := range ref.Bins {
			sort.Sort(byBeginOffset(bin.Chunks))
		}
	}
}

const (
	indexWordBits = 29
	nextBinShift  = 3
)

// IsValidIndexPos returns a boolean indicating whether
// the given position is in the valid range for BAI.
func IsValidIndexPos(i int) bool { return -1 <= i && i <= (1<<indexWordBits-1)-1 } // 0-based.

const (
	level0 = uint32(((1 << (iota * nextBinShift)) - 1) / 7)
	level1
	level2
	level3
	level4
	level5
)

const (
	level0Shift = indexWordBits - (iota * nextBinShift)
	level1Shift
	level2Shift
	level3Shift
	level4Shift
	level5Shift
)

// BinFor returns the bin number for given an interval covering
// [beg,end) (zero-based, half-close-half-open).
func BinFor(beg, end int) uint32 {
	end--
	switch {
	case beg>>level5Shift == end>>level5Shift:
		return level5 + uint32(beg>>level5Shift)
	case beg>>level4Shift == end>>level4Shift:
		return level4 + uint32(beg>>level4Shift)
	case beg>>level3Shift == end>>level3Shift:
		return level3 + uint32(beg>>level3Shift)
	case beg>>level2Shift == end>>level2Shift:
		return level2 + uint32(beg>>level2Shift)
	case beg>>level1Shift == end>>level1Shift:
		return level1 + uint32(beg>>level1Shift)
	}
	return level0
}

func isZero(o bgzf.Offset) bool {
	return o == bgzf.Offset{}
}

func vOffset(o bgzf.Offset) int64 {
	return o.File<<16 | int64(o.Block)
}

type byBinNumber []Bin

func (b byBinNumber) Len() int           { return len(b) }
func (b byBinNumber) Less(i, j int) bool { return b[i].Bin < b[j].Bin }
func (b byBinNumber) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

type byBeginOffset []bgzf.Chunk

func (c byBeginOffset) Len() int           { return len(c) }
func (c byBeginOffset) Less(i, j int) bool { return vOffset(c[i].Begin) < vOffset(c[j].Begin) }
func (c byBeginOffset) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }
