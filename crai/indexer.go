// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crai builds coordinate indexes over streams of CRAM containers.
//
// An Indexer consumes containers in stream order, accumulating per-reference
// alignment spans and mapping counts. The accumulated state is sealed by
// Finish, which returns an Index that may be serialized as BAI or CRAI.
package crai

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"

	"github.com/biogo/cramidx/cram"
	"github.com/biogo/cramidx/internal"
)

var (
	// ErrSealed is returned when an Indexer is used after Finish.
	ErrSealed = errors.New("crai: indexer is sealed")

	// ErrOrder is returned when containers do not arrive in stream
	// and coordinate order.
	ErrOrder = errors.New("crai: container out of order")
)

// Options holds Indexer parameters.
type Options struct {
	// NumRefs is the number of references in the stream's header.
	// If positive, the BAI index is padded to NumRefs references and
	// reference ids at or beyond NumRefs are rejected.
	NumRefs int

	// Parallel specifies that per-reference spans of multiple
	// reference slices are computed concurrently.
	Parallel bool
}

// Location is the position of a container in the CRAM stream.
type Location struct {
	// Offset is the byte offset of the container header. Offsets
	// must strictly increase through the stream since they key the
	// BAI chunks of each container's slices. Callers without a byte
	// layout may use container ordinals starting from one.
	Offset int64

	// Landmarks holds the byte offset of each slice relative to
	// the end of the container header, and Sizes holds the byte
	// length of each slice. Both may be nil, in which case the
	// CRAI slice offsets are written as zero.
	Landmarks []int
	Sizes     []int
}

func (l Location) slice(i int) (start, size int) {
	if i < len(l.Landmarks) {
		start = l.Landmarks[i]
	}
	if i < len(l.Sizes) {
		size = l.Sizes[i]
	}
	return start, size
}

// Indexer accumulates index information from a stream of containers.
// An Indexer must be driven by a single goroutine.
type Indexer struct {
	opts   Options
	parser cram.Parser

	entries []Entry
	slices  []SliceEntry
	nocoord uint64
	bai     internal.Index

	containers int
	last       int64
	sealed     bool
}

// NewIndexer returns a new Indexer.
func NewIndexer(opts Options) *Indexer {
	return &Indexer{
		opts:   opts,
		parser: cram.Parser{Parallel: opts.Parallel},
	}
}

// Scanned returns the number of records visited to resolve multiple
// reference slices.
func (ix *Indexer) Scanned() int { return ix.parser.Scanned() }

// Process adds the container c located at loc to the index. Containers
// must be processed in stream order, and loc.Offset must increase strictly
// from one container to the next; a repeated or decreasing offset is
// reported as ErrOrder. If Process returns an error, the Indexer's state
// is undefined and it should not be finished.
func (ix *Indexer) Process(c *cram.Container, loc Location) error {
	if ix.sealed {
		return ErrSealed
	}
	if ix.containers != 0 && loc.Offset <= ix.last {
		return fmt.Errorf("%w: offset %d does not follow %d", ErrOrder, loc.Offset, ix.last)
	}
	slices := c.Slices()
	if loc.Landmarks != nil && len(loc.Landmarks) != len(slices) {
		return fmt.Errorf("crai: landmark count mismatch: %d landmarks for %d slices", len(loc.Landmarks), len(slices))
	}

	ctx := c.Context()
	switch ctx.Kind() {
	case cram.SingleReference:
		ref := ctx.ID()
		err := ix.checkRef(ref)
		if err != nil {
			return err
		}
		ix.advance(loc)
		for i, s := range slices {
			span, ok := s.Span()
			err := ix.add(loc, i, ref, span, ok, s.Mapped(), s.Unmapped())
			if err != nil {
				return err
			}
		}
	case cram.UnmappedUnplaced:
		ix.advance(loc)
		for i, s := range slices {
			ix.addUnplaced(loc, i, s.Len())
		}
	case cram.MultipleReferences:
		refs, parts := ix.parser.Breakdown(c)
		err := ix.checkRef(refs[len(refs)-1])
		if err != nil {
			return err
		}
		ix.advance(loc)
		for _, part := range parts {
			if part.Ref == cram.NoReference {
				ix.addUnplaced(loc, part.Slice, part.Mapped+part.Unmapped)
				continue
			}
			ok := part.Span.Start != cram.NoAlignmentStart
			err := ix.add(loc, part.Slice, part.Ref, part.Span, ok, part.Mapped, part.Unmapped)
			if err != nil {
				return err
			}
		}
	default:
		panic(fmt.Sprintf("crai: invalid container context: %v", ctx))
	}
	return nil
}

func (ix *Indexer) advance(loc Location) {
	ix.containers++
	ix.last = loc.Offset
}

func (ix *Indexer) checkRef(ref int) error {
	if ix.opts.NumRefs > 0 && ref >= ix.opts.NumRefs {
		return fmt.Errorf("crai: reference id %d out of range for %d references", ref, ix.opts.NumRefs)
	}
	return nil
}

// add folds the records of slice i that fall on reference ref into the index.
func (ix *Indexer) add(loc Location, i, ref int, span cram.AlignmentSpan, hasSpan bool, mapped, unmapped int) error {
	e, err := ix.entry(ref)
	if err != nil {
		return err
	}
	if hasSpan {
		if e.HasSpan {
			e.Span.MergeSpan(span)
		} else {
			e.Span = span
			e.HasSpan = true
		}
	}
	e.Mapped += uint64(mapped)
	e.Unmapped += uint64(unmapped)

	chunk := sliceChunk(loc.Offset, i)
	if hasSpan {
		err = ix.bai.AddSpan(ref, span.Start-1, span.End()-1, chunk, uint64(mapped), uint64(unmapped))
	} else {
		err = ix.bai.AddStats(ref, chunk, uint64(mapped), uint64(unmapped))
	}
	switch err {
	case nil:
	case internal.ErrRefOrder, internal.ErrPosOrder:
		return fmt.Errorf("%w: container at %d: %v", ErrOrder, loc.Offset, err)
	default:
		return fmt.Errorf("crai: container at %d: %v", loc.Offset, err)
	}

	start, size := loc.slice(i)
	line := SliceEntry{
		Ref:            ref,
		ContainerStart: loc.Offset,
		SliceStart:     start,
		SliceSize:      size,
	}
	if hasSpan {
		line.Start = span.Start
		line.Span = span.Length
	}
	ix.slices = append(ix.slices, line)
	return nil
}

func (ix *Indexer) addUnplaced(loc Location, i, n int) {
	ix.nocoord += uint64(n)
	start, size := loc.slice(i)
	ix.slices = append(ix.slices, SliceEntry{
		Ref:            cram.NoReference,
		ContainerStart: loc.Offset,
		SliceStart:     start,
		SliceSize:      size,
	})
}

// entry returns the entry for ref, creating it if needed. Entries are
// created in ascending reference order.
func (ix *Indexer) entry(ref int) (*Entry, error) {
	if n := len(ix.entries); n != 0 {
		last := &ix.entries[n-1]
		switch {
		case last.Ref == ref:
			return last, nil
		case last.Ref > ref:
			return nil, fmt.Errorf("%w: reference %d follows reference %d", ErrOrder, ref, last.Ref)
		}
	}
	ix.entries = append(ix.entries, Entry{Ref: ref})
	return &ix.entries[len(ix.entries)-1], nil
}

// Finish seals the Indexer and returns the accumulated Index. Finish may
// be called after any prefix of the stream, including none.
func (ix *Indexer) Finish() (*Index, error) {
	if ix.sealed {
		return nil, ErrSealed
	}
	ix.sealed = true

	ix.bai.Grow(ix.opts.NumRefs)
	ix.bai.MergeChunks(index.Adjacent)
	ix.bai.AddUnplaced(ix.nocoord)
	idx := &Index{
		Entries:      ix.entries,
		NoCoordinate: ix.nocoord,
		Slices:       ix.slices,
		bai:          &ix.bai,
	}
	ix.entries = nil
	ix.slices = nil
	return idx, nil
}

// sliceChunk returns the virtual chunk of slice i of the container at
// offset. The block offset of a CRAM virtual offset is the slice index.
func sliceChunk(offset int64, i int) bgzf.Chunk {
	return bgzf.Chunk{
		Begin: bgzf.Offset{File: offset, Block: uint16(i)},
		End:   bgzf.Offset{File: offset, Block: uint16(i + 1)},
	}
}
