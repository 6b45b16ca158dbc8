// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crai

import (
	"errors"
	"io"
	"sort"

	"github.com/biogo/cramidx/cram"
	"github.com/biogo/cramidx/internal"
)

var errNoBins = errors.New("crai: index holds no bin information")

// Entry is the accumulated index information for a single reference.
type Entry struct {
	Ref int

	// Span is the merged span of all positioned records on the
	// reference. Span is only valid if HasSpan is true.
	Span    cram.AlignmentSpan
	HasSpan bool

	// Mapped is the count of records not flagged as unmapped.
	Mapped uint64

	// Unmapped is the count of records flagged as unmapped but
	// placed on the reference.
	Unmapped uint64
}

// SliceEntry is a CRAI index line. A multiple reference slice is
// described by one SliceEntry per reference it touches.
type SliceEntry struct {
	// Ref is the reference id or -1 for unplaced records.
	Ref int

	// Start and Span give the 1-based alignment extent of the
	// slice's records on Ref. Both are zero when no record
	// has a position.
	Start, Span int

	// ContainerStart is the byte offset of the container.
	ContainerStart int64

	// SliceStart is the byte offset of the slice relative to the
	// end of the container header and SliceSize is its length.
	SliceStart, SliceSize int
}

// End returns the first position after the slice's extent.
func (s SliceEntry) End() int { return s.Start + s.Span }

// Index is a coordinate index over a CRAM stream.
type Index struct {
	// Entries holds one entry per reference that received
	// records, in ascending reference order.
	Entries []Entry

	// NoCoordinate is the count of records with neither a
	// reference nor a position.
	NoCoordinate uint64

	// Slices holds the CRAI lines of the index in stream order.
	Slices []SliceEntry

	bai *internal.Index
}

// Entry returns the entry for reference ref and whether the reference
// received any records.
func (i *Index) Entry(ref int) (Entry, bool) {
	n := sort.Search(len(i.Entries), func(k int) bool { return i.Entries[k].Ref >= ref })
	if n < len(i.Entries) && i.Entries[n].Ref == ref {
		return i.Entries[n], true
	}
	return Entry{}, false
}

// Covers returns whether any slice holds records on reference ref that
// may overlap the 1-based interval [beg,end). Slice extents are hulls,
// so a true result does not guarantee an overlapping record exists.
func (i *Index) Covers(ref, beg, end int) bool {
	if end <= beg {
		return false
	}
	for _, s := range i.Slices {
		if s.Ref == ref && s.Span > 0 && s.Start < end && beg < s.End() {
			return true
		}
	}
	return false
}

// WriteBAI writes the index to w in BAI format. Virtual offsets in the
// BAI index hold the container offset and slice index. WriteBAI returns
// an error for an Index that was not produced by an Indexer.
func WriteBAI(w io.Writer, idx *Index) error {
	if idx.bai == nil {
		return errNoBins
	}
	return internal.WriteBAI(w, idx.bai)
}
