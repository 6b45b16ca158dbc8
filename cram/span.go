// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import "fmt"

// AlignmentSpan is the merged extent of a set of alignments on a single
// reference. Count records fall within [Start, Start+Length).
//
// Merging keeps the hull of the merged intervals; gaps between disjoint
// alignments are not tracked.
type AlignmentSpan struct {
	Start  int
	Length int
	Count  int
}

// UnmappedSpan is the span used to aggregate records with no position.
// Only its Count is meaningful.
var UnmappedSpan = AlignmentSpan{Start: NoAlignmentStart}

// NewAlignmentSpan returns a span seeded with the given interval and count.
// NewAlignmentSpan panics if length is negative.
func NewAlignmentSpan(start, length, count int) *AlignmentSpan {
	if length < 0 {
		panic(fmt.Sprintf("cram: negative alignment span length: %d", length))
	}
	return &AlignmentSpan{Start: start, Length: length, Count: count}
}

// End returns the first position after the span.
func (s AlignmentSpan) End() int { return s.Start + s.Length }

// Merge extends the span to include [start, start+length) and adds count
// to the number of records held. Merge panics if s is nil or length is
// negative; the first interval of a span must come from NewAlignmentSpan.
func (s *AlignmentSpan) Merge(start, length, count int) {
	if s == nil {
		panic("cram: merge into uninitialized alignment span")
	}
	if length < 0 {
		panic(fmt.Sprintf("cram: negative alignment span length: %d", length))
	}
	switch {
	case start < s.Start:
		s.Length = max(s.Start+s.Length, start+length) - start
		s.Start = start
	case start > s.Start:
		s.Length = max(s.Start+s.Length, start+length) - s.Start
	default:
		s.Length = max(s.Length, length)
	}
	s.Count += count
}

// Add merges a single record covering [start, start+length).
func (s *AlignmentSpan) Add(start, length int) { s.Merge(start, length, 1) }

// MergeSpan merges o into s.
func (s *AlignmentSpan) MergeSpan(o AlignmentSpan) { s.Merge(o.Start, o.Length, o.Count) }

func (s AlignmentSpan) String() string {
	return fmt.Sprintf("[%d,%d)x%d", s.Start, s.End(), s.Count)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
