// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"errors"
	"fmt"
)

// ContextError is returned when a slice or container is declared with a
// reference context that does not agree with its contents.
type ContextError struct {
	Want, Got ReferenceContext

	// Slice and Record locate the first disagreeing element.
	// They are -1 when not applicable.
	Slice, Record int
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("cram: reference context mismatch: declared %v found %v (slice %d record %d)",
		e.Want, e.Got, e.Slice, e.Record)
}

var errEmptySlice = errors.New("cram: empty slice")

// Slice is a contiguous group of records sharing a reference context.
type Slice struct {
	context ReferenceContext
	records []Record

	// span is the hull of placed records and is only
	// held for single reference slices.
	span *AlignmentSpan

	mapped   int
	unmapped int
	bases    int64
}

// NewSlice returns a Slice holding the given records, checking that the
// declared context agrees with the records' own classification.
func NewSlice(ctx ReferenceContext, records []Record) (*Slice, error) {
	if len(records) == 0 {
		return nil, errEmptySlice
	}
	s := newSlice(records)
	if s.context != ctx {
		err := &ContextError{Want: ctx, Got: s.context, Slice: -1, Record: -1}
		if !ctx.IsMultiple() {
			for i, r := range records {
				if ContextOf(r) != ctx {
					err.Record = i
					break
				}
			}
		}
		return nil, err
	}
	return s, nil
}

func newSlice(records []Record) *Slice {
	s := &Slice{records: records}
	for i, r := range records {
		if i == 0 {
			s.context = ContextOf(r)
		} else {
			s.context = s.context.Join(ContextOf(r))
		}
		s.count(r)
	}
	if s.context.IsMapped() {
		s.span = hull(records)
	}
	return s
}

func (s *Slice) count(r Record) {
	if r.Unmapped() {
		s.unmapped++
	} else {
		s.mapped++
	}
	s.bases += int64(r.Len())
}

// hull returns the merged span of the placed records in records,
// or nil if there are none.
func hull(records []Record) *AlignmentSpan {
	var span *AlignmentSpan
	for _, r := range records {
		if !isPlaced(r) {
			continue
		}
		if span == nil {
			span = NewAlignmentSpan(r.Start(), r.Len(), 1)
		} else {
			span.Add(r.Start(), r.Len())
		}
	}
	return span
}

// Context returns the reference context of the slice.
func (s *Slice) Context() ReferenceContext { return s.context }

// Records returns the records held by the slice. The returned slice
// must not be altered.
func (s *Slice) Records() []Record { return s.records }

// Len returns the number of records in the slice.
func (s *Slice) Len() int { return len(s.records) }

// Mapped returns the number of records in the slice that are not flagged
// as unmapped.
func (s *Slice) Mapped() int { return s.mapped }

// Unmapped returns the number of records in the slice that are flagged
// as unmapped.
func (s *Slice) Unmapped() int { return s.unmapped }

// Bases returns the sum of record lengths in the slice.
func (s *Slice) Bases() int64 { return s.bases }

// Span returns the merged alignment span of a single reference slice and
// true. For other contexts, or if no record in the slice has a position,
// Span returns false. An unplaced slice returns UnmappedSpan holding the
// slice's record count.
func (s *Slice) Span() (AlignmentSpan, bool) {
	switch {
	case s.context.IsUnplaced():
		span := UnmappedSpan
		span.Count = len(s.records)
		return span, true
	case s.span == nil:
		return AlignmentSpan{}, false
	}
	return *s.span, true
}
