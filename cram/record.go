// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import "github.com/biogo/hts/sam"

const (
	// NoReference is the reference id of records that are not placed
	// on a reference.
	NoReference = -1

	// NoAlignmentStart is the alignment start of records that are not
	// aligned.
	NoAlignmentStart = 0
)

// Record is a decoded alignment record that may be grouped into slices
// and containers. Records must not change while they are held by a Slice.
type Record interface {
	// RefID returns the reference id of the record or NoReference.
	RefID() int

	// Start returns the 1-based alignment start of the record or
	// NoAlignmentStart.
	Start() int

	// Len returns the number of reference bases covered by the record.
	Len() int

	// Unmapped returns whether the record is flagged as unmapped.
	Unmapped() bool
}

// Alignment is a minimal Record implementation.
type Alignment struct {
	Ref    int
	Pos    int // 1-based.
	Length int
	Flags  sam.Flags
}

// RefID returns the reference id of the alignment.
func (a Alignment) RefID() int { return a.Ref }

// Start returns the 1-based start of the alignment.
func (a Alignment) Start() int { return a.Pos }

// Len returns the length of the alignment.
func (a Alignment) Len() int { return a.Length }

// Unmapped returns whether the Unmapped flag is set.
func (a Alignment) Unmapped() bool { return a.Flags&sam.Unmapped != 0 }

// FromSAM returns a Record view of a SAM record.
func FromSAM(r *sam.Record) Record { return samRecord{r} }

type samRecord struct {
	r *sam.Record
}

func (s samRecord) RefID() int { return s.r.Ref.ID() }

func (s samRecord) Start() int {
	if s.r.Ref == nil || s.r.Pos < 0 {
		return NoAlignmentStart
	}
	return s.r.Pos + 1
}

func (s samRecord) Len() int {
	if n := s.r.Len(); n > 0 {
		return n
	}
	return s.r.Seq.Length
}

func (s samRecord) Unmapped() bool { return s.r.Flags&sam.Unmapped != 0 }

// isPlaced returns whether r has a position that can contribute to a span.
func isPlaced(r Record) bool {
	return r.RefID() >= 0 && r.Start() != NoAlignmentStart
}
