// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cram groups alignment records into CRAM slices and containers,
// classifying each group by the references its records are placed on.
//
// The package also provides codecs for the CRAM file definition,
// container headers and blocks, sufficient to lay out and inspect
// the container structure of a CRAM stream.
package cram

import "fmt"

// ContextKind is the class of a ReferenceContext.
type ContextKind uint8

const (
	// SingleReference is the class of groups whose records are all
	// placed on one reference.
	SingleReference ContextKind = iota

	// MultipleReferences is the class of groups whose records are placed
	// on more than one reference, or that mix placed and unplaced records.
	MultipleReferences

	// UnmappedUnplaced is the class of groups whose records have no
	// reference.
	UnmappedUnplaced
)

func (k ContextKind) String() string {
	switch k {
	case SingleReference:
		return "single"
	case MultipleReferences:
		return "multiple"
	case UnmappedUnplaced:
		return "unplaced"
	default:
		return fmt.Sprintf("ContextKind(%d)", uint8(k))
	}
}

// Reference ids used in CRAM container and slice headers to mark
// groups that are not bound to a single reference.
const (
	unplacedID = -1
	multipleID = -2
)

// ReferenceContext is the reference classification of a group of records.
// The zero value is Mapped(0).
type ReferenceContext struct {
	kind ContextKind
	id   int
}

var (
	// Multiple is the context of a group spanning several references.
	Multiple = ReferenceContext{kind: MultipleReferences, id: multipleID}

	// Unplaced is the context of a group of records with no reference.
	Unplaced = ReferenceContext{kind: UnmappedUnplaced, id: unplacedID}
)

// Mapped returns the context of a group placed on the reference with the
// given id. Mapped panics if id is negative.
func Mapped(id int) ReferenceContext {
	if id < 0 {
		panic(fmt.Sprintf("cram: invalid reference id for mapped context: %d", id))
	}
	return ReferenceContext{kind: SingleReference, id: id}
}

// ContextFromID returns the context corresponding to a CRAM header reference
// id: -1 is Unplaced, -2 is Multiple and non-negative values are Mapped.
func ContextFromID(id int) (ReferenceContext, error) {
	switch {
	case id >= 0:
		return Mapped(id), nil
	case id == unplacedID:
		return Unplaced, nil
	case id == multipleID:
		return Multiple, nil
	}
	return ReferenceContext{}, fmt.Errorf("cram: invalid reference context id: %d", id)
}

// ContextOf returns the context contributed by a single record. Records
// placed on a reference, whether or not they are flagged unmapped, belong
// to that reference.
func ContextOf(r Record) ReferenceContext {
	if id := r.RefID(); id >= 0 {
		return Mapped(id)
	}
	return Unplaced
}

// Kind returns the class of the context.
func (c ReferenceContext) Kind() ContextKind { return c.kind }

// ID returns the CRAM header reference id of the context.
func (c ReferenceContext) ID() int { return c.id }

// IsMapped returns whether the context is bound to a single reference.
func (c ReferenceContext) IsMapped() bool { return c.kind == SingleReference }

// IsMultiple returns whether the context spans several references.
func (c ReferenceContext) IsMultiple() bool { return c.kind == MultipleReferences }

// IsUnplaced returns whether the context holds only unplaced records.
func (c ReferenceContext) IsUnplaced() bool { return c.kind == UnmappedUnplaced }

// Join returns the context of the union of groups with contexts c and o.
// Join is commutative and associative.
func (c ReferenceContext) Join(o ReferenceContext) ReferenceContext {
	if c == o {
		return c
	}
	return Multiple
}

func (c ReferenceContext) String() string {
	switch c.kind {
	case SingleReference:
		return fmt.Sprintf("mapped(%d)", c.id)
	case MultipleReferences:
		return "multiple"
	case UnmappedUnplaced:
		return "unplaced"
	default:
		return c.kind.String()
	}
}
