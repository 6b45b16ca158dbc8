// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/traverse"
)

// Contribution is the part of a slice that falls on a single reference.
type Contribution struct {
	// Slice is the index of the slice within its container.
	Slice int

	// Ref is the reference id, or NoReference for unplaced records.
	Ref int

	// Span is the merged span of the placed records. It is
	// UnmappedSpan when Ref is NoReference or no record
	// has a position.
	Span AlignmentSpan

	// Mapped and Unmapped are the counts of records not flagged
	// and flagged as unmapped.
	Mapped, Unmapped int
}

// Parser recovers reference information from built containers.
// A Parser must not be used concurrently.
type Parser struct {
	// Parallel specifies that per-reference spans of multiple
	// reference slices are computed concurrently.
	Parallel bool

	scanned int
}

// Scanned returns the number of records visited by record-level scans.
func (p *Parser) Scanned() int { return p.scanned }

// References returns the sorted set of reference ids touched by c. Unplaced
// records are reported as NoReference. Records are only visited for
// multiple reference slices of multiple reference containers.
func (p *Parser) References(c *Container) []int {
	switch c.context.Kind() {
	case SingleReference:
		return []int{c.context.ID()}
	case UnmappedUnplaced:
		return []int{NoReference}
	}

	seen := make(map[int]struct{})
	for _, s := range c.slices {
		switch s.context.Kind() {
		case SingleReference:
			seen[s.context.ID()] = struct{}{}
		case UnmappedUnplaced:
			seen[NoReference] = struct{}{}
		default:
			for _, r := range s.records {
				p.scanned++
				seen[refOf(r)] = struct{}{}
			}
		}
	}
	refs := make([]int, 0, len(seen))
	for id := range seen {
		refs = append(refs, id)
	}
	sort.Ints(refs)
	return refs
}

// Contributions returns the per-slice, per-reference breakdown of c,
// ordered by slice and then by reference.
func (p *Parser) Contributions(c *Container) []Contribution {
	var parts []Contribution
	for i, s := range c.slices {
		if !s.context.IsMultiple() {
			part := Contribution{
				Slice:    i,
				Ref:      refOf(s.records[0]),
				Span:     UnmappedSpan,
				Mapped:   s.mapped,
				Unmapped: s.unmapped,
			}
			if s.span != nil {
				part.Span = *s.span
			} else {
				part.Span.Count = len(s.records)
			}
			parts = append(parts, part)
			continue
		}
		parts = append(parts, p.split(i, s)...)
	}
	return parts
}

// Breakdown returns both the sorted set of reference ids touched by c, as
// References does, and the contributions of c, as Contributions does.
// Records of multiple reference slices are scanned once.
func (p *Parser) Breakdown(c *Container) (refs []int, parts []Contribution) {
	parts = p.Contributions(c)
	seen := make(map[int]bool)
	for _, part := range parts {
		if !seen[part.Ref] {
			seen[part.Ref] = true
			refs = append(refs, part.Ref)
		}
	}
	sort.Ints(refs)
	return refs, parts
}

// split scans the records of a multiple reference slice, grouping them
// by reference, and computes the contribution of each group.
func (p *Parser) split(idx int, s *Slice) []Contribution {
	groups := make(map[int][]Record)
	for _, r := range s.records {
		p.scanned++
		id := refOf(r)
		groups[id] = append(groups[id], r)
	}
	refs := make([]int, 0, len(groups))
	for id := range groups {
		refs = append(refs, id)
	}
	sort.Ints(refs)

	parts := make([]Contribution, len(refs))
	fill := func(i int) error {
		parts[i] = contribution(idx, refs[i], groups[refs[i]])
		return nil
	}
	if p.Parallel && len(refs) > 1 {
		// Each reference is written to its own element of parts.
		err := traverse.Each(len(refs), fill)
		if err != nil {
			panic(fmt.Sprintf("cram: unexpected error splitting slice %d: %v", idx, err))
		}
	} else {
		for i := range refs {
			fill(i)
		}
	}
	return parts
}

func contribution(idx, ref int, records []Record) Contribution {
	part := Contribution{Slice: idx, Ref: ref, Span: UnmappedSpan}
	for _, r := range records {
		if r.Unmapped() {
			part.Unmapped++
		} else {
			part.Mapped++
		}
	}
	if span := hull(records); span != nil {
		part.Span = *span
	} else {
		part.Span.Count = len(records)
	}
	return part
}

func refOf(r Record) int {
	if id := r.RefID(); id >= 0 {
		return id
	}
	return NoReference
}
