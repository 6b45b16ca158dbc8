// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"gopkg.in/check.v1"
)

func (s *S) TestReferencesSingleRef(c *check.C) {
	var recs []Record
	for i := 0; i < 10; i++ {
		recs = append(recs, mapped(5, i+1, 3))
	}
	cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 1, RecordsPerContainer: 10}, recs)
	c.Assert(cs, check.HasLen, 1)
	var p Parser
	c.Check(p.References(cs[0]), check.DeepEquals, []int{5})
	c.Check(p.Scanned(), check.Equals, 0)
}

func (s *S) TestReferencesUnmapped(c *check.C) {
	var recs []Record
	for i := 0; i < 10; i++ {
		recs = append(recs, unplaced(3))
	}
	cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 1, RecordsPerContainer: 10}, recs)
	var p Parser
	c.Check(p.References(cs[0]), check.DeepEquals, []int{NoReference})
	c.Check(p.Scanned(), check.Equals, 0)
}

func (s *S) TestReferencesSliceReduction(c *check.C) {
	recs := []Record{mapped(0, 1, 5), mapped(1, 2, 5), mapped(0, 3, 5)}
	cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 10, RecordsPerContainer: 10}, recs)
	c.Assert(cs, check.HasLen, 1)
	var ctxs []ReferenceContext
	for _, sl := range cs[0].Slices() {
		ctxs = append(ctxs, sl.Context())
	}
	c.Check(ctxs, check.DeepEquals, []ReferenceContext{Mapped(0), Mapped(1), Mapped(0)})
	c.Check(cs[0].Context(), check.Equals, Multiple)
	var p Parser
	c.Check(p.References(cs[0]), check.DeepEquals, []int{0, 1})
}

func (s *S) TestReferencesMappedAndUnmapped(c *check.C) {
	var recs []Record
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			recs = append(recs, unplaced(3))
		} else {
			recs = append(recs, mapped(0, i+1, 3))
		}
	}
	for _, multi := range []bool{false, true} {
		cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 10, RecordsPerContainer: 10, MultiRefSlices: multi}, recs)
		c.Assert(cs, check.HasLen, 1)
		c.Check(cs[0].Context(), check.Equals, Multiple)
		var p Parser
		c.Check(p.References(cs[0]), check.DeepEquals, []int{NoReference, 0})
		if multi {
			c.Check(p.Scanned(), check.Equals, 10)
		} else {
			c.Check(p.Scanned(), check.Equals, 0)
		}
	}
}

func (s *S) TestReferencesMultiRef(c *check.C) {
	var recs []Record
	for i := 0; i < 10; i++ {
		if i < 9 {
			recs = append(recs, mapped(i, i+1, 3))
		} else {
			recs = append(recs, unplaced(3))
		}
	}
	for _, multi := range []bool{false, true} {
		cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 10, RecordsPerContainer: 10, MultiRefSlices: multi}, recs)
		c.Assert(cs, check.HasLen, 1)
		c.Check(cs[0].Len(), check.Equals, 10)
		c.Check(cs[0].Context(), check.Equals, Multiple)
		var p Parser
		refs := p.References(cs[0])
		c.Check(refs, check.HasLen, 10)
		c.Check(refs, check.DeepEquals, []int{NoReference, 0, 1, 2, 3, 4, 5, 6, 7, 8})
	}
}

func (s *S) TestContributions(c *check.C) {
	recs := []Record{
		mapped(0, 1, 5),
		mapped(1, 2, 5),
		placedUnmapped(1, 2, 0),
		mapped(1, 3, 5),
		unplaced(4),
		unplaced(4),
	}
	want := []Contribution{
		{Slice: 0, Ref: NoReference, Span: AlignmentSpan{Start: NoAlignmentStart, Count: 2}, Unmapped: 2},
		{Slice: 0, Ref: 0, Span: AlignmentSpan{Start: 1, Length: 5, Count: 1}, Mapped: 1},
		{Slice: 0, Ref: 1, Span: AlignmentSpan{Start: 2, Length: 6, Count: 3}, Mapped: 2, Unmapped: 1},
	}
	for _, parallel := range []bool{false, true} {
		cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 1, RecordsPerContainer: 10, MultiRefSlices: true}, recs)
		c.Assert(cs, check.HasLen, 1)
		p := Parser{Parallel: parallel}
		c.Check(p.Contributions(cs[0]), check.DeepEquals, want, check.Commentf("parallel=%t", parallel))
		c.Check(p.Scanned(), check.Equals, len(recs))
	}

	cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 10, RecordsPerContainer: 10}, recs)
	c.Assert(cs, check.HasLen, 1)
	var p Parser
	c.Check(p.Contributions(cs[0]), check.DeepEquals, []Contribution{
		{Slice: 0, Ref: 0, Span: AlignmentSpan{Start: 1, Length: 5, Count: 1}, Mapped: 1},
		{Slice: 1, Ref: 1, Span: AlignmentSpan{Start: 2, Length: 6, Count: 3}, Mapped: 2, Unmapped: 1},
		{Slice: 2, Ref: NoReference, Span: AlignmentSpan{Start: NoAlignmentStart, Count: 2}, Unmapped: 2},
	})
	c.Check(p.Scanned(), check.Equals, 0)
}

func (s *S) TestBreakdown(c *check.C) {
	recs := []Record{
		mapped(0, 1, 5),
		mapped(1, 2, 5),
		mapped(1, 3, 5),
		unplaced(4),
	}
	for _, multi := range []bool{false, true} {
		cs := build(c, Options{RecordsPerSlice: 10, SlicesPerContainer: 10, RecordsPerContainer: 10, MultiRefSlices: multi}, recs)
		c.Assert(cs, check.HasLen, 1)

		var ref Parser
		wantRefs := ref.References(cs[0])
		wantParts := ref.Contributions(cs[0])

		var p Parser
		refs, parts := p.Breakdown(cs[0])
		c.Check(refs, check.DeepEquals, []int{NoReference, 0, 1}, check.Commentf("multi=%t", multi))
		c.Check(refs, check.DeepEquals, wantRefs, check.Commentf("multi=%t", multi))
		c.Check(parts, check.DeepEquals, wantParts, check.Commentf("multi=%t", multi))
		if multi {
			c.Check(p.Scanned(), check.Equals, len(recs))
		} else {
			c.Check(p.Scanned(), check.Equals, 0)
		}
	}
}
