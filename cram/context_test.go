// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"math/rand"

	"gopkg.in/check.v1"
)

func (s *S) TestContextOf(c *check.C) {
	for _, test := range []struct {
		rec  Record
		want ReferenceContext
	}{
		{rec: mapped(0, 1, 5), want: Mapped(0)},
		{rec: mapped(3, 1, 5), want: Mapped(3)},
		{rec: placedUnmapped(3, 10, 5), want: Mapped(3)},
		{rec: unplaced(5), want: Unplaced},
	} {
		c.Check(ContextOf(test.rec), check.Equals, test.want)
	}
}

func (s *S) TestContextFromID(c *check.C) {
	for _, test := range []struct {
		id   int
		want ReferenceContext
	}{
		{id: 0, want: Mapped(0)},
		{id: 12, want: Mapped(12)},
		{id: -1, want: Unplaced},
		{id: -2, want: Multiple},
	} {
		got, err := ContextFromID(test.id)
		c.Check(err, check.Equals, nil)
		c.Check(got, check.Equals, test.want)
		c.Check(got.ID(), check.Equals, test.id)
	}
	_, err := ContextFromID(-3)
	c.Check(err, check.NotNil)
	c.Check(func() { Mapped(-1) }, check.PanicMatches, "cram: invalid reference id.*")
}

func (s *S) TestJoinOrderIndependent(c *check.C) {
	rnd := rand.New(rand.NewSource(1))
	ctxs := []ReferenceContext{Mapped(0), Mapped(1), Mapped(0), Unplaced, Mapped(1)}
	for _, test := range []struct {
		in   []ReferenceContext
		want ReferenceContext
	}{
		{in: ctxs[:1], want: Mapped(0)},
		{in: []ReferenceContext{Mapped(0), Mapped(0)}, want: Mapped(0)},
		{in: []ReferenceContext{Unplaced, Unplaced}, want: Unplaced},
		{in: ctxs[:3], want: Multiple},
		{in: []ReferenceContext{Mapped(4), Unplaced}, want: Multiple},
		{in: ctxs, want: Multiple},
	} {
		in := append([]ReferenceContext(nil), test.in...)
		for i := 0; i < 10; i++ {
			rnd.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })
			got := in[0]
			for _, ctx := range in[1:] {
				got = got.Join(ctx)
			}
			c.Check(got, check.Equals, test.want, check.Commentf("contexts %v", in))
		}
	}
}
