// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import "errors"

var errEmptyContainer = errors.New("cram: empty container")

// Container is an ordered group of slices.
type Container struct {
	context ReferenceContext
	slices  []*Slice
	records int
	bases   int64
}

// NewContainer returns a Container holding the given slices, checking that
// the declared context agrees with the reduction of the slice contexts.
func NewContainer(ctx ReferenceContext, slices []*Slice) (*Container, error) {
	if len(slices) == 0 {
		return nil, errEmptyContainer
	}
	c := newContainer(slices)
	if c.context != ctx {
		err := &ContextError{Want: ctx, Got: c.context, Slice: -1, Record: -1}
		if !ctx.IsMultiple() {
			for i, s := range slices {
				if s.context != ctx {
					err.Slice = i
					break
				}
			}
		}
		return nil, err
	}
	return c, nil
}

func newContainer(slices []*Slice) *Container {
	c := &Container{slices: slices}
	for i, s := range slices {
		if i == 0 {
			c.context = s.context
		} else {
			c.context = c.context.Join(s.context)
		}
		c.records += len(s.records)
		c.bases += s.bases
	}
	return c
}

// Context returns the reference context of the container.
func (c *Container) Context() ReferenceContext { return c.context }

// Slices returns the slices of the container. The returned slice must
// not be altered.
func (c *Container) Slices() []*Slice { return c.slices }

// Len returns the number of records in the container.
func (c *Container) Len() int { return c.records }

// Bases returns the sum of record lengths in the container.
func (c *Container) Bases() int64 { return c.bases }

// Span returns the merged alignment span of a single reference container
// and true. Span returns false for other contexts or when no record in
// the container has a position.
func (c *Container) Span() (AlignmentSpan, bool) {
	if !c.context.IsMapped() {
		return AlignmentSpan{}, false
	}
	var span *AlignmentSpan
	for _, s := range c.slices {
		if s.span == nil {
			continue
		}
		if span == nil {
			span = NewAlignmentSpan(s.span.Start, s.span.Length, s.span.Count)
		} else {
			span.MergeSpan(*s.span)
		}
	}
	if span == nil {
		return AlignmentSpan{}, false
	}
	return *span, true
}

// Header returns a container header describing c. The record counter is
// the number of records preceding c in the stream. Landmarks, block count
// and length are left for the caller that lays out the block data.
func (c *Container) Header(counter int64) ContainerHeader {
	h := ContainerHeader{
		RefID:         int32(c.context.ID()),
		Records:       int32(c.records),
		RecordCounter: counter,
		Bases:         c.bases,
	}
	if span, ok := c.Span(); ok {
		h.Start = int32(span.Start)
		h.Span = int32(span.Length)
	}
	return h
}
