// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when a Builder is constructed with
// non-positive size limits.
var ErrInvalidConfiguration = errors.New("cram: invalid configuration")

// Options holds the size limits used to group records.
type Options struct {
	// RecordsPerSlice is the maximum number of records in a slice.
	RecordsPerSlice int

	// SlicesPerContainer is the maximum number of slices in a container.
	SlicesPerContainer int

	// RecordsPerContainer is the maximum number of records in a container.
	RecordsPerContainer int

	// MultiRefSlices allows records with different reference contexts
	// to share a slice. When false, a change of context starts a new slice.
	MultiRefSlices bool
}

// DefaultOptions are the grouping limits used by htslib and htsjdk.
var DefaultOptions = Options{
	RecordsPerSlice:     10000,
	SlicesPerContainer:  1,
	RecordsPerContainer: 10000,
}

// Validate returns an error wrapping ErrInvalidConfiguration if any limit
// is not positive.
func (o Options) Validate() error {
	switch {
	case o.RecordsPerSlice <= 0:
		return fmt.Errorf("%w: records per slice must be positive: %d", ErrInvalidConfiguration, o.RecordsPerSlice)
	case o.SlicesPerContainer <= 0:
		return fmt.Errorf("%w: slices per container must be positive: %d", ErrInvalidConfiguration, o.SlicesPerContainer)
	case o.RecordsPerContainer <= 0:
		return fmt.Errorf("%w: records per container must be positive: %d", ErrInvalidConfiguration, o.RecordsPerContainer)
	}
	return nil
}

// Builder groups a stream of records into slices and containers.
type Builder struct {
	opts Options

	// Current slice.
	records []Record
	context ReferenceContext

	// Current container.
	slices []*Slice
	n      int
}

// NewBuilder returns a Builder using the given limits.
func NewBuilder(opts Options) (*Builder, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}
	return &Builder{opts: opts}, nil
}

// Add adds r to the current slice. If adding r completes a container,
// that container is returned, otherwise Add returns nil. The container
// returned by Add never holds r.
func (b *Builder) Add(r Record) *Container {
	ctx := ContextOf(r)
	var c *Container
	switch {
	case b.n == b.opts.RecordsPerContainer:
		c = b.Flush()
	case len(b.records) == b.opts.RecordsPerSlice,
		len(b.records) != 0 && !b.opts.MultiRefSlices && ctx != b.context:
		b.closeSlice()
		if len(b.slices) == b.opts.SlicesPerContainer {
			c = b.flushContainer()
		}
	}

	if len(b.records) == 0 {
		b.context = ctx
	} else {
		b.context = b.context.Join(ctx)
	}
	b.records = append(b.records, r)
	b.n++
	return c
}

// Flush returns the container holding all records added since the last
// container was returned, or nil if there are none.
func (b *Builder) Flush() *Container {
	b.closeSlice()
	return b.flushContainer()
}

func (b *Builder) closeSlice() {
	if len(b.records) == 0 {
		return
	}
	b.slices = append(b.slices, newSlice(b.records))
	b.records = nil
}

func (b *Builder) flushContainer() *Container {
	if len(b.slices) == 0 {
		return nil
	}
	c := newContainer(b.slices)
	b.slices = nil
	b.n = len(b.records)
	return c
}

// Build groups records into containers using the Builder's limits. Any
// records already held by b are placed in the first container.
func (b *Builder) Build(records []Record) []*Container {
	var cs []*Container
	for _, r := range records {
		if c := b.Add(r); c != nil {
			cs = append(cs, c)
		}
	}
	if c := b.Flush(); c != nil {
		cs = append(cs, c)
	}
	return cs
}
