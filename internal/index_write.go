// Copyright ©2014 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/biogo/hts/bgzf"
)

var baiMagic = [4]byte{'B', 'A', 'I', 0x1}

// WriteBAI writes idx to w in BAI format. Bins and chunks are sorted
// before writing.
func WriteBAI(w io.Writer, idx *Index) error {
	idx.sort()
	ew := &errWriter{w: w}
	ew.write(baiMagic, "magic")
	ew.write(int32(len(idx.Refs)), "reference count")
	for i := range idx.Refs {
		ew.writeBins(idx.Refs[i].Bins, idx.Refs[i].Stats)
		ew.writeIntervals(idx.Refs[i].Intervals)
	}
	if idx.Unmapped != nil {
		ew.write(*idx.Unmapped, "unplaced count")
	}
	return ew.err
}

// errWriter writes little-endian values, retaining the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) write(v interface{}, what string) {
	if w.err != nil {
		return
	}
	err := binary.Write(w.w, binary.LittleEndian, v)
	if err != nil {
		w.err = fmt.Errorf("bai: failed to write %s: %v", what, err)
	}
}

func (w *errWriter) writeBins(bins []Bin, stats *ReferenceStats) {
	n := int32(len(bins))
	if stats != nil {
		n++
	}
	w.write(n, "bin count")
	for _, b := range bins {
		w.write(b.Bin, "bin number")
		w.write(int32(len(b.Chunks)), "chunk count")
		for _, c := range b.Chunks {
			w.writeChunk(c, "chunk")
		}
	}
	if stats == nil {
		return
	}
	w.write([2]uint32{StatsDummyBin, 2}, "stats bin header")
	w.writeChunk(stats.Chunk, "index stats chunk")
	w.write([2]uint64{stats.Mapped, stats.Unmapped}, "index stats counts")
}

func (w *errWriter) writeChunk(c bgzf.Chunk, what string) {
	w.write([2]uint64{uint64(vOffset(c.Begin)), uint64(vOffset(c.End))}, what+" virtual offsets")
}

func (w *errWriter) writeIntervals(offsets []bgzf.Offset) {
	w.write(int32(len(offsets)), "tile interval count")
	for _, o := range offsets {
		w.write(uint64(vOffset(o)), "tile interval virtual offset")
	}
}
