// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/biogo/hts/sam"
)

// Placement is the location of a container written by a Writer.
type Placement struct {
	// Offset is the byte offset of the container header.
	Offset int64

	// Landmarks holds the byte offset of each slice header
	// block relative to the end of the container header and
	// Sizes holds the byte length of each slice.
	Landmarks []int
	Sizes     []int
}

var errClosed = errors.New("cram: write to closed writer")

// Writer writes the container layout of a CRAM stream. Each container
// is written with its header, an empty compression header block and one
// slice header block per slice. Record data blocks are not written.
type Writer struct {
	w       io.Writer
	n       int64
	counter int64
	method  byte
	closed  bool
}

// NewWriter returns a Writer that writes the file definition d and the
// SAM header h to w. Blocks are compressed with the given method.
func NewWriter(w io.Writer, d FileDefinition, h *sam.Header, method byte) (*Writer, error) {
	cw := &Writer{w: w, method: method}
	n, err := d.WriteTo(w)
	cw.n += n
	if err != nil {
		return nil, fmt.Errorf("cram: failed to write file definition: %v", err)
	}
	err = cw.writeSAMHeader(h)
	if err != nil {
		return nil, err
	}
	return cw, nil
}

func (w *Writer) writeSAMHeader(h *sam.Header) error {
	text, err := h.MarshalText()
	if err != nil {
		return fmt.Errorf("cram: failed to marshal sam header: %v", err)
	}
	raw := make([]byte, 4+len(text))
	binary.LittleEndian.PutUint32(raw, uint32(len(text)))
	copy(raw[4:], text)
	b, err := NewBlock(RawMethod, FileHeader, 0, raw)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	_, err = b.WriteTo(&buf)
	if err != nil {
		return err
	}
	ch := ContainerHeader{
		Length:    int32(buf.Len()),
		Blocks:    1,
		Landmarks: []int32{0},
	}
	return w.writeContainer(&ch, buf.Bytes())
}

// Write writes the layout of c and returns its placement in the stream.
func (w *Writer) Write(c *Container) (Placement, error) {
	if w.closed {
		return Placement{}, errClosed
	}
	var buf bytes.Buffer
	comp, err := NewBlock(RawMethod, CompressionHeader, 0, nil)
	if err != nil {
		return Placement{}, err
	}
	_, err = comp.WriteTo(&buf)
	if err != nil {
		return Placement{}, err
	}

	p := Placement{
		Offset:    w.n,
		Landmarks: make([]int, len(c.slices)),
		Sizes:     make([]int, len(c.slices)),
	}
	ch := c.Header(w.counter)
	ch.Blocks = int32(1 + len(c.slices))
	ch.Landmarks = make([]int32, len(c.slices))
	counter := w.counter
	for i, s := range c.slices {
		p.Landmarks[i] = buf.Len()
		ch.Landmarks[i] = int32(buf.Len())
		b, err := NewBlock(w.method, MappedSliceHeader, 0, sliceHeader(s, counter))
		if err != nil {
			return Placement{}, err
		}
		_, err = b.WriteTo(&buf)
		if err != nil {
			return Placement{}, err
		}
		p.Sizes[i] = buf.Len() - p.Landmarks[i]
		counter += int64(len(s.records))
	}
	ch.Length = int32(buf.Len())

	err = w.writeContainer(&ch, buf.Bytes())
	if err != nil {
		return Placement{}, err
	}
	w.counter = counter
	return p, nil
}

func (w *Writer) writeContainer(h *ContainerHeader, blocks []byte) error {
	n, err := h.WriteTo(w.w)
	w.n += n
	if err != nil {
		return fmt.Errorf("cram: failed to write container header: %v", err)
	}
	m, err := w.w.Write(blocks)
	w.n += int64(m)
	if err != nil {
		return fmt.Errorf("cram: failed to write container blocks: %v", err)
	}
	return nil
}

// Close writes the end of file container. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return errClosed
	}
	w.closed = true
	return WriteEOF(w.w)
}

// sliceHeader returns the slice header block content for s, section 8.5
// of the CRAM specification. The slice is described as holding no data
// blocks and no embedded reference.
func sliceHeader(s *Slice, counter int64) []byte {
	var buf bytes.Buffer
	ew := errorWriter{w: &buf}
	ew.itf8(int32(s.context.ID()))
	span, ok := s.Span()
	if ok && s.context.IsMapped() {
		ew.itf8(int32(span.Start))
		ew.itf8(int32(span.Length))
	} else {
		ew.itf8(0)
		ew.itf8(0)
	}
	ew.itf8(int32(len(s.records)))
	ew.ltf8(counter)
	ew.itf8(0)        // data blocks
	ew.itf8slice(nil) // content ids
	ew.itf8(-1)       // embedded reference content id
	var md5 [16]byte
	ew.Write(md5[:])
	return buf.Bytes()
}

// SliceHeader is the reference summary held by a slice header block.
type SliceHeader struct {
	RefID         int32
	Start, Span   int32
	Records       int32
	RecordCounter int64
}

// Context returns the reference context declared by the header.
func (h SliceHeader) Context() (ReferenceContext, error) {
	return ContextFromID(int(h.RefID))
}

// ReadSliceHeader decodes the leading fields of a slice header block.
func ReadSliceHeader(b *Block) (SliceHeader, error) {
	if b.Type != MappedSliceHeader {
		return SliceHeader{}, fmt.Errorf("cram: block content type %d is not a slice header", b.Type)
	}
	raw, err := b.Raw()
	if err != nil {
		return SliceHeader{}, err
	}
	er := errorReader{r: bytes.NewReader(raw)}
	h := SliceHeader{
		RefID:   er.itf8(),
		Start:   er.itf8(),
		Span:    er.itf8(),
		Records: er.itf8(),
	}
	h.RecordCounter = er.ltf8()
	if er.err != nil {
		return SliceHeader{}, fmt.Errorf("cram: failed to read slice header: %v", er.err)
	}
	return h, nil
}
