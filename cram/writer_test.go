// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"bytes"
	"io"

	"github.com/biogo/hts/sam"
	"gopkg.in/check.v1"
)

func (s *S) TestWriteEOFHeader(c *check.C) {
	var h ContainerHeader
	n, err := h.ReadFrom(bytes.NewReader(eofContainer))
	c.Assert(err, check.Equals, nil)

	var buf bytes.Buffer
	_, err = h.WriteTo(&buf)
	c.Assert(err, check.Equals, nil)
	c.Check(buf.Bytes(), check.DeepEquals, eofContainer[:n])
}

func (s *S) TestWriterLayout(c *check.C) {
	var refs []*sam.Reference
	for _, name := range []string{"chr1", "chr2", "chr3"} {
		r, err := sam.NewReference(name, "", "", 100000, nil, nil)
		c.Assert(err, check.Equals, nil)
		refs = append(refs, r)
	}
	sh, err := sam.NewHeader(nil, refs)
	c.Assert(err, check.Equals, nil)

	var recs []Record
	for i := 0; i < 12; i++ {
		recs = append(recs, mapped(i/5, 100*i+1, 50))
	}
	for i := 0; i < 4; i++ {
		recs = append(recs, unplaced(50))
	}
	cs := build(c, Options{RecordsPerSlice: 3, SlicesPerContainer: 2, RecordsPerContainer: 6}, recs)

	for _, method := range []byte{RawMethod, GzipMethod} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, NewFileDefinition("layout"), sh, method)
		c.Assert(err, check.Equals, nil)
		var places []Placement
		for _, ct := range cs {
			p, err := w.Write(ct)
			c.Assert(err, check.Equals, nil)
			places = append(places, p)
		}
		c.Assert(w.Close(), check.Equals, nil)
		_, err = w.Write(cs[0])
		c.Check(err, check.Equals, errClosed)

		r := bytes.NewReader(buf.Bytes())
		_, gotHeader, err := ReadSAMHeader(r)
		c.Assert(err, check.Equals, nil)
		c.Check(gotHeader.Refs(), check.HasLen, 3)

		var counter int64
		for i, ct := range cs {
			c.Check(int64(r.Size())-int64(r.Len()), check.Equals, places[i].Offset)

			var h ContainerHeader
			_, err = h.ReadFrom(r)
			c.Assert(err, check.Equals, nil)
			ctx, err := h.Context()
			c.Assert(err, check.Equals, nil)
			c.Check(ctx, check.Equals, ct.Context())
			c.Check(int(h.Records), check.Equals, ct.Len())
			c.Check(h.RecordCounter, check.Equals, counter)
			c.Check(int(h.Blocks), check.Equals, 1+len(ct.Slices()))
			c.Assert(h.Landmarks, check.HasLen, len(ct.Slices()))

			data := make([]byte, h.Length)
			_, err = io.ReadFull(r, data)
			c.Assert(err, check.Equals, nil)
			br := bytes.NewReader(data)
			var comp Block
			_, err = comp.ReadFrom(br)
			c.Assert(err, check.Equals, nil)
			c.Check(comp.Type, check.Equals, byte(CompressionHeader))

			for j, sl := range ct.Slices() {
				c.Check(int(h.Landmarks[j]), check.Equals, places[i].Landmarks[j])
				c.Check(len(data)-br.Len(), check.Equals, places[i].Landmarks[j])
				var b Block
				n, err := b.ReadFrom(br)
				c.Assert(err, check.Equals, nil)
				c.Check(int(n), check.Equals, places[i].Sizes[j])
				c.Check(b.Method, check.Equals, method)

				slh, err := ReadSliceHeader(&b)
				c.Assert(err, check.Equals, nil)
				sctx, err := slh.Context()
				c.Assert(err, check.Equals, nil)
				c.Check(sctx, check.Equals, sl.Context())
				c.Check(int(slh.Records), check.Equals, sl.Len())
				c.Check(slh.RecordCounter, check.Equals, counter)
				if span, ok := sl.Span(); ok && sl.Context().IsMapped() {
					c.Check(int(slh.Start), check.Equals, span.Start)
					c.Check(int(slh.Span), check.Equals, span.Length)
				}
				counter += int64(sl.Len())
			}
		}

		var eof ContainerHeader
		_, err = eof.ReadFrom(r)
		c.Assert(err, check.Equals, nil)
		c.Check(eof.IsEOF(), check.Equals, true)
	}
}

func (s *S) TestReadSliceHeaderType(c *check.C) {
	b, err := NewBlock(RawMethod, CoreData, 0, []byte{0})
	c.Assert(err, check.Equals, nil)
	_, err = ReadSliceHeader(b)
	c.Check(err, check.NotNil)
}
