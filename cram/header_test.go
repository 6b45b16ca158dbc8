// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"bytes"
	"encoding/binary"
	"math"

	"gopkg.in/check.v1"
)

func (s *S) TestReadEOFContainer(c *check.C) {
	r := bytes.NewReader(eofContainer)
	var got ContainerHeader
	n, err := got.ReadFrom(r)
	c.Assert(err, check.Equals, nil)
	c.Check(n, check.Equals, int64(23))
	c.Check(got, check.DeepEquals, ContainerHeader{
		Length: 15,
		RefID:  -1,
		Start:  4542278,
		Blocks: 1,
		CRC32:  0x4fd9bd05,
	})
	c.Check(got.IsEOF(), check.Equals, true)
	ctx, err := got.Context()
	c.Check(err, check.Equals, nil)
	c.Check(ctx, check.Equals, Unplaced)

	var b Block
	_, err = b.ReadFrom(r)
	c.Assert(err, check.Equals, nil)
	c.Check(b, check.DeepEquals, Block{
		Method:  RawMethod,
		Type:    CompressionHeader,
		RawSize: 6,
		Data:    []byte{0x01, 0x00, 0x01, 0x00, 0x01, 0x00},
		CRC32:   0x4b0163ee,
	})
	c.Check(r.Len(), check.Equals, 0)
}

func (s *S) TestContainerHeaderRoundTrip(c *check.C) {
	for _, h := range []ContainerHeader{
		{Length: 100, RefID: 3, Start: 1, Span: 1000, Records: 10, RecordCounter: 5, Bases: 1500, Blocks: 4, Landmarks: []int32{0, 87}},
		{Length: 1 << 20, RefID: -2, Records: 10000, RecordCounter: 1 << 40, Bases: math.MaxInt64, Blocks: 30, Landmarks: []int32{0}},
		{RefID: -1},
	} {
		var buf bytes.Buffer
		n, err := h.WriteTo(&buf)
		c.Assert(err, check.Equals, nil)
		c.Check(n, check.Equals, int64(buf.Len()))

		var got ContainerHeader
		m, err := got.ReadFrom(&buf)
		c.Assert(err, check.Equals, nil)
		c.Check(m, check.Equals, n)
		c.Check(got, check.DeepEquals, h)
	}
}

func (s *S) TestContainerHeaderCRCMismatch(c *check.C) {
	data := append([]byte(nil), eofContainer...)
	data[9]++ // Alter the container start.
	var h ContainerHeader
	_, err := h.ReadFrom(bytes.NewReader(data))
	c.Check(err, check.ErrorMatches, "cram: container crc32 mismatch.*")
}

func (s *S) TestBlockRoundTrip(c *check.C) {
	raw := bytes.Repeat([]byte("ACGTTGCA"), 100)
	for _, method := range []byte{RawMethod, GzipMethod, LzmaMethod} {
		b, err := NewBlock(method, ExternalData, 7, raw)
		c.Assert(err, check.Equals, nil)
		var buf bytes.Buffer
		_, err = b.WriteTo(&buf)
		c.Assert(err, check.Equals, nil)

		var got Block
		_, err = got.ReadFrom(&buf)
		c.Assert(err, check.Equals, nil)
		c.Check(got, check.DeepEquals, *b)
		dec, err := got.Raw()
		c.Assert(err, check.Equals, nil, check.Commentf("method %d", method))
		c.Check(dec, check.DeepEquals, raw)
	}
	_, err := NewBlock(RansMethod, ExternalData, 7, raw)
	c.Check(err, check.NotNil)
}

func (s *S) TestLTF8(c *check.C) {
	var buf bytes.Buffer
	ew := errorWriter{w: &buf}
	var want []int64
	for i := uint(0); i < 64; i++ {
		for off := -1; off <= 1; off++ {
			v := int64(1<<i + off)
			want = append(want, v)
			ew.ltf8(v)
		}
	}
	c.Assert(ew.err, check.Equals, nil)
	c.Check(ew.n, check.Equals, int64(buf.Len()))

	er := errorReader{r: &buf}
	for _, v := range want {
		c.Check(er.ltf8(), check.Equals, v)
	}
	c.Check(er.err, check.Equals, nil)
	c.Check(buf.Len(), check.Equals, 0)

	buf.Reset()
	ew = errorWriter{w: &buf}
	ew.ltf8(0x80)
	c.Check(buf.Bytes(), check.DeepEquals, []byte{0x80, 0x80})
}

func (s *S) TestReadSAMHeader(c *check.C) {
	const text = "@HD\tVN:1.0\tSO:coordinate\n@SQ\tSN:chr1\tLN:1000\n@SQ\tSN:chr2\tLN:2000\n"
	raw := make([]byte, 4, 4+len(text))
	binary.LittleEndian.PutUint32(raw, uint32(len(text)))
	raw = append(raw, text...)

	var buf bytes.Buffer
	d := NewFileDefinition("")
	_, err := d.WriteTo(&buf)
	c.Assert(err, check.Equals, nil)

	b, err := NewBlock(GzipMethod, FileHeader, 0, raw)
	c.Assert(err, check.Equals, nil)
	var blocks bytes.Buffer
	_, err = b.WriteTo(&blocks)
	c.Assert(err, check.Equals, nil)
	blocks.Write(make([]byte, 16)) // Padding left for header growth.

	h := ContainerHeader{Length: int32(blocks.Len()), Blocks: 1, Landmarks: []int32{0}}
	_, err = h.WriteTo(&buf)
	c.Assert(err, check.Equals, nil)
	buf.Write(blocks.Bytes())
	c.Assert(WriteEOF(&buf), check.Equals, nil)

	gotDef, sh, err := ReadSAMHeader(&buf)
	c.Assert(err, check.Equals, nil)
	c.Check(gotDef, check.Equals, d)
	c.Assert(sh.Refs(), check.HasLen, 2)
	c.Check(sh.Refs()[1].Name(), check.Equals, "chr2")
	c.Check(sh.Refs()[1].Len(), check.Equals, 2000)

	var eof ContainerHeader
	_, err = eof.ReadFrom(&buf)
	c.Assert(err, check.Equals, nil)
	c.Check(eof.IsEOF(), check.Equals, true)
}
