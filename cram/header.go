// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"bytes"
	"compress/bzip2"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/ioutil"

	"github.com/biogo/hts/sam"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz/lzma"
)

var eofContainer = []byte{
	0x0f, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, // |........|
	0x0f, 0xe0, 0x45, 0x4f, 0x46, 0x00, 0x00, 0x00, // |..EOF...|
	0x00, 0x01, 0x00, 0x05, 0xbd, 0xd9, 0x4f, 0x00, // |......O.|
	0x01, 0x00, 0x06, 0x06, 0x01, 0x00, 0x01, 0x00, // |........|
	0x01, 0x00, 0xee, 0x63, 0x01, 0x4b, /*       */ // |...c.K|
}

// WriteEOF writes the CRAM version 3 end of file container to w.
func WriteEOF(w io.Writer) error {
	_, err := w.Write(eofContainer)
	return err
}

var cramMagic = [4]byte{'C', 'R', 'A', 'M'}

// FileDefinition is the CRAM file definition, section 6 of the CRAM
// specification.
type FileDefinition struct {
	Major, Minor byte
	ID           [20]byte
}

// NewFileDefinition returns a CRAM 3.0 file definition. If id is empty
// a random identifier is used.
func NewFileDefinition(id string) FileDefinition {
	d := FileDefinition{Major: 3, Minor: 0}
	if id == "" {
		u := uuid.New()
		copy(d.ID[:], u[:])
	} else {
		copy(d.ID[:], id)
	}
	return d
}

// ReadFrom reads a file definition from r.
func (d *FileDefinition) ReadFrom(r io.Reader) (int64, error) {
	var buf [26]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}
	if !bytes.Equal(buf[:4], cramMagic[:]) {
		return int64(n), fmt.Errorf("cram: not a cram file: magic bytes %q", buf[:4])
	}
	d.Major, d.Minor = buf[4], buf[5]
	copy(d.ID[:], buf[6:])
	return int64(n), nil
}

// WriteTo writes the file definition to w.
func (d *FileDefinition) WriteTo(w io.Writer) (int64, error) {
	var buf [26]byte
	copy(buf[:], cramMagic[:])
	buf[4], buf[5] = d.Major, d.Minor
	copy(buf[6:], d.ID[:])
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ContainerHeader is a CRAM container header, section 7 of the CRAM
// specification.
type ContainerHeader struct {
	// Length is the byte length of the container's blocks.
	Length int32

	// RefID is the reference id of the container: -1 for
	// unplaced records and -2 for multiple references.
	RefID int32

	// Start and Span are the 1-based alignment start
	// and span of a single reference container.
	Start int32
	Span  int32

	Records       int32
	RecordCounter int64
	Bases         int64
	Blocks        int32

	// Landmarks are the byte offsets of slices
	// from the start of the block data.
	Landmarks []int32

	CRC32 uint32
}

// Context returns the reference context declared by the header.
func (h *ContainerHeader) Context() (ReferenceContext, error) {
	return ContextFromID(int(h.RefID))
}

// IsEOF returns whether the header is the end of file container.
func (h *ContainerHeader) IsEOF() bool {
	return h.Records == 0 && h.RefID == unplacedID && h.Start == 4542278
}

// ReadFrom reads a container header from r, checking its CRC32 checksum.
// The container's block data is not read.
func (h *ContainerHeader) ReadFrom(r io.Reader) (int64, error) {
	crc := crc32.NewIEEE()
	cr := &countReader{r: r}
	er := errorReader{r: io.TeeReader(cr, crc)}
	var buf [4]byte
	io.ReadFull(&er, buf[:])
	h.Length = int32(binary.LittleEndian.Uint32(buf[:]))
	h.RefID = er.itf8()
	h.Start = er.itf8()
	h.Span = er.itf8()
	h.Records = er.itf8()
	h.RecordCounter = er.ltf8()
	h.Bases = er.ltf8()
	h.Blocks = er.itf8()
	h.Landmarks = er.itf8slice()
	if er.err != nil {
		return cr.n, er.err
	}
	sum := crc.Sum32()
	_, err := io.ReadFull(cr, buf[:])
	if err != nil {
		return cr.n, err
	}
	h.CRC32 = binary.LittleEndian.Uint32(buf[:])
	if h.CRC32 != sum {
		return cr.n, fmt.Errorf("cram: container crc32 mismatch got:0x%08x want:0x%08x", sum, h.CRC32)
	}
	return cr.n, nil
}

// WriteTo writes the container header to w, computing and setting
// its CRC32 checksum.
func (h *ContainerHeader) WriteTo(w io.Writer) (int64, error) {
	crc := crc32.NewIEEE()
	ew := errorWriter{w: io.MultiWriter(w, crc)}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(h.Length))
	ew.Write(buf[:])
	ew.itf8(h.RefID)
	ew.itf8(h.Start)
	ew.itf8(h.Span)
	ew.itf8(h.Records)
	ew.ltf8(h.RecordCounter)
	ew.ltf8(h.Bases)
	ew.itf8(h.Blocks)
	ew.itf8slice(h.Landmarks)
	if ew.err != nil {
		return ew.n, ew.err
	}
	h.CRC32 = crc.Sum32()
	binary.LittleEndian.PutUint32(buf[:], h.CRC32)
	n, err := w.Write(buf[:])
	return ew.n + int64(n), err
}

type countReader struct {
	r io.Reader
	n int64
}

func (r *countReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	r.n += int64(n)
	return n, err
}

// Block compression methods, section 8 of the CRAM specification.
const (
	RawMethod = iota
	GzipMethod
	Bzip2Method
	LzmaMethod
	RansMethod
)

// Block content types, section 8 of the CRAM specification.
const (
	FileHeader = iota
	CompressionHeader
	MappedSliceHeader
	_ // reserved
	ExternalData
	CoreData
)

// Block is a CRAM block.
type Block struct {
	Method    byte
	Type      byte
	ContentID int32
	RawSize   int32

	// Data is the block data as stored, compressed
	// according to Method.
	Data []byte

	CRC32 uint32
}

// NewBlock returns a block holding raw compressed with the given
// method. Only the raw, gzip and lzma methods are supported.
func NewBlock(method, typ byte, contentID int32, raw []byte) (*Block, error) {
	b := &Block{Method: method, Type: typ, ContentID: contentID, RawSize: int32(len(raw))}
	var (
		buf bytes.Buffer
		wc  io.WriteCloser
		err error
	)
	switch method {
	case RawMethod:
		b.Data = raw
		return b, nil
	case GzipMethod:
		wc = gzip.NewWriter(&buf)
	case LzmaMethod:
		wc, err = lzma.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cram: unsupported block compression method for writing: %d", method)
	}
	_, err = wc.Write(raw)
	if err != nil {
		return nil, err
	}
	err = wc.Close()
	if err != nil {
		return nil, err
	}
	b.Data = buf.Bytes()
	return b, nil
}

// ReadFrom reads a block from r, checking its CRC32 checksum.
func (b *Block) ReadFrom(r io.Reader) (int64, error) {
	crc := crc32.NewIEEE()
	cr := &countReader{r: r}
	er := errorReader{r: io.TeeReader(cr, crc)}
	var buf [4]byte
	io.ReadFull(&er, buf[:2])
	b.Method = buf[0]
	b.Type = buf[1]
	b.ContentID = er.itf8()
	size := er.itf8()
	b.RawSize = er.itf8()
	if er.err != nil {
		return cr.n, er.err
	}
	if size < 0 {
		return cr.n, fmt.Errorf("cram: negative block size: %d", size)
	}
	if b.Method == RawMethod && size != b.RawSize {
		return cr.n, fmt.Errorf("cram: compressed (%d) != raw (%d) size for raw method", size, b.RawSize)
	}
	b.Data = make([]byte, size)
	_, err := io.ReadFull(&er, b.Data)
	if err != nil {
		return cr.n, err
	}
	sum := crc.Sum32()
	_, err = io.ReadFull(cr, buf[:])
	if err != nil {
		return cr.n, err
	}
	b.CRC32 = binary.LittleEndian.Uint32(buf[:])
	if b.CRC32 != sum {
		return cr.n, fmt.Errorf("cram: block crc32 mismatch got:0x%08x want:0x%08x", sum, b.CRC32)
	}
	return cr.n, nil
}

// WriteTo writes the block to w, computing and setting its CRC32 checksum.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	crc := crc32.NewIEEE()
	ew := errorWriter{w: io.MultiWriter(w, crc)}
	ew.Write([]byte{b.Method, b.Type})
	ew.itf8(b.ContentID)
	ew.itf8(int32(len(b.Data)))
	ew.itf8(b.RawSize)
	ew.Write(b.Data)
	if ew.err != nil {
		return ew.n, ew.err
	}
	b.CRC32 = crc.Sum32()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], b.CRC32)
	n, err := w.Write(buf[:])
	return ew.n + int64(n), err
}

// Raw returns the uncompressed block data.
func (b *Block) Raw() ([]byte, error) {
	var r io.Reader
	switch b.Method {
	case RawMethod:
		return b.Data, nil
	case GzipMethod:
		gz, err := gzip.NewReader(bytes.NewReader(b.Data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case Bzip2Method:
		r = bzip2.NewReader(bytes.NewReader(b.Data))
	case LzmaMethod:
		lr, err := lzma.NewReader(bytes.NewReader(b.Data))
		if err != nil {
			return nil, err
		}
		r = lr
	default:
		return nil, fmt.Errorf("cram: unsupported block compression method: %d", b.Method)
	}
	raw, err := ioutil.ReadAll(io.LimitReader(r, int64(b.RawSize)))
	if err != nil {
		return nil, err
	}
	if len(raw) != int(b.RawSize) {
		return nil, fmt.Errorf("cram: short block: got %d bytes want %d", len(raw), b.RawSize)
	}
	return raw, nil
}

var errNoFileHeader = errors.New("cram: missing file header block")

// ReadSAMHeader reads the file definition and the SAM header container
// from the start of a CRAM stream. On return r is positioned at the
// first data container.
func ReadSAMHeader(r io.Reader) (FileDefinition, *sam.Header, error) {
	var d FileDefinition
	_, err := d.ReadFrom(r)
	if err != nil {
		return d, nil, err
	}
	var h ContainerHeader
	_, err = h.ReadFrom(r)
	if err != nil {
		return d, nil, err
	}
	lr := &io.LimitedReader{R: r, N: int64(h.Length)}
	var b Block
	_, err = b.ReadFrom(lr)
	if err != nil {
		return d, nil, err
	}
	if b.Type != FileHeader {
		return d, nil, errNoFileHeader
	}
	raw, err := b.Raw()
	if err != nil {
		return d, nil, err
	}
	if len(raw) < 4 {
		return d, nil, errNoFileHeader
	}
	n := binary.LittleEndian.Uint32(raw)
	if int64(n) > int64(len(raw)-4) {
		return d, nil, fmt.Errorf("cram: file header length %d exceeds block size %d", n, len(raw)-4)
	}
	sh, err := sam.NewHeader(raw[4:4+n], nil)
	if err != nil {
		return d, nil, err
	}
	// Skip the remainder of the header container.
	_, err = io.Copy(ioutil.Discard, lr)
	return d, sh, err
}
