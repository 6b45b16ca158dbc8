// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cram

import (
	"fmt"
	"io"

	"github.com/biogo/hts/cram/encoding/itf8"
	"github.com/biogo/hts/cram/encoding/ltf8"
)

// errorReader is a sticky error reader with CRAM integer decoding.
type errorReader struct {
	r   io.Reader
	err error
}

func (r *errorReader) Read(b []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int
	n, r.err = r.r.Read(b)
	return n, r.err
}

func (r *errorReader) itf8() int32 {
	var buf [5]byte
	if _, r.err = io.ReadFull(r, buf[:1]); r.err != nil {
		return 0
	}
	v, n, ok := itf8.Decode(buf[:1])
	if ok {
		return v
	}
	if _, r.err = io.ReadFull(r, buf[1:n]); r.err != nil {
		return 0
	}
	v, _, ok = itf8.Decode(buf[:n])
	if !ok {
		r.err = fmt.Errorf("cram: failed to decode itf-8 stream %#v", buf[:n])
	}
	return v
}

func (r *errorReader) itf8slice() []int32 {
	n := r.itf8()
	if r.err != nil || n == 0 {
		return nil
	}
	if n < 0 {
		r.err = fmt.Errorf("cram: negative itf-8 array length: %d", n)
		return nil
	}
	s := make([]int32, n)
	for i := range s {
		s[i] = r.itf8()
		if r.err != nil {
			return s[:i]
		}
	}
	return s
}

func (r *errorReader) ltf8() int64 {
	var buf [9]byte
	if _, r.err = io.ReadFull(r, buf[:1]); r.err != nil {
		return 0
	}
	v, n, ok := ltf8.Decode(buf[:1])
	if ok {
		return v
	}
	if _, r.err = io.ReadFull(r, buf[1:n]); r.err != nil {
		return 0
	}
	v, _, ok = ltf8.Decode(buf[:n])
	if !ok {
		r.err = fmt.Errorf("cram: failed to decode ltf-8 stream %#v", buf[:n])
	}
	return v
}

// errorWriter is a sticky error writer with CRAM integer encoding.
type errorWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (w *errorWriter) Write(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	var n int
	n, w.err = w.w.Write(b)
	w.n += int64(n)
	return n, w.err
}

func (w *errorWriter) itf8(v int32) {
	var buf [5]byte
	n := itf8.Encode(buf[:], v)
	if n == 5 {
		// The final byte holds only the low four bits.
		u := uint32(v)
		buf[3] = byte(u >> 4)
		buf[4] = byte(u) & 0x0f
	}
	w.Write(buf[:n])
}

func (w *errorWriter) itf8slice(s []int32) {
	w.itf8(int32(len(s)))
	for _, v := range s {
		w.itf8(v)
	}
}

func (w *errorWriter) ltf8(v int64) {
	var buf [9]byte
	w.Write(buf[:ltf8.Encode(buf[:], v)])
}
