// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crai

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// WriteCRAI writes the slice entries of idx to w as a gzip compressed
// CRAI index.
func WriteCRAI(w io.Writer, idx *Index) error {
	gz := gzip.NewWriter(w)
	bw := bufio.NewWriter(gz)
	for _, s := range idx.Slices {
		_, err := fmt.Fprintf(bw, "%d\t%d\t%d\t%d\t%d\t%d\n",
			s.Ref, s.Start, s.Span, s.ContainerStart, s.SliceStart, s.SliceSize)
		if err != nil {
			return fmt.Errorf("crai: failed to write index line: %v", err)
		}
	}
	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("crai: failed to write index: %v", err)
	}
	err = gz.Close()
	if err != nil {
		return fmt.Errorf("crai: failed to close index: %v", err)
	}
	return nil
}

// ReadCRAI reads a gzip compressed CRAI index from r. The returned Index
// holds slice entries only and cannot be written as BAI.
func ReadCRAI(r io.Reader) (*Index, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("crai: failed to open index: %v", err)
	}
	defer gz.Close()

	var idx Index
	sc := bufio.NewScanner(gz)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		s, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("crai: %v at line %d", err, line)
		}
		idx.Slices = append(idx.Slices, s)
	}
	err = sc.Err()
	if err != nil {
		return nil, fmt.Errorf("crai: failed to read index: %v", err)
	}
	return &idx, nil
}

func parseLine(line string) (SliceEntry, error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 6 {
		return SliceEntry{}, fmt.Errorf("expected 6 fields, got %d", len(parts))
	}
	var v [6]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return SliceEntry{}, fmt.Errorf("invalid field %d: %v", i+1, err)
		}
		v[i] = n
	}
	return SliceEntry{
		Ref:            int(v[0]),
		Start:          int(v[1]),
		Span:           int(v[2]),
		ContainerStart: v[3],
		SliceStart:     int(v[4]),
		SliceSize:      int(v[5]),
	}, nil
}
