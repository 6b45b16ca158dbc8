// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/mmap"

	"github.com/biogo/cramidx/crai"
	"github.com/biogo/cramidx/cram"
)

func newIndexCmd(cfg *config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "index <in.bam>",
		Short: "Group a coordinate sorted BAM into containers and index them",
		Long: `Group the records of a coordinate sorted BAM file into CRAM slices and
containers, write the container layout to <out>.cram and index it,
writing <out>.cram.bai and <out>.cram.crai.

The layout holds container and slice headers only; record data is not
encoded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}
			_, err := indexBAM(args[0], out, *cfg)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path prefix (default input path without extension)")
	cmd.Flags().StringVar(&cfg.method, "method", "raw", "slice header block compression (raw, gzip or lzma)")
	return cmd
}

// indexBAM groups the records of the BAM file at path and writes the
// container layout and its indexes using the given output prefix.
func indexBAM(path, prefix string, cfg config) (*crai.Index, error) {
	method, err := cfg.blockMethod()
	if err != nil {
		return nil, err
	}
	b, err := cram.NewBuilder(cfg.opts)
	if err != nil {
		return nil, err
	}

	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	br, err := bam.NewReader(io.NewSectionReader(f, 0, int64(f.Len())), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open bam: %v", err)
	}
	defer br.Close()
	h := br.Header()

	out, err := os.Create(prefix + ".cram")
	if err != nil {
		return nil, err
	}
	defer out.Close()
	bw := bufio.NewWriter(out)
	w, err := cram.NewWriter(bw, cram.NewFileDefinition(filepath.Base(path)), h, method)
	if err != nil {
		return nil, err
	}

	ix := crai.NewIndexer(crai.Options{NumRefs: len(h.Refs()), Parallel: cfg.parallel})
	var containers, records int
	process := func(c *cram.Container) error {
		p, err := w.Write(c)
		if err != nil {
			return err
		}
		containers++
		records += c.Len()
		return ix.Process(c, crai.Location(p))
	}
	for {
		r, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bam record: %v", err)
		}
		if c := b.Add(cram.FromSAM(r)); c != nil {
			err = process(c)
			if err != nil {
				return nil, err
			}
		}
	}
	if c := b.Flush(); c != nil {
		err = process(c)
		if err != nil {
			return nil, err
		}
	}
	err = w.Close()
	if err != nil {
		return nil, err
	}
	err = bw.Flush()
	if err != nil {
		return nil, err
	}
	err = out.Close()
	if err != nil {
		return nil, err
	}

	idx, err := ix.Finish()
	if err != nil {
		return nil, err
	}
	err = writeFile(prefix+".cram.bai", func(w io.Writer) error { return crai.WriteBAI(w, idx) })
	if err != nil {
		return nil, err
	}
	err = writeFile(prefix+".cram.crai", func(w io.Writer) error { return crai.WriteCRAI(w, idx) })
	if err != nil {
		return nil, err
	}
	log.Printf("indexed %d records in %d containers over %d references (%d records scanned, %d without coordinate)",
		records, containers, len(idx.Entries), ix.Scanned(), idx.NoCoordinate)
	return idx, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	err = fn(bw)
	if err != nil {
		f.Close()
		return err
	}
	err = bw.Flush()
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
