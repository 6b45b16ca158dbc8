// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biogo/cramidx/cram"
)

func newContainersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "containers <in.cram>",
		Short: "List the containers of a CRAM file and their reference contexts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return listContainers(cmd.OutOrStdout(), bufio.NewReader(f))
		},
	}
}

type offsetReader struct {
	r io.Reader
	n int64
}

func (r *offsetReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	r.n += int64(n)
	return n, err
}

// listContainers writes one line per container in the CRAM stream r,
// giving the container offset, reference context, record count,
// alignment extent and slice contexts.
func listContainers(w io.Writer, r io.Reader) error {
	or := &offsetReader{r: r}
	_, h, err := cram.ReadSAMHeader(or)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "#references\t%d\n#offset\tcontext\trecords\tstart\tspan\tslices\n", len(h.Refs()))
	if err != nil {
		return err
	}
	for {
		offset := or.n
		var ch cram.ContainerHeader
		_, err = ch.ReadFrom(or)
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("missing EOF container at offset %d", offset)
			}
			return err
		}
		if ch.IsEOF() {
			return nil
		}
		ctx, err := ch.Context()
		if err != nil {
			return err
		}
		data := make([]byte, ch.Length)
		_, err = io.ReadFull(or, data)
		if err != nil {
			return fmt.Errorf("failed to read container at offset %d: %v", offset, err)
		}
		slices, err := sliceContexts(data)
		if err != nil {
			return fmt.Errorf("container at offset %d: %v", offset, err)
		}
		_, err = fmt.Fprintf(w, "%d\t%v\t%d\t%d\t%d\t%s\n", offset, ctx, ch.Records, ch.Start, ch.Span, strings.Join(slices, ","))
		if err != nil {
			return err
		}
	}
}

// sliceContexts returns the reference contexts declared by the slice
// header blocks in a container's block data.
func sliceContexts(data []byte) ([]string, error) {
	r := bytes.NewReader(data)
	var ctxs []string
	for r.Len() > 0 {
		var b cram.Block
		_, err := b.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		if b.Type != cram.MappedSliceHeader {
			continue
		}
		sh, err := cram.ReadSliceHeader(&b)
		if err != nil {
			return nil, err
		}
		ctx, err := sh.Context()
		if err != nil {
			return nil, err
		}
		ctxs = append(ctxs, ctx.String())
	}
	return ctxs, nil
}
