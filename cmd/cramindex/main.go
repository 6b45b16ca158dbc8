// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// cramindex groups coordinate sorted alignments into CRAM containers and
// writes BAI and CRAI indexes over the resulting container layout.
package main

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/biogo/cramidx/cram"
)

type config struct {
	opts     cram.Options
	parallel bool
	method   string
	profile  string
}

var methods = map[string]byte{
	"raw":  cram.RawMethod,
	"gzip": cram.GzipMethod,
	"lzma": cram.LzmaMethod,
}

func (c config) blockMethod() (byte, error) {
	m, ok := methods[c.method]
	if !ok {
		return 0, fmt.Errorf("unknown block method %q", c.method)
	}
	return m, nil
}

func newRootCmd() *cobra.Command {
	cfg := config{opts: cram.DefaultOptions}
	var stop interface{ Stop() }

	root := &cobra.Command{
		Use:          "cramindex",
		Short:        "Build and inspect CRAM container indexes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cfg.profile {
			case "":
			case "cpu":
				stop = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
			case "mem":
				stop = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
			default:
				return fmt.Errorf("unknown profile mode %q", cfg.profile)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if stop != nil {
				stop.Stop()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.IntVar(&cfg.opts.RecordsPerSlice, "records-per-slice", cfg.opts.RecordsPerSlice, "maximum number of records in a slice")
	pf.IntVar(&cfg.opts.SlicesPerContainer, "slices-per-container", cfg.opts.SlicesPerContainer, "maximum number of slices in a container")
	pf.IntVar(&cfg.opts.RecordsPerContainer, "records-per-container", cfg.opts.RecordsPerContainer, "maximum number of records in a container")
	pf.BoolVar(&cfg.opts.MultiRefSlices, "multi-ref-slices", false, "allow slices to hold records from more than one reference")
	pf.BoolVar(&cfg.parallel, "parallel", false, "compute per-reference spans of multiple reference slices concurrently")
	pf.StringVar(&cfg.profile, "profile", "", "write a profile to the working directory (cpu or mem)")

	root.AddCommand(newIndexCmd(&cfg), newContainersCmd())
	return root
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		log.Fatal(err)
	}
}
