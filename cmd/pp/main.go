// Copyright 2020, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command pp compresses and decompresses files in the PP container format.
//
// The compress and decompress commands process their files concurrently;
// stat handles its files one after another. Compressed output uses the canonical
// .pp suffix; decompression strips it.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/parososi/pp"
)

const suffix = ".pp"

var log = logrus.New()

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "pp",
		Short:         "pp compresses and decompresses PP containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress events")

	var level int
	var envelope bool
	compress := &cobra.Command{
		Use:   "compress FILE...",
		Short: "compress files into PP containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return eachFile(args, func(path string) error {
				return compressFile(path, level, envelope)
			})
		},
	}
	compress.Flags().IntVarP(&level, "level", "l", pp.DefaultLevel, "compression level (1..9)")
	compress.Flags().BoolVar(&envelope, "envelope", false, "prepend the raw envelope byte")

	decompress := &cobra.Command{
		Use:   "decompress FILE...",
		Short: "decompress PP containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return eachFile(args, decompressFile)
		},
	}

	stat := &cobra.Command{
		Use:   "stat FILE...",
		Short: "print container metadata without decoding",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := statFile(path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	root.AddCommand(compress, decompress, stat)
	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// eachFile runs fn over the given paths concurrently, bounded by the CPU
// count. The codec itself is single-threaded; parallelism is per file.
func eachFile(paths []string, fn func(string) error) error {
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for _, path := range paths {
		path := path
		group.Go(func() error { return fn(path) })
	}
	return group.Wait()
}

func progressLogger(path string) pp.ProgressFunc {
	return func(stage pp.Stage, pct float64, msg string) {
		log.WithFields(logrus.Fields{
			"file":  path,
			"stage": stage.String(),
		}).Debugf("%5.1f%%", pct)
	}
}

func compressFile(path string, level int, envelope bool) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	output, err := pp.Compress(input, &pp.WriterConfig{
		Level:    level,
		Envelope: envelope,
		Progress: progressLogger(path),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out := path + suffix
	if err := os.WriteFile(out, output, 0o666); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":  out,
		"in":    len(input),
		"out":   len(output),
		"ratio": fmt.Sprintf("%.2f", float64(len(input))/float64(len(output))),
	}).Info("compressed")
	return nil
}

func decompressFile(path string) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	output, err := pp.Decompress(input, &pp.ReaderConfig{Progress: progressLogger(path)})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out := strings.TrimSuffix(path, suffix)
	if out == path {
		out = path + ".out"
	}
	if err := os.WriteFile(out, output, 0o666); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": out, "size": len(output)}).Info("decompressed")
	return nil
}

func statFile(path string) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	hdr, err := pp.Stat(input)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Printf("%s:\n", path)
	fmt.Printf("  version:           %d.%d\n", hdr.Version, hdr.VersionMinor)
	fmt.Printf("  uncompressed size: %d\n", hdr.UncompressedSize)
	fmt.Printf("  compressed size:   %d\n", hdr.CompressedSize)
	fmt.Printf("  level:             %d\n", hdr.Level)
	fmt.Printf("  filetype:          %s\n", hdr.Type)
	if hdr.Version == 4 {
		fmt.Printf("  mode:              %s\n", hdr.Mode)
	}
	fmt.Printf("  checksum:          %#04x\n", hdr.Checksum)
	return nil
}
