// Copyright 2020, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build ignore
// +build ignore

// Benchmark tool to compare the PP codec against other compression
// implementations. Individual implementations are referred to as codecs.
//
// Example usage:
//
//	$ go run main.go -formats pp,fl -tests encRate,ratio -levels 1,6,9 -sizes 1e5,1e6
//
//	BENCHMARK: pp:encRate
//		benchmark            pp MB/s
//		zeros:1:1e+05         312.44
//		zeros:1:1e+06         330.01
//		text:6:1e+05           24.13
//		...
package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/dsnet/golib/strconv"

	"github.com/parososi/pp/internal/tool/bench"
	"github.com/parososi/pp/internal/testutil"
)

var (
	fmtToEnum = map[string]int{
		"pp":   bench.FormatPP,
		"fl":   bench.FormatFlate,
		"zstd": bench.FormatZstd,
		"xz":   bench.FormatXZ,
	}
	enumToFmt = map[int]string{
		bench.FormatPP:    "pp",
		bench.FormatFlate: "fl",
		bench.FormatZstd:  "zstd",
		bench.FormatXZ:    "xz",
	}
	testToEnum = map[string]int{
		"encRate": bench.TestEncodeRate,
		"decRate": bench.TestDecodeRate,
		"ratio":   bench.TestCompressRatio,
	}
)

const (
	defaultFormats = "pp,fl"
	defaultTests   = "encRate,decRate,ratio"
	defaultInputs  = "zeros,text,random"
	defaultLevels  = "1,6,9"
	defaultSizes   = "1e5,1e6"
)

func main() {
	formats := flag.String("formats", defaultFormats, "comma-separated list of formats to benchmark")
	tests := flag.String("tests", defaultTests, "comma-separated list of tests to run")
	inputs := flag.String("inputs", defaultInputs, "comma-separated list of synthetic inputs")
	levels := flag.String("levels", defaultLevels, "comma-separated list of compression levels")
	sizes := flag.String("sizes", defaultSizes, "comma-separated list of input sizes")
	flag.Parse()

	var szs []int
	for _, s := range strings.Split(*sizes, ",") {
		n, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil {
			panic(fmt.Sprintf("invalid size: %q", s))
		}
		szs = append(szs, int(n))
	}
	var lvls []int
	for _, s := range strings.Split(*levels, ",") {
		n, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil || n < 1 || n > 9 {
			panic(fmt.Sprintf("invalid level: %q", s))
		}
		lvls = append(lvls, int(n))
	}

	for _, fs := range strings.Split(*formats, ",") {
		format, ok := fmtToEnum[fs]
		if !ok {
			panic(fmt.Sprintf("unknown format: %q", fs))
		}
		for _, ts := range strings.Split(*tests, ",") {
			test, ok := testToEnum[ts]
			if !ok {
				panic(fmt.Sprintf("unknown test: %q", ts))
			}
			runBenchmark(format, fs, test, ts, strings.Split(*inputs, ","), lvls, szs)
		}
	}
}

func runBenchmark(format int, fs string, test int, ts string, inputs []string, levels, sizes []int) {
	fmt.Printf("BENCHMARK: %s:%s\n", fs, ts)

	var names []string
	for name := range bench.Encoders[format] {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\t%-20s", "benchmark")
	for _, name := range names {
		if test == bench.TestCompressRatio {
			fmt.Printf("  %10s", name)
		} else {
			fmt.Printf("  %7s MB/s", name)
		}
	}
	fmt.Println()

	for _, input := range inputs {
		for _, lvl := range levels {
			for _, size := range sizes {
				fmt.Printf("\t%-20s", fmt.Sprintf("%s:%d:%.0e", input, lvl, float64(size)))
				data := makeInput(input, size)
				for _, name := range names {
					enc := bench.Encoders[format][name]
					dec := bench.Decoders[format][name]
					switch test {
					case bench.TestEncodeRate:
						r := bench.BenchmarkEncoder(data, enc, lvl)
						fmt.Printf("  %12.2f", mbPerSec(r.NsPerOp(), size))
					case bench.TestDecodeRate:
						r := bench.BenchmarkDecoder(data, enc, dec, lvl)
						fmt.Printf("  %12.2f", mbPerSec(r.NsPerOp(), size))
					case bench.TestCompressRatio:
						fmt.Printf("  %10.2f", bench.CompressRatio(data, enc, lvl))
					}
				}
				fmt.Println()
			}
		}
	}
	fmt.Println()
}

func mbPerSec(nsPerOp int64, size int) float64 {
	return float64(size) / 1e6 * 1e9 / float64(nsPerOp)
}

// makeInput synthesizes a deterministic test input of the named shape.
func makeInput(name string, n int) []byte {
	switch name {
	case "zeros":
		return make([]byte, n)
	case "random":
		return testutil.NewRand(0).Bytes(n)
	case "text":
		rng := testutil.NewRand(0)
		words := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dogs"}
		var b []byte
		for len(b) < n {
			b = append(b, words[rng.Intn(len(words))]...)
			b = append(b, ' ')
		}
		return b[:n]
	default:
		panic(fmt.Sprintf("unknown input: %q", name))
	}
}
