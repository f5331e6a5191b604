// Copyright 2020, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares the performance of the PP codec against other
// compression implementations with respect to encode speed, decode speed,
// and ratio.
//
// Unlike streaming formats, PP operates on whole buffers, so codecs are
// registered as buffer-to-buffer functions. Streaming implementations are
// adapted through an in-memory buffer.
package bench

import (
	"bytes"
	"runtime"
	"testing"
)

const (
	FormatPP = iota
	FormatFlate
	FormatZstd
	FormatXZ
)

const (
	TestEncodeRate = iota
	TestDecodeRate
	TestCompressRatio
)

// Encoder compresses input at the given level. Decoder inverts it.
type Encoder func(input []byte, level int) ([]byte, error)
type Decoder func(input []byte) ([]byte, error)

var (
	Encoders map[int]map[string]Encoder
	Decoders map[int]map[string]Decoder
)

func registerEncoder(format int, name string, enc Encoder) {
	if Encoders == nil {
		Encoders = make(map[int]map[string]Encoder)
	}
	if Encoders[format] == nil {
		Encoders[format] = make(map[string]Encoder)
	}
	Encoders[format][name] = enc
}

func registerDecoder(format int, name string, dec Decoder) {
	if Decoders == nil {
		Decoders = make(map[int]map[string]Decoder)
	}
	if Decoders[format] == nil {
		Decoders[format] = make(map[string]Decoder)
	}
	Decoders[format][name] = dec
}

// BenchmarkEncoder benchmarks a single encoder on the given input at the
// selected compression level.
func BenchmarkEncoder(input []byte, enc Encoder, level int) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		runtime.GC()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := enc(input, level); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
		}
	})
}

// BenchmarkDecoder benchmarks a single decoder on data pre-compressed by
// the matching encoder.
func BenchmarkDecoder(input []byte, enc Encoder, dec Decoder, level int) testing.BenchmarkResult {
	comp, err := enc(input, level)
	if err != nil {
		panic(err)
	}
	return testing.Benchmark(func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		runtime.GC()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			out, err := dec(comp)
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(out, input) {
				b.Fatalf("mismatching bytes")
			}
		}
	})
}

// CompressRatio reports len(input) / len(compressed).
func CompressRatio(input []byte, enc Encoder, level int) float64 {
	comp, err := enc(input, level)
	if err != nil {
		panic(err)
	}
	return float64(len(input)) / float64(len(comp))
}
