// Copyright 2020, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

package pp

import (
	"bytes"

	"github.com/parososi/pp"
)

// Fuzz treats the input both as a container to decode and as raw data to
// round-trip at every level.
func Fuzz(data []byte) int {
	ok := testDecoder(data)
	if len(data) > 0 {
		for lvl := 1; lvl <= 9; lvl++ {
			testRoundTrip(data, lvl)
		}
	}
	if ok {
		return 1 // Favor valid containers
	}
	return 0
}

// testDecoder checks that an arbitrary byte stream either decodes cleanly
// or fails with a classified error. An unclassified failure is a panic.
func testDecoder(data []byte) bool {
	out, err := pp.Decompress(data, nil)
	if err != nil {
		if pp.ErrorKind(err) == pp.KindUnknown {
			panic(err)
		}
		return false
	}
	_ = out
	return true
}

// testRoundTrip checks that compressing and decompressing the input at the
// given level reproduces it exactly.
func testRoundTrip(data []byte, level int) {
	comp, err := pp.Compress(data, &pp.WriterConfig{Level: level})
	if err != nil {
		panic(err)
	}
	out, err := pp.Decompress(comp, nil)
	if err != nil {
		panic(err)
	}
	if !bytes.Equal(out, data) {
		panic("mismatching bytes")
	}
}
