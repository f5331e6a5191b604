// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"bytes"
	"testing"

	"github.com/parososi/pp/internal/testutil"
)

func TestChecksum(t *testing.T) {
	var vectors = []struct {
		input []byte
		sum   uint16
	}{
		{input: nil, sum: 0x0000},
		{input: []byte{0x00}, sum: 0x0000},
		{input: []byte("abc"), sum: 0x0126},
		{input: bytes.Repeat([]byte{0xff}, 256), sum: 0xff00},
		{input: bytes.Repeat([]byte{0xff}, 65536), sum: 0x0000},
	}

	for i, v := range vectors {
		if got := updateChecksum(0, v.input); got != v.sum {
			t.Errorf("test %d, checksum mismatch: got %#04x, want %#04x", i, got, v.sum)
		}
	}
}

func TestChecksumIncremental(t *testing.T) {
	buf := testutil.NewRand(1).Bytes(4096)
	want := updateChecksum(0, buf)

	var sum uint16
	for i := 0; i < len(buf); i += 17 {
		end := i + 17
		if end > len(buf) {
			end = len(buf)
		}
		sum = updateChecksum(sum, buf[i:end])
	}
	if sum != want {
		t.Fatalf("checksum mismatch: got %#04x, want %#04x", sum, want)
	}
}

// Flipping a single byte must change the sum unless the change wraps to the
// same residue, which single-byte edits cannot do.
func TestChecksumPerturbation(t *testing.T) {
	rng := testutil.NewRand(2)
	buf := rng.Bytes(1024)
	orig := updateChecksum(0, buf)
	for i := 0; i < 256; i++ {
		pos := rng.Intn(len(buf))
		delta := byte(1 + rng.Intn(255))
		buf[pos] += delta
		if got := updateChecksum(0, buf); got == orig {
			t.Fatalf("perturbation %d at position %d not detected", i, pos)
		}
		buf[pos] -= delta
	}
}
