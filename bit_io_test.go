// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"bytes"
	"testing"

	"github.com/parososi/pp/internal/errors"
	"github.com/parososi/pp/internal/testutil"
)

func TestBitWriterRoundTrip(t *testing.T) {
	rng := testutil.NewRand(0)

	var fields []struct {
		val uint64
		nb  uint
	}
	totalBits := 0
	for i := 0; i < 4096; i++ {
		nb := uint(1 + rng.Intn(24))
		val := uint64(rng.Int()) & (1<<nb - 1)
		fields = append(fields, struct {
			val uint64
			nb  uint
		}{val, nb})
		totalBits += int(nb)
	}

	var bw bitWriter
	for _, f := range fields {
		bw.WriteBits(f.val, f.nb)
	}
	buf := bw.Flush()
	if got, want := len(buf), (totalBits+7)/8; got != want {
		t.Fatalf("stream length mismatch: got %d bytes, want %d", got, want)
	}

	br := bitReader{buf: buf}
	for i, f := range fields {
		if got := br.ReadBits(f.nb); got != f.val {
			t.Fatalf("field %d mismatch: got %d, want %d", i, got, f.val)
		}
	}
}

func TestBitReaderOverrun(t *testing.T) {
	br := bitReader{buf: []byte{0xff}}
	br.ReadBits(8)

	var err error
	func() {
		defer errors.Recover(&err)
		br.ReadBits(1)
	}()
	if ErrorKind(err) != KindOverrun {
		t.Fatalf("error mismatch: got %v, want Overrun", err)
	}
}

func TestBitWriterBE(t *testing.T) {
	var vectors = []struct {
		fields []struct {
			val uint64
			nb  uint
		}
		output []byte
	}{{
		// 101 10101011 → 10110101 011_____
		fields: []struct {
			val uint64
			nb  uint
		}{{0x5, 3}, {0xab, 8}},
		output: []byte{0xb5, 0x60},
	}, {
		// 1 01100001 → 10110000 1_______
		fields: []struct {
			val uint64
			nb  uint
		}{{1, 1}, {'a', 8}},
		output: []byte{0xb0, 0x80},
	}}

	for i, v := range vectors {
		var bw bitWriterBE
		for _, f := range v.fields {
			bw.WriteBits(f.val, f.nb)
		}
		if !bytes.Equal(bw.Bytes(), v.output) {
			t.Errorf("test %d, output mismatch: got %x, want %x", i, bw.Bytes(), v.output)
		}

		br := bitReaderBE{buf: bw.Bytes()}
		for j, f := range v.fields {
			if got := uint64(br.ReadBits(f.nb)); got != f.val {
				t.Errorf("test %d, field %d mismatch: got %d, want %d", i, j, got, f.val)
			}
		}
	}
}

func TestBitReaderBEExhausted(t *testing.T) {
	br := bitReaderBE{buf: []byte{0x00}}
	br.ReadBits(8)

	var err error
	func() {
		defer errors.Recover(&err)
		br.ReadBit()
	}()
	if ErrorKind(err) != KindMalformedTree {
		t.Fatalf("error mismatch: got %v, want MalformedTree", err)
	}
}
