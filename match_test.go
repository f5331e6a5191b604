// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"bytes"
	"testing"

	"github.com/parososi/pp/internal/testutil"
)

var allModes = []Mode{ModeFast, ModeBalanced, ModeWeb, ModeUltra}

// Every match returned by the finder must be a true substring repeat within
// the window and the configured length bounds.
func TestMatchFinderCorrectness(t *testing.T) {
	rng := testutil.NewRand(0)

	var vectors = [][]byte{
		bytes.Repeat([]byte{0x00}, 4096),
		bytes.Repeat([]byte("abcabc"), 1000),
		[]byte("abracadabra"),
		rng.Bytes(8192),
		append(rng.Bytes(1024), append(bytes.Repeat([]byte("na"), 512), rng.Bytes(1024)...)...),
	}

	for i, src := range vectors {
		for _, mode := range allModes {
			mf := newMatchFinder(src, paramsForMode(mode), nil)
			for p := 0; p < len(src); p++ {
				m := mf.find(p)
				if m.length == 0 {
					continue
				}
				switch {
				case m.length < minMatch || m.length > maxMatch:
					t.Errorf("test %d, mode %v, pos %d: length %d out of bounds", i, mode, p, m.length)
				case m.offset <= 0 || m.offset > p || m.offset > matchWindow:
					t.Errorf("test %d, mode %v, pos %d: offset %d out of bounds", i, mode, p, m.offset)
				case !bytes.Equal(src[p:p+m.length], src[p-m.offset:p-m.offset+m.length]):
					t.Errorf("test %d, mode %v, pos %d: match (offset=%d, length=%d) is not a repeat", i, mode, p, m.offset, m.length)
				}
			}
		}
	}
}

func TestMatchFinderRepeats(t *testing.T) {
	src := bytes.Repeat([]byte{0xaa}, 8192)
	mf := newMatchFinder(src, paramsForMode(ModeBalanced), nil)

	// Position 0 has no prior data to reference.
	if m := mf.find(0); m.length != 0 {
		t.Fatalf("position 0: unexpected match %+v", m)
	}
	// Position 1 must see the adjacent run.
	if m := mf.find(1); m.offset != 1 || m.length != maxMatch {
		t.Fatalf("position 1: got %+v, want (offset=1, length=%d)", m, maxMatch)
	}
	// Near the end the match is clamped to the remaining bytes.
	if m := mf.find(len(src) - 8); m.length != 8 {
		t.Fatalf("tail position: got %+v, want length 8", m)
	}
}

func TestMatchFinderShortInput(t *testing.T) {
	for _, src := range [][]byte{nil, {0x41}, {0x41, 0x41}, {0x41, 0x41, 0x41}} {
		mf := newMatchFinder(src, paramsForMode(ModeFast), nil)
		for p := 0; p < len(src); p++ {
			if m := mf.find(p); m.length != 0 {
				t.Errorf("len %d, pos %d: unexpected match %+v", len(src), p, m)
			}
		}
	}
}
