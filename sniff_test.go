// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"bytes"
	"testing"

	"github.com/parososi/pp/internal/testutil"
)

func TestDetectFileType(t *testing.T) {
	var vectors = []struct {
		input []byte
		ftype FileType
	}{
		{testutil.MustDecodeHex("89504e470d0a1a0a"), FileTypePNG},
		{testutil.MustDecodeHex("ffd8ffe000104a46"), FileTypeJPEG},
		{testutil.MustDecodeHex("474946383961"), FileTypeGIF},
		{testutil.MustDecodeHex("504b0304"), FileTypeZIP},
		{[]byte("%PDF-1.7\n"), FileTypePDF},
		{testutil.MustDecodeHex("1f8b08"), FileTypeGZIP},
		{[]byte("The quick brown fox\njumps over the lazy dog.\r\n"), FileTypeText},
		{testutil.NewRand(0).Bytes(4096), FileTypeBinary},
		{[]byte{0x41}, FileTypeText},
		{[]byte{0x00, 0x01, 0x02}, FileTypeBinary},
	}

	for i, v := range vectors {
		if got := DetectFileType(v.input); got != v.ftype {
			t.Errorf("test %d, type mismatch: got %v, want %v", i, got, v.ftype)
		}
	}
}

// The text heuristic samples only the head of the input, and the 85%
// threshold is over the sample, not the whole buffer.
func TestDetectFileTypeThreshold(t *testing.T) {
	mostlyText := append(bytes.Repeat([]byte("a"), 87), bytes.Repeat([]byte{0x00}, 13)...)
	if got := DetectFileType(mostlyText); got != FileTypeText {
		t.Errorf("87%% printable: got %v, want text", got)
	}
	mostlyBinary := append(bytes.Repeat([]byte("a"), 80), bytes.Repeat([]byte{0x00}, 20)...)
	if got := DetectFileType(mostlyBinary); got != FileTypeBinary {
		t.Errorf("80%% printable: got %v, want binary", got)
	}

	// Text head, binary tail beyond the 2048-byte sample.
	headText := append(bytes.Repeat([]byte("a"), sniffSampleSize), bytes.Repeat([]byte{0x00}, 4096)...)
	if got := DetectFileType(headText); got != FileTypeText {
		t.Errorf("text head: got %v, want text", got)
	}
}
