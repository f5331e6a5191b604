// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"bytes"
	"fmt"
)

// FileType is the classification tag recorded in a container header.
// In the current generation the tag is purely informational: it influences
// mode selection but never alters the token stream, and decoders surface it
// without acting on it.
type FileType uint8

const (
	FileTypeBinary FileType = iota
	FileTypePNG
	FileTypeJPEG
	FileTypeGIF
	FileTypeZIP
	FileTypePDF
	FileTypeGZIP
	FileTypeText
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeBinary:
		return "binary"
	case FileTypePNG:
		return "png"
	case FileTypeJPEG:
		return "jpeg"
	case FileTypeGIF:
		return "gif"
	case FileTypeZIP:
		return "zip"
	case FileTypePDF:
		return "pdf"
	case FileTypeGZIP:
		return "gzip"
	case FileTypeText:
		return "text"
	default:
		return fmt.Sprintf("FileType(%d)", uint8(ft))
	}
}

// sniffSampleSize bounds the printable-ratio scan for the text heuristic.
const sniffSampleSize = 2048

var magicTable = []struct {
	prefix []byte
	ftype  FileType
}{
	{[]byte{0x89, 0x50, 0x4e, 0x47}, FileTypePNG},
	{[]byte{0xff, 0xd8, 0xff}, FileTypeJPEG},
	{[]byte{0x47, 0x49, 0x46}, FileTypeGIF},
	{[]byte{0x50, 0x4b}, FileTypeZIP},
	{[]byte{0x25, 0x50, 0x44, 0x46}, FileTypePDF},
	{[]byte{0x1f, 0x8b}, FileTypeGZIP},
}

// DetectFileType classifies buf from its leading bytes. If no magic number
// matches, up to the first 2048 bytes are scanned; the buffer is tagged as
// text when at least 85% of the sample is printable ASCII, tab, CR, or LF.
func DetectFileType(buf []byte) FileType {
	for _, m := range magicTable {
		if bytes.HasPrefix(buf, m.prefix) {
			return m.ftype
		}
	}

	sample := buf
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}
	if len(sample) == 0 {
		return FileTypeBinary
	}
	var printable int
	for _, c := range sample {
		if (c >= 0x20 && c < 0x7f) || c == '\t' || c == '\r' || c == '\n' {
			printable++
		}
	}
	if 100*printable >= 85*len(sample) {
		return FileTypeText
	}
	return FileTypeBinary
}
