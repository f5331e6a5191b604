// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"encoding/binary"

	"github.com/parososi/pp/internal/errors"
)

// ReaderConfig configures Decompress.
type ReaderConfig struct {
	// Progress, if non-nil, receives progress events during the decode.
	Progress ProgressFunc

	_ struct{} // Blank field to prevent unkeyed struct literals
}

// Decompress decodes a PP container of any supported generation back into
// the original bytes. The recomputed checksum must equal the header value.
//
// A leading raw-envelope byte 0x00 is stripped transparently; an enciphered
// envelope is rejected with ErrEnciphered.
func Decompress(input []byte, conf *ReaderConfig) (output []byte, err error) {
	defer errors.Recover(&err)

	var progress ProgressFunc
	if conf != nil {
		progress = conf.Progress
	}

	buf, err := stripEnvelope(input)
	if err != nil {
		return nil, err
	}
	hdr, prof, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	if hdr.UncompressedSize == 0 || hdr.UncompressedSize > MaxInputSize {
		return nil, errorf(errors.InvalidSize, "invalid uncompressed size: %d", hdr.UncompressedSize)
	}

	body := buf[prof.hdrSize:]
	if len(body) < 4 {
		return nil, errorf(errors.TruncatedHeader, "container too short for tree size")
	}
	treeSize := binary.LittleEndian.Uint32(body)
	body = body[4:]
	if treeSize == 0 || uint64(treeSize) > uint64(len(body)) {
		return nil, errorf(errors.InvalidSize, "tree size %d overruns container", treeSize)
	}
	tree := unmarshalHuffmanTree(body[:treeSize])
	tokens := body[treeSize:]

	d := decoder{
		out:      make([]byte, hdr.UncompressedSize),
		br:       bitReader{buf: tokens},
		tree:     tree,
		prof:     prof,
		progress: newProgressTracker(progress, StageDecode, int(hdr.UncompressedSize), int(hdr.UncompressedSize)/20+1),
	}
	d.decode()

	if sum := updateChecksum(0, d.out); sum != hdr.Checksum {
		return nil, errorf(errors.ChecksumMismatch, "checksum mismatch: got %#04x, want %#04x", sum, hdr.Checksum)
	}
	return d.out, nil
}

// decoder replays one token stream into the output buffer. The same loop
// serves every generation, parameterized by the grammar profile.
type decoder struct {
	out      []byte
	pos      int
	br       bitReader
	tree     *huffmanTree
	prof     profile
	progress *progressTracker
}

func (d *decoder) decode() {
	if d.prof.flagBits == 1 {
		d.decodeSingleBit()
	} else {
		d.decodeTwoBit()
	}
	if d.pos != len(d.out) {
		panicf(errors.BadToken, "stream ended at %d of %d bytes", d.pos, len(d.out))
	}
	d.progress.done()
}

// decodeTwoBit replays the two-bit-flag grammar (v3 and v4) until the end
// marker.
func (d *decoder) decodeTwoBit() {
	for {
		switch d.br.ReadBits(2) {
		case flagEnd:
			return
		case flagLiterals:
			n := int(d.br.ReadBits(8))
			if n == 0 {
				panicf(errors.BadToken, "empty literal run")
			}
			d.emitLiterals(n)
		case flagMatch:
			offset := int(d.br.ReadBits(d.prof.offsetBits)) + d.prof.offsetBias
			length := int(d.br.ReadBits(d.prof.lengthBits)) + d.prof.minMatch
			d.copyMatch(offset, length)
		default:
			panicf(errors.BadToken, "reserved token flag")
		}
		d.progress.update(d.pos)
	}
}

// decodeSingleBit replays the single-bit-flag grammar (v2). There is no end
// marker; the stream ends when the output buffer is full.
func (d *decoder) decodeSingleBit() {
	for d.pos < len(d.out) {
		if d.br.ReadBits(1) == 1 {
			offset := int(d.br.ReadBits(d.prof.offsetBits)) + d.prof.offsetBias
			length := int(d.br.ReadBits(d.prof.lengthBits)) + d.prof.minMatch
			d.copyMatch(offset, length)
		} else {
			d.emitLiterals(1)
		}
		d.progress.update(d.pos)
	}
}

func (d *decoder) emitLiterals(n int) {
	if n > len(d.out)-d.pos {
		panicf(errors.BadToken, "literal run overflows output")
	}
	for i := 0; i < n; i++ {
		d.out[d.pos] = decodeSymbol(d.tree.root, &d.br)
		d.pos++
	}
}

// copyMatch copies length bytes from offset bytes behind the write cursor.
// The copy is byte-by-byte and forward: back-references with offset less
// than length alias into the bytes being produced, and the forward order is
// what propagates the run pattern.
func (d *decoder) copyMatch(offset, length int) {
	if offset == 0 || offset > d.pos {
		panicf(errors.BadToken, "invalid back-reference offset %d at position %d", offset, d.pos)
	}
	if length > len(d.out)-d.pos {
		panicf(errors.BadToken, "back-reference overflows output")
	}
	src := d.pos - offset
	for i := 0; i < length; i++ {
		d.out[d.pos+i] = d.out[src+i]
	}
	d.pos += length
}
