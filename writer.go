// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"encoding/binary"

	"github.com/parososi/pp/internal/errors"
)

// WriterConfig configures Compress.
type WriterConfig struct {
	// Level is the compression level in 1..9; zero selects the default
	// level of 6. The level and the detected file type together select the
	// match-search mode.
	Level int

	// Progress, if non-nil, receives progress events during the encode.
	Progress ProgressFunc

	// Envelope prepends the raw-envelope byte 0x00 to the container.
	Envelope bool

	_ struct{} // Blank field to prevent unkeyed struct literals
}

const (
	// DefaultLevel is used when WriterConfig.Level is zero.
	DefaultLevel = 6

	// Literal runs are bounded by the 8-bit run length; FAST mode flushes
	// earlier to keep its token buffer small.
	maxRunFast = 64
	maxRun     = 255

	// Byte stride between progress reports during token emission.
	encodeStride = 4 << 20
)

// Compress encodes input into a current-generation PP container.
//
// It fails with an InvalidInput error if input is empty, exceeds 1 GiB, or
// the level is outside 1..9, and with an InternalLimit error if the literal
// alphabet would need a Huffman code longer than 32 bits.
func Compress(input []byte, conf *WriterConfig) (output []byte, err error) {
	level := DefaultLevel
	var progress ProgressFunc
	var envelope bool
	if conf != nil {
		if conf.Level != 0 {
			level = conf.Level
		}
		progress = conf.Progress
		envelope = conf.Envelope
	}
	switch {
	case len(input) == 0:
		return nil, errorf(errors.InvalidInput, "empty input")
	case len(input) > MaxInputSize:
		return nil, errorf(errors.InvalidInput, "input exceeds %d bytes", MaxInputSize)
	case level < 1 || level > 9:
		return nil, errorf(errors.InvalidInput, "invalid compression level: %d", level)
	}

	ftype := DetectFileType(input)
	mode := modeForLevel(level, ftype)

	freqs := countFrequencies(input, newProgressTracker(progress, StageCount, len(input), 1<<20))
	tree, err := buildHuffmanTree(freqs)
	if err != nil {
		return nil, err
	}
	treeBlob := tree.marshal()

	mf := newMatchFinder(input, paramsForMode(mode), newProgressTracker(progress, StageIndex, len(input), 1<<20))

	enc := encoder{
		src:      input,
		tree:     tree,
		mf:       mf,
		params:   mf.params,
		maxRun:   maxRun,
		progress: newProgressTracker(progress, StageEncode, len(input), encodeStride),
	}
	if mode == ModeFast {
		enc.maxRun = maxRunFast
	}
	tokens := enc.encode()

	hdr := Header{
		Version:          verCurrent,
		VersionMinor:     verMinorZero,
		UncompressedSize: uint32(len(input)),
		CompressedSize:   uint32(len(tokens)),
		Level:            uint8(level),
		Type:             ftype,
		Mode:             mode,
		Checksum:         updateChecksum(0, input),
	}

	out := make([]byte, 0, 1+hdrSizeCurrent+4+len(treeBlob)+len(tokens))
	if envelope {
		out = append(out, EnvelopeRaw)
	}
	out = appendHeader(out, hdr)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(treeBlob)))
	out = append(out, treeBlob...)
	out = append(out, tokens...)
	return out, nil
}

// encoder drives the match finder over the input and emits the token
// stream. All bit state lives here, scoped to one Compress call.
type encoder struct {
	src      []byte
	bw       bitWriter
	tree     *huffmanTree
	mf       *matchFinder
	params   matchParams
	run      []byte
	maxRun   int
	progress *progressTracker
}

func (e *encoder) encode() []byte {
	e.run = make([]byte, 0, e.maxRun)
	src := e.src

	pos := 0
	for pos < len(src) {
		m := e.mf.find(pos)

		switch {
		case e.params.optimal:
			// Optimal-parse lookahead: evaluate the next few start
			// positions and pick the one whose match length best repays
			// the literals skipped to reach it. A skipped byte costs 1,
			// a match costs 4.
			bestK, bestScore := 0, -1
			bestMatch := m
			if m.length >= minMatch {
				bestScore = m.length - 4
			}
			for k := 1; k <= 4 && pos+k < len(src); k++ {
				mk := e.mf.find(pos + k)
				if mk.length < minMatch {
					continue
				}
				if score := mk.length - (k + 4); score > bestScore {
					bestK, bestScore, bestMatch = k, score, mk
				}
			}
			if bestScore < 0 {
				e.emitLiteral(src[pos])
				pos++
				continue
			}
			for i := 0; i < bestK; i++ {
				e.emitLiteral(src[pos+i])
			}
			pos += bestK
			e.emitMatch(bestMatch)
			pos += bestMatch.length

		case m.length >= minMatch:
			if e.params.lazy && pos+1 < len(src) {
				if m2 := e.mf.find(pos + 1); m2.length > m.length+1 {
					e.emitLiteral(src[pos])
					pos++
					continue
				}
			}
			e.emitMatch(m)
			pos += m.length

		default:
			e.emitLiteral(src[pos])
			pos++
		}
		e.progress.update(pos)
	}

	e.flushRun()
	e.bw.WriteBits(flagEnd, 2)
	e.progress.done()
	return e.bw.Flush()
}

func (e *encoder) emitLiteral(c byte) {
	e.run = append(e.run, c)
	if len(e.run) == e.maxRun {
		e.flushRun()
	}
}

// flushRun emits the buffered literals as one literal-run token: the flag,
// an 8-bit length, then each byte's Huffman code.
func (e *encoder) flushRun() {
	if len(e.run) == 0 {
		return
	}
	e.bw.WriteBits(flagLiterals, 2)
	e.bw.WriteBits(uint64(len(e.run)), 8)
	for _, c := range e.run {
		code := e.tree.codes[c]
		e.bw.WriteBits(uint64(code.bits), uint(code.nbits))
	}
	e.run = e.run[:0]
}

func (e *encoder) emitMatch(m match) {
	e.flushRun()
	e.bw.WriteBits(flagMatch, 2)
	e.bw.WriteBits(uint64(m.offset-1), profileV4.offsetBits)
	e.bw.WriteBits(uint64(m.length-minMatch), profileV4.lengthBits)
}
