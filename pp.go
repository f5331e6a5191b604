// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package pp implements the PP lossless compressed data format.
//
// PP is a self-contained container format combining an LZ77-style dictionary
// compressor with a Huffman coder for literal bytes. A container is a framed
// artifact with three concatenated parts: a fixed little-endian header, a
// canonically serialized Huffman tree, and a bit-packed token stream of
// literal runs and back-references.
//
// Compression stack:
//
//	Hash-chain match search  (LZ77, 128 KiB window)
//	Lazy / optimal parsing   (mode dependent)
//	Huffman coding           (literal bytes only)
//	Token stream packing     (LSB-first bit order)
//
// Three generations of the format exist. Decompress reads all of them;
// Compress always produces the current generation (version 4). The formats
// differ in header layout, token flag width, and back-reference field widths.
//
// The codec operates on whole in-memory buffers of at most 1 GiB. It is
// single-threaded and synchronous; the only interaction with a surrounding
// scheduler is the optional progress callback.
package pp

import (
	"fmt"

	"github.com/parososi/pp/internal/errors"
)

const (
	// hdrMagic begins every PP container ("PP" little-endian).
	hdrMagic = 0x5050

	// Version numbers of the supported container generations.
	verCurrent   = 4
	verLegacy    = 3
	verVeryOld   = 2
	verMinorZero = 0

	// MaxInputSize bounds both the encoder input and the decoded size
	// declared by a container header.
	MaxInputSize = 1 << 30
)

// Envelope prefix bytes. An enveloped artifact carries a one-byte prefix
// ahead of the container proper. The enciphered form is owned by an external
// collaborator; this package only recognizes and rejects it.
const (
	EnvelopeRaw        = 0x00
	EnvelopeEnciphered = 0x01
)

// Mode selects the match-search strategy of the current-generation encoder.
// The mode is chosen from the compression level and detected file type, and
// is recorded in the container header.
type Mode uint8

const (
	ModeFast     Mode = 1
	ModeBalanced Mode = 2
	ModeWeb      Mode = 3
	ModeUltra    Mode = 4
)

func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeBalanced:
		return "balanced"
	case ModeWeb:
		return "web"
	case ModeUltra:
		return "ultra"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// modeForLevel maps a compression level and sniffed file type to a Mode.
func modeForLevel(level int, ft FileType) Mode {
	switch {
	case level >= 9:
		return ModeUltra
	case level <= 2:
		return ModeFast
	case ft == FileTypeText:
		return ModeWeb
	default:
		return ModeBalanced
	}
}

// Kind identifies the failure class of an error returned by this package.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindBadMagic
	KindUnsupportedVersion
	KindTruncatedHeader
	KindInvalidSize
	KindMalformedTree
	KindBadToken
	KindOverrun
	KindChecksumMismatch
	KindInternalLimit
)

// ErrorKind reports the failure class of err. Errors not raised by this
// package report KindUnknown.
func ErrorKind(err error) Kind {
	if e, ok := err.(errors.Error); ok {
		return Kind(e.Code)
	}
	return KindUnknown
}

func errorf(code int, format string, args ...interface{}) error {
	return errors.Error{Code: code, Pkg: "pp", Msg: fmt.Sprintf(format, args...)}
}

func panicf(code int, format string, args ...interface{}) {
	panic(errorf(code, format, args...))
}

// ErrEnciphered is returned by Decompress when given an artifact whose
// envelope byte marks it as enciphered. Stripping the cipher is the
// responsibility of the caller.
var ErrEnciphered error = errors.Error{
	Code: errors.UnsupportedVersion,
	Pkg:  "pp",
	Msg:  "enciphered envelope requires external decryption",
}

// Stage identifies the phase a progress callback is reporting on.
type Stage int

const (
	StageCount  Stage = iota // Frequency counting over the input
	StageIndex               // Hash-chain index construction
	StageEncode              // Token stream emission
	StageDecode              // Token stream replay
)

func (s Stage) String() string {
	switch s {
	case StageCount:
		return "count"
	case StageIndex:
		return "index"
	case StageEncode:
		return "encode"
	case StageDecode:
		return "decode"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ProgressFunc receives progress events at well-defined points of an encode
// or decode. The percent is in [0,100]. The callback must return quickly and
// must not mutate codec state; it is never invoked with an error.
type ProgressFunc func(stage Stage, pct float64, msg string)

// progressTracker throttles callbacks to fixed byte strides per stage.
type progressTracker struct {
	fn     ProgressFunc
	stage  Stage
	total  int
	stride int
	next   int
}

func newProgressTracker(fn ProgressFunc, stage Stage, total, stride int) *progressTracker {
	return &progressTracker{fn: fn, stage: stage, total: total, stride: stride, next: stride}
}

func (pt *progressTracker) update(pos int) {
	if pt == nil || pt.fn == nil || pos < pt.next {
		return
	}
	pt.next = pos + pt.stride
	pct := 100 * float64(pos) / float64(pt.total)
	if pct > 100 {
		pct = 100
	}
	pt.fn(pt.stage, pct, pt.stage.String())
}

func (pt *progressTracker) done() {
	if pt == nil || pt.fn == nil {
		return
	}
	pt.fn(pt.stage, 100, pt.stage.String())
}
