// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"encoding/binary"

	"github.com/parososi/pp/internal/errors"
)

// Header is the parsed fixed header of a PP container. All multi-byte fields
// are little-endian on the wire.
//
// Two layouts exist. The legacy layout (version ≤ 3) is 16 bytes and ends
// with the checksum. The current layout (version 4) is 20 bytes: the first
// 14 bytes match the legacy layout, followed by the mode byte, a reserved
// byte, the relocated checksum, and a reserved u16.
type Header struct {
	Version          uint8
	VersionMinor     uint8
	UncompressedSize uint32
	CompressedSize   uint32 // Bytes of token stream, including padding
	Level            uint8  // 1..9
	Type             FileType
	Mode             Mode // Version 4 only; zero otherwise
	Checksum         uint16
}

const (
	hdrSizeLegacy  = 16
	hdrSizeCurrent = 20
)

// profile describes one generation of the token grammar. The decoder selects
// a profile from the header version and runs a single decode loop
// parameterized by it.
type profile struct {
	version    uint8
	hdrSize    int
	flagBits   uint // 2 for v3/v4, 1 for v2
	offsetBits uint
	lengthBits uint
	offsetBias int // Amount added to the raw offset field
	minMatch   int
	endMarker  bool
}

var (
	profileV4 = profile{
		version:    verCurrent,
		hdrSize:    hdrSizeCurrent,
		flagBits:   2,
		offsetBits: 17,
		lengthBits: 10,
		offsetBias: 1,
		minMatch:   4,
		endMarker:  true,
	}
	profileV3 = profile{
		version:    verLegacy,
		hdrSize:    hdrSizeLegacy,
		flagBits:   2,
		offsetBits: 16,
		lengthBits: 9,
		offsetBias: 1,
		minMatch:   3,
		endMarker:  true,
	}
	profileV2 = profile{
		version:    verVeryOld,
		hdrSize:    hdrSizeLegacy,
		flagBits:   1,
		offsetBits: 16,
		lengthBits: 8,
		offsetBias: 0,
		minMatch:   3,
		endMarker:  false,
	}
)

// Token stream flags for the two-bit grammar (v3 and v4). The flag 0x1 is
// reserved and always rejected.
const (
	flagEnd      = 0x0
	flagReserved = 0x1
	flagLiterals = 0x2
	flagMatch    = 0x3
)

// stripEnvelope removes a leading envelope byte if one is present. A raw
// container begins with the magic byte 0x50, so the 0x00 prefix is
// unambiguous. Enciphered envelopes are rejected; the cipher belongs to an
// external collaborator.
func stripEnvelope(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, errorf(errors.TruncatedHeader, "empty container")
	}
	switch buf[0] {
	case EnvelopeRaw:
		return buf[1:], nil
	case EnvelopeEnciphered:
		return nil, ErrEnciphered
	default:
		return buf, nil
	}
}

// parseHeader reads the fixed header and returns it along with the grammar
// profile implied by its version.
func parseHeader(buf []byte) (hdr Header, prof profile, err error) {
	if len(buf) < 3 {
		return hdr, prof, errorf(errors.TruncatedHeader, "container too short for header")
	}
	if binary.LittleEndian.Uint16(buf[0:]) != hdrMagic {
		return hdr, prof, errorf(errors.BadMagic, "not a PP container")
	}
	switch buf[2] {
	case verCurrent:
		prof = profileV4
	case verLegacy:
		prof = profileV3
	case verVeryOld:
		prof = profileV2
	default:
		return hdr, prof, errorf(errors.UnsupportedVersion, "unsupported version: %d", buf[2])
	}
	if len(buf) < prof.hdrSize {
		return hdr, prof, errorf(errors.TruncatedHeader, "container too short for version %d header", prof.version)
	}

	hdr.Version = buf[2]
	hdr.VersionMinor = buf[3]
	hdr.UncompressedSize = binary.LittleEndian.Uint32(buf[4:])
	hdr.CompressedSize = binary.LittleEndian.Uint32(buf[8:])
	hdr.Level = buf[12]
	hdr.Type = FileType(buf[13])
	if prof.version == verCurrent {
		hdr.Mode = Mode(buf[14])
		hdr.Checksum = binary.LittleEndian.Uint16(buf[16:])
	} else {
		hdr.Checksum = binary.LittleEndian.Uint16(buf[14:])
	}
	return hdr, prof, nil
}

// appendHeader appends the current-generation 20-byte header.
func appendHeader(buf []byte, hdr Header) []byte {
	var b [hdrSizeCurrent]byte
	binary.LittleEndian.PutUint16(b[0:], hdrMagic)
	b[2] = hdr.Version
	b[3] = hdr.VersionMinor
	binary.LittleEndian.PutUint32(b[4:], hdr.UncompressedSize)
	binary.LittleEndian.PutUint32(b[8:], hdr.CompressedSize)
	b[12] = hdr.Level
	b[13] = byte(hdr.Type)
	b[14] = byte(hdr.Mode)
	b[15] = 0 // Reserved
	binary.LittleEndian.PutUint16(b[16:], hdr.Checksum)
	b[18], b[19] = 0, 0 // Reserved
	return append(buf, b[:]...)
}

// Stat parses the header of a container without decoding it. It accepts the
// same inputs as Decompress, including a raw envelope prefix.
func Stat(input []byte) (*Header, error) {
	buf, err := stripEnvelope(input)
	if err != nil {
		return nil, err
	}
	hdr, _, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	return &hdr, nil
}
