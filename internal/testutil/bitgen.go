// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/parososi/pp/internal"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string.
//
// The BitGen format generates a byte stream from a series of tokens
// describing individual bit-strings. It exists for testing: it lets a human
// script a PP container bit-by-bit, with control over the bit-order and with
// comments encoding authorial intent. This matters for PP in particular
// because a single container mixes both bit-packing orders: the token stream
// packs LSB-first while the Huffman tree blob packs MSB-first.
//
// The format consists of a series of tokens separated by any whitespace.
// The '#' character starts a comment running to the end of the line.
//
// The first valid token must be either "<<<" (little-endian) or ">>>"
// (big-endian). It determines whether bits are packed into each byte
// starting from the least-significant position (little-endian, the PP token
// stream order) or the most-significant position (big-endian, the PP tree
// blob order). This token appears exactly once, at the start.
//
// A standalone "<" or ">" token sets the current bit-parsing mode, which
// alters how subsequent tokens are interpreted. The default mode is
// little-endian.
//
// A token matching "[01]{1,64}" is a bit-string (e.g. 11010). In
// little-endian parsing mode the right-most bits are emitted first; in
// big-endian mode the left-most bits are emitted first.
//
// A token matching "D[0-9]+:[0-9]+" or "H[0-9]+:[0-9a-fA-F]{1,16}" is a
// decimal or hexadecimal value. The first number is the bit-length (0..64);
// the second is the value, which must fit in that many bits. The
// least-significant bits are emitted first in little-endian parsing mode,
// and the opposite in big-endian mode.
//
// A token matching "X:[0-9a-fA-F]+" emits literal bytes. It is affected by
// neither packing nor parsing modes and requires byte alignment.
//
// A "<" or ">" decorator may begin any binary or decimal token, switching
// the parsing mode for that token alone. A "[*][0-9]+" decorator may trail
// any token, repeating it the given number of times.
//
// If the stream does not end byte-aligned, it is padded with 0 bits, which
// matches how both PP bit streams pad their final byte.
//
// Example BitGen file (a version 2 PP container holding "aaa"):
//
//	<<< # PP containers are little-endian byte streams
//
//	X:5050 X:02 X:00           # Magic, version 2.0
//	H32:00000003 H32:00000001  # Uncompressed and compressed sizes
//	X:06 X:07                  # Level 6, filetype text
//	H16:0123                   # Checksum: 3 * 'a'
//	H32:00000003               # Tree size in bytes
//	X:586c20                   # Tree blob (MSB-first packed, given as bytes)
//	0*6                        # Three literals with 1-bit codes; padded
func DecodeBitGen(str string) ([]byte, error) {
	// Tokenize the input string by removing comments and superfluous spaces.
	var toks []string
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		for _, t := range strings.Fields(s) {
			toks = append(toks, t)
		}
	}
	if len(toks) == 0 {
		toks = append(toks, "")
	}

	// Check for bit-packing mode.
	var packMode bool // false is LE, true is BE
	switch toks[0] {
	case "<<<":
		packMode = false
	case ">>>":
		packMode = true
	default:
		return nil, errors.New("testutil: unknown stream bit-packing mode")
	}
	toks = toks[1:]

	var bw bitBuffer
	var parseMode bool // false is LE, true is BE
	for _, t := range toks {
		// Check for local and global bit-parsing mode modifiers.
		pm := parseMode
		if t[0] == '<' || t[0] == '>' {
			pm = bool(t[0] == '>')
			t = t[1:]
			if len(t) == 0 {
				parseMode = pm // This is a global modifier, so remember it
				continue
			}
		}

		// Check for quantifier decorators.
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			tt, tn := t[:i], t[i+1:]
			n, err := strconv.Atoi(tn)
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = tt, n
		}

		switch {
		case reBin.MatchString(t):
			// Handle binary tokens.
			var v uint64
			for _, b := range t {
				v <<= 1
				v |= uint64(b - '0')
			}

			if pm {
				v = internal.ReverseUint64N(v, uint(len(t)))
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			// Handle decimal and hexadecimal tokens.
			i := strings.IndexByte(t, ':')
			tb, tn, tv := t[0], t[1:i], t[i+1:]

			base := 10
			if tb == 'H' {
				base = 16
			}

			n, err1 := strconv.Atoi(tn)
			v, err2 := strconv.ParseUint(tv, base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}

			if pm {
				v = internal.ReverseUint64N(v, uint(n))
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(n))
			}
		case reRaw.MatchString(t):
			// Handle literal byte tokens.
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			b = bytes.Repeat(b, rep)
			if _, err := bw.Write(b); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}

	// Apply packing bit-ordering.
	buf := bw.Bytes()
	if packMode {
		for i, b := range buf {
			buf[i] = internal.ReverseLUT[b]
		}
	}
	return buf, nil
}

// bitBuffer is a minimal LSB-first bit accumulator for DecodeBitGen.
type bitBuffer struct {
	b []byte
	m byte
}

func (b *bitBuffer) Write(buf []byte) (int, error) {
	if b.m != 0x00 {
		return 0, errors.New("testutil: unaligned write")
	}
	b.b = append(b.b, buf...)
	return len(buf), nil
}

func (b *bitBuffer) WriteBits64(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		if b.m == 0x00 {
			b.m = 0x01
			b.b = append(b.b, 0x00)
		}
		if v&(1<<i) != 0 {
			b.b[len(b.b)-1] |= b.m
		}
		b.m <<= 1
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
