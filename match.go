// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Current-generation match parameters. All modes share the window, match
// bounds, and hash width; they differ in how much of each hash chain is
// walked and in when a good-enough match stops the search.
const (
	matchWindow = 128 << 10
	minMatch    = 4
	maxMatch    = 1024
	hashBits    = 18
	hashMask    = 1<<hashBits - 1

	// Knuth's multiplicative constant, used by the fast hash.
	hashMul = 2654435761
)

// matchParams is the per-mode tuning of the chain walk.
type matchParams struct {
	chainDepth int
	earlyExit  int  // Stop the walk once a match of this length is found
	lazy       bool // Defer by one position when the next match is better
	optimal    bool // Evaluate a short lookahead and pick the cheapest start
	fastHash   bool // Multiplicative hash instead of the 4-byte mixer
}

func paramsForMode(m Mode) matchParams {
	switch m {
	case ModeFast:
		return matchParams{chainDepth: 16, earlyExit: 32, fastHash: true}
	case ModeBalanced:
		return matchParams{chainDepth: 512, earlyExit: 256, lazy: true}
	case ModeWeb:
		return matchParams{chainDepth: 128, earlyExit: maxMatch, lazy: true}
	default: // ModeUltra
		return matchParams{chainDepth: 1024, earlyExit: maxMatch, optimal: true}
	}
}

// match is a back-reference candidate. A zero length means nothing of at
// least minMatch was found.
type match struct {
	offset int
	length int
}

// matchFinder is a hash-chain index over the input. head maps a bucket to
// the most recent position with that hash; link maps each position to the
// prior position in the same bucket. Both use -1 as the empty sentinel.
// The index is built once per encode and discarded after emission.
type matchFinder struct {
	src    []byte
	head   []int32
	link   []int32
	params matchParams
}

func (mf *matchFinder) hash(i int) uint32 {
	if mf.params.fastHash {
		return binary.LittleEndian.Uint32(mf.src[i:]) * hashMul >> (32 - hashBits)
	}
	return uint32(xxhash.Sum64(mf.src[i:i+4])) & hashMask
}

// newMatchFinder indexes every 4-byte position of src, reporting progress
// once per MiB. Positions are inserted in increasing order, so the chain
// below any position holds only earlier positions.
func newMatchFinder(src []byte, params matchParams, pt *progressTracker) *matchFinder {
	mf := &matchFinder{
		src:    src,
		head:   make([]int32, 1<<hashBits),
		link:   make([]int32, len(src)),
		params: params,
	}
	for i := range mf.head {
		mf.head[i] = -1
	}
	for i := range mf.link {
		mf.link[i] = -1
	}
	for i := 0; i+minMatch <= len(src); i++ {
		h := mf.hash(i)
		mf.link[i] = mf.head[h]
		mf.head[h] = int32(i)
		if i&(1<<20-1) == 0 {
			pt.update(i)
		}
	}
	pt.done()
	return mf
}

// find searches for the longest match starting at p. Because positions were
// indexed in increasing order, the walk enters the chain at link[p], which
// by construction holds only candidates before p.
func (mf *matchFinder) find(p int) match {
	src := mf.src
	if p+minMatch > len(src) {
		return match{}
	}

	maxLen := len(src) - p
	if maxLen > maxMatch {
		maxLen = maxMatch
	}
	want := binary.LittleEndian.Uint32(src[p:])
	limit := p - matchWindow

	var best match
	bestLen := minMatch - 1
	chain := mf.params.chainDepth
	for c := int(mf.link[p]); c >= 0 && c >= limit && chain > 0; c, chain = int(mf.link[c]), chain-1 {
		// A candidate that cannot beat the current best fails the byte at
		// best_len; a candidate that cannot reach min_match fails the
		// 4-byte prefix. Both checks are cheap rejections.
		if p+bestLen < len(src) && src[c+bestLen] != src[p+bestLen] {
			continue
		}
		if binary.LittleEndian.Uint32(src[c:]) != want {
			continue
		}
		l := minMatch
		for l < maxLen && src[c+l] == src[p+l] {
			l++
		}
		if l > bestLen {
			bestLen = l
			best = match{offset: p - c, length: l}
			if l == maxLen || l >= mf.params.earlyExit {
				break
			}
		}
	}
	if best.length < minMatch {
		return match{}
	}
	return best
}
