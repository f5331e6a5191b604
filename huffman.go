// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

import (
	"container/heap"

	"github.com/parososi/pp/internal/errors"
)

// maxTreeDepth bounds the depth of every codeword. Construction and
// deserialization both refuse deeper trees, so iterative traversals can use
// a fixed-size stack.
const maxTreeDepth = 32

// maxTreeNodes is the node count of a full tree over the byte alphabet.
const maxTreeNodes = 2*256 - 1

type huffmanNode struct {
	sym   byte
	leaf  bool
	left  *huffmanNode
	right *huffmanNode
}

// huffmanCode holds one codeword with its branch bits pre-reversed: bit 0 is
// the root-most branch, so emitting it through the LSB-first bitWriter plays
// the bits back in root-to-leaf order.
type huffmanCode struct {
	bits  uint32
	nbits uint8
}

type huffmanTree struct {
	root  *huffmanNode
	codes [256]huffmanCode
}

// countFrequencies builds the occurrence table over the full input,
// reporting progress once per MiB.
func countFrequencies(buf []byte, pt *progressTracker) [256]int64 {
	var freqs [256]int64
	for i := 0; i < len(buf); i += 1 << 20 {
		end := i + 1<<20
		if end > len(buf) {
			end = len(buf)
		}
		for _, c := range buf[i:end] {
			freqs[c]++
		}
		pt.update(end)
	}
	pt.done()
	return freqs
}

// heapItem carries a node through construction. Ties on frequency are broken
// by insertion order; ties do not affect correctness because the decoder
// reconstructs codes from the serialized tree, not from length tables.
type heapItem struct {
	freq  int64
	order int
	node  *huffmanNode
}

type nodeHeap []heapItem

func (h nodeHeap) Len() int      { return len(h) }
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].order < h[j].order
}
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// buildHuffmanTree constructs the literal tree from a frequency table and
// assigns codes. At least one symbol must have a non-zero frequency.
//
// A one-symbol alphabet yields a root with the leaf duplicated on both
// branches so that the serialized pre-order form stays self-delimiting; the
// symbol's code is the single bit 0.
func buildHuffmanTree(freqs [256]int64) (*huffmanTree, error) {
	var h nodeHeap
	order := 0
	for sym, f := range freqs {
		if f == 0 {
			continue
		}
		h = append(h, heapItem{freq: f, order: order, node: &huffmanNode{sym: byte(sym), leaf: true}})
		order++
	}
	if len(h) == 0 {
		return nil, errorf(errors.InvalidInput, "no symbols to encode")
	}
	heap.Init(&h)

	if len(h) == 1 {
		leaf := h[0].node
		twin := &huffmanNode{sym: leaf.sym, leaf: true}
		t := &huffmanTree{root: &huffmanNode{left: leaf, right: twin}}
		if err := t.assignCodes(); err != nil {
			return nil, err
		}
		return t, nil
	}

	for h.Len() > 1 {
		a := heap.Pop(&h).(heapItem)
		b := heap.Pop(&h).(heapItem)
		heap.Push(&h, heapItem{
			freq:  a.freq + b.freq,
			order: order,
			node:  &huffmanNode{left: a.node, right: b.node},
		})
		order++
	}
	t := &huffmanTree{root: h[0].node}
	if err := t.assignCodes(); err != nil {
		return nil, err
	}
	return t, nil
}

// assignCodes walks the tree with an explicit stack, assigning 0 to left
// branches and 1 to right branches. A leaf deeper than maxTreeDepth aborts
// the encode with InternalLimit.
func (t *huffmanTree) assignCodes() error {
	type frame struct {
		node  *huffmanNode
		bits  uint32
		depth uint8
	}
	stack := make([]frame, 0, maxTreeDepth+1)
	stack = append(stack, frame{node: t.root})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node.leaf {
			if t.codes[f.node.sym].nbits == 0 {
				t.codes[f.node.sym] = huffmanCode{bits: f.bits, nbits: f.depth}
			}
			continue
		}
		if f.depth >= maxTreeDepth {
			return errorf(errors.InternalLimit, "huffman code exceeds %d bits", maxTreeDepth)
		}
		stack = append(stack,
			frame{node: f.node.right, bits: f.bits | 1<<f.depth, depth: f.depth + 1},
			frame{node: f.node.left, bits: f.bits, depth: f.depth + 1},
		)
	}
	return nil
}

// marshal serializes the tree into its canonical pre-order bit stream:
// a 1 bit followed by the 8 symbol bits for a leaf, or a 0 bit followed by
// the left then right subtrees for an internal node. The blob packs
// MSB-first, unlike the token stream.
func (t *huffmanTree) marshal() []byte {
	var bw bitWriterBE
	stack := make([]*huffmanNode, 0, maxTreeDepth+1)
	stack = append(stack, t.root)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.leaf {
			bw.WriteBits(1, 1)
			bw.WriteBits(uint64(n.sym), 8)
			continue
		}
		bw.WriteBits(0, 1)
		stack = append(stack, n.right, n.left)
	}
	return bw.Bytes()
}

// unmarshalHuffmanTree rebuilds a tree from its serialized blob. It panics
// with MalformedTree on truncated blobs, trees deeper than maxTreeDepth, or
// blobs describing more nodes than the byte alphabet permits.
func unmarshalHuffmanTree(blob []byte) *huffmanTree {
	br := bitReaderBE{buf: blob}

	// Each pending entry is the address of a child pointer awaiting its
	// subtree, tagged with the depth that subtree's root will sit at.
	// Pre-order fills the left child before the right.
	type slot struct {
		node  **huffmanNode
		depth int
	}
	var root *huffmanNode
	stack := make([]slot, 0, maxTreeDepth+2)
	stack = append(stack, slot{node: &root})
	numNodes := 0

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if numNodes++; numNodes > maxTreeNodes {
			panicf(errors.MalformedTree, "tree has too many nodes")
		}
		if s.depth > maxTreeDepth {
			panicf(errors.MalformedTree, "tree exceeds depth %d", maxTreeDepth)
		}

		if br.ReadBit() == 1 {
			*s.node = &huffmanNode{sym: byte(br.ReadBits(8)), leaf: true}
			continue
		}
		n := new(huffmanNode)
		*s.node = n
		stack = append(stack,
			slot{node: &n.right, depth: s.depth + 1},
			slot{node: &n.left, depth: s.depth + 1},
		)
	}
	return &huffmanTree{root: root}
}

// decodeSymbol walks the tree one bit at a time from the root. The
// degenerate single-leaf root still consumes one bit per symbol, matching
// the encoder's one-bit code.
func decodeSymbol(root *huffmanNode, br *bitReader) byte {
	if root.leaf {
		br.ReadBits(1)
		return root.sym
	}
	n := root
	for !n.leaf {
		if br.ReadBits(1) == 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.sym
}
