// Package huffman builds canonical Huffman codes from code lengths (the
// decoding side of RFC 1951 section 3.2.2) and optimal length-limited code
// lengths from symbol frequencies (the encoding side) using package-merge.
package huffman

import (
	"errors"
	"fmt"
)

var (
	// ErrOversubscribed is returned when the code lengths describe more codes
	// than fit in a prefix-free code
	ErrOversubscribed = errors.New("huffman: over-subscribed code lengths")

	// ErrInvalidLength is returned for a negative length or one above the limit
	ErrInvalidLength = errors.New("huffman: invalid code length")

	// ErrTooManySymbols is returned when maxBitLen cannot hold all present symbols
	ErrTooManySymbols = errors.New("huffman: too many symbols for maximum code length")

	// ErrInvalidCode is returned when decoding walks into an unused code
	ErrInvalidCode = errors.New("huffman: invalid code")
)

// unfilled marks a decode table slot no code reaches
const unfilled = -1

// Tree is a canonical Huffman code plus a two-way decode table.
//
// tree2d holds two entries (bit 0 and bit 1) per internal node. An entry
// below numCodes is a decoded symbol; an entry at or above numCodes is the
// index of the next node plus numCodes.
type Tree struct {
	lengths   []int
	codes     []uint32
	tree2d    []int
	numCodes  int
	maxBitLen int
}

// FromLengths builds the canonical code for the given code lengths.
// A length of zero means the symbol is unused.
func FromLengths(lengths []int, maxBitLen int) (*Tree, error) {
	n := len(lengths)
	t := &Tree{
		lengths:   append([]int(nil), lengths...),
		codes:     make([]uint32, n),
		numCodes:  n,
		maxBitLen: maxBitLen,
	}

	blCount := make([]int, maxBitLen+1)
	for sym, l := range lengths {
		if l < 0 || l > maxBitLen {
			return nil, fmt.Errorf("%w: symbol %d has length %d (max %d)", ErrInvalidLength, sym, l, maxBitLen)
		}
		blCount[l]++
	}
	blCount[0] = 0

	nextCode := make([]uint32, maxBitLen+1)
	for bits := 1; bits <= maxBitLen; bits++ {
		nextCode[bits] = (nextCode[bits-1] + uint32(blCount[bits-1])) << 1
	}
	for sym, l := range lengths {
		if l != 0 {
			t.codes[sym] = nextCode[l]
			nextCode[l]++
		}
	}

	if err := t.buildTable(); err != nil {
		return nil, err
	}
	return t, nil
}

// buildTable walks every code from its most significant bit, allocating
// internal nodes on demand.
func (t *Tree) buildTable() error {
	n := t.numCodes
	t.tree2d = make([]int, 2*n)
	for i := range t.tree2d {
		t.tree2d[i] = unfilled
	}

	nodeFilled := 0 // last allocated node; node 0 is the root
	for sym := 0; sym < n; sym++ {
		l := t.lengths[sym]
		pos := 0
		for i := 0; i < l; i++ {
			bit := int(t.codes[sym]>>uint(l-i-1)) & 1
			slot := 2*pos + bit
			if slot >= len(t.tree2d) {
				return fmt.Errorf("%w: symbol %d", ErrOversubscribed, sym)
			}
			entry := t.tree2d[slot]
			switch {
			case entry == unfilled:
				if i+1 == l {
					t.tree2d[slot] = sym
					pos = 0
				} else {
					nodeFilled++
					t.tree2d[slot] = nodeFilled + n
					pos = nodeFilled
				}
			case entry < n:
				// a shorter code already ends here
				return fmt.Errorf("%w: symbol %d", ErrOversubscribed, sym)
			default:
				if i+1 == l {
					return fmt.Errorf("%w: symbol %d", ErrOversubscribed, sym)
				}
				pos = entry - n
			}
		}
	}
	return nil
}

// Step advances the decoder one bit from node pos. When a full code has been
// read, done is true, symbol holds the decoded symbol and next is the root.
func (t *Tree) Step(pos int, bit uint) (next int, symbol int, done bool, err error) {
	slot := 2*pos + int(bit&1)
	if slot >= len(t.tree2d) {
		return 0, 0, false, ErrInvalidCode
	}
	entry := t.tree2d[slot]
	switch {
	case entry == unfilled:
		return 0, 0, false, ErrInvalidCode
	case entry < t.numCodes:
		return 0, entry, true, nil
	default:
		return entry - t.numCodes, 0, false, nil
	}
}

// Code returns the canonical code of sym (to be sent most significant bit first)
func (t *Tree) Code(sym int) uint32 {
	return t.codes[sym]
}

// Length returns the code length of sym, zero if unused
func (t *Tree) Length(sym int) int {
	return t.lengths[sym]
}

// Lengths returns a copy of all code lengths
func (t *Tree) Lengths() []int {
	return append([]int(nil), t.lengths...)
}

// NumCodes returns the alphabet size
func (t *Tree) NumCodes() int {
	return t.numCodes
}

// MaxBitLen returns the length limit the tree was built with
func (t *Tree) MaxBitLen() int {
	return t.maxBitLen
}
