package huffman

import (
	"fmt"
	"sort"
)

// coin is a node in the package-merge arena. Leaf coins carry a symbol;
// package coins reference the two coins they were merged from.
type coin struct {
	weight      uint64
	symbol      int // -1 for packages
	left, right int32
}

// FromFrequencies builds a length-limited optimal code for the given symbol
// frequencies. No code is longer than maxBitLen.
func FromFrequencies(freq []int, maxBitLen int) (*Tree, error) {
	lengths, err := LengthsFromFrequencies(freq, maxBitLen)
	if err != nil {
		return nil, err
	}
	return FromLengths(lengths, maxBitLen)
}

// LengthsFromFrequencies computes code lengths with the package-merge
// algorithm.
//
// Every present symbol starts as a coin weighted by its frequency. Each row
// pairs the coins of the previous row into packages and, except in the last
// row, adds a fresh leaf coin per symbol. The length of a symbol is the
// number of times it occurs in the numPresent-1 lightest coins of the final
// row.
func LengthsFromFrequencies(freq []int, maxBitLen int) ([]int, error) {
	n := len(freq)
	lengths := make([]int, n)

	present := make([]int, 0, n)
	for sym, f := range freq {
		if f < 0 {
			return nil, fmt.Errorf("huffman: negative frequency for symbol %d", sym)
		}
		if f > 0 {
			present = append(present, sym)
		}
	}

	switch len(present) {
	case 0:
		// Still emit a complete two-code tree so decoders accept it.
		for i := 0; i < n && i < 2; i++ {
			lengths[i] = 1
		}
		return lengths, nil
	case 1:
		lengths[present[0]] = 1
		if present[0] == 0 {
			if n > 1 {
				lengths[1] = 1
			}
		} else {
			lengths[0] = 1
		}
		return lengths, nil
	}

	if maxBitLen < 1 || maxBitLen < 63 && uint64(1)<<uint(maxBitLen) < uint64(len(present)) {
		return nil, fmt.Errorf("%w: %d symbols, max length %d", ErrTooManySymbols, len(present), maxBitLen)
	}

	arena := make([]coin, 0, len(present)*maxBitLen*2)
	leaves := make([]int32, len(present))
	for i, sym := range present {
		arena = append(arena, coin{weight: uint64(freq[sym]), symbol: sym, left: -1, right: -1})
		leaves[i] = int32(len(arena) - 1)
	}
	byWeight := func(row []int32) {
		sort.SliceStable(row, func(i, j int) bool {
			return arena[row[i]].weight < arena[row[j]].weight
		})
	}
	byWeight(leaves)

	row := append([]int32(nil), leaves...)
	for j := 1; j <= maxBitLen; j++ {
		next := make([]int32, 0, len(row)/2+len(leaves))
		for i := 0; i+1 < len(row); i += 2 {
			a, b := row[i], row[i+1]
			arena = append(arena, coin{
				weight: arena[a].weight + arena[b].weight,
				symbol: -1,
				left:   a,
				right:  b,
			})
			next = append(next, int32(len(arena)-1))
		}
		if j < maxBitLen {
			next = append(next, leaves...)
			byWeight(next)
		}
		row = next
	}

	keep := len(present) - 1
	if keep > len(row) {
		keep = len(row)
	}
	stack := make([]int32, 0, 2*maxBitLen)
	for _, c := range row[:keep] {
		stack = append(stack[:0], c)
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node := &arena[top]
			if node.symbol >= 0 {
				lengths[node.symbol]++
				continue
			}
			stack = append(stack, node.left, node.right)
		}
	}
	return lengths, nil
}
