// Package lz77 finds back-references in a sliding window, producing the
// literal and length/distance token stream consumed by the DEFLATE encoder.
package lz77

import "fmt"

const (
	// MinMatch is the shortest back-reference DEFLATE can express
	MinMatch = 3
	// MaxMatch is the longest back-reference DEFLATE can express
	MaxMatch = 258
	// MaxWindowSize is the largest distance DEFLATE can express
	MaxWindowSize = 32768

	numBuckets = 65536
	hashBytes  = 6
)

// Token is either a literal byte (Length == 0) or a back-reference of
// Length bytes starting Distance bytes before the current position.
type Token struct {
	Length   uint16
	Distance uint16
	Literal  byte
}

// IsLiteral reports whether the token is a literal byte
func (t Token) IsLiteral() bool {
	return t.Length == 0
}

func (t Token) String() string {
	if t.IsLiteral() {
		return fmt.Sprintf("lit(%d)", t.Literal)
	}
	return fmt.Sprintf("ref(%d,%d)", t.Length, t.Distance)
}

// Matcher is a hash-bucketed match finder. Each bucket is a chain of
// earlier positions whose next bytes hash to the same value.
type Matcher struct {
	windowSize     int
	maxChainLength int

	head []int32 // most recent position per bucket, -1 if empty
	prev []int32 // previous position in the same bucket, indexed by pos % windowSize
}

// NewMatcher creates a matcher. windowSize must be a power of two no larger
// than 32768. maxChainLength bounds how many bucket entries are compared per
// position; 0 scans the whole window.
func NewMatcher(windowSize, maxChainLength int) (*Matcher, error) {
	if windowSize < 2 || windowSize > MaxWindowSize || windowSize&(windowSize-1) != 0 {
		return nil, fmt.Errorf("lz77: invalid window size %d (must be a power of two in [2, %d])", windowSize, MaxWindowSize)
	}
	if maxChainLength < 0 {
		return nil, fmt.Errorf("lz77: invalid chain length %d", maxChainLength)
	}
	m := &Matcher{
		windowSize:     windowSize,
		maxChainLength: maxChainLength,
		head:           make([]int32, numBuckets),
		prev:           make([]int32, windowSize),
	}
	m.Reset()
	return m, nil
}

// Reset forgets all inserted positions
func (m *Matcher) Reset() {
	for i := range m.head {
		m.head[i] = -1
	}
	for i := range m.prev {
		m.prev[i] = -1
	}
}

// hash mixes up to six bytes starting at pos
func hash(data []byte, pos int) int {
	end := pos + hashBytes
	if end > len(data) {
		end = len(data)
	}
	h := uint32(0)
	for i := pos; i < end; i++ {
		h = h*0x2f + uint32(data[i])
		h ^= h >> 11
	}
	return int(h & (numBuckets - 1))
}

func (m *Matcher) insert(data []byte, pos int) {
	h := hash(data, pos)
	m.prev[pos&(m.windowSize-1)] = m.head[h]
	m.head[h] = int32(pos)
}

// longestMatch scans the bucket of pos for the longest match not reaching past end
func (m *Matcher) longestMatch(data []byte, pos, end int) (length, distance int) {
	maxLen := end - pos
	if maxLen > MaxMatch {
		maxLen = MaxMatch
	}
	if maxLen < MinMatch {
		return 0, 0
	}

	limit := pos - m.windowSize
	chain := 0
	last := pos
	for cand := int(m.head[hash(data, pos)]); cand >= 0; cand = int(m.prev[cand&(m.windowSize-1)]) {
		// chain entries must strictly decrease; a larger value is a slot
		// overwritten by a newer position
		if cand >= last || cand < limit {
			break
		}
		last = cand
		if m.maxChainLength > 0 {
			chain++
			if chain > m.maxChainLength {
				break
			}
		}

		// the candidate may overlap the current position; data holds the
		// repeated bytes already, which is exactly what the decoder rebuilds
		n := 0
		for n < maxLen && data[cand+n] == data[pos+n] {
			n++
		}
		if n > length {
			length, distance = n, pos-cand
			if n == maxLen {
				break
			}
		}
	}
	if length < MinMatch {
		return 0, 0
	}
	return length, distance
}

// Encode appends the tokens describing data[start:end] to tokens. Matches
// may reference any byte of data before the current position inside the
// window, including bytes inserted by earlier calls.
func (m *Matcher) Encode(data []byte, start, end int, tokens []Token) []Token {
	pos := start
	for pos < end {
		length, distance := m.longestMatch(data, pos, end)
		m.insert(data, pos)
		if length == 0 {
			tokens = append(tokens, Token{Literal: data[pos]})
			pos++
			continue
		}
		tokens = append(tokens, Token{Length: uint16(length), Distance: uint16(distance)})
		for i := 1; i < length; i++ {
			m.insert(data, pos+i)
		}
		pos += length
	}
	return tokens
}

// Literals appends one literal token per byte of data[start:end]
func Literals(data []byte, start, end int, tokens []Token) []Token {
	for _, b := range data[start:end] {
		tokens = append(tokens, Token{Literal: b})
	}
	return tokens
}
