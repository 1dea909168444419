package lz77

import (
	"bytes"
	"math/rand"
	"testing"
)

// expand rebuilds the bytes described by tokens, copying references byte by byte
func expand(t *testing.T, prefix []byte, tokens []Token) []byte {
	t.Helper()
	out := append([]byte(nil), prefix...)
	for i, tok := range tokens {
		if tok.IsLiteral() {
			out = append(out, tok.Literal)
			continue
		}
		if tok.Length < MinMatch || tok.Length > MaxMatch {
			t.Fatalf("token %d: length %d out of range", i, tok.Length)
		}
		d := int(tok.Distance)
		if d < 1 || d > len(out) {
			t.Fatalf("token %d: distance %d with %d bytes of history", i, d, len(out))
		}
		for k := 0; k < int(tok.Length); k++ {
			out = append(out, out[len(out)-d])
		}
	}
	return out
}

func TestEncodeOverlappingRun(t *testing.T) {
	m, err := NewMatcher(MaxWindowSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	data := bytes.Repeat([]byte{'a'}, 10)
	tokens := m.Encode(data, 0, len(data), nil)

	if len(tokens) != 2 {
		t.Fatalf("tokens = %v, want literal + one reference", tokens)
	}
	if !tokens[0].IsLiteral() || tokens[0].Literal != 'a' {
		t.Errorf("first token = %v, want lit(97)", tokens[0])
	}
	if tokens[1].Length != 9 || tokens[1].Distance != 1 {
		t.Errorf("second token = %v, want ref(9,1)", tokens[1])
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tests := []struct {
		name   string
		data   []byte
		window int
		chain  int
	}{
		{"text", bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200), MaxWindowSize, 0},
		{"small window", bytes.Repeat([]byte("0123456789abcdef"), 100), 16, 0},
		{"chain limited", bytes.Repeat([]byte("abcabcabd"), 500), 4096, 8},
		{"random", func() []byte {
			b := make([]byte, 5000)
			rng.Read(b)
			return b
		}(), MaxWindowSize, 0},
		{"low entropy", func() []byte {
			b := make([]byte, 20000)
			for i := range b {
				b[i] = byte(rng.Intn(3))
			}
			return b
		}(), 1024, 64},
		{"short", []byte("ab"), MaxWindowSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.window, tt.chain)
			if err != nil {
				t.Fatal(err)
			}
			tokens := m.Encode(tt.data, 0, len(tt.data), nil)
			for i, tok := range tokens {
				if !tok.IsLiteral() && int(tok.Distance) > tt.window {
					t.Fatalf("token %d distance %d exceeds window %d", i, tok.Distance, tt.window)
				}
			}
			if got := expand(t, nil, tokens); !bytes.Equal(got, tt.data) {
				t.Fatalf("expanded data differs from input")
			}
			t.Logf("%d bytes -> %d tokens", len(tt.data), len(tokens))
		})
	}
}

func TestEncodeAcrossBlocks(t *testing.T) {
	data := bytes.Repeat([]byte("block boundary test "), 300)
	m, err := NewMatcher(MaxWindowSize, 0)
	if err != nil {
		t.Fatal(err)
	}

	mid := len(data) / 3
	first := m.Encode(data, 0, mid, nil)
	second := m.Encode(data, mid, len(data), nil)

	prefix := expand(t, nil, first)
	if !bytes.Equal(prefix, data[:mid]) {
		t.Fatal("first block does not reproduce its range")
	}
	if got := expand(t, prefix, second); !bytes.Equal(got, data) {
		t.Fatal("second block does not reproduce its range")
	}
	// the second block should start with a reference into the first
	if second[0].IsLiteral() {
		t.Errorf("second block starts with a literal; history was not kept")
	}
}

func TestNewMatcherValidation(t *testing.T) {
	for _, w := range []int{0, 1, 3, 1000, 65536} {
		if _, err := NewMatcher(w, 0); err == nil {
			t.Errorf("NewMatcher(%d) accepted invalid window", w)
		}
	}
	if _, err := NewMatcher(1024, -1); err == nil {
		t.Error("NewMatcher accepted negative chain length")
	}
}

func TestLiterals(t *testing.T) {
	tokens := Literals([]byte("hello"), 1, 4, nil)
	if len(tokens) != 3 || tokens[0].Literal != 'e' || tokens[2].Literal != 'l' {
		t.Errorf("Literals = %v", tokens)
	}
}
