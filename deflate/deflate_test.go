package deflate

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/flate"
)

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(7))
	random := make([]byte, 70000)
	rng.Read(random)

	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 2000)

	// low entropy bytes with short repeats
	skewed := make([]byte, 100000)
	for i := range skewed {
		skewed[i] = byte(rng.Intn(4) * rng.Intn(3))
	}

	return map[string][]byte{
		"empty":  {},
		"single": {42},
		"short":  []byte("abc"),
		"zeros":  make([]byte, 300000),
		"random": random,
		"text":   text,
		"skewed": skewed,
	}
}

func testParameters() map[string]*Parameters {
	return map[string]*Parameters{
		"stored":           DefaultParameters().WithBlockType(BlockStored),
		"fixed-literals":   DefaultParameters().WithBlockType(BlockFixed).WithLZ77(false),
		"fixed-lz77":       DefaultParameters().WithBlockType(BlockFixed),
		"dynamic-literals": DefaultParameters().WithLZ77(false),
		"dynamic-lz77":     DefaultParameters(),
		"dynamic-window1k": DefaultParameters().WithWindowSize(1024).WithMaxChainLength(0),
		"dynamic-small-blocks": func() *Parameters {
			p := DefaultParameters()
			p.BlockSize = 1000
			return p
		}(),
	}
}

func TestRoundTrip(t *testing.T) {
	for pname, params := range testParameters() {
		for iname, input := range testInputs() {
			t.Run(pname+"/"+iname, func(t *testing.T) {
				compressed, err := Encode(input, params)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				decoded, err := Decode(compressed)
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if !bytes.Equal(decoded, input) {
					t.Fatalf("round trip mismatch: got %d bytes, want %d", len(decoded), len(input))
				}
			})
		}
	}
}

func TestEncodeReadableByFlate(t *testing.T) {
	for pname, params := range testParameters() {
		for iname, input := range testInputs() {
			t.Run(pname+"/"+iname, func(t *testing.T) {
				compressed, err := Encode(input, params)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				r := flate.NewReader(bytes.NewReader(compressed))
				defer r.Close()
				decoded, err := io.ReadAll(r)
				if err != nil {
					t.Fatalf("flate reader failed: %v", err)
				}
				if !bytes.Equal(decoded, input) {
					t.Fatalf("flate decoded %d bytes, want %d", len(decoded), len(input))
				}
			})
		}
	}
}

func TestDecodeFlateOutput(t *testing.T) {
	levels := []int{flate.NoCompression, flate.BestSpeed, flate.DefaultCompression, flate.BestCompression, flate.HuffmanOnly}
	for iname, input := range testInputs() {
		for _, level := range levels {
			var buf bytes.Buffer
			w, err := flate.NewWriter(&buf, level)
			if err != nil {
				t.Fatalf("flate.NewWriter(%d): %v", level, err)
			}
			if _, err := w.Write(input); err != nil {
				t.Fatalf("flate write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("flate close: %v", err)
			}

			// skip streams the flate package cannot read back itself
			own, err := io.ReadAll(flate.NewReader(bytes.NewReader(buf.Bytes())))
			if err != nil || !bytes.Equal(own, input) {
				t.Logf("%s level %d: flate rejects its own output, skipped", iname, level)
				continue
			}

			decoded, err := Decode(buf.Bytes())
			if err != nil {
				t.Fatalf("%s level %d: Decode failed: %v", iname, level, err)
			}
			if !bytes.Equal(decoded, input) {
				t.Fatalf("%s level %d: got %d bytes, want %d", iname, level, len(decoded), len(input))
			}
		}
	}
}

func TestCompressionRatio(t *testing.T) {
	input := make([]byte, 100000)
	compressed, err := Encode(input, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	t.Logf("zeros: %d -> %d bytes", len(input), len(compressed))
	if len(compressed) > 1000 {
		t.Errorf("100000 zero bytes compressed to %d bytes, want < 1000", len(compressed))
	}
}

func TestStoredBlockLayout(t *testing.T) {
	compressed, err := Encode(nil, DefaultParameters().WithBlockType(BlockStored))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{0x01, 0x00, 0x00, 0xFF, 0xFF}
	if !bytes.Equal(compressed, want) {
		t.Errorf("empty stored stream = % x, want % x", compressed, want)
	}

	// 65535 bytes fit one block, 65536 need two
	for size, blocks := range map[int]int{65535: 1, 65536: 2, 200000: 4} {
		compressed, err := Encode(make([]byte, size), DefaultParameters().WithBlockType(BlockStored))
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if want := size + 5*blocks; len(compressed) != want {
			t.Errorf("size %d: stored stream is %d bytes, want %d", size, len(compressed), want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	valid, err := Encode([]byte("hello hello hello hello"), nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty input", nil, ErrUnexpectedEnd},
		{"block type 3", []byte{0x07}, ErrInvalidBlockType},
		{"NLEN mismatch", []byte{0x01, 0x05, 0x00, 0x00, 0x00}, ErrStoredLengthMismatch},
		{"stored truncated", []byte{0x01, 0x05, 0x00, 0xFA, 0xFF, 'a'}, ErrUnexpectedEnd},
		{"dynamic truncated", valid[:len(valid)/2], ErrUnexpectedEnd},
		// fixed block, length 3 distance 1 with no preceding output:
		// final bit, type 01, code 0000001 (symbol 257), distance code 00000
		{"distance too far", []byte{0x03, 0x02, 0x00}, ErrDistanceTooFar},
		// fixed block, symbol 286 is 11000110
		{"length symbol 286", []byte{0x1B, 0x03}, ErrInvalidLengthSymbol},
		// fixed block, symbol 257 then distance code 11110 (30)
		{"distance symbol 30", []byte{0x03, 0x3E}, ErrInvalidDistanceSymbol},
		// dynamic block whose first code length symbol is 16
		{"repeat without previous", dynamicRepeatFirst(), ErrInvalidCodeLengths},
		{"end of block without code", dynamicNoEndOfBlock(), ErrMissingEndOfBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatalf("Decode(% x) succeeded, want %v", tt.data, tt.want)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(% x) error = %v, want %v", tt.data, err, tt.want)
			}
			if !IsFormatError(err) {
				t.Errorf("IsFormatError(%v) = false", err)
			}
		})
	}
}

// dynamicRepeatFirst builds a dynamic block header whose code length code
// gives symbols 16 and 17 one bit each, then starts with a 16.
func dynamicRepeatFirst() []byte {
	var bits []uint32
	put := func(v uint32, n int) {
		for i := 0; i < n; i++ {
			bits = append(bits, (v>>uint(i))&1)
		}
	}
	put(1, 1) // final
	put(2, 2) // dynamic
	put(0, 5) // HLIT 257
	put(0, 5) // HDIST 1
	put(0, 4) // HCLEN 4: lengths for 16, 17, 18, 0
	put(1, 3) // 16
	put(1, 3) // 17
	put(0, 3) // 18
	put(0, 3) // 0
	put(0, 1) // code 0 is symbol 16
	put(0, 2)

	out := make([]byte, (len(bits)+7)/8+2)
	for i, b := range bits {
		out[i/8] |= byte(b) << uint(i%8)
	}
	return out
}

// dynamicNoEndOfBlock builds a dynamic block header that codes literals 0
// and 1 and leaves symbol 256 at length 0.
func dynamicNoEndOfBlock() []byte {
	var bits []uint32
	put := func(v uint32, n int) {
		for i := 0; i < n; i++ {
			bits = append(bits, (v>>uint(i))&1)
		}
	}
	put(1, 1) // final
	put(2, 2) // dynamic
	put(0, 5) // HLIT 257
	put(0, 5) // HDIST 1
	put(1, 4) // HCLEN 5: lengths for 16, 17, 18, 0, 8
	put(0, 3) // 16
	put(0, 3) // 17
	put(1, 3) // 18
	put(0, 3) // 0
	put(1, 3) // 8
	// code 0 is symbol 8, code 1 is symbol 18
	put(0, 1) // literal 0: length 8
	put(0, 1) // literal 1: length 8
	put(1, 1) // 138 zeros
	put(127, 7)
	put(1, 1) // 118 zeros: up to and including the distance length
	put(107, 7)

	out := make([]byte, (len(bits)+7)/8+2)
	for i, b := range bits {
		out[i/8] |= byte(b) << uint(i%8)
	}
	return out
}

func TestDecodeWithSizeBoundsReservation(t *testing.T) {
	input := []byte("a short stream that claims to be enormous")
	compressed, err := Encode(input, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := DecodeWithSize(compressed, 1<<50)
	if err != nil {
		t.Fatalf("DecodeWithSize failed: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("decoded %q", out)
	}
	if limit := len(compressed)*maxExpansion + 64; cap(out) > limit {
		t.Errorf("reserved %d bytes for %d compressed bytes", cap(out), len(compressed))
	}
}

func TestFixedBlockByHand(t *testing.T) {
	// 'a' is fixed code 0x30+0x61 = 0x91 (8 bits), end of block is 0000000 (7 bits)
	compressed, err := Encode([]byte("a"), DefaultParameters().WithBlockType(BlockFixed))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{0x4B, 0x04, 0x00}
	if !bytes.Equal(compressed, want) {
		t.Errorf("fixed stream for \"a\" = % x, want % x", compressed, want)
	}
}

func TestParameters(t *testing.T) {
	p := DefaultParameters()
	if err := p.Validate(); err != nil {
		t.Fatalf("default parameters invalid: %v", err)
	}

	p.SetParameter("blockType", 1)
	p.SetParameter("windowSize", 4096)
	p.SetParameter("custom", "x")
	if p.BlockType != BlockFixed || p.GetParameter("windowSize") != 4096 || p.GetParameter("custom") != "x" {
		t.Errorf("SetParameter did not take effect: %+v", p)
	}

	bad := []*Parameters{
		DefaultParameters().WithBlockType(3),
		DefaultParameters().WithWindowSize(1000),
		DefaultParameters().WithWindowSize(65536),
		DefaultParameters().WithMaxChainLength(-1),
	}
	for _, p := range bad {
		if _, err := Encode([]byte("x"), p); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Encode with %+v: error = %v, want ErrInvalidParameter", p, err)
		}
	}

	// window size is irrelevant without LZ77
	if err := DefaultParameters().WithLZ77(false).WithWindowSize(0).Validate(); err != nil {
		t.Errorf("Validate without LZ77: %v", err)
	}

	for _, s := range []string{"stored", "fixed", "dynamic"} {
		bt, err := ParseBlockType(s)
		if err != nil || bt.String() != s {
			t.Errorf("ParseBlockType(%q) = %v, %v", s, bt, err)
		}
	}
	if _, err := ParseBlockType("huffman"); err == nil {
		t.Error("ParseBlockType(\"huffman\") succeeded")
	}
}

func TestRunLengthEncode(t *testing.T) {
	lengths := []int{8, 8, 8, 8, 8, 8, 8, 8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 0, 3, 3, 3}
	got := runLengthEncode(lengths)

	// expand and compare
	var expanded []int
	for _, s := range got {
		switch s.symbol {
		case 16:
			prev := expanded[len(expanded)-1]
			for i := 0; i < 3+int(s.extra); i++ {
				expanded = append(expanded, prev)
			}
		case 17:
			expanded = append(expanded, make([]int, 3+int(s.extra))...)
		case 18:
			expanded = append(expanded, make([]int, 11+int(s.extra))...)
		default:
			expanded = append(expanded, s.symbol)
		}
	}
	if len(expanded) != len(lengths) {
		t.Fatalf("expanded %d lengths, want %d", len(expanded), len(lengths))
	}
	for i := range lengths {
		if expanded[i] != lengths[i] {
			t.Fatalf("length %d = %d, want %d", i, expanded[i], lengths[i])
		}
	}

	// 8 followed by 16(6) then one more 8; 12 zeros as a single 18
	if got[0].symbol != 8 || got[1].symbol != 16 || got[1].extra != 3 || got[2].symbol != 8 {
		t.Errorf("unexpected run coding of eight 8s: %v", got[:3])
	}
	if got[3].symbol != 18 || got[3].extra != 1 {
		t.Errorf("12 zeros coded as %v, want {18 1}", got[3])
	}
}
