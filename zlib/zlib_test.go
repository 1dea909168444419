package zlib

import (
	"bytes"
	"errors"
	"io"
	"testing"

	kzlib "github.com/klauspost/compress/zlib"

	"github.com/cocosip/go-png-codec/deflate"
)

func TestCompressDecompress(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("x"),
		bytes.Repeat([]byte("zlib envelope "), 5000),
	}
	params := []*deflate.Parameters{
		nil,
		deflate.DefaultParameters().WithBlockType(deflate.BlockStored),
		deflate.DefaultParameters().WithBlockType(deflate.BlockFixed),
	}

	for i, input := range inputs {
		for j, p := range params {
			compressed, err := Compress(input, p)
			if err != nil {
				t.Fatalf("input %d params %d: Compress failed: %v", i, j, err)
			}
			if compressed[0] != 0x78 || compressed[1] != 0x01 {
				t.Errorf("header = % x, want 78 01", compressed[:2])
			}

			decoded, err := Decompress(compressed, nil)
			if err != nil {
				t.Fatalf("input %d params %d: Decompress failed: %v", i, j, err)
			}
			if !bytes.Equal(decoded, input) {
				t.Errorf("input %d params %d: round trip mismatch", i, j)
			}

			// the same stream must be readable by an independent implementation
			r, err := kzlib.NewReader(bytes.NewReader(compressed))
			if err != nil {
				t.Fatalf("zlib.NewReader: %v", err)
			}
			other, err := io.ReadAll(r)
			r.Close()
			if err != nil {
				t.Fatalf("input %d params %d: klauspost zlib read failed: %v", i, j, err)
			}
			if !bytes.Equal(other, input) {
				t.Errorf("input %d params %d: klauspost zlib decoded a different payload", i, j)
			}
		}
	}
}

func TestDecompressForeignStream(t *testing.T) {
	input := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, 10000)
	for _, level := range []int{kzlib.NoCompression, kzlib.BestSpeed, kzlib.DefaultCompression, kzlib.BestCompression} {
		var buf bytes.Buffer
		w, err := kzlib.NewWriterLevel(&buf, level)
		if err != nil {
			t.Fatalf("NewWriterLevel(%d): %v", level, err)
		}
		w.Write(input)
		w.Close()

		decoded, err := Decompress(buf.Bytes(), nil)
		if err != nil {
			t.Fatalf("level %d: Decompress failed: %v", level, err)
		}
		if !bytes.Equal(decoded, input) {
			t.Errorf("level %d: decoded %d bytes, want %d", level, len(decoded), len(input))
		}
	}
}

func TestDecompressErrors(t *testing.T) {
	valid, err := Compress([]byte("checksum me"), nil)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	badAdler := append([]byte(nil), valid...)
	badAdler[len(badAdler)-1] ^= 0xFF

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"one byte", []byte{0x78}, ErrTooSmall},
		{"header check", []byte{0x78, 0x02, 0, 0, 0, 0}, ErrHeaderCheck},
		{"method 7", []byte{0x77, 0x09, 0, 0, 0, 0}, ErrUnsupportedMethod},
		{"window 64K", []byte{0x88, 0x1C, 0, 0, 0, 0}, ErrUnsupportedMethod},
		{"preset dictionary", []byte{0x78, 0xBB, 0, 0, 0, 0}, ErrPresetDictionary},
		{"adler32 mismatch", badAdler, ErrAdler32Mismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.data, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decompress(% x) error = %v, want %v", tt.data, err, tt.want)
			}
		})
	}

	out, err := Decompress(badAdler, &DecompressOptions{IgnoreAdler32: true})
	if err != nil {
		t.Fatalf("Decompress with IgnoreAdler32: %v", err)
	}
	if string(out) != "checksum me" {
		t.Errorf("Decompress with IgnoreAdler32 = %q", out)
	}
}
