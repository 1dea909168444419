package checksum

import (
	"bytes"
	"hash/adler32"
	"hash/crc32"
	"math/rand"
	"testing"
)

func TestCRC32KnownValues(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
	}{
		{"", 0x00000000},
		{"a", 0xE8B7BE43},
		{"123456789", 0xCBF43926},
		{"IEND", 0xAE426082},
	}
	for _, tt := range tests {
		if got := CRC32([]byte(tt.input)); got != tt.want {
			t.Errorf("CRC32(%q) = %#08x, want %#08x", tt.input, got, tt.want)
		}
	}
}

func TestAdler32KnownValues(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
	}{
		{"", 1},
		{"a", 0x00620062},
		{"Wikipedia", 0x11E60398},
	}
	for _, tt := range tests {
		if got := Adler32([]byte(tt.input)); got != tt.want {
			t.Errorf("Adler32(%q) = %#08x, want %#08x", tt.input, got, tt.want)
		}
	}
}

func TestAgainstStandardLibrary(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{1, 100, 5549, 5550, 5551, 65536, 200000} {
		data := make([]byte, size)
		rng.Read(data)
		if got, want := CRC32(data), crc32.ChecksumIEEE(data); got != want {
			t.Errorf("size %d: CRC32 = %#08x, want %#08x", size, got, want)
		}
		if got, want := Adler32(data), adler32.Checksum(data); got != want {
			t.Errorf("size %d: Adler32 = %#08x, want %#08x", size, got, want)
		}
	}

	// worst case for overflow: all 0xFF
	ff := bytes.Repeat([]byte{0xFF}, 100000)
	if got, want := Adler32(ff), adler32.Checksum(ff); got != want {
		t.Errorf("Adler32(0xFF...) = %#08x, want %#08x", got, want)
	}
}

func TestIncrementalUpdate(t *testing.T) {
	a, b := []byte("IHDR"), []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}
	whole := append(append([]byte(nil), a...), b...)

	if got, want := UpdateCRC32(CRC32(a), b), CRC32(whole); got != want {
		t.Errorf("incremental CRC32 = %#08x, want %#08x", got, want)
	}
	if got, want := UpdateAdler32(Adler32(a), b), Adler32(whole); got != want {
		t.Errorf("incremental Adler32 = %#08x, want %#08x", got, want)
	}
}
