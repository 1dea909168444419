// Package bitstream provides LSB-first bit readers and writers as used by
// DEFLATE (RFC 1951 section 3.1.1).
package bitstream

import "errors"

// ErrUnexpectedEnd is returned when a read would go past the end of the buffer
var ErrUnexpectedEnd = errors.New("bitstream: read past end of input")

// Reader reads bits from a byte slice, least significant bit of each byte first.
type Reader struct {
	data []byte
	pos  int // bit position
}

// NewReader creates a new bit reader over data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// BitPos returns the current bit position
func (r *Reader) BitPos() int {
	return r.pos
}

// BitsLeft returns the number of unread bits
func (r *Reader) BitsLeft() int {
	return len(r.data)*8 - r.pos
}

// BytePos returns the index of the byte holding the next unread bit
func (r *Reader) BytePos() int {
	return r.pos >> 3
}

// ReadBit reads a single bit
func (r *Reader) ReadBit() (uint, error) {
	if r.pos >= len(r.data)*8 {
		return 0, ErrUnexpectedEnd
	}
	bit := uint(r.data[r.pos>>3]>>uint(r.pos&7)) & 1
	r.pos++
	return bit, nil
}

// ReadBits reads n bits (n <= 32), the first bit read becoming the least
// significant bit of the result.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if r.pos+n > len(r.data)*8 {
		return 0, ErrUnexpectedEnd
	}
	var v uint32
	for i := 0; i < n; i++ {
		bit := uint32(r.data[r.pos>>3]>>uint(r.pos&7)) & 1
		v |= bit << uint(i)
		r.pos++
	}
	return v, nil
}

// AlignToByte skips to the next byte boundary
func (r *Reader) AlignToByte() {
	r.pos = (r.pos + 7) &^ 7
}

// ReadBytes reads n whole bytes. The reader must be byte aligned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	start := r.pos >> 3
	if n < 0 || start+n > len(r.data) {
		return nil, ErrUnexpectedEnd
	}
	r.pos += n * 8
	return r.data[start : start+n], nil
}
