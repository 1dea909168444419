package bitstream

// Writer appends bits to a growable byte slice, least significant bit first.
type Writer struct {
	buf   []byte
	nbits uint // bits used in the last byte of buf (0 means byte aligned)
}

// NewWriter creates a writer with room for sizeHint bytes
func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// WriteBit appends a single bit
func (w *Writer) WriteBit(bit uint) {
	if w.nbits == 0 {
		w.buf = append(w.buf, 0)
	}
	w.buf[len(w.buf)-1] |= byte(bit&1) << w.nbits
	w.nbits = (w.nbits + 1) & 7
}

// WriteBits appends the n low bits of value, least significant first
func (w *Writer) WriteBits(value uint32, n int) {
	for i := 0; i < n; i++ {
		w.WriteBit(uint(value >> uint(i)))
	}
}

// WriteReversed appends the n low bits of value, most significant first.
// Huffman codes are packed this way in DEFLATE.
func (w *Writer) WriteReversed(value uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(uint(value >> uint(i)))
	}
}

// AlignToByte pads with zero bits up to the next byte boundary
func (w *Writer) AlignToByte() {
	w.nbits = 0
}

// WriteBytes appends whole bytes after aligning to a byte boundary
func (w *Writer) WriteBytes(p []byte) {
	w.AlignToByte()
	w.buf = append(w.buf, p...)
}

// Len returns the number of bytes started so far
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written data; a partial last byte is zero padded
func (w *Writer) Bytes() []byte {
	return w.buf
}
