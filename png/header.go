package png

import (
	"encoding/binary"
	"fmt"
)

// minHeaderSize is the signature plus the IHDR chunk without its CRC
const minHeaderSize = 29

// Header holds the IHDR fields
type Header struct {
	Width             int
	Height            int
	BitDepth          int
	ColorType         ColorType
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// ColorMode returns the raw mode of the image data (without palette or key)
func (h *Header) ColorMode() ColorMode {
	return ColorMode{ColorType: h.ColorType, BitDepth: h.BitDepth}
}

// Interlaced reports whether the image uses Adam7
func (h *Header) Interlaced() bool {
	return h.InterlaceMethod == 1
}

// InspectOptions controls InspectWithOptions
type InspectOptions struct {
	IgnoreCRC bool
}

// Inspect reads the signature and IHDR without decoding any pixel data
func Inspect(data []byte) (*Header, error) {
	return InspectWithOptions(data, nil)
}

// InspectWithOptions is Inspect with control over the IHDR CRC check
func InspectWithOptions(data []byte, opts *InspectOptions) (*Header, error) {
	ignoreCRC := opts != nil && opts.IgnoreCRC

	if len(data) < minHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooSmall, len(data))
	}
	if [8]byte(data[:8]) != Signature {
		return nil, ErrInvalidSignature
	}
	if string(data[12:16]) != chunkIHDR {
		return nil, fmt.Errorf("%w: found %q", ErrFirstChunkNotIHDR, data[12:16])
	}
	if n := binary.BigEndian.Uint32(data[8:12]); n != 13 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidIHDR, n)
	}

	ihdr := data[16:29]
	width := binary.BigEndian.Uint32(ihdr[0:4])
	height := binary.BigEndian.Uint32(ihdr[4:8])
	h := &Header{
		Width:             int(width),
		Height:            int(height),
		BitDepth:          int(ihdr[8]),
		ColorType:         ColorType(ihdr[9]),
		CompressionMethod: ihdr[10],
		FilterMethod:      ihdr[11],
		InterlaceMethod:   ihdr[12],
	}

	if !ignoreCRC {
		if len(data) < minHeaderSize+4 {
			return nil, fmt.Errorf("%w: IHDR CRC missing", ErrHeaderTooSmall)
		}
		c := Chunk{Type: chunkIHDR, Data: ihdr, CRC: binary.BigEndian.Uint32(data[29:33])}
		if !c.CRCValid() {
			return nil, fmt.Errorf("%w: IHDR", ErrCRCMismatch)
		}
	}

	if width == 0 || height == 0 {
		return nil, ErrZeroDimension
	}
	if width > maxChunkLength || height > maxChunkLength {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensionTooLarge, width, height)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) validate() error {
	if !ValidColorDepth(h.ColorType, h.BitDepth) {
		return fmt.Errorf("%w: color type %d, bit depth %d", ErrInvalidColorDepth, h.ColorType, h.BitDepth)
	}
	if h.CompressionMethod != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCompressionMethod, h.CompressionMethod)
	}
	if h.FilterMethod != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFilterMethod, h.FilterMethod)
	}
	if h.InterlaceMethod > 1 {
		return fmt.Errorf("%w: %d", ErrInvalidInterlaceMethod, h.InterlaceMethod)
	}
	return nil
}

// appendIHDR appends the IHDR chunk for h
func appendIHDR(dst []byte, h *Header) []byte {
	var b [13]byte
	binary.BigEndian.PutUint32(b[0:], uint32(h.Width))
	binary.BigEndian.PutUint32(b[4:], uint32(h.Height))
	b[8] = byte(h.BitDepth)
	b[9] = byte(h.ColorType)
	b[10] = h.CompressionMethod
	b[11] = h.FilterMethod
	b[12] = h.InterlaceMethod
	return AppendChunk(dst, chunkIHDR, b[:])
}
