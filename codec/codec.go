// Package codec is a registry of the module's codecs. The png codec works on
// packed pixel buffers; zlib and deflate compress opaque byte slices.
// Codecs register themselves from init, so importing a codec package is
// enough to make it available through Get.
package codec

// Codec compresses and decompresses one format
type Codec interface {
	// Encode compresses params.PixelData
	Encode(params EncodeParams) ([]byte, error)

	// Decode reverses Encode. Byte codecs fill only PixelData.
	Decode(data []byte) (*DecodeResult, error)

	// UID is the media type the codec reads and writes
	UID() string

	// Name is the short lookup name ("png", "zlib", "deflate")
	Name() string
}

// EncodeParams is the input to Codec.Encode. zlib and deflate read only
// PixelData and Options; png needs the image geometry as well.
type EncodeParams struct {
	PixelData  []byte  // packed samples, 16-bit samples big-endian; any bytes for byte codecs
	Width      int     // pixels per row
	Height     int     // rows
	Components int     // 1 grey, 2 grey+alpha, 3 RGB, 4 RGBA
	BitDepth   int     // 1, 2, 4, 8 or 16
	Options    Options // *deflate.Parameters or *png.EncodeOptions
}

// Options is implemented by codec option structs
type Options interface {
	Validate() error
}

// DecodeResult is the output of Codec.Decode
type DecodeResult struct {
	PixelData  []byte
	Width      int // 0 for byte codecs
	Height     int // 0 for byte codecs
	Components int
	BitDepth   int
}

// FrameSize returns the byte length of a packed image with no row padding
func FrameSize(width, height, components, bitDepth int) int {
	bits := width * height * components * bitDepth
	return (bits + 7) / 8
}
