package png

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-png-codec/deflate"
	"github.com/cocosip/go-png-codec/zlib"
)

// EncodeOptions controls Encode. Start from DefaultEncodeOptions; a zero
// BitDepth in Input or Output means RGBA8.
type EncodeOptions struct {
	// Input is the layout of the pixels passed to Encode
	Input ColorMode

	// Output is the layout stored in the file. Supported: RGB8, RGBA8,
	// Grey8, GreyAlpha8, palette at 1, 2, 4 or 8 bits, or any valid PNG
	// mode equal to Input.
	Output ColorMode

	// AutoLeaveOutAlphaChannel stores RGBA8 or GreyAlpha8 output without
	// its alpha channel when every pixel is opaque
	AutoLeaveOutAlphaChannel bool

	Filter FilterStrategy

	// FilterPaletteZero forces filter None for palette and sub-byte images
	FilterPaletteZero bool

	// Interlace writes Adam7 interlaced data
	Interlace bool

	// Deflate controls compression of the image data; nil uses
	// deflate.DefaultParameters
	Deflate *deflate.Parameters

	// Metadata is written as ancillary chunks
	Metadata Metadata

	// TextCompression stores texts as zTXt (or compressed iTXt) when that is smaller
	TextCompression bool
}

// DefaultEncodeOptions encodes RGBA8 input as RGBA8, dropping alpha when
// the image is opaque
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Input:                    RGBA8(),
		Output:                   RGBA8(),
		AutoLeaveOutAlphaChannel: true,
		Filter:                   FilterMinSum,
		FilterPaletteZero:        true,
		TextCompression:          true,
	}
}

// Encode encodes a w*h pixel buffer as PNG. A nil opts uses DefaultEncodeOptions.
func Encode(pix []byte, width, height int, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if width <= 0 || height <= 0 || width > maxChunkLength || height > maxChunkLength {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	in := opts.Input
	if in.BitDepth == 0 {
		in = RGBA8()
	}
	out := opts.Output
	if out.BitDepth == 0 {
		out = RGBA8()
	}
	if !in.Valid() {
		return nil, fmt.Errorf("%w: input %s", ErrUnsupportedConversion, in)
	}
	if uint64(width)*uint64(height) > maxImageBits/64 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, width, height)
	}
	if len(pix) < in.RawSize(width, height) {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInputTooSmall, len(pix), in.RawSize(width, height))
	}

	if opts.AutoLeaveOutAlphaChannel && out.BitDepth == 8 && out.ColorType.HasAlpha() && fullyOpaque(pix, &in, width, height) {
		if out.ColorType == ColorRGBA {
			out.ColorType = ColorRGB
		} else {
			out.ColorType = ColorGrey
		}
	}
	if err := checkOutputMode(&in, &out); err != nil {
		return nil, err
	}

	raw, err := Convert(pix, &in, &out, width, height)
	if err != nil {
		return nil, err
	}

	hdr := Header{
		Width:     width,
		Height:    height,
		BitDepth:  out.BitDepth,
		ColorType: out.ColorType,
	}
	if opts.Interlace {
		hdr.InterlaceMethod = 1
	}

	strategy := opts.Filter
	if opts.FilterPaletteZero && (out.ColorType == ColorPalette || out.BitDepth < 8) {
		strategy = FilterNone
	}
	filtered := filterForEncoding(raw, &hdr, strategy)

	compressed, err := zlib.Compress(filtered, opts.Deflate)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("width", width).
		Int("height", height).
		Str("mode", out.String()).
		Str("filter", strategy.String()).
		Int("filtered", len(filtered)).
		Int("compressed", len(compressed)).
		Msg("png image data encoded")

	return writeFile(&hdr, &out, compressed, opts)
}

// checkOutputMode rejects output modes the encoder cannot produce from in
func checkOutputMode(in, out *ColorMode) error {
	if !out.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, out)
	}
	if out.ColorType == ColorPalette && (len(out.Palette) == 0 || len(out.Palette) > 1<<uint(out.BitDepth)) {
		return fmt.Errorf("%w: %d palette entries at depth %d", ErrUnsupportedOutput, len(out.Palette), out.BitDepth)
	}
	if out.Equal(in) {
		return nil
	}
	if out.ColorType != ColorPalette && out.BitDepth != 8 {
		return fmt.Errorf("%w: %s from %s", ErrUnsupportedOutput, out, in)
	}
	if out.KeyDefined && out.ColorType != ColorGrey && out.ColorType != ColorRGB {
		return fmt.Errorf("%w: color key with %s", ErrUnsupportedOutput, out.ColorType)
	}
	return nil
}

// filterForEncoding pads, interlaces and filters a packed buffer into the
// byte stream that is compressed into IDAT
func filterForEncoding(raw []byte, hdr *Header, strategy FilterStrategy) []byte {
	w, h := hdr.Width, hdr.Height
	mode := hdr.ColorMode()
	bpp := mode.BitsPerPixel()

	if !hdr.Interlaced() {
		out := make([]byte, h*(1+(w*bpp+7)/8))
		filterImage(out, padRows(raw, w, h, bpp), w, h, bpp, strategy)
		return out
	}

	passes, filterSize, _, _ := adam7Passes(w, h, bpp)
	out := make([]byte, filterSize)
	interlaced := Adam7Interlace(raw, w, h, bpp)
	for _, p := range passes {
		if p.w == 0 {
			continue
		}
		packedLen := (p.w*p.h*bpp + 7) / 8
		padded := padRows(interlaced[p.packedStart:p.packedStart+packedLen], p.w, p.h, bpp)
		filterImage(out[p.filterStart:], padded, p.w, p.h, bpp, strategy)
	}
	return out
}

// padRows returns the rows of a packed buffer each starting on a byte boundary
func padRows(packed []byte, w, h, bpp int) []byte {
	linebits := w * bpp
	if linebits%8 == 0 {
		return packed
	}
	padded := make([]byte, h*((linebits+7)/8))
	addPaddingBits(padded, packed, ((linebits+7)/8)*8, linebits, h)
	return padded
}

// writeFile emits the chunks in order: signature, IHDR, gAMA, PLTE, tRNS,
// bKGD, pHYs, IDAT, tIME, texts, IEND
func writeFile(hdr *Header, mode *ColorMode, idat []byte, opts *EncodeOptions) ([]byte, error) {
	meta := &opts.Metadata
	out := make([]byte, 0, len(idat)+256)
	out = append(out, Signature[:]...)
	out = appendIHDR(out, hdr)

	if meta.Gamma != 0 {
		out = AppendChunk(out, chunkGAMA, binary.BigEndian.AppendUint32(nil, meta.Gamma))
	}

	if mode.ColorType == ColorPalette {
		plte := make([]byte, 0, 3*len(mode.Palette))
		for _, c := range mode.Palette {
			plte = append(plte, c.R, c.G, c.B)
		}
		out = AppendChunk(out, chunkPLTE, plte)

		// trailing opaque entries are implied
		n := len(mode.Palette)
		for n > 0 && mode.Palette[n-1].A == 255 {
			n--
		}
		if n > 0 {
			trns := make([]byte, n)
			for i := range trns {
				trns[i] = mode.Palette[i].A
			}
			out = AppendChunk(out, chunkTRNS, trns)
		}
	} else if mode.KeyDefined {
		switch mode.ColorType {
		case ColorGrey:
			out = AppendChunk(out, chunkTRNS, binary.BigEndian.AppendUint16(nil, mode.KeyR))
		case ColorRGB:
			b := binary.BigEndian.AppendUint16(nil, mode.KeyR)
			b = binary.BigEndian.AppendUint16(b, mode.KeyG)
			b = binary.BigEndian.AppendUint16(b, mode.KeyB)
			out = AppendChunk(out, chunkTRNS, b)
		}
	}

	if meta.Background != nil {
		if mode.ColorType == ColorPalette && int(meta.Background.R) >= len(mode.Palette) {
			return nil, fmt.Errorf("%w: index %d with %d palette entries", ErrInvalidBackground, meta.Background.R, len(mode.Palette))
		}
		out = AppendChunk(out, chunkBKGD, encodeBackground(meta.Background, mode))
	}
	if meta.Phys != nil {
		out = AppendChunk(out, chunkPHYS, encodePHYs(meta.Phys))
	}

	out = AppendChunk(out, chunkIDAT, idat)

	if meta.ModTime != nil {
		out = AppendChunk(out, chunkTIME, encodeTIME(*meta.ModTime))
	}
	for _, t := range meta.Texts {
		var err error
		if out, err = appendText(out, t, opts.TextCompression, opts.Deflate); err != nil {
			return nil, err
		}
	}

	return AppendChunk(out, chunkIEND, nil), nil
}
