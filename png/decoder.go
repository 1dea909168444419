package png

import (
	"encoding/binary"
	"fmt"
	"image/color"

	"github.com/cocosip/go-png-codec/zlib"
)

// DecodeOptions controls DecodeWithOptions
type DecodeOptions struct {
	// IgnoreCRC skips chunk CRC verification
	IgnoreCRC bool

	// IgnoreAdler32 skips verification of the zlib trailer of the image data
	IgnoreAdler32 bool

	// ColorConvert converts pixels to Output. When false the pixels are
	// returned in the file's own mode.
	ColorConvert bool

	// Output is the requested pixel layout when ColorConvert is set
	Output ColorMode

	// ReadTextChunks parses tEXt, zTXt and iTXt into Metadata.Texts
	ReadTextChunks bool
}

// DefaultDecodeOptions verifies all checksums and converts to RGBA8
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{
		ColorConvert:   true,
		Output:         RGBA8(),
		ReadTextChunks: true,
	}
}

// Image is a decoded PNG
type Image struct {
	Pix    []byte
	Width  int
	Height int

	// Mode is the layout of Pix
	Mode ColorMode

	// FileMode is the layout stored in the file, including palette and color key
	FileMode ColorMode

	Header   Header
	Metadata Metadata
}

// Decode decodes a PNG into 8-bit RGBA
func Decode(data []byte) ([]byte, int, int, error) {
	img, err := DecodeWithOptions(data, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	return img.Pix, img.Width, img.Height, nil
}

// DecodeWithOptions decodes a PNG. A nil opts uses DefaultDecodeOptions.
func DecodeWithOptions(data []byte, opts *DecodeOptions) (*Image, error) {
	if opts == nil {
		opts = DefaultDecodeOptions()
	}

	hdr, err := InspectWithOptions(data, &InspectOptions{IgnoreCRC: opts.IgnoreCRC})
	if err != nil {
		return nil, err
	}

	img := &Image{
		Width:    hdr.Width,
		Height:   hdr.Height,
		Header:   *hdr,
		FileMode: hdr.ColorMode(),
	}
	idat, err := readChunks(data, img, opts)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("width", hdr.Width).
		Int("height", hdr.Height).
		Str("mode", img.FileMode.String()).
		Bool("interlaced", hdr.Interlaced()).
		Int("idat", len(idat)).
		Msg("png chunks read")

	raw, err := decodeImageData(idat, hdr, opts)
	if err != nil {
		return nil, err
	}

	img.Pix, img.Mode = raw, img.FileMode
	out := opts.Output
	if out.BitDepth == 0 {
		out = RGBA8()
	}
	if opts.ColorConvert && !out.Equal(&img.FileMode) {
		if img.Pix, err = Convert(raw, &img.FileMode, &out, hdr.Width, hdr.Height); err != nil {
			return nil, err
		}
		img.Mode = out
	}
	return img, nil
}

// readChunks walks the chunks after IHDR, filling img's palette, key and
// metadata, and returns the concatenated IDAT payload.
func readChunks(data []byte, img *Image, opts *DecodeOptions) ([]byte, error) {
	zopts := &zlib.DecompressOptions{IgnoreAdler32: opts.IgnoreAdler32}
	mode := &img.FileMode
	meta := &img.Metadata

	var idat []byte
	seenIDAT, seenPLTE, seenTRNS := false, false, false
	pos := minHeaderSize + 4

	for {
		if pos >= len(data) {
			return nil, ErrMissingIEND
		}
		c, next, err := ReadChunk(data, pos)
		if err != nil {
			return nil, err
		}
		if !opts.IgnoreCRC && !c.CRCValid() {
			return nil, fmt.Errorf("%w: %s at offset %d", ErrCRCMismatch, c.Type, pos)
		}

		switch c.Type {
		case chunkIEND:
			if !seenIDAT {
				return nil, ErrMissingIDAT
			}
			if mode.ColorType == ColorPalette && !seenPLTE {
				return nil, ErrMissingPalette
			}
			return idat, nil

		case chunkIDAT:
			if mode.ColorType == ColorPalette && !seenPLTE {
				return nil, fmt.Errorf("%w: IDAT before PLTE", ErrChunkOrder)
			}
			idat = append(idat, c.Data...)
			seenIDAT = true

		case chunkIHDR:
			return nil, fmt.Errorf("%w: second IHDR", ErrChunkOrder)

		case chunkPLTE:
			if seenIDAT || seenPLTE {
				return nil, fmt.Errorf("%w: PLTE", ErrChunkOrder)
			}
			if len(c.Data)%3 != 0 || len(c.Data) == 0 || len(c.Data)/3 > 256 {
				return nil, fmt.Errorf("%w: length %d", ErrInvalidPalette, len(c.Data))
			}
			// grey images must not carry a palette; color images may as a suggestion
			if mode.ColorType == ColorGrey || mode.ColorType == ColorGreyAlpha {
				return nil, fmt.Errorf("%w: PLTE in grey image", ErrChunkOrder)
			}
			if mode.ColorType == ColorPalette {
				mode.Palette = make([]color.NRGBA, len(c.Data)/3)
				for i := range mode.Palette {
					mode.Palette[i] = color.NRGBA{R: c.Data[3*i], G: c.Data[3*i+1], B: c.Data[3*i+2], A: 255}
				}
			}
			seenPLTE = true

		case chunkTRNS:
			if seenIDAT || seenTRNS {
				return nil, fmt.Errorf("%w: tRNS", ErrChunkOrder)
			}
			if err := parseTRNS(c.Data, mode, seenPLTE); err != nil {
				return nil, err
			}
			seenTRNS = true

		case chunkBKGD:
			bg, err := parseBackground(c.Data, mode)
			if err != nil {
				return nil, err
			}
			meta.Background = bg

		case chunkTEXT, chunkZTXT, chunkITXT:
			if !opts.ReadTextChunks {
				break
			}
			var t Text
			switch c.Type {
			case chunkTEXT:
				t, err = parseTEXt(c.Data)
			case chunkZTXT:
				t, err = parseZTXt(c.Data, zopts)
			default:
				t, err = parseITXt(c.Data, zopts)
			}
			if err != nil {
				return nil, err
			}
			meta.Texts = append(meta.Texts, t)

		case chunkTIME:
			if meta.ModTime, err = parseTIME(c.Data); err != nil {
				return nil, err
			}

		case chunkPHYS:
			if meta.Phys, err = parsePHYs(c.Data); err != nil {
				return nil, err
			}

		case chunkGAMA:
			if meta.Gamma, err = parseGAMA(c.Data); err != nil {
				return nil, err
			}

		default:
			if c.IsCritical() {
				return nil, fmt.Errorf("%w: %q", ErrUnknownCriticalChunk, c.Type)
			}
			logger.Debug().Str("type", c.Type).Int("length", len(c.Data)).Msg("skipping ancillary chunk")
		}
		pos = next
	}
}

func parseTRNS(data []byte, mode *ColorMode, seenPLTE bool) error {
	switch mode.ColorType {
	case ColorPalette:
		if !seenPLTE {
			return fmt.Errorf("%w: tRNS before PLTE", ErrChunkOrder)
		}
		if len(data) > len(mode.Palette) {
			return fmt.Errorf("%w: %d alpha values for %d palette entries", ErrInvalidTransparency, len(data), len(mode.Palette))
		}
		for i, a := range data {
			mode.Palette[i].A = a
		}
	case ColorGrey:
		if len(data) != 2 {
			return fmt.Errorf("%w: %d bytes for grey image", ErrInvalidTransparency, len(data))
		}
		mode.KeyDefined = true
		v := binary.BigEndian.Uint16(data)
		mode.KeyR, mode.KeyG, mode.KeyB = v, v, v
	case ColorRGB:
		if len(data) != 6 {
			return fmt.Errorf("%w: %d bytes for color image", ErrInvalidTransparency, len(data))
		}
		mode.KeyDefined = true
		mode.KeyR = binary.BigEndian.Uint16(data[0:])
		mode.KeyG = binary.BigEndian.Uint16(data[2:])
		mode.KeyB = binary.BigEndian.Uint16(data[4:])
	default:
		return fmt.Errorf("%w: not allowed with color type %d", ErrInvalidTransparency, mode.ColorType)
	}
	return nil
}

// maxImageBits bounds w*h*bpp so buffer size arithmetic cannot overflow
const maxImageBits = 1 << 62

// decodeImageData inflates the IDAT payload and undoes filtering and
// interlacing, returning a packed buffer in the header's mode.
func decodeImageData(idat []byte, hdr *Header, opts *DecodeOptions) ([]byte, error) {
	w, h := hdr.Width, hdr.Height
	mode := hdr.ColorMode()
	bpp := mode.BitsPerPixel()
	if uint64(w)*uint64(h) > maxImageBits/uint64(bpp) {
		return nil, fmt.Errorf("%w: %dx%d at %d bits per pixel", ErrImageTooLarge, w, h, bpp)
	}

	var expected int
	var passes [7]adam7Pass
	if hdr.Interlaced() {
		passes, expected, _, _ = adam7Passes(w, h, bpp)
	} else {
		expected = h * (1 + (w*bpp+7)/8)
	}

	filtered, err := zlib.Decompress(idat, &zlib.DecompressOptions{
		IgnoreAdler32: opts.IgnoreAdler32,
		SizeHint:      expected,
	})
	if err != nil {
		return nil, fmt.Errorf("png: image data: %w", err)
	}
	if len(filtered) < expected {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrImageDataTooSmall, len(filtered), expected)
	}

	if !hdr.Interlaced() {
		out := make([]byte, mode.RawSize(w, h))
		if err := unfilterToPacked(out, filtered, w, h, bpp); err != nil {
			return nil, err
		}
		return out, nil
	}

	_, _, _, packedSize := adam7Passes(w, h, bpp)
	packed := make([]byte, packedSize)
	for i, p := range passes {
		if p.w == 0 {
			continue
		}
		n := p.h * (1 + (p.w*bpp+7)/8)
		pass := filtered[p.filterStart : p.filterStart+n]
		if err := unfilterToPacked(packed[p.packedStart:], pass, p.w, p.h, bpp); err != nil {
			return nil, fmt.Errorf("adam7 pass %d: %w", i+1, err)
		}
	}
	return Adam7Deinterlace(packed, w, h, bpp), nil
}

// unfilterToPacked unfilters one (reduced) image and strips the row
// padding bits of sub-byte formats.
func unfilterToPacked(out, filtered []byte, w, h, bpp int) error {
	linebits := w * bpp
	if bpp >= 8 || linebits%8 == 0 {
		return unfilterImage(out, filtered, w, h, bpp)
	}
	padded := make([]byte, h*((linebits+7)/8))
	if err := unfilterImage(padded, filtered, w, h, bpp); err != nil {
		return err
	}
	removePaddingBits(out, padded, linebits, ((linebits+7)/8)*8, h)
	return nil
}
