package png

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/mi-v/img1b"
)

// DecodeImage decodes a PNG into an image.Image.
//
// Two-color 1-bit palette images become *img1b.Image, other palette images
// *image.Paletted, opaque 8 and 16-bit grey *image.Gray and *image.Gray16,
// 16-bit RGBA *image.NRGBA64 and everything else *image.NRGBA.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, err := DecodeWithOptions(data, &DecodeOptions{})
	if err != nil {
		return nil, err
	}

	w, h := img.Width, img.Height
	rect := image.Rect(0, 0, w, h)
	mode := &img.FileMode

	switch {
	case mode.ColorType == ColorPalette && mode.BitDepth == 1 && len(mode.Palette) == 2:
		m := img1b.New(rect, colorPalette(mode.Palette, 2))
		copy(m.Pix, padRows(img.Pix, w, h, 1))
		return m, nil

	case mode.ColorType == ColorPalette:
		n := len(mode.Palette)
		indices := make([]uint8, w*h)
		for i := range indices {
			if mode.BitDepth == 8 {
				indices[i] = img.Pix[i]
			} else {
				indices[i] = uint8(readBitsMSB(img.Pix, i*mode.BitDepth, mode.BitDepth))
			}
			if int(indices[i]) >= n {
				n = int(indices[i]) + 1
			}
		}
		m := image.NewPaletted(rect, colorPalette(mode.Palette, n))
		m.Pix = indices
		return m, nil

	case mode.ColorType == ColorGrey && mode.BitDepth == 8 && !mode.KeyDefined:
		return &image.Gray{Pix: img.Pix, Stride: w, Rect: rect}, nil

	case mode.ColorType == ColorGrey && mode.BitDepth == 16 && !mode.KeyDefined:
		return &image.Gray16{Pix: img.Pix, Stride: 2 * w, Rect: rect}, nil

	case mode.ColorType == ColorRGBA && mode.BitDepth == 16:
		return &image.NRGBA64{Pix: img.Pix, Stride: 8 * w, Rect: rect}, nil
	}

	rgba := RGBA8()
	pix, err := Convert(img.Pix, mode, &rgba, w, h)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{Pix: pix, Stride: 4 * w, Rect: rect}, nil
}

// colorPalette converts palette entries, padding with opaque black up to n
func colorPalette(entries []color.NRGBA, n int) color.Palette {
	if n < len(entries) {
		n = len(entries)
	}
	p := make(color.Palette, n)
	for i := range p {
		if i < len(entries) {
			p[i] = entries[i]
		} else {
			p[i] = color.NRGBA{A: 255}
		}
	}
	return p
}

// DecodeConfig returns the dimensions and color model DecodeImage would
// produce, without decompressing the image data
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	hdr, err := Inspect(data)
	if err != nil {
		return image.Config{}, err
	}
	img := &Image{Header: *hdr, FileMode: hdr.ColorMode()}
	if _, err := readChunks(data, img, &DecodeOptions{}); err != nil {
		return image.Config{}, err
	}

	cfg := image.Config{Width: hdr.Width, Height: hdr.Height, ColorModel: color.NRGBAModel}
	mode := &img.FileMode
	switch {
	case mode.ColorType == ColorPalette:
		cfg.ColorModel = colorPalette(mode.Palette, 0)
	case mode.ColorType == ColorGrey && mode.BitDepth == 8 && !mode.KeyDefined:
		cfg.ColorModel = color.GrayModel
	case mode.ColorType == ColorGrey && mode.BitDepth == 16 && !mode.KeyDefined:
		cfg.ColorModel = color.Gray16Model
	case mode.ColorType == ColorRGBA && mode.BitDepth == 16:
		cfg.ColorModel = color.NRGBA64Model
	}
	return cfg, nil
}

// EncodeImage encodes m as PNG. The pixel layouts are chosen from the
// concrete image type; opts supplies filtering, compression, interlacing
// and metadata. A nil opts uses DefaultEncodeOptions.
func EncodeImage(w io.Writer, m image.Image, opts *EncodeOptions) error {
	o := DefaultEncodeOptions()
	if opts != nil {
		o = new(EncodeOptions)
		*o = *opts
	}

	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	var pix []byte

	switch src := m.(type) {
	case *img1b.Image:
		mode := PaletteMode(1, nrgbaPalette(src.Palette))
		pix = make([]byte, mode.RawSize(width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if src.ColorIndexAt(b.Min.X+x, b.Min.Y+y) != 0 {
					writeBitsMSB(pix, y*width+x, 1, 1)
				}
			}
		}
		o.Input, o.Output = mode, mode

	case *image.Paletted:
		if len(src.Palette) == 0 || len(src.Palette) > 256 {
			return fmt.Errorf("%w: %d palette entries", ErrUnsupportedOutput, len(src.Palette))
		}
		bd := 1
		for 1<<uint(bd) < len(src.Palette) {
			bd *= 2
		}
		mode := PaletteMode(bd, nrgbaPalette(src.Palette))
		pix = make([]byte, mode.RawSize(width, height))
		for y := 0; y < height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < width; x++ {
				if bd == 8 {
					pix[y*width+x] = row[x]
				} else {
					writeBitsMSB(pix, (y*width+x)*bd, bd, int(row[x]))
				}
			}
		}
		o.Input, o.Output = mode, mode

	case *image.Gray:
		pix = copyRows(src.Pix, src.PixOffset(b.Min.X, b.Min.Y), src.Stride, width, height)
		o.Input, o.Output = Grey8(), Grey8()

	case *image.Gray16:
		pix = copyRows(src.Pix, src.PixOffset(b.Min.X, b.Min.Y), src.Stride, 2*width, height)
		mode := ColorMode{ColorType: ColorGrey, BitDepth: 16}
		o.Input, o.Output = mode, mode

	case *image.NRGBA64:
		pix = copyRows(src.Pix, src.PixOffset(b.Min.X, b.Min.Y), src.Stride, 8*width, height)
		mode := ColorMode{ColorType: ColorRGBA, BitDepth: 16}
		o.Input, o.Output = mode, mode

	case *image.NRGBA:
		pix = copyRows(src.Pix, src.PixOffset(b.Min.X, b.Min.Y), src.Stride, 4*width, height)
		o.Input, o.Output = RGBA8(), RGBA8()

	default:
		pix = make([]byte, 4*width*height)
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
				i += 4
			}
		}
		o.Input, o.Output = RGBA8(), RGBA8()
	}

	data, err := Encode(pix, width, height, o)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func nrgbaPalette(p color.Palette) []color.NRGBA {
	out := make([]color.NRGBA, len(p))
	for i, c := range p {
		out[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return out
}

func copyRows(pix []byte, offset, stride, rowBytes, height int) []byte {
	out := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], pix[offset+y*stride:])
	}
	return out
}
