package png

import (
	"fmt"
	"image/color"
)

// ColorType is the PNG color type stored in IHDR
type ColorType uint8

const (
	ColorGrey      ColorType = 0
	ColorRGB       ColorType = 2
	ColorPalette   ColorType = 3
	ColorGreyAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

func (c ColorType) String() string {
	switch c {
	case ColorGrey:
		return "grey"
	case ColorRGB:
		return "rgb"
	case ColorPalette:
		return "palette"
	case ColorGreyAlpha:
		return "grey+alpha"
	case ColorRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("ColorType(%d)", uint8(c))
	}
}

// Channels returns the number of samples per pixel
func (c ColorType) Channels() int {
	switch c {
	case ColorGrey, ColorPalette:
		return 1
	case ColorGreyAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBA:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the color type carries an alpha channel
func (c ColorType) HasAlpha() bool {
	return c == ColorGreyAlpha || c == ColorRGBA
}

// allowedDepths lists the legal bit depths per color type
var allowedDepths = map[ColorType][]int{
	ColorGrey:      {1, 2, 4, 8, 16},
	ColorRGB:       {8, 16},
	ColorPalette:   {1, 2, 4, 8},
	ColorGreyAlpha: {8, 16},
	ColorRGBA:      {8, 16},
}

// ValidColorDepth reports whether the color type and bit depth may appear together in IHDR
func ValidColorDepth(c ColorType, bitDepth int) bool {
	for _, d := range allowedDepths[c] {
		if d == bitDepth {
			return true
		}
	}
	return false
}

// ColorMode describes the layout of a raw pixel buffer. Sub-byte samples
// are packed most significant bit first with no padding between rows;
// 16-bit samples are big-endian.
type ColorMode struct {
	ColorType ColorType
	BitDepth  int

	// Palette entries for ColorPalette; alpha comes from tRNS
	Palette []color.NRGBA

	// Color key for ColorGrey (KeyR only) and ColorRGB. Pixels whose raw
	// sample values equal the key are fully transparent.
	KeyDefined       bool
	KeyR, KeyG, KeyB uint16
}

// RGBA8 is 8-bit red, green, blue, alpha
func RGBA8() ColorMode { return ColorMode{ColorType: ColorRGBA, BitDepth: 8} }

// RGB8 is 8-bit red, green, blue
func RGB8() ColorMode { return ColorMode{ColorType: ColorRGB, BitDepth: 8} }

// Grey8 is 8-bit greyscale
func Grey8() ColorMode { return ColorMode{ColorType: ColorGrey, BitDepth: 8} }

// GreyAlpha8 is 8-bit greyscale with alpha
func GreyAlpha8() ColorMode { return ColorMode{ColorType: ColorGreyAlpha, BitDepth: 8} }

// PaletteMode returns a palette mode of the given depth
func PaletteMode(bitDepth int, palette []color.NRGBA) ColorMode {
	return ColorMode{ColorType: ColorPalette, BitDepth: bitDepth, Palette: palette}
}

// BitsPerPixel returns the bits one pixel occupies
func (m *ColorMode) BitsPerPixel() int {
	return m.ColorType.Channels() * m.BitDepth
}

// RawSize returns the size of a w*h buffer in this mode
func (m *ColorMode) RawSize(w, h int) int {
	return (w*h*m.BitsPerPixel() + 7) / 8
}

// Valid reports whether the mode is a legal PNG color type and depth
func (m *ColorMode) Valid() bool {
	return ValidColorDepth(m.ColorType, m.BitDepth)
}

// CanHaveAlpha reports whether some pixel in this mode may be translucent
func (m *ColorMode) CanHaveAlpha() bool {
	if m.ColorType.HasAlpha() || m.KeyDefined {
		return true
	}
	for _, c := range m.Palette {
		if c.A != 255 {
			return true
		}
	}
	return false
}

// Equal reports whether two modes describe identical buffers
func (m *ColorMode) Equal(o *ColorMode) bool {
	if m.ColorType != o.ColorType || m.BitDepth != o.BitDepth || m.KeyDefined != o.KeyDefined {
		return false
	}
	if m.KeyDefined && (m.KeyR != o.KeyR || m.KeyG != o.KeyG || m.KeyB != o.KeyB) {
		return false
	}
	if len(m.Palette) != len(o.Palette) {
		return false
	}
	for i := range m.Palette {
		if m.Palette[i] != o.Palette[i] {
			return false
		}
	}
	return true
}

func (m ColorMode) String() string {
	s := fmt.Sprintf("%s/%d", m.ColorType, m.BitDepth)
	if m.ColorType == ColorPalette {
		s += fmt.Sprintf(" (%d entries)", len(m.Palette))
	}
	return s
}

// readBitsMSB reads n bits starting at bit offset pos, most significant first
func readBitsMSB(data []byte, pos, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		bit := int(data[(pos+i)>>3]>>uint(7-((pos+i)&7))) & 1
		v = v<<1 | bit
	}
	return v
}

// writeBitsMSB writes the n low bits of v at bit offset pos. The target
// bits must be zero.
func writeBitsMSB(data []byte, pos, n, v int) {
	for i := 0; i < n; i++ {
		bit := (v >> uint(n-1-i)) & 1
		data[(pos+i)>>3] |= byte(bit) << uint(7-((pos+i)&7))
	}
}
