package png

import (
	"fmt"
	"image/color"
)

// Convert converts a w*h buffer from inMode to outMode.
//
// Any valid input converts to RGB8 and RGBA8. Grey8 and GreyAlpha8 accept
// only grey inputs; there is no luma formula for color to grey. Palette
// outputs of depth 1 to 8 are produced by exact RGBA lookup in
// outMode.Palette. Identical modes are copied.
func Convert(in []byte, inMode, outMode *ColorMode, w, h int) ([]byte, error) {
	if w < 0 || h < 0 {
		return nil, ErrInvalidDimensions
	}
	if len(in) < inMode.RawSize(w, h) {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInputTooSmall, len(in), inMode.RawSize(w, h))
	}
	if inMode.Equal(outMode) {
		out := make([]byte, outMode.RawSize(w, h))
		copy(out, in)
		return out, nil
	}
	if !inMode.Valid() {
		return nil, fmt.Errorf("%w: input %s", ErrUnsupportedConversion, inMode)
	}

	n := w * h
	out := make([]byte, outMode.RawSize(w, h))

	switch {
	case outMode.ColorType == ColorRGBA && outMode.BitDepth == 8:
		for i := 0; i < n; i++ {
			r, g, b, a := pixelRGBA8(in, i, inMode)
			out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = r, g, b, a
		}

	case outMode.ColorType == ColorRGB && outMode.BitDepth == 8:
		for i := 0; i < n; i++ {
			r, g, b, _ := pixelRGBA8(in, i, inMode)
			out[3*i], out[3*i+1], out[3*i+2] = r, g, b
		}

	case (outMode.ColorType == ColorGrey || outMode.ColorType == ColorGreyAlpha) && outMode.BitDepth == 8:
		if inMode.ColorType != ColorGrey && inMode.ColorType != ColorGreyAlpha {
			return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, inMode, outMode)
		}
		withAlpha := outMode.ColorType == ColorGreyAlpha
		for i := 0; i < n; i++ {
			v, _, _, a := pixelRGBA8(in, i, inMode)
			if withAlpha {
				out[2*i], out[2*i+1] = v, a
			} else {
				out[i] = v
			}
		}

	case outMode.ColorType == ColorPalette && outMode.Valid():
		if len(outMode.Palette) == 0 || len(outMode.Palette) > 1<<uint(outMode.BitDepth) {
			return nil, fmt.Errorf("%w: %d palette entries for depth %d", ErrUnsupportedConversion, len(outMode.Palette), outMode.BitDepth)
		}
		index := make(map[color.NRGBA]int, len(outMode.Palette))
		for i := len(outMode.Palette) - 1; i >= 0; i-- {
			index[outMode.Palette[i]] = i
		}
		bd := outMode.BitDepth
		for i := 0; i < n; i++ {
			r, g, b, a := pixelRGBA8(in, i, inMode)
			c := color.NRGBA{R: r, G: g, B: b, A: a}
			idx, ok := index[c]
			if !ok {
				return nil, fmt.Errorf("%w: %v at pixel %d", ErrColorNotInPalette, c, i)
			}
			if bd == 8 {
				out[i] = byte(idx)
			} else {
				writeBitsMSB(out, i*bd, bd, idx)
			}
		}

	default:
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, inMode, outMode)
	}
	return out, nil
}

// pixelRGBA8 returns pixel i of a buffer as 8-bit RGBA
func pixelRGBA8(in []byte, i int, m *ColorMode) (r, g, b, a byte) {
	bd := m.BitDepth
	switch m.ColorType {
	case ColorGrey:
		var raw int
		var v byte
		switch bd {
		case 16:
			raw = int(in[2*i])<<8 | int(in[2*i+1])
			v = in[2*i]
		case 8:
			raw = int(in[i])
			v = in[i]
		default:
			raw = readBitsMSB(in, i*bd, bd)
			v = byte(raw * 255 / (1<<uint(bd) - 1))
		}
		a = 255
		if m.KeyDefined && raw == int(m.KeyR) {
			a = 0
		}
		return v, v, v, a

	case ColorRGB:
		a = 255
		if bd == 8 {
			r, g, b = in[3*i], in[3*i+1], in[3*i+2]
			if m.KeyDefined && int(r) == int(m.KeyR) && int(g) == int(m.KeyG) && int(b) == int(m.KeyB) {
				a = 0
			}
			return r, g, b, a
		}
		p := in[6*i:]
		r, g, b = p[0], p[2], p[4]
		if m.KeyDefined &&
			uint16(p[0])<<8|uint16(p[1]) == m.KeyR &&
			uint16(p[2])<<8|uint16(p[3]) == m.KeyG &&
			uint16(p[4])<<8|uint16(p[5]) == m.KeyB {
			a = 0
		}
		return r, g, b, a

	case ColorPalette:
		var idx int
		if bd == 8 {
			idx = int(in[i])
		} else {
			idx = readBitsMSB(in, i*bd, bd)
		}
		if idx >= len(m.Palette) {
			// out of range indices render as opaque black
			return 0, 0, 0, 255
		}
		c := m.Palette[idx]
		return c.R, c.G, c.B, c.A

	case ColorGreyAlpha:
		if bd == 8 {
			return in[2*i], in[2*i], in[2*i], in[2*i+1]
		}
		return in[4*i], in[4*i], in[4*i], in[4*i+2]

	case ColorRGBA:
		if bd == 8 {
			return in[4*i], in[4*i+1], in[4*i+2], in[4*i+3]
		}
		return in[8*i], in[8*i+2], in[8*i+4], in[8*i+6]
	}
	return 0, 0, 0, 0
}

// fullyOpaque reports whether every pixel of the buffer has maximum alpha
func fullyOpaque(in []byte, m *ColorMode, w, h int) bool {
	if !m.CanHaveAlpha() {
		return true
	}
	n := w * h
	switch {
	case m.ColorType == ColorRGBA && m.BitDepth == 16:
		for i := 0; i < n; i++ {
			if in[8*i+6] != 0xFF || in[8*i+7] != 0xFF {
				return false
			}
		}
		return true
	case m.ColorType == ColorGreyAlpha && m.BitDepth == 16:
		for i := 0; i < n; i++ {
			if in[4*i+2] != 0xFF || in[4*i+3] != 0xFF {
				return false
			}
		}
		return true
	}
	for i := 0; i < n; i++ {
		if _, _, _, a := pixelRGBA8(in, i, m); a != 255 {
			return false
		}
	}
	return true
}
