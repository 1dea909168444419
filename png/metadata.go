package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cocosip/go-png-codec/deflate"
	"github.com/cocosip/go-png-codec/zlib"
)

// Background is the bKGD color in raw sample values. Grey images set
// R, G and B to the grey value; palette images set them to the index.
type Background struct {
	R, G, B uint16
}

// Text is a tEXt, zTXt or iTXt entry
type Text struct {
	Keyword string
	Text    string

	// International texts are stored as iTXt with UTF-8 text
	International     bool
	LanguageTag       string
	TranslatedKeyword string
}

// PhysicalDims is the pHYs pixel size or aspect ratio
type PhysicalDims struct {
	X, Y uint32
	Unit uint8 // 0 unknown (aspect ratio only), 1 metre
}

// Metadata holds the ancillary chunks this package reads and writes
type Metadata struct {
	Background *Background
	Texts      []Text
	ModTime    *time.Time
	Phys       *PhysicalDims

	// Gamma is the gAMA value times 100000; 0 means absent
	Gamma uint32
}

func parseBackground(data []byte, mode *ColorMode) (*Background, error) {
	switch mode.ColorType {
	case ColorPalette:
		if len(data) != 1 {
			return nil, fmt.Errorf("%w: %d bytes for palette image", ErrInvalidBackground, len(data))
		}
		if int(data[0]) >= len(mode.Palette) {
			return nil, fmt.Errorf("%w: index %d with %d palette entries", ErrInvalidBackground, data[0], len(mode.Palette))
		}
		v := uint16(data[0])
		return &Background{v, v, v}, nil
	case ColorGrey, ColorGreyAlpha:
		if len(data) != 2 {
			return nil, fmt.Errorf("%w: %d bytes for grey image", ErrInvalidBackground, len(data))
		}
		v := binary.BigEndian.Uint16(data)
		return &Background{v, v, v}, nil
	default:
		if len(data) != 6 {
			return nil, fmt.Errorf("%w: %d bytes for color image", ErrInvalidBackground, len(data))
		}
		return &Background{
			R: binary.BigEndian.Uint16(data[0:]),
			G: binary.BigEndian.Uint16(data[2:]),
			B: binary.BigEndian.Uint16(data[4:]),
		}, nil
	}
}

func encodeBackground(bg *Background, mode *ColorMode) []byte {
	switch mode.ColorType {
	case ColorPalette:
		return []byte{byte(bg.R)}
	case ColorGrey, ColorGreyAlpha:
		return binary.BigEndian.AppendUint16(nil, bg.R)
	default:
		b := binary.BigEndian.AppendUint16(nil, bg.R)
		b = binary.BigEndian.AppendUint16(b, bg.G)
		return binary.BigEndian.AppendUint16(b, bg.B)
	}
}

func validKeyword(k string) bool {
	return len(k) >= 1 && len(k) <= 79 && !bytes.ContainsRune([]byte(k), 0)
}

// splitKeyword splits keyword\0rest
func splitKeyword(data []byte) (string, []byte, error) {
	i := bytes.IndexByte(data, 0)
	if i < 1 || i > 79 {
		return "", nil, fmt.Errorf("%w: keyword length", ErrInvalidText)
	}
	return string(data[:i]), data[i+1:], nil
}

func parseTEXt(data []byte) (Text, error) {
	k, rest, err := splitKeyword(data)
	if err != nil {
		return Text{}, err
	}
	return Text{Keyword: k, Text: string(rest)}, nil
}

func parseZTXt(data []byte, opts *zlib.DecompressOptions) (Text, error) {
	k, rest, err := splitKeyword(data)
	if err != nil {
		return Text{}, err
	}
	if len(rest) < 1 || rest[0] != 0 {
		return Text{}, fmt.Errorf("%w: zTXt compression method", ErrInvalidText)
	}
	text, err := zlib.Decompress(rest[1:], opts)
	if err != nil {
		return Text{}, fmt.Errorf("zTXt %q: %w", k, err)
	}
	return Text{Keyword: k, Text: string(text)}, nil
}

func parseITXt(data []byte, opts *zlib.DecompressOptions) (Text, error) {
	k, rest, err := splitKeyword(data)
	if err != nil {
		return Text{}, err
	}
	if len(rest) < 2 {
		return Text{}, fmt.Errorf("%w: iTXt too short", ErrInvalidText)
	}
	compressed, method := rest[0], rest[1]
	rest = rest[2:]

	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return Text{}, fmt.Errorf("%w: iTXt language tag", ErrInvalidText)
	}
	lang := string(rest[:i])
	rest = rest[i+1:]
	i = bytes.IndexByte(rest, 0)
	if i < 0 {
		return Text{}, fmt.Errorf("%w: iTXt translated keyword", ErrInvalidText)
	}
	transKey := string(rest[:i])
	rest = rest[i+1:]

	text := rest
	if compressed != 0 {
		if method != 0 {
			return Text{}, fmt.Errorf("%w: iTXt compression method %d", ErrInvalidText, method)
		}
		if text, err = zlib.Decompress(rest, opts); err != nil {
			return Text{}, fmt.Errorf("iTXt %q: %w", k, err)
		}
	}
	return Text{
		Keyword:           k,
		Text:              string(text),
		International:     true,
		LanguageTag:       lang,
		TranslatedKeyword: transKey,
	}, nil
}

// appendText appends the chunk for t. With compress set the compressed
// form is used when it is smaller.
func appendText(dst []byte, t Text, compress bool, params *deflate.Parameters) ([]byte, error) {
	if !validKeyword(t.Keyword) {
		return nil, fmt.Errorf("%w: keyword %q", ErrInvalidText, t.Keyword)
	}

	var packed []byte
	if compress {
		z, err := zlib.Compress([]byte(t.Text), params)
		if err != nil {
			return nil, err
		}
		if len(z) < len(t.Text) {
			packed = z
		}
	}

	var b []byte
	b = append(b, t.Keyword...)
	b = append(b, 0)
	switch {
	case t.International:
		if packed != nil {
			b = append(b, 1, 0)
		} else {
			b = append(b, 0, 0)
		}
		b = append(b, t.LanguageTag...)
		b = append(b, 0)
		b = append(b, t.TranslatedKeyword...)
		b = append(b, 0)
		if packed != nil {
			b = append(b, packed...)
		} else {
			b = append(b, t.Text...)
		}
		return AppendChunk(dst, chunkITXT, b), nil
	case packed != nil:
		b = append(b, 0)
		b = append(b, packed...)
		return AppendChunk(dst, chunkZTXT, b), nil
	default:
		b = append(b, t.Text...)
		return AppendChunk(dst, chunkTEXT, b), nil
	}
}

func parseTIME(data []byte) (*time.Time, error) {
	if len(data) != 7 {
		return nil, fmt.Errorf("%w: tIME length %d", ErrInvalidAncillary, len(data))
	}
	t := time.Date(int(binary.BigEndian.Uint16(data)), time.Month(data[2]), int(data[3]),
		int(data[4]), int(data[5]), int(data[6]), 0, time.UTC)
	return &t, nil
}

func encodeTIME(t time.Time) []byte {
	t = t.UTC()
	b := binary.BigEndian.AppendUint16(nil, uint16(t.Year()))
	return append(b, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()))
}

func parsePHYs(data []byte) (*PhysicalDims, error) {
	if len(data) != 9 {
		return nil, fmt.Errorf("%w: pHYs length %d", ErrInvalidAncillary, len(data))
	}
	return &PhysicalDims{
		X:    binary.BigEndian.Uint32(data[0:]),
		Y:    binary.BigEndian.Uint32(data[4:]),
		Unit: data[8],
	}, nil
}

func encodePHYs(p *PhysicalDims) []byte {
	b := binary.BigEndian.AppendUint32(nil, p.X)
	b = binary.BigEndian.AppendUint32(b, p.Y)
	return append(b, p.Unit)
}

func parseGAMA(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: gAMA length %d", ErrInvalidAncillary, len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}
