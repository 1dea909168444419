package png

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"math/rand"
	"testing"

	"github.com/mi-v/img1b"
)

func randomNRGBA(rng *rand.Rand, w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(m.Pix)
	return m
}

func TestStdlibDecodesOurOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	src := randomNRGBA(rng, 23, 19)

	for _, interlace := range []bool{false, true} {
		opts := DefaultEncodeOptions()
		opts.Interlace = interlace
		var buf bytes.Buffer
		if err := EncodeImage(&buf, src, opts); err != nil {
			t.Fatalf("EncodeImage failed: %v", err)
		}

		got, err := stdpng.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("interlace=%v: image/png rejected our output: %v", interlace, err)
		}
		nrgba, ok := got.(*image.NRGBA)
		if !ok {
			t.Fatalf("image/png decoded %T", got)
		}
		if !bytes.Equal(nrgba.Pix, src.Pix) {
			t.Errorf("interlace=%v: pixels differ", interlace)
		}
	}
}

func TestWeDecodeStdlibOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	src := randomNRGBA(rng, 31, 17)

	for _, level := range []stdpng.CompressionLevel{stdpng.NoCompression, stdpng.BestSpeed, stdpng.DefaultCompression, stdpng.BestCompression} {
		enc := stdpng.Encoder{CompressionLevel: level}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, src); err != nil {
			t.Fatalf("image/png Encode: %v", err)
		}
		pix, w, h, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("level %d: Decode failed: %v", level, err)
		}
		if w != 31 || h != 17 || !bytes.Equal(pix, src.Pix) {
			t.Errorf("level %d: decoded image differs", level)
		}
	}
}

func TestWeDecodeStdlibGrey16(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 5, 4))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 37)
	}
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, src); err != nil {
		t.Fatalf("image/png Encode: %v", err)
	}

	m, err := DecodeImage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	g, ok := m.(*image.Gray16)
	if !ok {
		t.Fatalf("DecodeImage returned %T, want *image.Gray16", m)
	}
	if !bytes.Equal(g.Pix, src.Pix) {
		t.Error("16-bit samples differ")
	}
}

func TestPalettedInterop(t *testing.T) {
	pal := color.Palette{
		color.NRGBA{0, 0, 0, 255},
		color.NRGBA{200, 10, 10, 255},
		color.NRGBA{10, 200, 10, 255},
		color.NRGBA{10, 10, 200, 255},
		color.NRGBA{90, 90, 90, 255},
	}
	src := image.NewPaletted(image.Rect(0, 0, 11, 6), pal)
	for i := range src.Pix {
		src.Pix[i] = uint8(i % len(pal))
	}

	var buf bytes.Buffer
	if err := EncodeImage(&buf, src, nil); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	hdr, err := Inspect(buf.Bytes())
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if hdr.ColorType != ColorPalette || hdr.BitDepth != 4 {
		t.Errorf("header %s/%d, want palette/4", hdr.ColorType, hdr.BitDepth)
	}

	theirs, err := stdpng.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("image/png rejected our output: %v", err)
	}
	tp, ok := theirs.(*image.Paletted)
	if !ok {
		t.Fatalf("image/png decoded %T", theirs)
	}
	if !bytes.Equal(tp.Pix, src.Pix) {
		t.Error("image/png sees different indices")
	}

	ours, err := DecodeImage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	op, ok := ours.(*image.Paletted)
	if !ok {
		t.Fatalf("DecodeImage returned %T", ours)
	}
	if !bytes.Equal(op.Pix, src.Pix) || len(op.Palette) != len(pal) {
		t.Error("decoded paletted image differs")
	}
}

func TestBilevelBridge(t *testing.T) {
	rect := image.Rect(0, 0, 13, 5)
	src := img1b.New(rect, color.Palette{color.Black, color.White})
	for y := 0; y < 5; y++ {
		for x := 0; x < 13; x++ {
			if (x+y)%3 == 0 {
				src.SetColorIndex(x, y, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := EncodeImage(&buf, src, nil); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	hdr, err := Inspect(buf.Bytes())
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if hdr.ColorType != ColorPalette || hdr.BitDepth != 1 {
		t.Errorf("header %s/%d, want palette/1", hdr.ColorType, hdr.BitDepth)
	}

	m, err := DecodeImage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	got, ok := m.(*img1b.Image)
	if !ok {
		t.Fatalf("DecodeImage returned %T, want *img1b.Image", m)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 13; x++ {
			if got.ColorIndexAt(x, y) != src.ColorIndexAt(x, y) {
				t.Fatalf("pixel (%d,%d) index %d, want %d", x, y, got.ColorIndexAt(x, y), src.ColorIndexAt(x, y))
			}
		}
	}

	// the standard decoder agrees on every pixel
	theirs, err := stdpng.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("image/png rejected our output: %v", err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 13; x++ {
			r1, g1, b1, a1 := theirs.At(x, y).RGBA()
			r2, g2, b2, a2 := src.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) differs from image/png", x, y)
			}
		}
	}
}

func TestEncodeImageSubRect(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	full := randomNRGBA(rng, 10, 10)
	sub := full.SubImage(image.Rect(2, 3, 7, 9)).(*image.NRGBA)

	var buf bytes.Buffer
	if err := EncodeImage(&buf, sub, nil); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	pix, w, h, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != 5 || h != 6 {
		t.Fatalf("size %dx%d, want 5x6", w, h)
	}
	for y := 0; y < h; y++ {
		row := full.Pix[full.PixOffset(2, 3+y) : full.PixOffset(2, 3+y)+4*w]
		if !bytes.Equal(pix[y*4*w:(y+1)*4*w], row) {
			t.Fatalf("row %d differs", y)
		}
	}
}

func TestDecodeConfig(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 7, 3))
	var buf bytes.Buffer
	if err := EncodeImage(&buf, src, nil); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 7 || cfg.Height != 3 || cfg.ColorModel != color.GrayModel {
		t.Errorf("config = %dx%d %v", cfg.Width, cfg.Height, cfg.ColorModel)
	}
}
