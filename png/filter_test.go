package png

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestPaethTieBreak(t *testing.T) {
	tests := []struct {
		a, b, c, want byte
	}{
		{3, 3, 0, 3}, // a and b tie, a wins
		{6, 0, 4, 0}, // b and c tie, b wins
		{9, 5, 7, 7},
		{2, 4, 0, 4},
		{0, 0, 0, 0},
		{255, 255, 255, 255},
	}
	for _, tt := range tests {
		if got := paeth(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("paeth(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

func TestScanlineFilterRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for bytewidth := 1; bytewidth <= 8; bytewidth++ {
		n := bytewidth*5 + 3
		line := make([]byte, n)
		prev := make([]byte, n)
		rng.Read(line)
		rng.Read(prev)

		for ft := byte(0); ft <= 4; ft++ {
			for _, p := range [][]byte{nil, prev} {
				filtered := make([]byte, n)
				filterScanline(filtered, line, p, bytewidth, ft)
				recon := make([]byte, n)
				if err := unfilterScanline(recon, filtered, p, bytewidth, ft); err != nil {
					t.Fatalf("unfilterScanline: %v", err)
				}
				if !bytes.Equal(recon, line) {
					t.Errorf("bytewidth %d filter %d prev=%v: round trip mismatch", bytewidth, ft, p != nil)
				}
			}
		}
	}
}

func TestUnfilterInvalidType(t *testing.T) {
	out := make([]byte, 4)
	if err := unfilterImage(out, []byte{5, 1, 2, 3, 4}, 4, 1, 8); err == nil {
		t.Fatal("filter type 5 accepted")
	}
}

func TestFilterImageRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	strategies := []FilterStrategy{FilterMinSum, FilterEntropy, FilterNone, FilterSub, FilterUp, FilterAverage, FilterPaeth}

	for _, bpp := range []int{1, 2, 4, 8, 16, 24, 32, 48, 64} {
		for _, size := range [][2]int{{1, 1}, {5, 3}, {17, 9}} {
			w, h := size[0], size[1]
			linebytes := (w*bpp + 7) / 8
			img := make([]byte, h*linebytes)
			rng.Read(img)

			for _, s := range strategies {
				filtered := make([]byte, h*(linebytes+1))
				filterImage(filtered, img, w, h, bpp, s)
				for y := 0; y < h; y++ {
					if ft := filtered[y*(linebytes+1)]; ft > 4 {
						t.Fatalf("row %d filter type %d", y, ft)
					}
				}

				recon := make([]byte, len(img))
				if err := unfilterImage(recon, filtered, w, h, bpp); err != nil {
					t.Fatalf("bpp %d %dx%d %s: unfilter: %v", bpp, w, h, s, err)
				}
				if !bytes.Equal(recon, img) {
					t.Errorf("bpp %d %dx%d %s: round trip mismatch", bpp, w, h, s)
				}
			}
		}
	}
}

func TestFixedStrategyWritesItsType(t *testing.T) {
	img := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for s := FilterNone; s <= FilterPaeth; s++ {
		filtered := make([]byte, 3*4)
		filterImage(filtered, img, 3, 3, 8, s)
		want, _ := s.fixedType()
		for y := 0; y < 3; y++ {
			if filtered[y*4] != want {
				t.Errorf("%s: row %d has type %d, want %d", s, y, filtered[y*4], want)
			}
		}
	}
}

func TestMinSumPrefersUpForVerticalGradient(t *testing.T) {
	// every row equals the previous one, so Up gives all zeros from row 1
	w, h := 16, 4
	img := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img[y*w+x] = byte(x * 13)
		}
	}
	filtered := make([]byte, h*(w+1))
	filterImage(filtered, img, w, h, 8, FilterMinSum)
	for y := 1; y < h; y++ {
		if ft := filtered[y*(w+1)]; ft != filterUp && ft != filterPaeth {
			t.Errorf("row %d chose filter %d, want Up or Paeth", y, ft)
		}
	}
}

func TestPaddingBits(t *testing.T) {
	// 3 rows of 5 bits
	packed := []byte{0b10110_011, 0b01_11100_0}
	padded := make([]byte, 3)
	addPaddingBits(padded, packed, 8, 5, 3)
	want := []byte{0b10110_000, 0b01101_000, 0b11100_000}
	if !bytes.Equal(padded, want) {
		t.Fatalf("addPaddingBits = %08b, want %08b", padded, want)
	}

	back := make([]byte, 2)
	removePaddingBits(back, padded, 5, 8, 3)
	if !bytes.Equal(back, packed) {
		t.Errorf("removePaddingBits = %08b, want %08b", back, packed)
	}
}

func TestAdam7PassGeometry(t *testing.T) {
	passes, _, _, _ := adam7Passes(8, 8, 8)
	want := [7][2]int{{1, 1}, {1, 1}, {2, 1}, {2, 2}, {4, 2}, {4, 4}, {8, 4}}
	total := 0
	for i, p := range passes {
		if p.w != want[i][0] || p.h != want[i][1] {
			t.Errorf("pass %d is %dx%d, want %dx%d", i+1, p.w, p.h, want[i][0], want[i][1])
		}
		total += p.w * p.h
	}
	if total != 64 {
		t.Errorf("passes cover %d pixels, want 64", total)
	}

	// a 1x1 image only has pixels in the first pass
	passes, _, _, _ = adam7Passes(1, 1, 8)
	for i, p := range passes {
		if (i == 0) != (p.w*p.h == 1) {
			t.Errorf("1x1 image: pass %d is %dx%d", i+1, p.w, p.h)
		}
	}
}

func TestAdam7RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, bpp := range []int{1, 2, 4, 8, 16, 24, 32, 48, 64} {
		for _, size := range [][2]int{{1, 1}, {3, 9}, {8, 8}, {13, 7}, {32, 1}} {
			w, h := size[0], size[1]
			img := make([]byte, (w*h*bpp+7)/8)
			rng.Read(img)
			maskTrailingBits(img, w*h*bpp)

			passes := Adam7Interlace(img, w, h, bpp)
			back := Adam7Deinterlace(passes, w, h, bpp)
			if !bytes.Equal(back, img) {
				t.Errorf("bpp %d %dx%d: deinterlace(interlace(img)) differs", bpp, w, h)
			}
		}
	}
}

// maskTrailingBits clears the bits after the first nbits of buf
func maskTrailingBits(buf []byte, nbits int) {
	if rem := nbits % 8; rem != 0 {
		buf[len(buf)-1] &= 0xFF << uint(8-rem)
	}
}
