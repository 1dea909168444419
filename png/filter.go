package png

import (
	"fmt"
	"math"
)

// Scanline filter types
const (
	filterNone    = 0
	filterSub     = 1
	filterUp      = 2
	filterAverage = 3
	filterPaeth   = 4
)

// FilterStrategy selects the scanline filter the encoder uses per row
type FilterStrategy int

const (
	// FilterMinSum picks, per row, the filter with the smallest sum of
	// absolute filtered byte values
	FilterMinSum FilterStrategy = iota
	// FilterEntropy picks, per row, the filter whose output has the lowest
	// Shannon entropy
	FilterEntropy
	FilterNone
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

var filterStrategyNames = map[FilterStrategy]string{
	FilterMinSum:  "minsum",
	FilterEntropy: "entropy",
	FilterNone:    "none",
	FilterSub:     "sub",
	FilterUp:      "up",
	FilterAverage: "average",
	FilterPaeth:   "paeth",
}

func (s FilterStrategy) String() string {
	if name, ok := filterStrategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("FilterStrategy(%d)", int(s))
}

// ParseFilterStrategy parses a strategy name as printed by String
func ParseFilterStrategy(name string) (FilterStrategy, error) {
	for s, n := range filterStrategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("png: unknown filter strategy %q", name)
}

// fixedType returns the filter byte of a fixed strategy
func (s FilterStrategy) fixedType() (byte, bool) {
	if s >= FilterNone && s <= FilterPaeth {
		return byte(s - FilterNone), true
	}
	return 0, false
}

// paeth returns whichever of a (left), b (up), c (upper left) is closest
// to a+b-c, preferring a then b on ties
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// unfilterScanline reconstructs one row. precon is the previous
// reconstructed row or nil for the first row. recon and scanline may alias.
func unfilterScanline(recon, scanline, precon []byte, bytewidth int, filterType byte) error {
	n := len(scanline)
	switch filterType {
	case filterNone:
		copy(recon, scanline)
	case filterSub:
		copy(recon[:bytewidth], scanline[:bytewidth])
		for i := bytewidth; i < n; i++ {
			recon[i] = scanline[i] + recon[i-bytewidth]
		}
	case filterUp:
		if precon == nil {
			copy(recon, scanline)
			break
		}
		for i := 0; i < n; i++ {
			recon[i] = scanline[i] + precon[i]
		}
	case filterAverage:
		if precon == nil {
			copy(recon[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < n; i++ {
				recon[i] = scanline[i] + recon[i-bytewidth]/2
			}
			break
		}
		for i := 0; i < bytewidth && i < n; i++ {
			recon[i] = scanline[i] + precon[i]/2
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = scanline[i] + byte((int(recon[i-bytewidth])+int(precon[i]))/2)
		}
	case filterPaeth:
		if precon == nil {
			// with no row above Paeth reduces to Sub
			copy(recon[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < n; i++ {
				recon[i] = scanline[i] + recon[i-bytewidth]
			}
			break
		}
		for i := 0; i < bytewidth && i < n; i++ {
			recon[i] = scanline[i] + precon[i]
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = scanline[i] + paeth(recon[i-bytewidth], precon[i], precon[i-bytewidth])
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidFilterType, filterType)
	}
	return nil
}

// filterScanline applies filterType to one row. prevline is the previous
// unfiltered row or nil for the first row.
func filterScanline(out, scanline, prevline []byte, bytewidth int, filterType byte) {
	n := len(scanline)
	left := func(i int) byte {
		if i < bytewidth {
			return 0
		}
		return scanline[i-bytewidth]
	}
	up := func(i int) byte {
		if prevline == nil {
			return 0
		}
		return prevline[i]
	}
	upLeft := func(i int) byte {
		if prevline == nil || i < bytewidth {
			return 0
		}
		return prevline[i-bytewidth]
	}

	switch filterType {
	case filterNone:
		copy(out, scanline)
	case filterSub:
		for i := 0; i < n; i++ {
			out[i] = scanline[i] - left(i)
		}
	case filterUp:
		for i := 0; i < n; i++ {
			out[i] = scanline[i] - up(i)
		}
	case filterAverage:
		for i := 0; i < n; i++ {
			out[i] = scanline[i] - byte((int(left(i))+int(up(i)))/2)
		}
	case filterPaeth:
		for i := 0; i < n; i++ {
			out[i] = scanline[i] - paeth(left(i), up(i), upLeft(i))
		}
	}
}

// unfilterImage reverses filtering of h rows. in holds the filter byte
// followed by linebytes bytes per row; out receives h*linebytes bytes.
func unfilterImage(out, in []byte, w, h, bpp int) error {
	bytewidth := (bpp + 7) / 8
	linebytes := (w*bpp + 7) / 8
	var prev []byte
	for y := 0; y < h; y++ {
		inStart := y * (linebytes + 1)
		outStart := y * linebytes
		line := out[outStart : outStart+linebytes]
		if err := unfilterScanline(line, in[inStart+1:inStart+1+linebytes], prev, bytewidth, in[inStart]); err != nil {
			return fmt.Errorf("row %d: %w", y, err)
		}
		prev = line
	}
	return nil
}

// filterImage filters h rows of linebytes bytes each from in into out,
// prefixing every row with its filter type byte.
func filterImage(out, in []byte, w, h, bpp int, strategy FilterStrategy) {
	bytewidth := (bpp + 7) / 8
	linebytes := (w*bpp + 7) / 8
	if linebytes == 0 {
		return
	}

	var candidates [5][]byte
	if _, fixed := strategy.fixedType(); !fixed {
		for i := range candidates {
			candidates[i] = make([]byte, linebytes)
		}
	}

	var prev []byte
	for y := 0; y < h; y++ {
		line := in[y*linebytes : (y+1)*linebytes]
		dst := out[y*(linebytes+1) : (y+1)*(linebytes+1)]

		if t, fixed := strategy.fixedType(); fixed {
			dst[0] = t
			filterScanline(dst[1:], line, prev, bytewidth, t)
		} else {
			best, bestScore := 0, math.Inf(1)
			for t := range candidates {
				filterScanline(candidates[t], line, prev, bytewidth, byte(t))
				var score float64
				if strategy == FilterEntropy {
					score = entropy(candidates[t])
				} else {
					score = float64(absSum(candidates[t], byte(t)))
				}
				if score < bestScore {
					best, bestScore = t, score
				}
			}
			dst[0] = byte(best)
			copy(dst[1:], candidates[best])
		}
		prev = line
	}
}

// absSum scores a filtered row. Bytes of filtered rows are treated as
// signed differences; unfiltered rows are summed as-is.
func absSum(row []byte, filterType byte) int {
	sum := 0
	if filterType == filterNone {
		for _, v := range row {
			sum += int(v)
		}
		return sum
	}
	for _, v := range row {
		if v < 128 {
			sum += int(v)
		} else {
			sum += 256 - int(v)
		}
	}
	return sum
}

func entropy(row []byte) float64 {
	var count [256]int
	for _, v := range row {
		count[v]++
	}
	n := float64(len(row))
	e := 0.0
	for _, c := range count {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		e -= p * math.Log2(p)
	}
	return e
}

// removePaddingBits packs h rows of ilinebits (stored in whole bytes)
// into a stream of olinebits per row with no padding.
func removePaddingBits(out, in []byte, olinebits, ilinebits, h int) {
	diff := ilinebits - olinebits
	ibp, obp := 0, 0
	for y := 0; y < h; y++ {
		for x := 0; x < olinebits; x++ {
			bit := (in[ibp>>3] >> uint(7-(ibp&7))) & 1
			out[obp>>3] |= bit << uint(7-(obp&7))
			ibp++
			obp++
		}
		ibp += diff
	}
}

// addPaddingBits is the inverse of removePaddingBits. out must be zeroed.
func addPaddingBits(out, in []byte, olinebits, ilinebits, h int) {
	diff := olinebits - ilinebits
	ibp, obp := 0, 0
	for y := 0; y < h; y++ {
		for x := 0; x < ilinebits; x++ {
			bit := (in[ibp>>3] >> uint(7-(ibp&7))) & 1
			out[obp>>3] |= bit << uint(7-(obp&7))
			ibp++
			obp++
		}
		obp += diff
	}
}
