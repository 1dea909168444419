package png

// adam7 holds (startX, startY, strideX, strideY) for the seven passes
var adam7 = [7][4]int{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// adam7Pass describes one reduced image and where it lives in the three
// buffer layouts: filtered (filter byte per row), padded (rows in whole
// bytes) and packed (no row padding).
type adam7Pass struct {
	w, h        int
	filterStart int
	paddedStart int
	packedStart int
}

// adam7Passes computes pass geometry for a w*h image at bpp bits per pixel.
// The returned sizes are the totals of each layout.
func adam7Passes(w, h, bpp int) (passes [7]adam7Pass, filterSize, paddedSize, packedSize int) {
	for i, p := range adam7 {
		pw := (w + p[2] - p[0] - 1) / p[2]
		ph := (h + p[3] - p[1] - 1) / p[3]
		if pw == 0 || ph == 0 {
			pw, ph = 0, 0
		}
		passes[i] = adam7Pass{
			w:           pw,
			h:           ph,
			filterStart: filterSize,
			paddedStart: paddedSize,
			packedStart: packedSize,
		}
		if pw > 0 {
			filterSize += ph * (1 + (pw*bpp+7)/8)
		}
		paddedSize += ph * ((pw*bpp + 7) / 8)
		packedSize += (ph*pw*bpp + 7) / 8
	}
	return
}

// Adam7Deinterlace scatters the seven packed passes (concatenated, each
// starting on a byte boundary) into a packed w*h image.
func Adam7Deinterlace(passData []byte, w, h, bpp int) []byte {
	passes, _, _, _ := adam7Passes(w, h, bpp)
	out := make([]byte, (w*h*bpp+7)/8)

	for i, p := range passes {
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				ox := adam7[i][0] + x*adam7[i][2]
				oy := adam7[i][1] + y*adam7[i][3]
				src := y*p.w + x
				dst := oy*w + ox
				if bpp >= 8 {
					bw := bpp / 8
					copy(out[dst*bw:(dst+1)*bw], passData[p.packedStart+src*bw:])
				} else {
					v := readBitsMSB(passData, p.packedStart*8+src*bpp, bpp)
					writeBitsMSB(out, dst*bpp, bpp, v)
				}
			}
		}
	}
	return out
}

// Adam7Interlace gathers a packed w*h image into seven packed passes
func Adam7Interlace(img []byte, w, h, bpp int) []byte {
	passes, _, _, packedSize := adam7Passes(w, h, bpp)
	out := make([]byte, packedSize)

	for i, p := range passes {
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				ix := adam7[i][0] + x*adam7[i][2]
				iy := adam7[i][1] + y*adam7[i][3]
				src := iy*w + ix
				dst := y*p.w + x
				if bpp >= 8 {
					bw := bpp / 8
					copy(out[p.packedStart+dst*bw:p.packedStart+(dst+1)*bw], img[src*bw:])
				} else {
					v := readBitsMSB(img, src*bpp, bpp)
					writeBitsMSB(out, p.packedStart*8+dst*bpp, bpp, v)
				}
			}
		}
	}
	return out
}
