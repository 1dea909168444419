package deflate

import (
	"fmt"

	"github.com/cocosip/go-png-codec/bitstream"
	"github.com/cocosip/go-png-codec/huffman"
	"github.com/cocosip/go-png-codec/lz77"
)

// Encode compresses data into a raw RFC 1951 stream.
// A nil params uses DefaultParameters.
func Encode(data []byte, params *Parameters) ([]byte, error) {
	if params == nil {
		params = DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	w := bitstream.NewWriter(len(data)/2 + 64)
	if params.BlockType == BlockStored {
		writeStoredBlocks(w, data)
		return w.Bytes(), nil
	}

	var matcher *lz77.Matcher
	if params.UseLZ77 {
		var err error
		matcher, err = lz77.NewMatcher(params.WindowSize, params.MaxChainLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
	}

	blockSize := params.blockSizeFor(len(data))
	var tokens []lz77.Token
	pos := 0
	for {
		end := pos + blockSize
		if end > len(data) {
			end = len(data)
		}
		final := end == len(data)

		tokens = tokens[:0]
		if matcher != nil {
			tokens = matcher.Encode(data, pos, end, tokens)
		} else {
			tokens = lz77.Literals(data, pos, end, tokens)
		}

		var err error
		if params.BlockType == BlockFixed {
			writeFixedBlock(w, tokens, final)
		} else {
			err = writeDynamicBlock(w, tokens, final)
		}
		if err != nil {
			return nil, err
		}

		logger.Debug().
			Str("type", params.BlockType.String()).
			Int("start", pos).
			Int("size", end-pos).
			Int("tokens", len(tokens)).
			Bool("final", final).
			Msg("deflate block written")

		if final {
			break
		}
		pos = end
	}
	return w.Bytes(), nil
}

// writeStoredBlocks emits data as uncompressed blocks. Empty input still
// produces one final block.
func writeStoredBlocks(w *bitstream.Writer, data []byte) {
	pos := 0
	for {
		n := len(data) - pos
		if n > maxStoredBlock {
			n = maxStoredBlock
		}
		final := pos+n == len(data)

		writeBlockHeader(w, final, BlockStored)
		w.AlignToByte()
		w.WriteBytes([]byte{
			byte(n), byte(n >> 8),
			^byte(n), ^byte(n >> 8),
		})
		w.WriteBytes(data[pos : pos+n])

		pos += n
		if final {
			return
		}
	}
}

func writeBlockHeader(w *bitstream.Writer, final bool, t BlockType) {
	if final {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
	w.WriteBits(uint32(t), 2)
}

var fixedLitLenTree, fixedDistTree = mustFixedTrees()

func mustFixedTrees() (*huffman.Tree, *huffman.Tree) {
	lit, err := huffman.FromLengths(fixedLitLenLengths(), maxCodeBits)
	if err != nil {
		panic(err)
	}
	dist, err := huffman.FromLengths(fixedDistLengths(), maxCodeBits)
	if err != nil {
		panic(err)
	}
	return lit, dist
}

func writeFixedBlock(w *bitstream.Writer, tokens []lz77.Token, final bool) {
	writeBlockHeader(w, final, BlockFixed)
	writeTokens(w, tokens, fixedLitLenTree, fixedDistTree)
}

// writeTokens writes the token stream followed by the end-of-block code
func writeTokens(w *bitstream.Writer, tokens []lz77.Token, lit, dist *huffman.Tree) {
	for _, tok := range tokens {
		if tok.IsLiteral() {
			writeSymbol(w, lit, int(tok.Literal))
			continue
		}
		length, distance := int(tok.Length), int(tok.Distance)

		ls := lengthSymbol(length)
		writeSymbol(w, lit, firstLengthSymbol+ls)
		w.WriteBits(uint32(length-lengthBase[ls]), lengthExtra[ls])

		ds := distanceSymbol(distance)
		writeSymbol(w, dist, ds)
		w.WriteBits(uint32(distance-distanceBase[ds]), distanceExtra[ds])
	}
	writeSymbol(w, lit, endOfBlock)
}

func writeSymbol(w *bitstream.Writer, t *huffman.Tree, sym int) {
	w.WriteReversed(t.Code(sym), t.Length(sym))
}

// clSymbol is one entry of the run-length coded code length sequence
type clSymbol struct {
	symbol int
	extra  uint32
}

func writeDynamicBlock(w *bitstream.Writer, tokens []lz77.Token, final bool) error {
	litFreq := make([]int, numLitLenSymbols)
	distFreq := make([]int, numDistSymbols)
	for _, tok := range tokens {
		if tok.IsLiteral() {
			litFreq[tok.Literal]++
			continue
		}
		litFreq[firstLengthSymbol+lengthSymbol(int(tok.Length))]++
		distFreq[distanceSymbol(int(tok.Distance))]++
	}
	litFreq[endOfBlock] = 1

	litTree, err := huffman.FromFrequencies(litFreq, maxCodeBits)
	if err != nil {
		return fmt.Errorf("deflate: literal/length code: %w", err)
	}
	distTree, err := huffman.FromFrequencies(distFreq, maxCodeBits)
	if err != nil {
		return fmt.Errorf("deflate: distance code: %w", err)
	}

	litLengths := litTree.Lengths()
	distLengths := distTree.Lengths()

	hlit := numLitLenSymbols
	for hlit > firstLengthSymbol && litLengths[hlit-1] == 0 {
		hlit--
	}
	hdist := numDistSymbols
	for hdist > 1 && distLengths[hdist-1] == 0 {
		hdist--
	}

	all := make([]int, 0, hlit+hdist)
	all = append(all, litLengths[:hlit]...)
	all = append(all, distLengths[:hdist]...)
	rle := runLengthEncode(all)

	clFreq := make([]int, numCodeLenSymbols)
	for _, s := range rle {
		clFreq[s.symbol]++
	}
	clTree, err := huffman.FromFrequencies(clFreq, maxCodeLenBits)
	if err != nil {
		return fmt.Errorf("deflate: code length code: %w", err)
	}

	hclen := numCodeLenSymbols
	for hclen > 4 && clTree.Length(codeLengthOrder[hclen-1]) == 0 {
		hclen--
	}

	writeBlockHeader(w, final, BlockDynamic)
	w.WriteBits(uint32(hlit-firstLengthSymbol), 5)
	w.WriteBits(uint32(hdist-1), 5)
	w.WriteBits(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		w.WriteBits(uint32(clTree.Length(codeLengthOrder[i])), 3)
	}
	for _, s := range rle {
		writeSymbol(w, clTree, s.symbol)
		switch s.symbol {
		case 16:
			w.WriteBits(s.extra, 2)
		case 17:
			w.WriteBits(s.extra, 3)
		case 18:
			w.WriteBits(s.extra, 7)
		}
	}

	writeTokens(w, tokens, litTree, distTree)
	return nil
}

// runLengthEncode codes a code length sequence with the repeat symbols
// 16 (previous length 3-6 times), 17 (zero 3-10 times) and 18 (zero 11-138 times).
func runLengthEncode(lengths []int) []clSymbol {
	out := make([]clSymbol, 0, len(lengths))
	n := len(lengths)
	for i := 0; i < n; {
		v := lengths[i]
		run := 1
		for i+run < n && lengths[i+run] == v {
			run++
		}

		if v == 0 {
			for run >= 11 {
				r := min(run, 138)
				out = append(out, clSymbol{18, uint32(r - 11)})
				i += r
				run -= r
			}
			if run >= 3 {
				out = append(out, clSymbol{17, uint32(run - 3)})
				i += run
				run = 0
			}
		} else if run >= 4 {
			out = append(out, clSymbol{symbol: v})
			i++
			run--
			for run >= 3 {
				r := min(run, 6)
				out = append(out, clSymbol{16, uint32(r - 3)})
				i += r
				run -= r
			}
		}

		for ; run > 0; run-- {
			out = append(out, clSymbol{symbol: v})
			i++
		}
	}
	return out
}
