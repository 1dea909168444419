package deflate

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-png-codec/bitstream"
	"github.com/cocosip/go-png-codec/huffman"
)

// Decode decompresses a raw RFC 1951 stream
func Decode(data []byte) ([]byte, error) {
	return DecodeWithSize(data, 0)
}

// maxExpansion is the largest output/input ratio a DEFLATE stream can reach
// (a 258 byte match costs at least 2 bits)
const maxExpansion = 1032

// DecodeWithSize decompresses a raw RFC 1951 stream, reserving up to
// sizeHint bytes of output up front. The reservation never exceeds what
// data could expand to. Bytes after the final block are ignored.
func DecodeWithSize(data []byte, sizeHint int) ([]byte, error) {
	if sizeHint <= 0 {
		sizeHint = len(data) * 3
	}
	if limit := len(data)*maxExpansion + 64; sizeHint > limit {
		sizeHint = limit
	}
	d := &decoder{
		r:   bitstream.NewReader(data),
		out: make([]byte, 0, sizeHint),
	}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.out, nil
}

type decoder struct {
	r   *bitstream.Reader
	out []byte
}

func (d *decoder) decode() error {
	for block := 0; ; block++ {
		final, err := d.bits(1)
		if err != nil {
			return err
		}
		btype, err := d.bits(2)
		if err != nil {
			return err
		}

		logger.Debug().
			Int("block", block).
			Uint32("btype", btype).
			Bool("final", final == 1).
			Int("bitPos", d.r.BitPos()).
			Msg("deflate block header")

		switch BlockType(btype) {
		case BlockStored:
			err = d.storedBlock()
		case BlockFixed:
			err = d.huffmanBlock(fixedLitLenTree, fixedDistTree)
		case BlockDynamic:
			var lit, dist *huffman.Tree
			lit, dist, err = d.readDynamicTrees()
			if err == nil {
				err = d.huffmanBlock(lit, dist)
			}
		default:
			return ErrInvalidBlockType
		}
		if err != nil {
			return err
		}
		if final == 1 {
			return nil
		}
	}
}

func (d *decoder) bits(n int) (uint32, error) {
	v, err := d.r.ReadBits(n)
	if err != nil {
		return 0, ErrUnexpectedEnd
	}
	return v, nil
}

func (d *decoder) storedBlock() error {
	d.r.AlignToByte()
	hdr, err := d.r.ReadBytes(4)
	if err != nil {
		return ErrUnexpectedEnd
	}
	n := int(hdr[0]) | int(hdr[1])<<8
	nlen := int(hdr[2]) | int(hdr[3])<<8
	if n != ^nlen&0xFFFF {
		return fmt.Errorf("%w: LEN %d NLEN %d", ErrStoredLengthMismatch, n, nlen)
	}
	payload, err := d.r.ReadBytes(n)
	if err != nil {
		return ErrUnexpectedEnd
	}
	d.out = append(d.out, payload...)
	return nil
}

// symbol decodes one Huffman coded symbol bit by bit
func (d *decoder) symbol(t *huffman.Tree) (int, error) {
	pos := 0
	for {
		bit, err := d.r.ReadBit()
		if err != nil {
			return 0, ErrUnexpectedEnd
		}
		next, sym, done, err := t.Step(pos, bit)
		if err != nil {
			return 0, fmt.Errorf("deflate: %w", err)
		}
		if done {
			return sym, nil
		}
		pos = next
	}
}

func (d *decoder) huffmanBlock(lit, dist *huffman.Tree) error {
	for {
		sym, err := d.symbol(lit)
		if err != nil {
			return err
		}
		switch {
		case sym < endOfBlock:
			d.out = append(d.out, byte(sym))
			continue
		case sym == endOfBlock:
			return nil
		case sym >= numLitLenSymbols:
			return fmt.Errorf("%w: %d", ErrInvalidLengthSymbol, sym)
		}

		ls := sym - firstLengthSymbol
		extra, err := d.bits(lengthExtra[ls])
		if err != nil {
			return err
		}
		length := lengthBase[ls] + int(extra)

		ds, err := d.symbol(dist)
		if err != nil {
			return err
		}
		if ds >= numDistSymbols {
			return fmt.Errorf("%w: %d", ErrInvalidDistanceSymbol, ds)
		}
		extra, err = d.bits(distanceExtra[ds])
		if err != nil {
			return err
		}
		distance := distanceBase[ds] + int(extra)
		if distance > len(d.out) {
			return fmt.Errorf("%w: distance %d with %d bytes decoded", ErrDistanceTooFar, distance, len(d.out))
		}

		// byte by byte: the source may overlap the bytes being produced
		start := len(d.out) - distance
		for i := 0; i < length; i++ {
			d.out = append(d.out, d.out[start+i])
		}
	}
}

func (d *decoder) readDynamicTrees() (*huffman.Tree, *huffman.Tree, error) {
	v, err := d.bits(5)
	if err != nil {
		return nil, nil, err
	}
	hlit := int(v) + firstLengthSymbol
	if v, err = d.bits(5); err != nil {
		return nil, nil, err
	}
	hdist := int(v) + 1
	if v, err = d.bits(4); err != nil {
		return nil, nil, err
	}
	hclen := int(v) + 4

	clLengths := make([]int, numCodeLenSymbols)
	for i := 0; i < hclen; i++ {
		if v, err = d.bits(3); err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clTree, err := huffman.FromLengths(clLengths, maxCodeLenBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: code length code: %w", ErrInvalidCodeLengths, err)
	}

	lengths := make([]int, hlit+hdist)
	for i := 0; i < len(lengths); {
		sym, err := d.symbol(clTree)
		if err != nil {
			return nil, nil, err
		}

		var value, repeat int
		switch {
		case sym < 16:
			lengths[i] = sym
			i++
			continue
		case sym == 16:
			if i == 0 {
				return nil, nil, fmt.Errorf("%w: repeat with no previous length", ErrInvalidCodeLengths)
			}
			if v, err = d.bits(2); err != nil {
				return nil, nil, err
			}
			value, repeat = lengths[i-1], 3+int(v)
		case sym == 17:
			if v, err = d.bits(3); err != nil {
				return nil, nil, err
			}
			repeat = 3 + int(v)
		default:
			if v, err = d.bits(7); err != nil {
				return nil, nil, err
			}
			repeat = 11 + int(v)
		}
		if i+repeat > len(lengths) {
			return nil, nil, fmt.Errorf("%w: repeat of %d overruns %d lengths", ErrInvalidCodeLengths, repeat, len(lengths))
		}
		for ; repeat > 0; repeat-- {
			lengths[i] = value
			i++
		}
	}

	litLengths := make([]int, litLenTableSize)
	copy(litLengths, lengths[:hlit])
	distLengths := make([]int, distTableSize)
	copy(distLengths, lengths[hlit:])

	if litLengths[endOfBlock] == 0 {
		return nil, nil, ErrMissingEndOfBlock
	}

	lit, err := huffman.FromLengths(litLengths, maxCodeBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: literal/length code: %w", ErrInvalidCodeLengths, err)
	}
	dist, err := huffman.FromLengths(distLengths, maxCodeBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: distance code: %w", ErrInvalidCodeLengths, err)
	}
	return lit, dist, nil
}

// IsFormatError reports whether err was caused by malformed compressed data
func IsFormatError(err error) bool {
	for _, target := range []error{
		ErrInvalidBlockType, ErrStoredLengthMismatch, ErrUnexpectedEnd,
		ErrInvalidCodeLengths, ErrMissingEndOfBlock, ErrInvalidLengthSymbol,
		ErrInvalidDistanceSymbol, ErrDistanceTooFar, huffman.ErrInvalidCode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
