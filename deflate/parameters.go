package deflate

import (
	"fmt"

	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"

	"github.com/cocosip/go-png-codec/lz77"
)

// BlockType selects how the encoder frames compressed data
type BlockType int

const (
	// BlockStored copies input verbatim in blocks of at most 65535 bytes
	BlockStored BlockType = 0
	// BlockFixed uses the predefined Huffman codes of RFC 1951
	BlockFixed BlockType = 1
	// BlockDynamic transmits Huffman codes built for each block
	BlockDynamic BlockType = 2
)

func (t BlockType) String() string {
	switch t {
	case BlockStored:
		return "stored"
	case BlockFixed:
		return "fixed"
	case BlockDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("BlockType(%d)", int(t))
	}
}

// ParseBlockType parses "stored", "fixed" or "dynamic"
func ParseBlockType(s string) (BlockType, error) {
	switch s {
	case "stored", "0":
		return BlockStored, nil
	case "fixed", "1":
		return BlockFixed, nil
	case "dynamic", "2":
		return BlockDynamic, nil
	}
	return 0, fmt.Errorf("%w: unknown block type %q", ErrInvalidParameter, s)
}

// Parameters satisfies go-dicom's codec parameter interface
var _ dicomcodec.Parameters = (*Parameters)(nil)

// Parameters controls the encoder
type Parameters struct {
	// BlockType selects stored, fixed or dynamic blocks
	BlockType BlockType

	// UseLZ77 enables back-references; without it only literals are emitted
	UseLZ77 bool

	// WindowSize is the LZ77 window, a power of two up to 32768
	WindowSize int

	// MaxChainLength bounds the number of hash bucket entries compared per
	// position. 0 compares every entry inside the window, which keeps the
	// output independent of the bound but can be slow on repetitive input.
	MaxChainLength int

	// BlockSize is the number of input bytes per fixed or dynamic block.
	// 0 picks len/8+8 clamped to [65535, 262144].
	BlockSize int

	// internal storage for the generic parameter interface
	params map[string]interface{}
}

// DefaultParameters returns dynamic blocks with LZ77 over the full window
func DefaultParameters() *Parameters {
	return &Parameters{
		BlockType:      BlockDynamic,
		UseLZ77:        true,
		WindowSize:     lz77.MaxWindowSize,
		MaxChainLength: 4096,
		params:         make(map[string]interface{}),
	}
}

// Validate checks the parameters
func (p *Parameters) Validate() error {
	if p.BlockType < BlockStored || p.BlockType > BlockDynamic {
		return fmt.Errorf("%w: block type %d", ErrInvalidParameter, p.BlockType)
	}
	if p.UseLZ77 {
		w := p.WindowSize
		if w < 2 || w > lz77.MaxWindowSize || w&(w-1) != 0 {
			return fmt.Errorf("%w: window size %d", ErrInvalidParameter, w)
		}
	}
	if p.MaxChainLength < 0 {
		return fmt.Errorf("%w: chain length %d", ErrInvalidParameter, p.MaxChainLength)
	}
	if p.BlockSize < 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidParameter, p.BlockSize)
	}
	return nil
}

// GetParameter retrieves a parameter by name
func (p *Parameters) GetParameter(name string) interface{} {
	switch name {
	case "blockType":
		return int(p.BlockType)
	case "useLZ77":
		return p.UseLZ77
	case "windowSize":
		return p.WindowSize
	case "maxChainLength":
		return p.MaxChainLength
	case "blockSize":
		return p.BlockSize
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter by name
func (p *Parameters) SetParameter(name string, value interface{}) {
	switch name {
	case "blockType":
		if v, ok := value.(int); ok {
			p.BlockType = BlockType(v)
		}
	case "useLZ77":
		if v, ok := value.(bool); ok {
			p.UseLZ77 = v
		}
	case "windowSize":
		if v, ok := value.(int); ok {
			p.WindowSize = v
		}
	case "maxChainLength":
		if v, ok := value.(int); ok {
			p.MaxChainLength = v
		}
	case "blockSize":
		if v, ok := value.(int); ok {
			p.BlockSize = v
		}
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// WithBlockType sets the block type and returns the parameters for chaining
func (p *Parameters) WithBlockType(t BlockType) *Parameters {
	p.BlockType = t
	return p
}

// WithLZ77 enables or disables back-references
func (p *Parameters) WithLZ77(enabled bool) *Parameters {
	p.UseLZ77 = enabled
	return p
}

// WithWindowSize sets the LZ77 window size
func (p *Parameters) WithWindowSize(size int) *Parameters {
	p.WindowSize = size
	return p
}

// WithMaxChainLength sets the hash chain bound (0 = unbounded)
func (p *Parameters) WithMaxChainLength(n int) *Parameters {
	p.MaxChainLength = n
	return p
}

// blockSizeFor returns the number of input bytes per Huffman block
func (p *Parameters) blockSizeFor(n int) int {
	if p.BlockSize > 0 {
		return p.BlockSize
	}
	size := n/8 + 8
	if size < 65535 {
		size = 65535
	}
	if size > 262144 {
		size = 262144
	}
	return size
}
