package deflate

import (
	"github.com/cocosip/go-png-codec/codec"
)

// Codec implements the codec.Codec interface for raw DEFLATE streams
type Codec struct{}

// NewCodec creates a new DEFLATE codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode compresses params.PixelData. Options may be *Parameters.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	p := DefaultParameters()
	if params.Options != nil {
		if opts, ok := params.Options.(*Parameters); ok {
			p = opts
		}
	}
	return Encode(params.PixelData, p)
}

// Decode decompresses a raw DEFLATE stream. Only PixelData is set in the result.
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	out, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{PixelData: out}, nil
}

// UID returns the media type of a raw DEFLATE stream
func (c *Codec) UID() string {
	return "application/x-deflate"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "deflate"
}

func init() {
	codec.Register(NewCodec())
}
