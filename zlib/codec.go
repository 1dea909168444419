package zlib

import (
	"github.com/cocosip/go-png-codec/codec"
	"github.com/cocosip/go-png-codec/deflate"
)

// Codec implements the codec.Codec interface for zlib streams
type Codec struct{}

// NewCodec creates a new zlib codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode compresses params.PixelData. Options may be *deflate.Parameters.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	var p *deflate.Parameters
	if params.Options != nil {
		if opts, ok := params.Options.(*deflate.Parameters); ok {
			p = opts
		}
	}
	return Compress(params.PixelData, p)
}

// Decode decompresses a zlib stream. Only PixelData is set in the result.
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	out, err := Decompress(data, nil)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{PixelData: out}, nil
}

// UID returns the zlib media type
func (c *Codec) UID() string {
	return "application/zlib"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "zlib"
}

func init() {
	codec.Register(NewCodec())
}
