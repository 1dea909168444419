package png

import (
	"fmt"

	"github.com/cocosip/go-png-codec/codec"
)

// Codec implements the codec.Codec interface for PNG
type Codec struct{}

// NewCodec creates a new PNG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes interleaved samples losslessly. Components selects grey,
// grey+alpha, RGB or RGBA and BitDepth the sample depth (default 8).
// Options may be *EncodeOptions, whose Input and Output are replaced by
// the layout described by params.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	mode, err := modeForComponents(params.Components, params.BitDepth)
	if err != nil {
		return nil, err
	}

	opts := DefaultEncodeOptions()
	if params.Options != nil {
		if o, ok := params.Options.(*EncodeOptions); ok {
			if err := o.Validate(); err != nil {
				return nil, err
			}
			copied := *o
			opts = &copied
		}
	}
	opts.Input, opts.Output = mode, mode
	return Encode(params.PixelData, params.Width, params.Height, opts)
}

// Decode decodes a PNG into its stored samples; palette images are expanded to RGBA8
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := DecodeWithOptions(data, &DecodeOptions{})
	if err != nil {
		return nil, err
	}
	pix, mode := img.Pix, img.FileMode
	if mode.ColorType == ColorPalette {
		rgba := RGBA8()
		if pix, err = Convert(pix, &mode, &rgba, img.Width, img.Height); err != nil {
			return nil, err
		}
		mode = rgba
	}
	return &codec.DecodeResult{
		PixelData:  pix,
		Width:      img.Width,
		Height:     img.Height,
		Components: mode.ColorType.Channels(),
		BitDepth:   mode.BitDepth,
	}, nil
}

// UID returns the PNG media type
func (c *Codec) UID() string {
	return "image/png"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "png"
}

// Validate makes EncodeOptions usable as codec.Options
func (o *EncodeOptions) Validate() error {
	if o.Deflate != nil {
		if err := o.Deflate.Validate(); err != nil {
			return err
		}
	}
	if _, ok := filterStrategyNames[o.Filter]; !ok {
		return fmt.Errorf("%w: filter strategy %d", codec.ErrInvalidParameter, o.Filter)
	}
	return nil
}

func modeForComponents(components, bitDepth int) (ColorMode, error) {
	if bitDepth == 0 {
		bitDepth = 8
	}
	var ct ColorType
	switch components {
	case 1:
		ct = ColorGrey
	case 2:
		ct = ColorGreyAlpha
	case 3:
		ct = ColorRGB
	case 4:
		ct = ColorRGBA
	default:
		return ColorMode{}, fmt.Errorf("%w: %d components", codec.ErrInvalidParameter, components)
	}
	mode := ColorMode{ColorType: ct, BitDepth: bitDepth}
	if !mode.Valid() {
		return ColorMode{}, fmt.Errorf("%w: %d components at %d bits", codec.ErrUnsupportedFormat, components, bitDepth)
	}
	return mode, nil
}

func init() {
	codec.Register(NewCodec())
}
