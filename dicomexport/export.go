// Package dicomexport renders DICOM image frames as PNG files.
package dicomexport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/rs/zerolog"

	"github.com/cocosip/go-png-codec/png"
)

var (
	// ErrNoPixelData is returned when the dataset has no Pixel Data element
	ErrNoPixelData = errors.New("dicomexport: no pixel data")

	// ErrUnsupportedFrame is returned for sample layouts ToPNG cannot render
	ErrUnsupportedFrame = errors.New("dicomexport: unsupported frame layout")

	// ErrFrameOutOfRange is returned for a frame index past the last frame
	ErrFrameOutOfRange = errors.New("dicomexport: frame index out of range")

	// ErrPixelDataTooShort is returned when a frame's samples are truncated
	ErrPixelDataTooShort = errors.New("dicomexport: pixel data shorter than the image")

	// ErrUnsupportedEncoding is returned when Pixel Data is neither OB nor OW
	ErrUnsupportedEncoding = errors.New("dicomexport: unsupported pixel data element")
)

var logger = zerolog.Nop()

// SetLogger sets the logger used for export tracing
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Frame is one uncompressed frame with the attributes needed to render it.
// Samples are little-endian as stored in Explicit VR Little Endian.
type Frame struct {
	Pixels          []byte
	Rows            int
	Columns         int
	SamplesPerPixel int
	BitsAllocated   int
	BitsStored      int
	Signed          bool
	Photometric     string
}

// ReadFrame parses a DICOM file, transcodes it to Explicit VR Little Endian
// when needed and returns frame index (0 based)
func ReadFrame(path string, index int) (*Frame, error) {
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	if err != nil {
		return nil, fmt.Errorf("dicomexport: parse %s: %w", path, err)
	}

	ds := res.Dataset
	if res.TransferSyntax.UID().UID() != transfer.ExplicitVRLittleEndian.UID().UID() {
		logger.Debug().
			Str("from", res.TransferSyntax.UID().UID()).
			Str("to", transfer.ExplicitVRLittleEndian.UID().UID()).
			Msg("transcoding")
		tr := codec.NewTranscoder(res.TransferSyntax, transfer.ExplicitVRLittleEndian)
		if ds, err = tr.Transcode(ds); err != nil {
			return nil, fmt.Errorf("dicomexport: transcode: %w", err)
		}
	}

	f := &Frame{
		Rows:            int(ds.TryGetUInt16(tag.Rows, 0)),
		Columns:         int(ds.TryGetUInt16(tag.Columns, 0)),
		SamplesPerPixel: int(ds.TryGetUInt16(tag.SamplesPerPixel, 0)),
		BitsStored:      int(ds.TryGetUInt16(tag.BitsStored, 0)),
		Signed:          ds.TryGetUInt16(tag.PixelRepresentation, 0) != 0,
	}
	if f.SamplesPerPixel == 0 {
		f.SamplesPerPixel = 1
	}
	if pi, ok := ds.GetString(tag.PhotometricInterpretation); ok {
		f.Photometric = strings.TrimSpace(pi)
	}

	pd, ok := ds.Get(tag.PixelData)
	if !ok {
		return nil, ErrNoPixelData
	}
	var data []byte
	switch v := pd.(type) {
	case *element.OtherByte:
		data = v.GetData()
	case *element.OtherWord:
		data = v.GetData()
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEncoding, pd)
	}

	f.BitsAllocated = 8
	if f.BitsStored > 8 {
		f.BitsAllocated = 16
	}
	size := f.frameSize()
	if size == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrUnsupportedFrame, f.Columns, f.Rows)
	}
	if index < 0 || (index+1)*size > len(data) {
		return nil, fmt.Errorf("%w: frame %d of %d", ErrFrameOutOfRange, index, len(data)/size)
	}
	f.Pixels = data[index*size : (index+1)*size]
	return f, nil
}

func (f *Frame) frameSize() int {
	return f.Rows * f.Columns * f.SamplesPerPixel * (f.BitsAllocated / 8)
}

// Window maps stored values to display grey levels. A zero Width selects
// the frame's own minimum and maximum.
type Window struct {
	Center float64
	Width  float64
}

// Options controls ToPNG
type Options struct {
	Window Window

	// Keep16 stores 16-bit greyscale frames as 16-bit PNG samples instead
	// of windowing them to 8 bits
	Keep16 bool

	Encode *png.EncodeOptions
}

// ToPNG renders a frame as PNG. MONOCHROME1 frames are inverted so that
// the output reads as MONOCHROME2.
func ToPNG(f *Frame, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	if f.Rows <= 0 || f.Columns <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrUnsupportedFrame, f.Columns, f.Rows)
	}
	if f.BitsAllocated != 8 && f.BitsAllocated != 16 {
		return nil, fmt.Errorf("%w: %d bits allocated", ErrUnsupportedFrame, f.BitsAllocated)
	}
	if len(f.Pixels) < f.frameSize() {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrPixelDataTooShort, len(f.Pixels), f.frameSize())
	}

	enc := png.DefaultEncodeOptions()
	if opts.Encode != nil {
		copied := *opts.Encode
		enc = &copied
	}

	var pix []byte
	switch f.SamplesPerPixel {
	case 1:
		if f.BitsAllocated == 16 && opts.Keep16 {
			pix = grey16(f)
			mode := png.ColorMode{ColorType: png.ColorGrey, BitDepth: 16}
			enc.Input, enc.Output = mode, mode
		} else {
			pix = windowed(f, opts.Window)
			enc.Input, enc.Output = png.Grey8(), png.Grey8()
		}
	case 3:
		if f.BitsAllocated != 8 {
			return nil, fmt.Errorf("%w: %d-bit color", ErrUnsupportedFrame, f.BitsAllocated)
		}
		pix = f.Pixels[:f.frameSize()]
		enc.Input, enc.Output = png.RGB8(), png.RGB8()
	default:
		return nil, fmt.Errorf("%w: %d samples per pixel", ErrUnsupportedFrame, f.SamplesPerPixel)
	}

	logger.Debug().
		Int("rows", f.Rows).
		Int("columns", f.Columns).
		Int("bits", f.BitsStored).
		Str("photometric", f.Photometric).
		Msg("rendering frame")
	return png.Encode(pix, f.Columns, f.Rows, enc)
}

// sample returns stored value i, sign extended from BitsStored when signed
func (f *Frame) sample(i int) int32 {
	var raw uint32
	if f.BitsAllocated == 16 {
		raw = uint32(binary.LittleEndian.Uint16(f.Pixels[2*i:]))
	} else {
		raw = uint32(f.Pixels[i])
	}
	bits := f.BitsStored
	if bits <= 0 || bits > f.BitsAllocated {
		bits = f.BitsAllocated
	}
	raw &= 1<<uint(bits) - 1
	if f.Signed && raw&(1<<uint(bits-1)) != 0 {
		return int32(raw) - 1<<uint(bits)
	}
	return int32(raw)
}

func windowed(f *Frame, w Window) []byte {
	n := f.Rows * f.Columns
	lo, hi := w.Center-w.Width/2, w.Center+w.Width/2
	if w.Width <= 0 {
		minv, maxv := int32(1<<30), int32(-1<<30)
		for i := 0; i < n; i++ {
			v := f.sample(i)
			if v < minv {
				minv = v
			}
			if v > maxv {
				maxv = v
			}
		}
		if maxv == minv {
			maxv = minv + 1
		}
		lo, hi = float64(minv), float64(maxv)
	}

	invert := f.Photometric == "MONOCHROME1"
	out := make([]byte, n)
	for i := range out {
		l := (float64(f.sample(i)) - lo) / (hi - lo)
		if l < 0 {
			l = 0
		}
		if l > 1 {
			l = 1
		}
		v := uint8(l*255 + 0.5)
		if invert {
			v = 255 - v
		}
		out[i] = v
	}
	return out
}

// grey16 converts to big-endian unsigned samples, shifting signed data by
// half the stored range
func grey16(f *Frame) []byte {
	n := f.Rows * f.Columns
	out := make([]byte, 2*n)
	bits := f.BitsStored
	if bits <= 0 || bits > 16 {
		bits = 16
	}
	for i := 0; i < n; i++ {
		v := f.sample(i)
		if f.Signed {
			v += 1 << uint(bits-1)
		}
		if f.Photometric == "MONOCHROME1" {
			v = 1<<uint(bits) - 1 - v
		}
		binary.BigEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}
