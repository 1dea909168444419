// Package zlib implements the RFC 1950 envelope around a raw DEFLATE stream.
package zlib

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cocosip/go-png-codec/checksum"
	"github.com/cocosip/go-png-codec/deflate"
)

var (
	// ErrTooSmall is returned for input shorter than the 2-byte header plus the 4-byte checksum
	ErrTooSmall = errors.New("zlib: data too small")

	// ErrHeaderCheck is returned when (CMF*256 + FLG) is not a multiple of 31
	ErrHeaderCheck = errors.New("zlib: header check failed")

	// ErrUnsupportedMethod is returned when CM is not 8 or CINFO is above 7
	ErrUnsupportedMethod = errors.New("zlib: unsupported compression method")

	// ErrPresetDictionary is returned when FDICT is set
	ErrPresetDictionary = errors.New("zlib: preset dictionary not supported")

	// ErrAdler32Mismatch is returned when the trailer does not match the decompressed data
	ErrAdler32Mismatch = errors.New("zlib: adler32 mismatch")
)

const (
	cmfDeflate32K = 0x78 // CM 8, CINFO 7
	flgFastest    = 0x01 // FLEVEL 0, FDICT 0, FCHECK so that 0x7801 % 31 == 0
)

// DecompressOptions controls Decompress
type DecompressOptions struct {
	// IgnoreAdler32 skips verification of the trailer checksum
	IgnoreAdler32 bool

	// SizeHint reserves output capacity when the decompressed size is known
	SizeHint int
}

// Compress wraps the DEFLATE encoding of data in a zlib header and
// big-endian Adler32 trailer. A nil params uses deflate.DefaultParameters.
func Compress(data []byte, params *deflate.Parameters) ([]byte, error) {
	payload, err := deflate.Encode(data, params)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(payload)+6)
	out = append(out, cmfDeflate32K, flgFastest)
	out = append(out, payload...)
	out = binary.BigEndian.AppendUint32(out, checksum.Adler32(data))
	return out, nil
}

// Decompress validates the zlib header, inflates the payload and checks the
// Adler32 trailer. A nil opts verifies everything.
func Decompress(data []byte, opts *DecompressOptions) ([]byte, error) {
	if opts == nil {
		opts = &DecompressOptions{}
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(data))
	}
	if err := checkHeader(data[0], data[1]); err != nil {
		return nil, err
	}

	out, err := deflate.DecodeWithSize(data[2:], opts.SizeHint)
	if err != nil {
		return nil, err
	}

	if !opts.IgnoreAdler32 {
		if len(data) < 6 {
			return nil, fmt.Errorf("%w: no room for adler32 trailer", ErrTooSmall)
		}
		want := binary.BigEndian.Uint32(data[len(data)-4:])
		if got := checksum.Adler32(out); got != want {
			return nil, fmt.Errorf("%w: computed %#08x, stored %#08x", ErrAdler32Mismatch, got, want)
		}
	}
	return out, nil
}

func checkHeader(cmf, flg byte) error {
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return fmt.Errorf("%w: CMF %#02x FLG %#02x", ErrHeaderCheck, cmf, flg)
	}
	if cm, cinfo := cmf&0x0F, cmf>>4; cm != 8 || cinfo > 7 {
		return fmt.Errorf("%w: CM %d CINFO %d", ErrUnsupportedMethod, cm, cinfo)
	}
	if flg&0x20 != 0 {
		return ErrPresetDictionary
	}
	return nil
}
