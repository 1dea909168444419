package codec

import "errors"

var (
	// ErrCodecNotFound is returned by Get for a name or UID nobody registered
	ErrCodecNotFound = errors.New("codec: not found")

	// ErrInvalidParameter is returned for an out of range component count or
	// option value
	ErrInvalidParameter = errors.New("codec: invalid parameter")

	// ErrUnsupportedFormat is returned for a component count and bit depth
	// pair the png codec cannot store
	ErrUnsupportedFormat = errors.New("codec: unsupported sample format")
)
