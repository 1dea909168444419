package deflate

import "errors"

var (
	// ErrInvalidBlockType is returned for a block header with BTYPE 3
	ErrInvalidBlockType = errors.New("deflate: invalid block type 3")

	// ErrStoredLengthMismatch is returned when a stored block's NLEN is not ^LEN
	ErrStoredLengthMismatch = errors.New("deflate: stored block NLEN is not the one's complement of LEN")

	// ErrUnexpectedEnd is returned when a block reads past the end of the input
	ErrUnexpectedEnd = errors.New("deflate: unexpected end of compressed data")

	// ErrInvalidCodeLengths is returned for a dynamic header whose code
	// lengths cannot form a Huffman code
	ErrInvalidCodeLengths = errors.New("deflate: invalid code length sequence")

	// ErrMissingEndOfBlock is returned when a dynamic header gives symbol 256 length 0
	ErrMissingEndOfBlock = errors.New("deflate: end-of-block symbol has no code")

	// ErrInvalidLengthSymbol is returned for literal/length symbols 286 and 287
	ErrInvalidLengthSymbol = errors.New("deflate: invalid length symbol")

	// ErrInvalidDistanceSymbol is returned for distance symbols 30 and 31
	ErrInvalidDistanceSymbol = errors.New("deflate: invalid distance symbol")

	// ErrDistanceTooFar is returned when a match reaches before the first output byte
	ErrDistanceTooFar = errors.New("deflate: distance reaches before start of output")

	// ErrInvalidParameter is returned by Parameters.Validate
	ErrInvalidParameter = errors.New("deflate: invalid parameter")
)
