package png

import "errors"

// Format errors
var (
	// ErrHeaderTooSmall is returned for input shorter than the signature and IHDR chunk
	ErrHeaderTooSmall = errors.New("png: data smaller than a PNG header")

	// ErrInvalidSignature is returned when the first eight bytes are not the PNG signature
	ErrInvalidSignature = errors.New("png: invalid signature")

	// ErrFirstChunkNotIHDR is returned when the chunk after the signature is not IHDR
	ErrFirstChunkNotIHDR = errors.New("png: first chunk is not IHDR")

	// ErrInvalidIHDR is returned for an IHDR chunk that is not 13 bytes long
	ErrInvalidIHDR = errors.New("png: invalid IHDR chunk")

	// ErrZeroDimension is returned for a width or height of zero
	ErrZeroDimension = errors.New("png: width or height is zero")

	// ErrDimensionTooLarge is returned for a width or height above 2^31-1
	ErrDimensionTooLarge = errors.New("png: width or height exceeds 2^31-1")

	// ErrImageTooLarge is returned when the pixel buffer size would overflow
	ErrImageTooLarge = errors.New("png: image too large")

	// ErrInvalidColorDepth is returned for a bit depth the color type does not allow
	ErrInvalidColorDepth = errors.New("png: invalid color type and bit depth combination")

	// ErrInvalidCompressionMethod is returned for an IHDR compression method other than 0
	ErrInvalidCompressionMethod = errors.New("png: invalid compression method")

	// ErrInvalidFilterMethod is returned for an IHDR filter method other than 0
	ErrInvalidFilterMethod = errors.New("png: invalid filter method")

	// ErrInvalidInterlaceMethod is returned for an interlace method other than 0 or 1
	ErrInvalidInterlaceMethod = errors.New("png: invalid interlace method")

	// ErrInvalidFilterType is returned for a scanline filter byte above 4
	ErrInvalidFilterType = errors.New("png: invalid scanline filter type")

	// ErrUnknownCriticalChunk is returned for a critical chunk the decoder does not know
	ErrUnknownCriticalChunk = errors.New("png: unknown critical chunk")

	// ErrChunkOrder is returned when a chunk appears where it is not allowed
	ErrChunkOrder = errors.New("png: chunk out of order")

	// ErrMissingPalette is returned when a palette image has no PLTE chunk
	ErrMissingPalette = errors.New("png: palette image without PLTE chunk")

	// ErrInvalidPalette is returned for an empty, oversized or misaligned PLTE chunk
	ErrInvalidPalette = errors.New("png: invalid PLTE chunk")

	// ErrInvalidTransparency is returned for a tRNS chunk that does not fit the color type
	ErrInvalidTransparency = errors.New("png: invalid tRNS chunk")

	// ErrInvalidBackground is returned for a bKGD chunk that does not fit the color type
	ErrInvalidBackground = errors.New("png: invalid bKGD chunk")

	// ErrInvalidText is returned for a tEXt, zTXt or iTXt chunk with a bad keyword or layout
	ErrInvalidText = errors.New("png: invalid text chunk")

	// ErrInvalidAncillary is returned for a malformed tIME, pHYs or gAMA chunk
	ErrInvalidAncillary = errors.New("png: invalid ancillary chunk")

	// ErrMissingIDAT is returned when IEND arrives before any IDAT chunk
	ErrMissingIDAT = errors.New("png: no IDAT chunk")

	// ErrMissingIEND is returned when the data ends without an IEND chunk
	ErrMissingIEND = errors.New("png: no IEND chunk")

	// ErrImageDataTooSmall is returned when the inflated IDAT data cannot fill the image
	ErrImageDataTooSmall = errors.New("png: decompressed image data smaller than expected")
)

// Integrity errors
var (
	// ErrCRCMismatch is returned when a chunk CRC does not match, unless IgnoreCRC is set
	ErrCRCMismatch = errors.New("png: chunk CRC mismatch")
)

// Bounds errors
var (
	// ErrChunkTooLarge is returned for a chunk length above 2^31-1
	ErrChunkTooLarge = errors.New("png: chunk length exceeds 2^31-1")

	// ErrChunkOutOfBounds is returned for a chunk that runs past the end of the data
	ErrChunkOutOfBounds = errors.New("png: chunk extends past end of data")
)

// Conversion and encoder errors
var (
	// ErrUnsupportedConversion is returned by Convert for a pair of modes it cannot map
	ErrUnsupportedConversion = errors.New("png: unsupported color conversion")

	// ErrColorNotInPalette is returned when a pixel has no exact palette entry
	ErrColorNotInPalette = errors.New("png: color not in palette")

	// ErrUnsupportedOutput is returned for an encoder output mode that cannot be written
	ErrUnsupportedOutput = errors.New("png: unsupported output color mode")

	// ErrInputTooSmall is returned when a pixel buffer is shorter than its dimensions need
	ErrInputTooSmall = errors.New("png: pixel buffer smaller than image")

	// ErrInvalidDimensions is returned for zero or negative image dimensions
	ErrInvalidDimensions = errors.New("png: invalid image dimensions")
)
