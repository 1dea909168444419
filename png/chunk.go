package png

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-png-codec/checksum"
)

// Signature starts every PNG file
var Signature = [8]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Chunk types handled by this package
const (
	chunkIHDR = "IHDR"
	chunkPLTE = "PLTE"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
	chunkTRNS = "tRNS"
	chunkBKGD = "bKGD"
	chunkTEXT = "tEXt"
	chunkZTXT = "zTXt"
	chunkITXT = "iTXt"
	chunkTIME = "tIME"
	chunkPHYS = "pHYs"
	chunkGAMA = "gAMA"
)

const maxChunkLength = 1<<31 - 1

// Chunk is one length-prefixed, CRC protected record
type Chunk struct {
	Type string
	Data []byte // aliases the input buffer
	CRC  uint32 // stored CRC
}

// ReadChunk reads the chunk starting at pos and returns it with the offset
// of the following chunk. The CRC is not verified.
func ReadChunk(data []byte, pos int) (Chunk, int, error) {
	if pos < 0 || pos+12 > len(data) {
		return Chunk{}, 0, fmt.Errorf("%w: chunk header at %d", ErrChunkOutOfBounds, pos)
	}
	length := binary.BigEndian.Uint32(data[pos:])
	if length > maxChunkLength {
		return Chunk{}, 0, fmt.Errorf("%w: %d", ErrChunkTooLarge, length)
	}
	end := pos + 12 + int(length)
	if end > len(data) {
		return Chunk{}, 0, fmt.Errorf("%w: %s of %d bytes at %d", ErrChunkOutOfBounds, data[pos+4:pos+8], length, pos)
	}
	c := Chunk{
		Type: string(data[pos+4 : pos+8]),
		Data: data[pos+8 : pos+8+int(length)],
		CRC:  binary.BigEndian.Uint32(data[end-4:]),
	}
	return c, end, nil
}

// ComputeCRC returns the CRC over the chunk type and data
func (c *Chunk) ComputeCRC() uint32 {
	crc := checksum.CRC32([]byte(c.Type))
	return checksum.UpdateCRC32(crc, c.Data)
}

// CRCValid reports whether the stored CRC matches
func (c *Chunk) CRCValid() bool {
	return c.ComputeCRC() == c.CRC
}

// IsCritical reports whether a decoder must understand the chunk
func (c *Chunk) IsCritical() bool {
	return c.Type[0]&0x20 == 0
}

// IsPublic reports whether the chunk type is registered publicly
func (c *Chunk) IsPublic() bool {
	return c.Type[1]&0x20 == 0
}

// IsSafeToCopy reports whether an editor may copy the chunk unmodified
func (c *Chunk) IsSafeToCopy() bool {
	return c.Type[3]&0x20 != 0
}

// AppendChunk appends a complete chunk to dst
func AppendChunk(dst []byte, typ string, data []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	start := len(dst)
	dst = append(dst, typ...)
	dst = append(dst, data...)
	return binary.BigEndian.AppendUint32(dst, checksum.CRC32(dst[start:]))
}

// ChunkInfo summarizes one chunk for listing
type ChunkInfo struct {
	Type     string
	Offset   int
	Length   int
	CRCValid bool
}

// ListChunks returns every chunk after the signature in file order,
// stopping after IEND or at the first framing error.
func ListChunks(data []byte) ([]ChunkInfo, error) {
	if len(data) < len(Signature) || [8]byte(data[:8]) != Signature {
		return nil, ErrInvalidSignature
	}
	var list []ChunkInfo
	pos := len(Signature)
	for pos < len(data) {
		c, next, err := ReadChunk(data, pos)
		if err != nil {
			return list, err
		}
		list = append(list, ChunkInfo{Type: c.Type, Offset: pos, Length: len(c.Data), CRCValid: c.CRCValid()})
		if c.Type == chunkIEND {
			break
		}
		pos = next
	}
	return list, nil
}
