// Package checksum implements the two integrity checks used by the codec:
// CRC32 (PNG chunks) and Adler32 (zlib streams).
package checksum

// crcPolynomial is the reflected IEEE 802.3 polynomial
const crcPolynomial = 0xEDB88320

// crcTable is computed once at package initialization and only read afterwards
var crcTable = makeCRCTable()

func makeCRCTable() [256]uint32 {
	var table [256]uint32
	for n := 0; n < 256; n++ {
		c := uint32(n)
		for k := 0; k < 8; k++ {
			if c&1 != 0 {
				c = crcPolynomial ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		table[n] = c
	}
	return table
}

// CRC32 returns the CRC32 of data
func CRC32(data []byte) uint32 {
	return UpdateCRC32(0, data)
}

// UpdateCRC32 continues a CRC32 computation: UpdateCRC32(CRC32(a), b) equals
// CRC32 of a followed by b.
func UpdateCRC32(crc uint32, data []byte) uint32 {
	c := crc ^ 0xFFFFFFFF
	for _, b := range data {
		c = crcTable[byte(c)^b] ^ (c >> 8)
	}
	return c ^ 0xFFFFFFFF
}
