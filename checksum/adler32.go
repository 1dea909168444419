package checksum

const (
	adlerMod = 65521
	// adlerBatch is the largest run of additions that cannot overflow the
	// 32-bit accumulators before reduction
	adlerBatch = 5550
)

// Adler32 returns the Adler32 of data
func Adler32(data []byte) uint32 {
	return UpdateAdler32(1, data)
}

// UpdateAdler32 continues an Adler32 computation from a previous value.
// The initial value is 1.
func UpdateAdler32(adler uint32, data []byte) uint32 {
	s1 := adler & 0xFFFF
	s2 := adler >> 16
	for len(data) > 0 {
		n := len(data)
		if n > adlerBatch {
			n = adlerBatch
		}
		for _, b := range data[:n] {
			s1 += uint32(b)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		data = data[n:]
	}
	return s2<<16 | s1
}
