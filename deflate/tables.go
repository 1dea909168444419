package deflate

// RFC 1951 section 3.2.5 and 3.2.7 tables.
const (
	firstLengthSymbol = 257
	endOfBlock        = 256
	numLitLenSymbols  = 286 // 286 and 287 never occur in valid data
	numDistSymbols    = 30  // 30 and 31 never occur in valid data
	numCodeLenSymbols = 19

	// code table sizes, including the two reserved symbols of each alphabet
	litLenTableSize = 288
	distTableSize   = 32

	maxCodeBits    = 15
	maxCodeLenBits = 7

	maxStoredBlock = 65535
)

// lengthBase and lengthExtra give the base value and extra bits of length symbols 257..285
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtra = [29]int{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distanceBase and distanceExtra give the base value and extra bits of distance symbols 0..29
var distanceBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distanceExtra = [30]int{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codeLengthOrder is the order code length code lengths are transmitted in
var codeLengthOrder = [numCodeLenSymbols]int{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// fixedLitLenLengths returns the code lengths of the fixed literal/length code
func fixedLitLenLengths() []int {
	lengths := make([]int, litLenTableSize)
	for i := range lengths {
		switch {
		case i <= 143:
			lengths[i] = 8
		case i <= 255:
			lengths[i] = 9
		case i <= 279:
			lengths[i] = 7
		default:
			lengths[i] = 8
		}
	}
	return lengths
}

// fixedDistLengths returns the code lengths of the fixed distance code
func fixedDistLengths() []int {
	lengths := make([]int, distTableSize)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

// lengthSymbol maps a match length (3..258) to its symbol index in lengthBase
func lengthSymbol(length int) int {
	lo, hi := 0, len(lengthBase)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lengthBase[mid] <= length {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// distanceSymbol maps a distance (1..32768) to its symbol
func distanceSymbol(distance int) int {
	lo, hi := 0, len(distanceBase)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if distanceBase[mid] <= distance {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
