package vtblmap

import "math/bits"

const uintptrBits = bits.UintSize

// reqBits returns the number of bits required to represent x.
func reqBits(x uintptr) int {
	return bits.Len(uint(x))
}

// trailingZeros returns the number of low zero bits of x, 0 for x == 0.
func trailingZeros(x uintptr) int {
	if x == 0 {
		return 0
	}
	return bits.TrailingZeros(uint(x))
}

// logSizeFor returns the cache log size needed to give each of n identities
// its own slot.
func logSizeFor(n int) int {
	if n <= 1 {
		return 0
	}
	return reqBits(uintptr(n - 1))
}
