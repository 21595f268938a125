// Package simhash implements the 64-bit similarity fingerprint and
// Hamming-distance comparison specified in spec.md section 4.7: for
// each token, hash it to 64 bits, accumulate +1/-1 per bit position
// depending on whether that bit is set, and take the sign of each
// accumulator as the final fingerprint bit.
package simhash

import "github.com/cespare/xxhash/v2"

// Compute returns the 64-bit SimHash fingerprint of tokens.
func Compute(tokens []string) uint64 {
	var acc [64]int

	for _, t := range tokens {
		h := xxhash.Sum64String(t)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				acc[i]++
			} else {
				acc[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if acc[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Hamming returns the Hamming distance (popcount of the XOR) between
// two fingerprints.
func Hamming(a, b uint64) int {
	x := a ^ b
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}
