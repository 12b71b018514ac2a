// Package hash provides the content fingerprint used to give identifiers and
// keywords a stable identity on both sides of the compilation boundary.
//
// The algorithm is cyrb53. The JavaScript runtime computes the same value with
// Math.imul, so every operation here is a wrapping 32-bit multiply or xor.
package hash

const (
	seed1 uint32 = 0xdeadbeef
	seed2 uint32 = 0x41c6ce57

	mix1 uint32 = 2654435761
	mix2 uint32 = 1597334677
	fin1 uint32 = 2246822507
	fin2 uint32 = 3266489909

	// highMask keeps 21 bits of the second accumulator so the result fits in
	// the 53 bits a float64 can hold exactly.
	highMask uint32 = 0x1fffff
)

// Cyrb53 returns the 53-bit fingerprint of s. Input is consumed one Unicode
// code point at a time.
func Cyrb53(s string) int64 {
	h1, h2 := seed1, seed2

	for _, r := range s {
		ch := uint32(r)
		h1 = (h1 ^ ch) * mix1
		h2 = (h2 ^ ch) * mix2
	}

	h1 = ((h1 ^ (h1 >> 16)) * fin1) ^ ((h2 ^ (h2 >> 13)) * fin2)
	h2 = ((h2 ^ (h2 >> 16)) * fin1) ^ ((h1 ^ (h1 >> 13)) * fin2)

	return int64(h2&highMask)<<32 + int64(h1)
}

// MaxSafeInteger is the largest integer a float64 represents exactly. Every
// Cyrb53 result is below it.
const MaxSafeInteger int64 = 1<<53 - 1
