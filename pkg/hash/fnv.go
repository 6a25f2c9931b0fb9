// Package hash provides the fixed, bit-exact 32-bit non-cryptographic
// hash functions the bloom filter composes into its double-hashing scheme:
// FNV-1a, xxHash32, and Murmur3 (32-bit). Each is a pure function of its
// input bytes with no external state, so results are reproducible across
// processes and platforms.
package hash

// fnv1aOffsetBasis and fnv1aPrime are the canonical FNV-1a 32-bit constants.
const (
	fnv1aOffsetBasis uint32 = 0x811C9DC5
	fnv1aPrime       uint32 = 0x01000193
)

// FNV1a computes the 32-bit FNV-1a hash of data.
func FNV1a(data []byte) uint32 {
	h := fnv1aOffsetBasis
	for _, b := range data {
		h ^= uint32(b)
		h *= fnv1aPrime
	}
	return h
}
