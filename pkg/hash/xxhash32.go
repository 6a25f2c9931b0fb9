package hash

import "encoding/binary"

// xxHash32 prime constants, per the canonical algorithm.
const (
	xxPrime1 uint32 = 2654435761
	xxPrime2 uint32 = 2246822519
	xxPrime3 uint32 = 3266489917
	xxPrime4 uint32 = 668265263
	xxPrime5 uint32 = 374761393
)

// XXHash32 computes the 32-bit xxHash of data using seed 0.
func XXHash32(data []byte) uint32 {
	return xxHash32Seed(data, 0)
}

func xxHash32Seed(data []byte, seed uint32) uint32 {
	length := len(data)
	var h32 uint32
	i := 0

	if length >= 16 {
		v1 := seed + xxPrime1 + xxPrime2
		v2 := seed + xxPrime2
		v3 := seed
		v4 := seed - xxPrime1

		limit := length - 16
		for i <= limit {
			v1 = xxRound(v1, binary.LittleEndian.Uint32(data[i:]))
			i += 4
			v2 = xxRound(v2, binary.LittleEndian.Uint32(data[i:]))
			i += 4
			v3 = xxRound(v3, binary.LittleEndian.Uint32(data[i:]))
			i += 4
			v4 = xxRound(v4, binary.LittleEndian.Uint32(data[i:]))
			i += 4
		}

		h32 = rotl32(v1, 1) + rotl32(v2, 7) + rotl32(v3, 12) + rotl32(v4, 18)
	} else {
		h32 = seed + xxPrime5
	}

	h32 += uint32(length)

	for i+4 <= length {
		h32 += binary.LittleEndian.Uint32(data[i:]) * xxPrime3
		h32 = rotl32(h32, 17) * xxPrime4
		i += 4
	}

	for i < length {
		h32 += uint32(data[i]) * xxPrime5
		h32 = rotl32(h32, 11) * xxPrime1
		i++
	}

	h32 ^= h32 >> 15
	h32 *= xxPrime2
	h32 ^= h32 >> 13
	h32 *= xxPrime3
	h32 ^= h32 >> 16

	return h32
}

func xxRound(acc, input uint32) uint32 {
	acc += input * xxPrime2
	acc = rotl32(acc, 13)
	acc *= xxPrime1
	return acc
}

func rotl32(x uint32, r uint) uint32 {
	return (x << r) | (x >> (32 - r))
}
