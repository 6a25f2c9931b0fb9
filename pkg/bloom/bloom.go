// Package bloom implements a probabilistic set-membership filter: a bit
// array sized from an expected element count and a target false-positive
// rate, populated via double hashing over two independent 32-bit hash
// functions.
package bloom

import (
	"fmt"
	"math"
	"reflect"

	"github.com/bits-and-blooms/bitset"

	ignerrors "github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/hash"
)

// HashFunc is a 32-bit non-cryptographic hash over a byte slice.
type HashFunc func([]byte) uint32

// ToBytes projects an arbitrary item to the byte slice the filter hashes.
// The default projection (see New) renders the item via fmt.Sprint and
// takes its UTF-8 bytes; callers may inject a custom projection for types
// whose string representation would collide too often or isn't stable.
type ToBytes[T any] func(item T) []byte

// Filter is a Bloom filter over items of type T.
type Filter[T any] struct {
	bits    *bitset.BitSet
	m       uint64 // number of bits
	k       uint64 // number of hash functions
	hash1   HashFunc
	hash2   HashFunc
	toBytes ToBytes[T]
}

// Options configures filter sizing and hashing.
type Options[T any] struct {
	// ExpectedElements is the anticipated number of distinct items (n).
	ExpectedElements uint64
	// TargetFalsePositive is the desired false-positive probability (p),
	// in (0, 1).
	TargetFalsePositive float64
	// Hash1 and Hash2 are the two independent base hashes combined via
	// double hashing. Defaults to hash.Murmur3_32 and hash.XXHash32.
	Hash1, Hash2 HashFunc
	// ToBytes projects an item to bytes. Defaults to a string-rendering
	// projection.
	ToBytes ToBytes[T]
}

// New creates a Filter sized for the given expected element count and
// target false-positive probability:
//
//	m = ceil(-n * ln(p) / (ln 2)^2)
//	k = max(1, round(m/n * ln 2))
func New[T any](opts Options[T]) *Filter[T] {
	n := opts.ExpectedElements
	if n == 0 {
		n = 1
	}
	p := opts.TargetFalsePositive
	if p <= 0 || p >= 1 {
		p = 0.01
	}

	nf := float64(n)
	m := math.Ceil(-nf * math.Log(p) / (math.Ln2 * math.Ln2))
	k := math.Round(m / nf * math.Ln2)
	if k < 1 {
		k = 1
	}

	h1, h2 := opts.Hash1, opts.Hash2
	if h1 == nil {
		h1 = hash.Murmur3_32
	}
	if h2 == nil {
		h2 = hash.XXHash32
	}

	toBytes := opts.ToBytes
	if toBytes == nil {
		toBytes = func(item T) []byte {
			return []byte(defaultToString(item))
		}
	}

	return &Filter[T]{
		bits:    bitset.New(uint(m)),
		m:       uint64(m),
		k:       uint64(k),
		hash1:   h1,
		hash2:   h2,
		toBytes: toBytes,
	}
}

// defaultToString renders item as a string: its own string form for string
// and []byte items (the UTF-8 bytes of its textual representation),
// otherwise the standard %v formatting.
func defaultToString(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isZero reports whether item is the zero value of its type, used to reject
// null/default items.
func isZero[T any](item T) bool {
	var zero T
	return reflect.DeepEqual(item, zero)
}

// Add inserts item into the filter, setting its k bit positions.
// Rejects the zero value of T with InvalidArgument.
func (f *Filter[T]) Add(item T) error {
	if isZero(item) {
		return ignerrors.NewValidationError(
			nil, ignerrors.ErrorCodeInvalidInput, "bloom filter item must not be the zero value",
		).WithField("item").WithRule("required")
	}

	data := f.toBytes(item)
	h1, h2 := f.hash1(data), f.hash2(data)
	for i := uint64(0); i < f.k; i++ {
		pos := bloomPosition(h1, h2, i, f.m)
		f.bits.Set(uint(pos))
	}
	return nil
}

// Contains reports whether item may be in the set. A false result means the
// item was definitely never added; a true result may be a false positive.
func (f *Filter[T]) Contains(item T) bool {
	if isZero(item) {
		return false
	}

	data := f.toBytes(item)
	h1, h2 := f.hash1(data), f.hash2(data)
	for i := uint64(0); i < f.k; i++ {
		pos := bloomPosition(h1, h2, i, f.m)
		if !f.bits.Test(uint(pos)) {
			return false
		}
	}
	return true
}

// Clear zeroes the bit array, removing every added item.
func (f *Filter[T]) Clear() {
	f.bits.ClearAll()
}

// bloomPosition computes the i-th bit position from the double-hashed pair:
// |h1 + i*h2| mod m.
func bloomPosition(h1, h2 uint32, i, m uint64) uint64 {
	combined := uint64(h1) + i*uint64(h2)
	return combined % m
}
