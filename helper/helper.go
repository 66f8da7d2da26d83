// Package helper defines the synthesized method bodies understood by the
// bundled writers. Bodies are plain values; the details container stores them
// opaquely and each writer lowers them to its own instruction set.
package helper

import "fmt"

// FNV-1a parameters used by StringHash.
const (
	FNVOffsetBasis uint32 = 0x811C9DC5
	FNVPrime       uint32 = 0x01000193

	// FNVOffsetBasisI32 is FNVOffsetBasis as a two's-complement int32, the
	// form signed i32 immediates take.
	FNVOffsetBasisI32 int32 = -2128831035
)

// Const returns a fixed 64-bit integer.
type Const struct {
	Value int64
}

// FieldAddress returns the address of the named data field in the emitted
// image.
type FieldAddress struct {
	Field string
}

// StringHash computes the 32-bit FNV-1a hash of the len bytes starting at
// ptr. It backs switch dispatch on string constants.
type StringHash struct{}

// Kind names accepted in manifests.
const (
	KindConst        = "const"
	KindFieldAddress = "field_address"
	KindStringHash   = "string_hash"
)

// Describe returns a short human-readable signature of a body.
func Describe(body any) string {
	switch b := body.(type) {
	case Const:
		return fmt.Sprintf("() -> i64 = %d", b.Value)
	case FieldAddress:
		return fmt.Sprintf("() -> ptr = &%s", b.Field)
	case StringHash:
		return "(ptr, len) -> u32 = fnv1a"
	default:
		return fmt.Sprintf("%T", body)
	}
}

// FNV1a is the reference implementation of StringHash.
func FNV1a(data []byte) uint32 {
	h := FNVOffsetBasis
	for _, b := range data {
		h ^= uint32(b)
		h *= FNVPrime
	}
	return h
}
