package rodata

// Hasher derives the fixed-length digest used for content-addressed names.
// Implementations must be pure: equal input yields equal output.
type Hasher interface {
	Sum(data []byte) []byte
}

// HasherFunc is an adapter to use ordinary functions as Hashers.
type HasherFunc func(data []byte) []byte

// Sum implements Hasher.
func (f HasherFunc) Sum(data []byte) []byte {
	return f(data)
}
