package rdrand

import "math/rand/v2"

// NewRand returns a math/rand/v2 generator backed by an Engine. Because the
// source keeps no state, the result is safe for concurrent use.
func NewRand() *rand.Rand {
	return rand.New(Engine{})
}

// Rand is a shared generator backed by RDRAND, for shuffles and bounded
// integers.
var Rand = NewRand()
