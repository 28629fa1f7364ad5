package rdrand

import (
	"encoding/binary"
	"io"
	"math"
	math_rand "math/rand"
	"math/rand/v2"
)

const (
	// Min is the smallest value Engine.Uint64 can return.
	Min uint64 = 0
	// Max is the largest value Engine.Uint64 can return.
	Max uint64 = math.MaxUint64
)

// Engine draws 64-bit values from RDRAND. It has no state: the zero value is
// ready to use, all Engines are equal and an Engine may be shared between
// goroutines without locking.
type Engine struct{}

var (
	_ rand.Source        = Engine{}
	_ math_rand.Source64 = Engine{}
	_ io.Reader          = Engine{}
)

// New returns an Engine. A seed may be passed for compatibility with
// seedable generators; it is ignored.
func New(seed ...uint64) Engine {
	return Engine{}
}

// Uint64 returns a value in [Min, Max]. RDRAND reports transient failure when
// its entropy buffer is drained, in which case the instruction is reissued
// until it succeeds.
func (Engine) Uint64() uint64 {
	return draw(step)
}

// Int63 returns a non-negative 63-bit value, for math/rand.Source.
func (e Engine) Int63() int64 {
	return int64(e.Uint64() >> 1)
}

// Min returns Min.
func (Engine) Min() uint64 { return Min }

// Max returns Max.
func (Engine) Max() uint64 { return Max }

// Discard draws n values and throws them away.
func (Engine) Discard(n uint64) {
	for i := uint64(0); i < n; i++ {
		draw(step)
	}
}

// Reseed is a no-op.
func (Engine) Reseed(seed ...uint64) {}

// Seed is a no-op. It exists so that Engine satisfies math/rand.Source.
func (Engine) Seed(int64) {}

// Equal always returns true.
func (Engine) Equal(Engine) bool { return true }

// Read fills p with random bytes. It never fails.
func (e Engine) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, e.Uint64())
		p = p[8:]
	}
	if len(p) > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], e.Uint64())
		copy(p, tail[:])
	}
	return n, nil
}

// Detect reports whether the hardware source is usable. Package
// initialisation already refuses to continue on CPUs without RDRAND, so this
// always returns true.
func Detect() (bool, error) { return true, nil }
