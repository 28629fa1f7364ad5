package rdrand_test

import (
	"math"
	math_rand "math/rand"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/Thiagojm/rdrand_go/rdrand"
	"github.com/stretchr/testify/require"
)

func TestEngineBounds(t *testing.T) {
	require.Equal(t, uint64(0), rdrand.Min)
	require.Equal(t, uint64(math.MaxUint64), rdrand.Max)

	var e rdrand.Engine
	require.Equal(t, rdrand.Min, e.Min())
	require.Equal(t, rdrand.Max, e.Max())
}

func TestEngineUint64(t *testing.T) {
	for _, seed := range []uint64{0, 1, 5489, math.MaxUint64} {
		e := rdrand.New(seed)
		for i := 0; i < 100; i++ {
			v := e.Uint64()
			require.LessOrEqual(t, e.Min(), v)
			require.GreaterOrEqual(t, e.Max(), v)
		}
	}

	t.Run("NotStuck", func(t *testing.T) {
		// 64 equal draws in a row would mean the instruction is returning a
		// constant, as broken microcode has been known to do.
		var e rdrand.Engine
		first := e.Uint64()
		for i := 0; i < 64; i++ {
			if e.Uint64() != first {
				return
			}
		}
		t.Fatalf("RDRAND returned %#x 65 times in a row", first)
	})
}

func TestEngineEquality(t *testing.T) {
	a := rdrand.New()
	b := rdrand.New(12345)
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.Equal(t, a, b)
	require.True(t, a == rdrand.Engine{})
}

func TestEngineReseed(t *testing.T) {
	e := rdrand.New(1)
	e.Reseed()
	e.Reseed(99)
	e.Seed(-3)
	require.Equal(t, rdrand.New(), e)
	v := e.Uint64()
	require.LessOrEqual(t, rdrand.Min, v)
}

func TestEngineDiscard(t *testing.T) {
	var e rdrand.Engine
	e.Discard(0)
	e.Discard(1000)
	v := e.Uint64()
	require.LessOrEqual(t, e.Min(), v)
	require.GreaterOrEqual(t, e.Max(), v)
}

func TestEngineInt63(t *testing.T) {
	var e rdrand.Engine
	for i := 0; i < 100; i++ {
		require.GreaterOrEqual(t, e.Int63(), int64(0))
	}
}

func TestEngineRead(t *testing.T) {
	var e rdrand.Engine
	for _, size := range []int{0, 1, 7, 8, 9, 63, 4096} {
		buf := make([]byte, size)
		n, err := e.Read(buf)
		require.NoError(t, err)
		require.Equal(t, size, n)
	}
}

func TestEngineConsumers(t *testing.T) {
	t.Run("MathRandV2", func(t *testing.T) {
		r := rand.New(rdrand.Engine{})
		for i := 0; i < 100; i++ {
			v := r.IntN(42)
			require.LessOrEqual(t, 0, v)
			require.Greater(t, 42, v)
		}
		f := r.Float64()
		require.True(t, f >= 0 && f < 1)
	})

	t.Run("MathRand", func(t *testing.T) {
		r := math_rand.New(rdrand.Engine{})
		for i := 0; i < 100; i++ {
			v := r.Int63n(1000)
			require.LessOrEqual(t, int64(0), v)
			require.Greater(t, int64(1000), v)
		}
	})

	t.Run("Shuffle", func(t *testing.T) {
		s := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		rdrand.Rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		require.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, s)
	})
}

func TestEngineConcurrent(t *testing.T) {
	var e rdrand.Engine
	r := rdrand.NewRand()
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 24)
			for i := 0; i < 1000; i++ {
				e.Uint64()
				r.Uint64()
				e.Read(buf)
			}
			e.Discard(100)
		}()
	}
	wg.Wait()
}

func TestDetect(t *testing.T) {
	ok, err := rdrand.Detect()
	require.NoError(t, err)
	require.True(t, ok)
}
