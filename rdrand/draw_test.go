package rdrand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDraw(t *testing.T) {
	t.Run("FirstAttemptSucceeds", func(t *testing.T) {
		calls := 0
		v := draw(func() (uint64, bool) {
			calls++
			return 42, true
		})
		require.Equal(t, uint64(42), v)
		require.Equal(t, 1, calls)
	})

	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		// Values returned alongside a failure must never leak out.
		calls := 0
		v := draw(func() (uint64, bool) {
			calls++
			if calls <= 1000 {
				return 0xdeadbeef, false
			}
			return 7, true
		})
		require.Equal(t, uint64(7), v)
		require.Equal(t, 1001, calls)
	})

	t.Run("Hardware", func(t *testing.T) {
		draw(step)
	})
}
