package rdrand_test

import (
	"context"
	"testing"
	"time"

	"github.com/Thiagojm/rdrand_go/rdrand"
	"github.com/stretchr/testify/require"
)

func TestReadBits(t *testing.T) {
	t.Run("InvalidCount", func(t *testing.T) {
		_, err := rdrand.ReadBits(0)
		require.EqualError(t, err, "bitCount must be positive")
		_, err = rdrand.ReadBits(-8)
		require.Error(t, err)
	})

	t.Run("WholeBytes", func(t *testing.T) {
		b, err := rdrand.ReadBits(2048)
		require.NoError(t, err)
		require.Len(t, b, 256)
	})

	t.Run("TrailingBitsZeroed", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			b, err := rdrand.ReadBits(13)
			require.NoError(t, err)
			require.Len(t, b, 2)
			require.Zero(t, b[1]&0x07)
		}
	})
}

func TestCollectBitsAtInterval(t *testing.T) {
	t.Run("InvalidArguments", func(t *testing.T) {
		ctx := context.Background()
		noop := func([]byte) {}
		require.Error(t, rdrand.CollectBitsAtInterval(ctx, 0, time.Second, noop))
		require.Error(t, rdrand.CollectBitsAtInterval(ctx, 8, 0, noop))
		require.Error(t, rdrand.CollectBitsAtInterval(ctx, 8, time.Second, nil))
	})

	t.Run("StopsOnCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var batches [][]byte
		err := rdrand.CollectBitsAtInterval(ctx, 64, time.Millisecond, func(b []byte) {
			batches = append(batches, b)
			if len(batches) == 3 {
				cancel()
			}
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Len(t, batches, 3)
		for _, b := range batches {
			require.Len(t, b, 8)
		}
	})
}
