package rdrand

import (
	"context"
	"errors"
	"time"
)

// ReadBits returns bitCount bits drawn from RDRAND, packed MSB-first in each
// byte. The unused trailing bits of the final byte are zeroed.
func ReadBits(bitCount int) ([]byte, error) {
	if bitCount <= 0 {
		return nil, errors.New("bitCount must be positive")
	}
	buf := make([]byte, (bitCount+7)/8)
	_, _ = Engine{}.Read(buf)
	if extraBits := (8 - bitCount%8) % 8; extraBits != 0 {
		buf[len(buf)-1] &= byte(0xFF << extraBits)
	}
	return buf, nil
}

// CollectBitsAtInterval reads bitCount bits immediately and then once per
// interval, passing each batch to onBatch. It runs until ctx is done and
// returns ctx.Err().
func CollectBitsAtInterval(ctx context.Context, bitCount int, interval time.Duration, onBatch func([]byte)) error {
	if bitCount <= 0 {
		return errors.New("bitCount must be positive")
	}
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	if onBatch == nil {
		return errors.New("onBatch callback must not be nil")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		b, err := ReadBits(bitCount)
		if err != nil {
			return err
		}
		onBatch(b)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
