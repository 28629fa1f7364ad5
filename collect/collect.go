// Package collect samples a random source at a fixed interval and records
// each batch in a pair of capture files: the raw bytes in a .bin file and
// "timestamp,ones" lines in a .csv file.
package collect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
	"os"
	"time"

	"github.com/Thiagojm/rdrand_go/naming"
	"github.com/Thiagojm/rdrand_go/rdrand"
	"github.com/rs/zerolog"
)

// CSVTimeLayout is the timestamp format of the first .csv column.
const CSVTimeLayout = "20060102T15:04:05"

// Source returns one batch of random bits, MSB-first, with the unused
// trailing bits of the last byte zeroed.
type Source func(ctx context.Context) ([]byte, error)

// RDRANDSource reads bitCount bits per batch straight from the CPU.
func RDRANDSource(bitCount int) Source {
	return func(ctx context.Context) ([]byte, error) {
		return rdrand.ReadBits(bitCount)
	}
}

// NewPseudoSeed draws a PCG seed from RDRAND.
func NewPseudoSeed() [2]uint64 {
	var e rdrand.Engine
	return [2]uint64{e.Uint64(), e.Uint64()}
}

// PseudoSource reads bitCount bits per batch from a PCG stream. The same
// seed always yields the same captures.
func PseudoSource(bitCount int, seed [2]uint64) Source {
	r := rand.New(rand.NewPCG(seed[0], seed[1]))
	return func(ctx context.Context) ([]byte, error) {
		if bitCount <= 0 {
			return nil, errors.New("bitCount must be positive")
		}
		buf := make([]byte, (bitCount+7)/8)
		for i := range buf {
			buf[i] = byte(r.Uint32())
		}
		if extraBits := (8 - bitCount%8) % 8; extraBits != 0 {
			buf[len(buf)-1] &= byte(0xFF << extraBits)
		}
		return buf, nil
	}
}

// CountOnes returns the number of set bits in buf, considering only the
// first bitCount bits.
func CountOnes(buf []byte, bitCount int) int {
	if bitCount <= 0 || len(buf) == 0 {
		return 0
	}
	bytesUsed := min((bitCount+7)/8, len(buf))
	total := 0
	for i := 0; i < bytesUsed-1; i++ {
		total += bits.OnesCount8(buf[i])
	}
	usedBitsInLast := bitCount - (bytesUsed-1)*8
	if usedBitsInLast <= 0 || usedBitsInLast > 8 {
		usedBitsInLast = 8
	}
	mask := byte(0xFF) << (8 - usedBitsInLast)
	return total + bits.OnesCount8(buf[bytesUsed-1]&mask)
}

// Config controls a collection run.
type Config struct {
	Device   naming.Device
	Bits     int
	Interval time.Duration
	OutDir   string
	// Samples stops the run after this many batches. Zero means run
	// until the context is cancelled.
	Samples int
	// Now is used for the capture file names. Defaults to time.Now.
	Now func() time.Time
}

func (c *Config) validate() error {
	if err := c.Device.Validate(); err != nil {
		return err
	}
	if c.Bits <= 0 {
		return errors.New("bits must be > 0")
	}
	if c.Interval < time.Second || c.Interval%time.Second != 0 {
		return fmt.Errorf("interval must be a positive whole number of seconds, got %s", c.Interval)
	}
	if c.Samples < 0 {
		return errors.New("samples must not be negative")
	}
	return nil
}

// Stats summarises a finished run.
type Stats struct {
	BinPath string
	CSVPath string
	Samples int
	Ones    int
}

// Run creates the capture files in cfg.OutDir and appends one batch from
// source per interval. It returns when ctx is done, after cfg.Samples
// batches, or on the first read or write error. Cancellation is not an
// error.
func Run(ctx context.Context, cfg Config, source Source, logger zerolog.Logger) (Stats, error) {
	if err := cfg.validate(); err != nil {
		return Stats{}, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("creating outdir: %w", err)
		}
	}
	binPath, csvPath, err := naming.BuildBinCSVPaths(cfg.OutDir, now(), cfg.Device, cfg.Bits, int(cfg.Interval/time.Second))
	if err != nil {
		return Stats{}, fmt.Errorf("build filenames: %w", err)
	}
	stats := Stats{BinPath: binPath, CSVPath: csvPath}

	binFile, err := os.OpenFile(binPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return stats, fmt.Errorf("open bin file: %w", err)
	}
	defer func() { _ = binFile.Close() }()
	binBuf := bufio.NewWriter(binFile)

	csvFile, err := os.OpenFile(csvPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return stats, fmt.Errorf("open csv file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()
	csvBuf := bufio.NewWriter(csvFile)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	logger.Info().
		Str("device", string(cfg.Device)).
		Int("bits", cfg.Bits).
		Dur("interval", cfg.Interval).
		Str("bin", binPath).
		Str("csv", csvPath).
		Msg("collecting")

	for {
		select {
		case <-ctx.Done():
			return stats, nil
		default:
		}

		batch, err := source(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return stats, nil
			}
			return stats, fmt.Errorf("read: %w", err)
		}

		// Each batch is flushed so an interrupted run leaves complete samples.
		if _, err := binBuf.Write(batch); err != nil {
			return stats, fmt.Errorf("write bin: %w", err)
		}
		if err := binBuf.Flush(); err != nil {
			return stats, fmt.Errorf("write bin: %w", err)
		}

		ones := CountOnes(batch, cfg.Bits)
		ts := time.Now().Format(CSVTimeLayout)
		if _, err := fmt.Fprintf(csvBuf, "%s,%d\n", ts, ones); err != nil {
			return stats, fmt.Errorf("write csv: %w", err)
		}
		if err := csvBuf.Flush(); err != nil {
			return stats, fmt.Errorf("write csv: %w", err)
		}

		stats.Samples++
		stats.Ones += ones
		logger.Debug().Int("sample", stats.Samples).Int("ones", ones).Int("bits", cfg.Bits).Msg("sample")

		if cfg.Samples > 0 && stats.Samples >= cfg.Samples {
			return stats, nil
		}

		select {
		case <-ctx.Done():
			return stats, nil
		case <-ticker.C:
		}
	}
}
