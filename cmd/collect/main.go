// collect samples RDRAND (or a PCG control stream seeded from it) at a fixed
// interval and writes the capture as a .bin/.csv pair.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thiagojm/rdrand_go/collect"
	"github.com/Thiagojm/rdrand_go/naming"
	"github.com/rs/zerolog"
)

func main() {
	bitsFlag := flag.Int("bits", 2048, "number of bits per batch (required > 0)")
	intervalSec := flag.Int("interval", 1, "interval between batches in seconds (required > 0)")
	deviceFlag := flag.String("device", string(naming.DeviceRDRAND), "source to read from: rdrand|pseudo")
	outDir := flag.String("outdir", "data", "output directory for files")
	samples := flag.Int("samples", 0, "stop after this many batches (0 runs until interrupted)")
	debug := flag.Bool("debug", false, "log every sample")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if *bitsFlag <= 0 {
		logger.Fatal().Msg("-bits must be > 0")
	}
	if *intervalSec <= 0 {
		logger.Fatal().Msg("-interval must be > 0")
	}
	dev := naming.Device(*deviceFlag)
	if err := dev.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid -device")
	}

	var source collect.Source
	switch dev {
	case naming.DeviceRDRAND:
		source = collect.RDRANDSource(*bitsFlag)
	case naming.DevicePseudo:
		seed := collect.NewPseudoSeed()
		logger.Info().Str("seed", fmt.Sprintf("%016x%016x", seed[0], seed[1])).Msg("seeded PCG from RDRAND")
		source = collect.PseudoSource(*bitsFlag, seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := collect.Run(ctx, collect.Config{
		Device:   dev,
		Bits:     *bitsFlag,
		Interval: time.Duration(*intervalSec) * time.Second,
		OutDir:   *outDir,
		Samples:  *samples,
	}, source, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("collection failed")
	}
	logger.Info().
		Int("samples", stats.Samples).
		Int("ones", stats.Ones).
		Int("bits", stats.Samples*(*bitsFlag)).
		Str("bin", stats.BinPath).
		Str("csv", stats.CSVPath).
		Msg("done")
}
