// rdrandcli reads random bits from the CPU's RDRAND instruction, either once
// or at a fixed interval, and can print raw 64-bit draws or a shuffled
// permutation.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thiagojm/rdrand_go/rdrand"
	"github.com/rs/zerolog"
)

func main() {
	bits := flag.Int("bits", 1024, "number of bits to read per batch")
	interval := flag.Duration("interval", 0, "interval between reads (e.g. 2s). 0 for one-shot")
	draws := flag.Int("uint64", 0, "print this many raw 64-bit draws instead of a bit batch")
	shuffle := flag.Int("shuffle", 0, "print a random permutation of 0..n-1 instead of a bit batch")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	present, err := rdrand.Detect()
	if err != nil {
		logger.Fatal().Err(err).Msg("detect error")
	}
	if !present {
		logger.Fatal().Msg("RDRAND not available")
	}

	switch {
	case *draws > 0:
		var e rdrand.Engine
		for i := 0; i < *draws; i++ {
			fmt.Printf("%016x\n", e.Uint64())
		}
		return
	case *shuffle > 0:
		fmt.Println(rdrand.Rand.Perm(*shuffle))
		return
	}

	if *interval == 0 {
		data, err := rdrand.ReadBits(*bits)
		if err != nil {
			logger.Fatal().Err(err).Msg("read error")
		}
		logger.Debug().Int("bits", *bits).Int("bytes", len(data)).Msg("read")
		fmt.Printf("%s\n", hex.EncodeToString(data))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger.Info().Int("bits", *bits).Dur("interval", *interval).Msg("reading, press Ctrl+C to stop")
	err = rdrand.CollectBitsAtInterval(ctx, *bits, *interval, func(b []byte) {
		fmt.Printf("%s  %d bits  %s\n", time.Now().Format(time.RFC3339), *bits, hex.EncodeToString(b))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("collect error")
	}
}
