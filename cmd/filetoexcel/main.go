// filetoexcel turns a .bin or .csv capture written by collect into an Excel
// workbook with the running z-score of the ones count.
//
// Usage: filetoexcel <path-to-.bin-or-.csv>
package main

import (
	"os"

	"github.com/Thiagojm/rdrand_go/ztest"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if len(os.Args) < 2 {
		logger.Error().Msg("usage: filetoexcel <path-to-.bin-or-.csv>")
		os.Exit(2)
	}
	out, err := ztest.Convert(os.Args[1])
	if err != nil {
		logger.Fatal().Err(err).Str("capture", os.Args[1]).Msg("conversion failed")
	}
	logger.Info().Str("workbook", out).Msg("written")
}
