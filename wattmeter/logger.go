package main

import (
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// initLogger sets up console logging. Packages that log through the
// standard logger (the serial source) are routed into the same output.
func initLogger(debug bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	log = zerolog.New(output).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.With().Str("component", "adc").Logger())
}
