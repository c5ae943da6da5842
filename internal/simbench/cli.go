package simbench

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/dreamxi/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to the console and, when logFile is set,
// to that file as well.
func SetupLogging(logFile, format string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWithWriter(w, format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the benchmark tool.
func ShowHelp() {
	os.Stdout.WriteString(`Dream XI Simulation Benchmark
=============================

Plays many matches between two generated squads in-process and reports how
often each side wins, how many goals are scored and how often the goal cap
intervenes.

Usage:
  go run ./cmd/simbench [options]

Options:
  -matches int        Number of matches to simulate (default 10000)
  -workers int        Number of concurrent simulators (default CPU cores)
  -home float         Mean rating of the home squad (default 80)
  -away float         Mean rating of the away squad (default 80)
  -spread float       Rating spread around the mean (default 8)
  -steps int          Events per match (default 30)
  -goal-cap int       Goals kept per match (default 5)
  -cards float        Per-step caution chance (default 0.05)
  -seed int           Base seed; 0 picks one from the clock
  -output string      Write the JSON report to this file
  -log string         Also write logs to this file
  -format string      Log format: text or json (default text)
  -verbose            Enable debug logging
  -help               Show this help message

Examples:
  # Evenly matched squads
  go run ./cmd/simbench -matches 5000

  # A strong side against a weak one, reproducibly
  go run ./cmd/simbench -home 92 -away 65 -seed 42 -output out/report.json
`)
}
