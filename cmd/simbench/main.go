package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/dreamxi/internal/simbench"
)

// Default configuration constants.
const (
	defaultMatches     = 10000
	defaultRating      = 80
	defaultSpread      = 8
	defaultSteps       = 30
	defaultGoalCap     = 5
	defaultCardChance  = 0.05
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		matches    = flag.Int("matches", defaultMatches, "Number of matches to simulate")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent simulators")
		home       = flag.Float64("home", defaultRating, "Mean rating of the home squad")
		away       = flag.Float64("away", defaultRating, "Mean rating of the away squad")
		spread     = flag.Float64("spread", defaultSpread, "Rating spread around the mean")
		steps      = flag.Int("steps", defaultSteps, "Events per match")
		goalCap    = flag.Int("goal-cap", defaultGoalCap, "Goals kept per match")
		cards      = flag.Float64("cards", defaultCardChance, "Per-step caution chance")
		seed       = flag.Int64("seed", 0, "Base seed; 0 picks one from the clock")
		outputFile = flag.String("output", "", "Write the JSON report to this file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		format     = flag.String("format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simbench.ShowHelp()
		return
	}

	if err := simbench.SetupLogging(*logFile, *format, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &simbench.Config{
		Matches:         *matches,
		Workers:         *workers,
		HomeRating:      *home,
		AwayRating:      *away,
		Spread:          *spread,
		Steps:           *steps,
		GoalCap:         *goalCap,
		CardProbability: *cards,
		Seed:            *seed,
		OutputFile:      *outputFile,
		Timeout:         defaultTestTimeout,
	}

	if _, err := simbench.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Benchmark failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
