package simbench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/simulation"
	"github.com/okian/dreamxi/internal/domain/squad"
	"github.com/okian/dreamxi/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrNoMatches is returned for a run without matches.
var ErrNoMatches = errors.New("at least one match is required")

// tally accumulates outcomes of the matches one worker played.
type tally struct {
	homeWins, draws, awayWins int
	homeGoals, awayGoals      int
	maxGoals                  int
	cappedGoals               int
	cappedMatches             int
	cards                     int
}

func (t *tally) add(res simulation.Result) {
	home, away := model.CountGoals(res.Events)
	switch {
	case home > away:
		t.homeWins++
	case home < away:
		t.awayWins++
	default:
		t.draws++
	}
	t.homeGoals += home
	t.awayGoals += away
	t.maxGoals = max(t.maxGoals, home+away)
	if res.CappedGoals > 0 {
		t.cappedGoals += res.CappedGoals
		t.cappedMatches++
	}
	for i := range res.Events {
		if res.Events[i].Kind == model.EventYellowCard {
			t.cards++
		}
	}
}

func (t *tally) merge(o tally) {
	t.homeWins += o.homeWins
	t.draws += o.draws
	t.awayWins += o.awayWins
	t.homeGoals += o.homeGoals
	t.awayGoals += o.awayGoals
	t.maxGoals = max(t.maxGoals, o.maxGoals)
	t.cappedGoals += o.cappedGoals
	t.cappedMatches += o.cappedMatches
	t.cards += o.cards
}

// Run simulates config.Matches matches between two generated squads. Match i
// replays seed config.Seed+i, so a fixed seed gives a reproducible report.
func Run(ctx context.Context, config *Config) (Report, error) {
	if config.Matches <= 0 {
		return Report{}, ErrNoMatches
	}
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed)) //nolint:gosec // squad generation, not crypto
	home := squad.Normalize(GenerateSquad("Home", config.HomeRating, config.Spread, rnd), "Home")
	away := squad.Normalize(GenerateSquad("Away", config.AwayRating, config.Spread, rnd), "Away")

	sim := simulation.New(
		simulation.WithSteps(config.Steps),
		simulation.WithGoalCap(config.GoalCap),
		simulation.WithCardProbability(config.CardProbability),
	)

	log := logger.Get().Named("simbench")
	log.Info(ctx, "starting simulation benchmark",
		logger.Int("matches", config.Matches),
		logger.Int("workers", config.Workers),
		logger.Float64("homeRating", home.Rating),
		logger.Float64("awayRating", away.Rating),
		logger.Any("seed", seed),
	)

	start := time.Now()
	total, err := fanOut(ctx, config, func(i int) simulation.Result {
		s := seed + int64(i)
		return sim.SimulateSeeded(home, away, &s)
	})
	if err != nil {
		return Report{}, err
	}

	report := buildReport(config.Matches, total, home, away)
	report.Seed = seed
	report.Duration = time.Since(start)
	report.DurationMS = report.Duration.Milliseconds()

	if config.OutputFile != "" {
		if err := saveReport(config.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved to file", logger.String("filename", config.OutputFile))
		}
	}
	displayReport(ctx, log, report)
	return report, nil
}

// fanOut plays matches 0..n-1 on config.Workers goroutines.
func fanOut(ctx context.Context, config *Config, play func(i int) simulation.Result) (tally, error) {
	workers := min(max(config.Workers, 1), config.Matches)
	indices := make(chan int, workers)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total tally
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local tally
			for i := range indices {
				local.add(play(i))
			}
			mu.Lock()
			total.merge(local)
			mu.Unlock()
		}()
	}

	var err error
feed:
	for i := 0; i < config.Matches; i++ {
		if ctx.Err() != nil {
			err = fmt.Errorf("benchmark cancelled after %d matches: %w", i, ctx.Err())
			break
		}
		select {
		case <-ctx.Done():
			err = fmt.Errorf("benchmark cancelled after %d matches: %w", i, ctx.Err())
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()
	return total, err
}

func buildReport(n int, t tally, home, away *model.Team) Report {
	matches := float64(n)
	return Report{
		Matches:       n,
		HomeLabel:     home.Label,
		AwayLabel:     away.Label,
		HomeRating:    home.Rating,
		AwayRating:    away.Rating,
		HomeWins:      t.homeWins,
		Draws:         t.draws,
		AwayWins:      t.awayWins,
		HomeWinRate:   float64(t.homeWins) / matches * PercentageMultiplier,
		DrawRate:      float64(t.draws) / matches * PercentageMultiplier,
		AwayWinRate:   float64(t.awayWins) / matches * PercentageMultiplier,
		AvgHomeGoals:  float64(t.homeGoals) / matches,
		AvgAwayGoals:  float64(t.awayGoals) / matches,
		MaxGoals:      t.maxGoals,
		CappedGoals:   t.cappedGoals,
		CappedMatches: t.cappedMatches,
		Cards:         t.cards,
	}
}

// saveReport writes the report as indented JSON.
func saveReport(filename string, report Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayReport logs the final statistics.
func displayReport(ctx context.Context, log logger.Logger, r Report) {
	var perSecond float64
	if r.Duration > 0 {
		perSecond = float64(r.Matches) / r.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("matches", r.Matches),
		logger.Float64("homeWinRate", r.HomeWinRate),
		logger.Float64("drawRate", r.DrawRate),
		logger.Float64("awayWinRate", r.AwayWinRate),
		logger.Float64("avgHomeGoals", r.AvgHomeGoals),
		logger.Float64("avgAwayGoals", r.AvgAwayGoals),
		logger.Int("maxGoals", r.MaxGoals),
		logger.Int("cappedGoals", r.CappedGoals),
		logger.Int("cappedMatches", r.CappedMatches),
		logger.Duration("duration", r.Duration),
		logger.Float64("matchesPerSecond", perSecond),
	)
}
