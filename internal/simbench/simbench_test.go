package simbench

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/dreamxi/internal/domain/simulation"
	"github.com/okian/dreamxi/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func baseConfig() *Config {
	return &Config{
		Matches:         300,
		Workers:         4,
		HomeRating:      80,
		AwayRating:      80,
		Spread:          5,
		Steps:           30,
		GoalCap:         5,
		CardProbability: 0.05,
		Seed:            7,
	}
}

func TestGenerateSquad(t *testing.T) {
	Convey("Given a generated squad", t, func() {
		rnd := rand.New(rand.NewSource(1)) //nolint:gosec // test data
		players := GenerateSquad("Home", 95, 10, rnd)

		Convey("Then it should be a full eleven with unique ids and bounded ratings", func() {
			So(players, ShouldHaveLength, 11)
			seen := map[string]bool{}
			for _, p := range players {
				So(seen[p.ID], ShouldBeFalse)
				seen[p.ID] = true
				So(p.Rating, ShouldBeBetweenOrEqual, minRating, maxRating)
				So(p.Rating, ShouldBeGreaterThanOrEqualTo, 85)
			}
			So(players[0].Position, ShouldEqual, "GK")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a benchmark configuration", t, func() {
		ctx := context.Background()

		Convey("When running with a fixed seed", func() {
			first, err := Run(ctx, baseConfig())
			So(err, ShouldBeNil)
			second, err := Run(ctx, baseConfig())
			So(err, ShouldBeNil)

			Convey("Then every match should be counted once", func() {
				So(first.HomeWins+first.Draws+first.AwayWins, ShouldEqual, 300)
				So(first.HomeWinRate+first.DrawRate+first.AwayWinRate, ShouldAlmostEqual, 100, 1e-9)
			})

			Convey("Then no match should exceed the goal cap", func() {
				So(first.MaxGoals, ShouldBeLessThanOrEqualTo, 5)
			})

			Convey("Then the outcome counts should be reproducible", func() {
				So(second.HomeWins, ShouldEqual, first.HomeWins)
				So(second.AwayWins, ShouldEqual, first.AwayWins)
				So(second.AvgHomeGoals, ShouldEqual, first.AvgHomeGoals)
				So(second.CappedGoals, ShouldEqual, first.CappedGoals)
			})
		})

		Convey("When one side is far stronger", func() {
			cfg := baseConfig()
			cfg.HomeRating, cfg.AwayRating = 95, 50
			report, err := Run(ctx, cfg)

			Convey("Then it should score more on average", func() {
				So(err, ShouldBeNil)
				So(report.AvgHomeGoals, ShouldBeGreaterThan, report.AvgAwayGoals)
			})
		})

		Convey("When an output file is requested", func() {
			dir := t.TempDir()
			cfg := baseConfig()
			cfg.Matches = 20
			cfg.OutputFile = filepath.Join(dir, "nested", "report.json")
			report, err := Run(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then the report should be written as JSON", func() {
				data, readErr := os.ReadFile(cfg.OutputFile)
				So(readErr, ShouldBeNil)
				var saved Report
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved.Matches, ShouldEqual, 20)
				So(saved.HomeWins, ShouldEqual, report.HomeWins)
				So(saved.Seed, ShouldEqual, int64(7))
			})
		})

		Convey("When there are no matches", func() {
			cfg := baseConfig()
			cfg.Matches = 0
			_, err := Run(ctx, cfg)

			Convey("Then it should refuse to run", func() {
				So(errors.Is(err, ErrNoMatches), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Run(cancelled, baseConfig())

			Convey("Then the run should stop with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestTally(t *testing.T) {
	Convey("Given two partial tallies", t, func() {
		var a, b tally
		a.add(simulation.Result{CappedGoals: 2})
		b.maxGoals = 4
		b.homeWins = 3
		a.merge(b)

		Convey("Then merging should sum counts and keep the maximum", func() {
			So(a.draws, ShouldEqual, 1)
			So(a.homeWins, ShouldEqual, 3)
			So(a.maxGoals, ShouldEqual, 4)
			So(a.cappedGoals, ShouldEqual, 2)
			So(a.cappedMatches, ShouldEqual, 1)
		})
	})
}
