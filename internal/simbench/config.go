// Package simbench runs batches of in-process match simulations and reports
// outcome distributions.
package simbench

import "time"

// Config holds configuration for a benchmark run.
type Config struct {
	Matches         int           // Number of matches to simulate
	Workers         int           // Number of concurrent simulators
	HomeRating      float64       // Mean rating of the generated home squad
	AwayRating      float64       // Mean rating of the generated away squad
	Spread          float64       // Ratings vary uniformly within ±Spread
	Steps           int           // Events per match
	GoalCap         int           // Goals kept per match
	CardProbability float64       // Per-step caution chance
	Seed            int64         // Base seed; 0 picks one from the clock
	OutputFile      string        // Optional JSON report path
	Timeout         time.Duration // Upper bound for the whole run
}

// Report summarizes a benchmark run.
type Report struct {
	Seed          int64         `json:"seed"`
	Matches       int           `json:"matches"`
	HomeLabel     string        `json:"home_label"`
	AwayLabel     string        `json:"away_label"`
	HomeRating    float64       `json:"home_rating"`
	AwayRating    float64       `json:"away_rating"`
	HomeWins      int           `json:"home_wins"`
	Draws         int           `json:"draws"`
	AwayWins      int           `json:"away_wins"`
	HomeWinRate   float64       `json:"home_win_rate"`
	DrawRate      float64       `json:"draw_rate"`
	AwayWinRate   float64       `json:"away_win_rate"`
	AvgHomeGoals  float64       `json:"avg_home_goals"`
	AvgAwayGoals  float64       `json:"avg_away_goals"`
	MaxGoals      int           `json:"max_goals"`
	CappedGoals   int           `json:"capped_goals"`
	CappedMatches int           `json:"capped_matches"`
	Cards         int           `json:"cards"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"duration_ms"`
}
