package service

import (
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
)

// SquadInput is a raw squad as submitted by a client.
type SquadInput struct {
	Label   string         `json:"label"`
	Players []model.Player `json:"players"`
}

// MatchRequest asks for a new simulated match. Away may be omitted, in which
// case the built-in opponent is used. A non-empty RequestID makes the
// submission idempotent.
type MatchRequest struct {
	RequestID string      `json:"request_id,omitempty"`
	Seed      *int64      `json:"seed,omitempty"`
	Home      SquadInput  `json:"home"`
	Away      *SquadInput `json:"away,omitempty"`
}

// Submission acknowledges an accepted match.
type Submission struct {
	MatchID   string            `json:"match_id"`
	Status    model.MatchStatus `json:"status"`
	Duplicate bool              `json:"duplicate,omitempty"`
}

// Timeline is the part of a match visible at a playback instant.
type Timeline struct {
	MatchID   string             `json:"match_id"`
	Elapsed   time.Duration      `json:"-"`
	ElapsedMS int64              `json:"elapsed_ms"`
	Minute    int                `json:"minute"`
	HomeGoals int                `json:"home_goals"`
	AwayGoals int                `json:"away_goals"`
	Finished  bool               `json:"finished"`
	Events    []model.MatchEvent `json:"events"`
}
