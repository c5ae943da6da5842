package model

import "time"

// MatchStatus is the lifecycle state of a submitted match.
type MatchStatus string

// Match statuses.
const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
	MatchFailed    MatchStatus = "failed"
)

// Match is a submitted simulation and, once completed, its event stream.
type Match struct {
	ID          string       `json:"id"`
	Status      MatchStatus  `json:"status"`
	Home        *Team        `json:"home"`
	Away        *Team        `json:"away"`
	Seed        *int64       `json:"seed,omitempty"`
	Events      []MatchEvent `json:"events,omitempty"`
	HomeStats   TeamStats    `json:"home_stats"`
	AwayStats   TeamStats    `json:"away_stats"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt time.Time    `json:"completed_at,omitempty"`
}

// Score counts goal events per side.
func (m *Match) Score() (home, away int) {
	return CountGoals(m.Events)
}

// CountGoals counts goal events per side.
func CountGoals(events []MatchEvent) (home, away int) {
	for i := range events {
		if events[i].Kind != EventGoal {
			continue
		}
		if events[i].Side == SideHome {
			home++
		} else {
			away++
		}
	}
	return home, away
}

// Job is a unit of simulation work handed from the service to the workers.
type Job struct {
	MatchID    string
	Home       *Team
	Away       *Team
	Seed       *int64
	EnqueuedAt time.Time
}

// Clone returns a copy of m that shares only the per-event position slices.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.Home = m.Home.Clone()
	c.Away = m.Away.Clone()
	if m.Seed != nil {
		s := *m.Seed
		c.Seed = &s
	}
	if m.Events != nil {
		c.Events = append([]MatchEvent(nil), m.Events...)
	}
	return &c
}
