// Package playback paces a simulated event stream against real time.
package playback

import (
	"math"
	"sort"
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
)

// Default playback timing.
const (
	DefaultDuration = 120 * time.Second
	DefaultTick     = 2 * time.Second
	matchMinutes    = 90
)

// Clock maps elapsed real time onto match minutes.
type Clock struct {
	Duration time.Duration `json:"duration"`
	Tick     time.Duration `json:"tick"`
}

// DefaultClock returns a clock that plays ninety minutes in two real minutes.
func DefaultClock() Clock {
	return Clock{Duration: DefaultDuration, Tick: DefaultTick}
}

// normalized fills unset fields with defaults and keeps Tick within Duration.
func (c Clock) normalized() Clock {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	if c.Tick > c.Duration {
		c.Tick = c.Duration
	}
	return c
}

// Progress returns the completed share of the playback in [0,1].
func (c Clock) Progress(elapsed time.Duration) float64 {
	c = c.normalized()
	if elapsed <= 0 {
		return 0
	}
	return math.Min(1, float64(elapsed)/float64(c.Duration))
}

// MinuteAt returns the match minute shown after elapsed.
func (c Clock) MinuteAt(elapsed time.Duration) int {
	return int(math.Round(c.Progress(elapsed) * matchMinutes))
}

// Finished reports whether elapsed has reached the end of the playback.
func (c Clock) Finished(elapsed time.Duration) bool {
	return elapsed >= c.normalized().Duration
}

// Visible returns the prefix of events revealed after elapsed. The result
// shares the backing array of events.
func (c Clock) Visible(events []model.MatchEvent, elapsed time.Duration) []model.MatchEvent {
	return events[:revealedCount(events, c.MinuteAt(elapsed))]
}

// Ticks returns the number of ticks needed to play the whole match.
func (c Clock) Ticks() int {
	c = c.normalized()
	return int((c.Duration + c.Tick - 1) / c.Tick)
}

// Score returns the goals in events for each side.
func Score(events []model.MatchEvent) (home, away int) {
	return model.CountGoals(events)
}

func revealedCount(events []model.MatchEvent, minute int) int {
	return sort.Search(len(events), func(i int) bool {
		return events[i].Minute > minute
	})
}
