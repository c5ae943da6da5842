// Package simulation generates head-to-head match event streams from two
// normalized teams.
package simulation

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
)

// Default simulation configuration constants.
const (
	defaultSteps           = 30
	defaultGoalCap         = 5
	defaultCardProbability = 0.05
	matchMinutes           = 90
)

// Rand is the random source consumed by the simulator. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithSteps sets the number of events produced per match.
func WithSteps(steps int) Option {
	return func(s *Simulator) {
		if steps > 0 {
			s.steps = steps
		}
	}
}

// WithGoalCap sets the maximum number of goals kept per match.
func WithGoalCap(limit int) Option {
	return func(s *Simulator) {
		if limit >= 0 {
			s.goalCap = limit
		}
	}
}

// WithCardProbability sets the per-step chance of a caution.
func WithCardProbability(p float64) Option {
	return func(s *Simulator) {
		if p >= 0 && p <= 1 {
			s.cardProbability = p
		}
	}
}

// WithSeed makes every Simulate call replay the same random stream.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.newRand = func() Rand {
			return rand.New(rand.NewSource(seed)) //nolint:gosec // simulation noise, not crypto
		}
	}
}

// WithRandFactory sets the function used to obtain a random source per match.
func WithRandFactory(f func() Rand) Option {
	return func(s *Simulator) {
		if f != nil {
			s.newRand = f
		}
	}
}

// Result is the output of one simulated match.
type Result struct {
	Events []model.MatchEvent
	// CappedGoals counts goals rewritten into off-target shots by the goal cap.
	CappedGoals int
}

// Simulator runs matches. A Simulator is safe for concurrent use: every call
// draws its own random source from the factory.
type Simulator struct {
	steps           int
	goalCap         int
	cardProbability float64
	newRand         func() Rand
}

var seedCounter atomic.Int64

func defaultRand() Rand {
	seed := time.Now().UnixNano() ^ seedCounter.Add(1)<<32
	return rand.New(rand.NewSource(seed)) //nolint:gosec // simulation noise, not crypto
}

// New creates a Simulator with configuration options.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		steps:           defaultSteps,
		goalCap:         defaultGoalCap,
		cardProbability: defaultCardProbability,
		newRand:         defaultRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Steps returns the configured number of events per match.
func (s *Simulator) Steps() int { return s.steps }

// GoalCap returns the configured goal cap.
func (s *Simulator) GoalCap() int { return s.goalCap }

// Simulate plays home against away. A nil team on either side yields an
// empty result.
func (s *Simulator) Simulate(home, away *model.Team) Result {
	if home == nil || away == nil || len(home.Squad) == 0 || len(away.Squad) == 0 {
		return Result{}
	}
	m := newMatch(s, home, away, s.newRand())
	raw := m.play()
	events, capped := capGoals(raw, s.goalCap)
	return Result{Events: events, CappedGoals: capped}
}

// SimulateSeeded plays home against away, replaying seed's random stream when
// seed is set and using the configured source otherwise.
func (s *Simulator) SimulateSeeded(home, away *model.Team, seed *int64) Result {
	if seed == nil {
		return s.Simulate(home, away)
	}
	c := *s
	WithSeed(*seed)(&c)
	return c.Simulate(home, away)
}

var defaultSimulator = New()

// Simulate plays home against away with the default configuration.
func Simulate(home, away *model.Team) Result {
	return defaultSimulator.Simulate(home, away)
}

// minuteAt spreads step i of n evenly across the match.
func minuteAt(i, n int) int {
	if n <= 1 {
		return 0
	}
	return (i*matchMinutes*2 + (n - 1)) / (2 * (n - 1))
}
