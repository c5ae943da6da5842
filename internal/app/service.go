// Package service wires the match simulation components into the business
// service used by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dreamxi/internal/adapters/mq/queue"
	workerpool "github.com/okian/dreamxi/internal/adapters/mq/worker"
	"github.com/okian/dreamxi/internal/adapters/repository"
	"github.com/okian/dreamxi/internal/domain/dedupe"
	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/playback"
	"github.com/okian/dreamxi/internal/domain/simulation"
	"github.com/okian/dreamxi/internal/domain/squad"
	"github.com/okian/dreamxi/pkg/logger"
	"github.com/okian/dreamxi/pkg/metrics"
)

const (
	defaultHomeLabel = "Home"
	defaultAwayLabel = "Away"
	stopTimeout      = 10 * time.Second
	rejectedMessage  = "rejected: simulation queue is full"
)

// Service accepts squads, simulates matches asynchronously, and serves the
// results.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	index     dedupe.Index
	queue     *queue.InMemoryQueue
	simulator *simulation.Simulator
	pool      *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	storeCapacity   int
	steps           int
	goalCap         int
	cardProbability float64
	clock           playback.Clock

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       1024,
		dedupeSize:      50_000,
		storeCapacity:   10_000,
		steps:           30,
		goalCap:         5,
		cardProbability: 0.05,
		clock:           playback.DefaultClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting match service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithCapacity(s.storeCapacity))
		s.logger.Info(ctx, "using memory store", logger.Int("capacity", s.storeCapacity))
	}
	s.index = dedupe.NewInMemoryIndex(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.simulator = simulation.New(
		simulation.WithSteps(s.steps),
		simulation.WithGoalCap(s.goalCap),
		simulation.WithCardProbability(s.cardProbability),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.simulator, s.store)
	// Workers outlive ctx; Stop closes the queue and they exit once it drains.
	s.pool.Start(context.WithoutCancel(ctx))
	metrics.UpdateQueueCapacity(s.queue.Capacity())

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("steps", s.simulator.Steps()),
		logger.Int("goalCap", s.simulator.GoalCap()),
	)
	return nil
}

// Stop drains queued simulations and releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping match service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(ctx, "error closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "match service stopped")
}

// running returns the components needed to serve a request, or
// ErrNotStarted.
func (s *Service) running() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// PreviewSquad normalizes a raw squad without simulating anything.
func (s *Service) PreviewSquad(players []model.Player, label string) (*model.Team, error) {
	team := squad.Normalize(players, labelOr(label, defaultHomeLabel))
	if team == nil {
		return nil, ErrNoSquad
	}
	return team, nil
}

// SubmitMatch normalizes both squads and queues the match for simulation.
// Resubmitting a RequestID returns the match created by the first call.
func (s *Service) SubmitMatch(ctx context.Context, req MatchRequest) (Submission, error) {
	if _, err := s.running(); err != nil {
		return Submission{}, err
	}

	home := squad.Normalize(req.Home.Players, labelOr(req.Home.Label, defaultHomeLabel))
	if home == nil {
		return Submission{}, ErrNoSquad
	}
	away := s.opponent(ctx, req.Away)

	return s.submit(ctx, req.RequestID, home, away, req.Seed)
}

// Rematch queues a new match between the squads of an existing one. The
// rematch draws fresh randomness even when the original was seeded.
func (s *Service) Rematch(ctx context.Context, id string) (Submission, error) {
	store, err := s.running()
	if err != nil {
		return Submission{}, err
	}
	m, err := store.Get(ctx, id)
	if err != nil {
		return Submission{}, fmt.Errorf("rematch of %s: %w", id, err)
	}
	return s.submit(ctx, "", m.Home, m.Away, nil)
}

// opponent normalizes the away squad, falling back to the built-in one when
// none is supplied or none of its players are usable.
func (s *Service) opponent(ctx context.Context, in *SquadInput) *model.Team {
	if in == nil || len(in.Players) == 0 {
		return squad.FallbackTeam()
	}
	if team := squad.Normalize(in.Players, labelOr(in.Label, defaultAwayLabel)); team != nil {
		return team
	}
	s.logger.Debug(ctx, "away squad unusable, using fallback", logger.String("label", in.Label))
	return squad.FallbackTeam()
}

func (s *Service) submit(ctx context.Context, requestID string, home, away *model.Team, seed *int64) (Submission, error) {
	store, err := s.running()
	if err != nil {
		return Submission{}, err
	}

	id := uuid.NewString()
	if requestID != "" {
		if existing, seen := s.index.Remember(ctx, requestID, id); seen {
			metrics.RecordMatchDuplicate()
			status := model.MatchPending
			if m, getErr := store.Get(ctx, existing); getErr == nil {
				status = m.Status
			}
			s.logger.Debug(ctx, "duplicate submission",
				logger.String("request_id", requestID),
				logger.String("match_id", existing),
			)
			return Submission{MatchID: existing, Status: status, Duplicate: true}, nil
		}
	}

	now := time.Now()
	m := &model.Match{
		ID:        id,
		Status:    model.MatchPending,
		Home:      home,
		Away:      away,
		Seed:      seed,
		CreatedAt: now,
	}
	if err := store.Save(ctx, m); err != nil {
		s.forget(ctx, requestID)
		metrics.RecordErrorByComponent("service", "store_save")
		return Submission{}, fmt.Errorf("saving match %s: %w", id, err)
	}

	job := model.Job{MatchID: id, Home: home, Away: away, Seed: seed, EnqueuedAt: now}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.forget(ctx, requestID)
		s.reject(ctx, m)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return Submission{}, fmt.Errorf("%w: %v", ErrBackpressure, err)
		}
		return Submission{}, err
	}

	metrics.RecordMatchSubmitted()
	s.logger.Debug(ctx, "match queued",
		logger.String("match_id", id),
		logger.String("home", home.Label),
		logger.String("away", away.Label),
		logger.Bool("seeded", seed != nil),
	)
	return Submission{MatchID: id, Status: model.MatchPending}, nil
}

func (s *Service) forget(ctx context.Context, requestID string) {
	if requestID != "" {
		s.index.Forget(ctx, requestID)
	}
}

// reject marks a match that never reached the queue as failed.
func (s *Service) reject(ctx context.Context, m *model.Match) {
	m.Status = model.MatchFailed
	m.Error = rejectedMessage
	m.CompletedAt = time.Now()
	if err := s.store.Save(ctx, m); err != nil {
		s.logger.Warn(ctx, "could not mark rejected match", logger.String("match_id", m.ID), logger.Error(err))
	}
	metrics.RecordMatchFailed()
}

// Match returns a stored match.
func (s *Service) Match(ctx context.Context, id string) (*model.Match, error) {
	store, err := s.running()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

// Timeline returns what a viewer sees elapsed into the playback of a
// completed match.
func (s *Service) Timeline(ctx context.Context, id string, elapsed time.Duration) (Timeline, error) {
	m, err := s.completedMatch(ctx, id)
	if err != nil {
		return Timeline{}, err
	}

	clock := s.PlaybackClock()
	visible := clock.Visible(m.Events, elapsed)
	home, away := playback.Score(visible)
	return Timeline{
		MatchID:   m.ID,
		Elapsed:   elapsed,
		ElapsedMS: elapsed.Milliseconds(),
		Minute:    clock.MinuteAt(elapsed),
		HomeGoals: home,
		AwayGoals: away,
		Finished:  clock.Finished(elapsed),
		Events:    visible,
	}, nil
}

// NewPlayback prepares a live player for a completed match. The caller
// starts it.
func (s *Service) NewPlayback(ctx context.Context, id string, opts ...playback.Option) (*playback.Player, *model.Match, error) {
	m, err := s.completedMatch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]playback.Option{playback.WithClock(s.PlaybackClock())}, opts...)
	return playback.NewPlayer(m.Events, opts...), m, nil
}

func (s *Service) completedMatch(ctx context.Context, id string) (*model.Match, error) {
	m, err := s.Match(ctx, id)
	if err != nil {
		return nil, err
	}
	switch m.Status {
	case model.MatchPending:
		return nil, ErrMatchPending
	case model.MatchFailed:
		return nil, fmt.Errorf("%w: %s", ErrMatchFailed, m.Error)
	}
	return m, nil
}

// PlaybackClock returns the timing used for timelines and live playback.
func (s *Service) PlaybackClock() playback.Clock {
	return s.clock
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"steps":       s.steps,
		"goalCap":     s.goalCap,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["matchesStored"] = stored
		stats["matchesProcessed"] = s.pool.Processed()
		stats["dedupeEntries"] = s.index.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateMatchesStored(stored)
		metrics.UpdateWorkerActiveCount(s.pool.Size())
	}

	return stats
}

func labelOr(label, fallback string) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	return fallback
}
