// Package worker runs queued match simulations.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/dreamxi/internal/adapters/mq/queue"
	"github.com/okian/dreamxi/internal/adapters/repository"
	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/simulation"
	"github.com/okian/dreamxi/pkg/logger"
	"github.com/okian/dreamxi/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
	errEmptySimulation  = "simulation produced no events"
)

// Simulator plays a match, replaying seed when it is set.
type Simulator interface {
	SimulateSeeded(home, away *model.Team, seed *int64) simulation.Result
}

// Store persists simulated matches.
type Store interface {
	Get(ctx context.Context, id string) (*model.Match, error)
	Save(ctx context.Context, m *model.Match) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker simulates jobs read from a Queue and saves the results.
type InMemoryWorker struct {
	queue     Queue
	simulator Simulator
	store     Store
	name      string
	processed *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sim Simulator, store Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		simulator: sim,
		store:     store,
		name:      "worker",
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("match_id", j.MatchID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob simulates one match and stores the outcome. A match that cannot
// be simulated is stored as failed.
func (w *InMemoryWorker) processJob(ctx context.Context, j queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	m, err := w.store.Get(ctx, j.MatchID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		m = &model.Match{ID: j.MatchID, Home: j.Home, Away: j.Away, Seed: j.Seed, CreatedAt: j.EnqueuedAt}
	case err != nil:
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_get")
		return fmt.Errorf("loading match %s: %w", j.MatchID, err)
	}

	simStart := time.Now()
	res := w.simulator.SimulateSeeded(j.Home, j.Away, j.Seed)
	simLatency := float64(time.Since(simStart).Microseconds()) / 1000

	m.CompletedAt = time.Now()
	if len(res.Events) == 0 {
		m.Status = model.MatchFailed
		m.Error = errEmptySimulation
		metrics.RecordMatchFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "empty_simulation")
	} else {
		m.Status = model.MatchCompleted
		m.Events = res.Events
		m.HomeStats = simulation.ComputeStats(res.Events, model.SideHome)
		m.AwayStats = simulation.ComputeStats(res.Events, model.SideAway)
		for i := range res.Events {
			metrics.RecordEvent(string(res.Events[i].Kind))
		}
		home, away := m.Score()
		metrics.RecordMatchSimulated(home+away, res.CappedGoals, simLatency)
	}

	if err := w.store.Save(ctx, m); err != nil {
		metrics.RecordMatchFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_save")
		return fmt.Errorf("saving match %s: %w", j.MatchID, err)
	}
	w.processed.Add(1)

	home, away := m.Score()
	w.logger.Debug(ctx, "match processed",
		logger.String("match_id", m.ID),
		logger.String("status", string(m.Status)),
		logger.Int("home_goals", home),
		logger.Int("away_goals", away),
		logger.Int("capped_goals", res.CappedGoals),
		logger.Duration("queued_for", start.Sub(j.EnqueuedAt)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed atomic.Int64
	logger    logger.Logger
}

// NewPool creates a worker pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, sim Simulator, store Store) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, sim, store, WithName("worker-"+strconv.Itoa(i)))
		w.processed = &p.processed
		p.workers[i] = w
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs the pool has stored.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Shutdown closes the queue, lets workers drain it, and waits for them up to
// ctx's deadline or poolShutdownTimeout, whichever comes first. Workers whose
// Start context is already cancelled have stopped and leave the rest queued.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
