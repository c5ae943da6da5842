package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/dreamxi/internal/adapters/mq/queue"
	"github.com/okian/dreamxi/internal/adapters/mq/worker"
	"github.com/okian/dreamxi/internal/adapters/repository"
	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/simulation"
	"github.com/okian/dreamxi/internal/domain/squad"
	logging "github.com/okian/dreamxi/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

// failingStore accepts reads and rejects writes.
type failingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *failingStore) Get(ctx context.Context, id string) (*model.Match, error) {
	return nil, repository.ErrNotFound
}

func (s *failingStore) Save(ctx context.Context, m *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return errors.New("disk full")
}

// silentSimulator never produces events.
type silentSimulator struct{}

func (silentSimulator) SimulateSeeded(home, away *model.Team, seed *int64) simulation.Result {
	return simulation.Result{}
}

func newJob(id string, seed *int64) queue.Job {
	return queue.Job{
		MatchID:    id,
		Home:       squad.FallbackTeam(),
		Away:       squad.FallbackTeam(),
		Seed:       seed,
		EnqueuedAt: time.Now(),
	}
}

// waitForMatch polls the store until id reaches a terminal status.
func waitForMatch(store repository.Store, id string) *model.Match {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m, err := store.Get(context.Background(), id); err == nil && m.Status != model.MatchPending {
			return m
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		store := repository.NewMemoryStore()
		sim := simulation.New()
		w := worker.NewInMemoryWorker(q, sim, store, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a pending match is queued", func() {
			pending := &model.Match{ID: "m1", Status: model.MatchPending, CreatedAt: time.Now()}
			convey.So(store.Save(ctx, pending), convey.ShouldBeNil)
			q.jobs <- newJob("m1", nil)

			convey.Convey("Then it should be completed with events and stats", func() {
				m := waitForMatch(store, "m1")
				convey.So(m, convey.ShouldNotBeNil)
				convey.So(m.Status, convey.ShouldEqual, model.MatchCompleted)
				convey.So(m.Events, convey.ShouldHaveLength, 30)
				convey.So(m.CreatedAt, convey.ShouldEqual, pending.CreatedAt)
				convey.So(m.CompletedAt.IsZero(), convey.ShouldBeFalse)
				home, away := m.Score()
				convey.So(m.HomeStats.Goals, convey.ShouldEqual, home)
				convey.So(m.AwayStats.Goals, convey.ShouldEqual, away)
				convey.So(m.HomeStats.Possession+m.AwayStats.Possession, convey.ShouldAlmostEqual, 100, 1e-9)
			})
		})

		convey.Convey("When a seeded job is queued twice", func() {
			seed := int64(2024)
			q.jobs <- newJob("a", &seed)
			q.jobs <- newJob("b", &seed)

			convey.Convey("Then both matches should share one event stream", func() {
				a, b := waitForMatch(store, "a"), waitForMatch(store, "b")
				convey.So(a, convey.ShouldNotBeNil)
				convey.So(b, convey.ShouldNotBeNil)
				convey.So(a.Events, convey.ShouldResemble, b.Events)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.Convey("Then it should stop gracefully", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a simulator that produces nothing", t, func() {
		q := newMockQueue()
		store := repository.NewMemoryStore()
		w := worker.NewInMemoryWorker(q, silentSimulator{}, store)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		q.jobs <- newJob("empty", nil)

		convey.Convey("Then the match should be stored as failed", func() {
			m := waitForMatch(store, "empty")
			convey.So(m, convey.ShouldNotBeNil)
			convey.So(m.Status, convey.ShouldEqual, model.MatchFailed)
			convey.So(m.Error, convey.ShouldNotBeBlank)
			convey.So(m.Events, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a store that rejects writes", t, func() {
		q := newMockQueue()
		store := &failingStore{}
		w := worker.NewInMemoryWorker(q, simulation.New(), store)
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)

		q.jobs <- newJob("lost", nil)
		q.jobs <- newJob("lost-too", nil)

		convey.Convey("Then the worker should keep consuming", func() {
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				store.mu.Lock()
				n := store.saves
				store.mu.Unlock()
				if n == 2 {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			store.mu.Lock()
			convey.So(store.saves, convey.ShouldEqual, 2)
			store.mu.Unlock()
			cancel()
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool on a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		store := repository.NewMemoryStore()
		pool := worker.NewPool(4, q, simulation.New(), store)

		convey.Convey("When creating with a non-positive count", func() {
			p := worker.NewPool(0, q, simulation.New(), store)

			convey.Convey("Then at least one worker should exist", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When jobs are processed and the pool shuts down", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			ids := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"}
			for _, id := range ids {
				convey.So(q.Enqueue(ctx, newJob(id, nil)), convey.ShouldBeNil)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every queued job should have been drained", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Processed(), convey.ShouldEqual, len(ids))
				for _, id := range ids {
					m, getErr := store.Get(context.Background(), id)
					convey.So(getErr, convey.ShouldBeNil)
					convey.So(m.Status, convey.ShouldEqual, model.MatchCompleted)
				}
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
