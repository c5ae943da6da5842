package service

import (
	"github.com/okian/dreamxi/internal/adapters/repository"
	"github.com/okian/dreamxi/internal/domain/playback"
	"github.com/okian/dreamxi/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of simulation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued simulations.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the request_id index.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore sets the match store. The default is a MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreCapacity bounds the default MemoryStore.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		s.storeCapacity = capacity
	}
}

// WithSimulationSteps sets the number of events per match.
func WithSimulationSteps(steps int) Option {
	return func(s *Service) {
		if steps > 0 {
			s.steps = steps
		}
	}
}

// WithGoalCap sets the maximum goals kept per match.
func WithGoalCap(limit int) Option {
	return func(s *Service) {
		if limit >= 0 {
			s.goalCap = limit
		}
	}
}

// WithCardProbability sets the per-step caution chance.
func WithCardProbability(p float64) Option {
	return func(s *Service) {
		if p >= 0 && p <= 1 {
			s.cardProbability = p
		}
	}
}

// WithPlaybackClock sets the timing used for timelines and live playback.
func WithPlaybackClock(c playback.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
