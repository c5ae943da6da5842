package service

import (
	"errors"

	"github.com/okian/dreamxi/internal/adapters/repository"
)

// Sentinel error kinds returned by the Service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoSquad      = errors.New("squad has no usable players")
	ErrBackpressure = errors.New("simulation queue is full")
	ErrMatchPending = errors.New("match is still being simulated")
	ErrMatchFailed  = errors.New("match simulation failed")

	// ErrNotFound is the store's not-found kind so callers need only one check.
	ErrNotFound = repository.ErrNotFound
)
