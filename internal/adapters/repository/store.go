// Package repository stores simulated matches.
package repository

import (
	"context"

	"github.com/okian/dreamxi/internal/domain/model"
)

// Store provides read/write access to matches.
type Store interface {
	// Save inserts or replaces the match with m.ID.
	Save(ctx context.Context, m *model.Match) error

	// Get returns the match with id. Returns ErrNotFound if it is unknown.
	Get(ctx context.Context, id string) (*model.Match, error)

	// Count returns the number of matches currently held.
	Count(ctx context.Context) int
}
