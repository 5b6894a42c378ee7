// Package repository persists the hiscores snapshot and serves ranked reads.
package repository

import (
	"context"

	"github.com/okian/hiscores/internal/domain/model"
)

// Store persists the snapshot of one cycle.
type Store interface {
	// Save overwrites the snapshot wholesale with records.
	Save(ctx context.Context, records []model.Record) error

	// Load returns the current snapshot.
	// Returns ErrNoSnapshot if nothing has been written yet.
	Load(ctx context.Context) ([]model.Record, error)
}
