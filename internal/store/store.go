package store

import (
	"context"
	"errors"

	"routesolver/internal/model"
)

// Store is the run-history persistence interface used by the API server.
type Store interface {
	// CreateRun persists a run, assigning ID and CreatedAt, and returns
	// the stored record.
	CreateRun(ctx context.Context, run model.Run) (model.Run, error)
	GetRun(ctx context.Context, id string) (model.Run, error)
	// ListRuns pages newest-first. An empty cursor starts at the top; the
	// returned cursor is empty when the listing is exhausted.
	ListRuns(ctx context.Context, cursor string, limit int) ([]model.Run, string, error)
	Close()
}

var ErrNotFound = errors.New("not found")
