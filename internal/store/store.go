// Package store persists scoring runs and their scored leads.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for scoring runs.
type Store interface {
	// SaveRun persists a run and its scored leads atomically. A missing
	// run ID or timestamp is filled in.
	SaveRun(ctx context.Context, run *model.Run, leads []model.ScoredLead) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	GetRunLeads(ctx context.Context, runID string) ([]model.ScoredLead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
