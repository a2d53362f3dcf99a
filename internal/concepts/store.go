// Package concepts persists concept clusters, prototype optimization runs and
// their fitness histories, and handles the on-disk concept directory format.
package concepts

import (
	"context"

	"archetypon/internal/model"
)

// Store defines persistence operations for concepts and optimization runs.
type Store interface {
	Init(ctx context.Context) error
	SaveConcept(ctx context.Context, concept model.Concept) error
	GetConcept(ctx context.Context, index int) (model.Concept, bool, error)
	ListConcepts(ctx context.Context) ([]model.Concept, error)
	SaveRunRecord(ctx context.Context, record model.RunRecord) error
	GetRunRecord(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRunRecords(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.EpochDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.EpochDiagnostics, bool, error)
}
