package driving

import (
	"context"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// BuildOptions control an index build.
type BuildOptions struct {
	// Force rebuilds every case even when content hashes are unchanged.
	Force bool
}

// IndexOrchestrator builds and restores the search index.
type IndexOrchestrator interface {
	// Build runs a full or incremental index build and atomically
	// swaps the new snapshot in on success.
	Build(ctx context.Context, opts BuildOptions) (*domain.IndexingLog, error)

	// Restore loads the persisted index artefacts into an in-memory
	// snapshot. Used at startup so searches work without rebuilding.
	Restore(ctx context.Context) error

	// Status reports the active snapshot's health and coverage.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
