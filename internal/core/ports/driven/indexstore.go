package driven

import (
	"context"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// IndexStore persists index artefacts between processes. The in-memory
// snapshot is rebuilt from these records on startup, so a CLI process
// does not need to re-embed anything to serve searches.
type IndexStore interface {
	// SaveMetadata stores or updates search metadata for a case.
	SaveMetadata(ctx context.Context, meta *domain.SearchMetadata) error

	// ListMetadata returns metadata for all indexed cases, ordered by case ID.
	ListMetadata(ctx context.Context) ([]domain.SearchMetadata, error)

	// SaveChunks stores chunks for a case, replacing any previous set.
	SaveChunks(ctx context.Context, caseID int64, chunks []domain.DocumentChunk) error

	// ListChunks returns all stored chunks, ordered by case ID then index.
	ListChunks(ctx context.Context) ([]domain.DocumentChunk, error)

	// DeleteCase removes all index artefacts for a case.
	DeleteCase(ctx context.Context, caseID int64) error

	// SaveFacetTerms stores facet terms for a case, replacing any
	// previous set. Terms are also derivable from metadata; they are
	// persisted so other readers of the database get them precomputed.
	SaveFacetTerms(ctx context.Context, caseID int64, terms []domain.FacetTerm) error

	// SaveIndexingLog appends a build log entry.
	SaveIndexingLog(ctx context.Context, log *domain.IndexingLog) error

	// LastIndexingLog returns the most recent successful build log.
	// Returns domain.ErrNotFound when no build has succeeded yet.
	LastIndexingLog(ctx context.Context) (*domain.IndexingLog, error)

	// Close releases resources.
	Close() error
}
