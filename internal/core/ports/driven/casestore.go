package driven

import (
	"context"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// CaseStore is the source of truth for court case records.
// Backed by SQLite; the ingestion pipeline writes, the index builder reads.
type CaseStore interface {
	// GetCase retrieves a case by ID.
	GetCase(ctx context.Context, id int64) (*domain.CaseRecord, error)

	// ListCases returns all cases, ordered by ID.
	ListCases(ctx context.Context) ([]domain.CaseRecord, error)

	// ListCasesUpdatedSince returns cases touched at or after the given
	// time, ordered by ID. Used for incremental builds.
	ListCasesUpdatedSince(ctx context.Context, since time.Time) ([]domain.CaseRecord, error)

	// CountCases returns the total number of cases.
	CountCases(ctx context.Context) (int, error)

	// SaveCase stores or updates a case record.
	SaveCase(ctx context.Context, rec *domain.CaseRecord) error
}
