package driving

import (
	"context"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// SearchService provides case search capabilities to external actors.
type SearchService interface {
	// Search runs the full retrieval pipeline for a query: validation,
	// normalisation, retrieval, fusion, ranking, faceting and snippets.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)

	// Suggest returns typeahead completions for a query prefix.
	Suggest(ctx context.Context, prefix string, suggestType string, limit int) ([]domain.Suggestion, error)

	// Status reports the health and coverage of the active index.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
