package cli

import (
	"context"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response    *domain.SearchResponse
	suggestions []domain.Suggestion
	status      *domain.IndexStatus
	lastOpts    domain.SearchOptions
	err         error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockSearchService) Suggest(
	_ context.Context, _ string, _ string, _ int,
) ([]domain.Suggestion, error) {
	return m.suggestions, m.err
}

func (m *mockSearchService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

// mockIndexService is a mock implementation of driving.IndexOrchestrator.
type mockIndexService struct {
	log      *domain.IndexingLog
	status   *domain.IndexStatus
	lastOpts driving.BuildOptions
	err      error
}

func (m *mockIndexService) Build(
	_ context.Context, opts driving.BuildOptions,
) (*domain.IndexingLog, error) {
	m.lastOpts = opts
	return m.log, m.err
}

func (m *mockIndexService) Restore(_ context.Context) error {
	return m.err
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

// setupTestServices installs mock services and returns a cleanup func.
func setupTestServices() func() {
	oldSearch, oldIndex := searchService, indexService

	searchService = &mockSearchService{
		response: &domain.SearchResponse{
			Results: []domain.SearchResult{
				{
					Rank:         1,
					CaseID:       1,
					CaseNumber:   "W.P. 123/2024",
					Title:        "State vs Ahmed Khan",
					Court:        "Lahore High Court",
					Status:       "Decided",
					DecisionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
					FinalScore:   0.92,
					Snippets:     []domain.Snippet{{Text: "convicted under <em>section 302</em>"}},
				},
			},
			Pagination: domain.Pagination{Total: 1, Limit: 10},
			Stats:      domain.SearchStats{Mode: domain.ModeHybrid, TotalResults: 1},
		},
		suggestions: []domain.Suggestion{
			{Value: "ppc:302", Type: domain.SuggestCitation},
		},
		status: &domain.IndexStatus{Built: true, CaseCount: 1},
	}
	indexService = &mockIndexService{
		log: &domain.IndexingLog{
			BuildID:        "build-1",
			Operation:      domain.BuildFull,
			CasesProcessed: 3,
			ChunksCreated:  9,
			VectorsCreated: 9,
			Success:        true,
		},
		status: &domain.IndexStatus{
			Built:          true,
			Version:        1,
			EmbeddingModel: "all-minilm",
			Dimension:      384,
			CaseCount:      3,
			TotalCases:     3,
			ChunkCount:     9,
			VectorCount:    9,
			Coverage:       1.0,
		},
	}

	return func() {
		searchService = oldSearch
		indexService = oldIndex
	}
}
