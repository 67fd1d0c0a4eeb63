package mcp

import (
	"context"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response    *domain.SearchResponse
	suggestions []domain.Suggestion
	status      *domain.IndexStatus
	lastQuery   string
	lastOpts    domain.SearchOptions
	err         error
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockSearchService) Suggest(
	_ context.Context,
	prefix string,
	_ string,
	_ int,
) ([]domain.Suggestion, error) {
	m.lastQuery = prefix
	return m.suggestions, m.err
}

func (m *mockSearchService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}
