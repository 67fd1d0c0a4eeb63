package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			response: &domain.SearchResponse{
				Results: []domain.SearchResult{
					{
						CaseID:       1,
						CaseNumber:   "W.P. 123/2024",
						Title:        "State vs Ahmed Khan",
						Court:        "Lahore High Court",
						Status:       "Decided",
						DecisionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
						FinalScore:   0.95,
						Snippets: []domain.Snippet{
							{Text: "convicted under <em>section</em> 302"},
						},
					},
				},
				Pagination: domain.Pagination{Total: 1},
			},
		}

		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		input := SearchInput{Query: "PPC 302", Limit: 10}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Total)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "W.P. 123/2024", output.Results[0].CaseNumber)
		assert.Equal(t, "2024-06-01", output.Results[0].DecisionDate)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, []string{"convicted under <em>section</em> 302"}, output.Results[0].Snippets)
	})

	t.Run("maps filters and mode", func(t *testing.T) {
		mockSearch := &mockSearchService{response: &domain.SearchResponse{}}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		input := SearchInput{
			Query:    "bail",
			Mode:     "Lexical",
			Court:    "Sindh High Court",
			Section:  "497",
			YearFrom: 2020,
			Facets:   true,
		}
		_, _, err = server.handleSearch(ctx, nil, input)
		require.NoError(t, err)

		assert.Equal(t, "bail", mockSearch.lastQuery)
		assert.Equal(t, domain.ModeLexical, mockSearch.lastOpts.Mode)
		assert.Equal(t, "Sindh High Court", mockSearch.lastOpts.Filters.Court)
		assert.Equal(t, "497", mockSearch.lastOpts.Filters.Section)
		assert.Equal(t, 2020, mockSearch.lastOpts.Filters.YearFrom)
		assert.True(t, mockSearch.lastOpts.ReturnFacets)
		assert.True(t, mockSearch.lastOpts.Highlight)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{err: errors.New("search failed")}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleSuggest(t *testing.T) {
	ctx := context.Background()

	mockSearch := &mockSearchService{
		suggestions: []domain.Suggestion{
			{Value: "ppc:302", Type: domain.SuggestCitation},
		},
	}
	server, err := NewServer(&Ports{Search: mockSearch})
	require.NoError(t, err)

	_, output, err := server.handleSuggest(ctx, nil, SuggestInput{Query: "pp"})
	require.NoError(t, err)
	require.Len(t, output.Suggestions, 1)
	assert.Equal(t, "ppc:302", output.Suggestions[0].Value)
	assert.Equal(t, "pp", mockSearch.lastQuery)
}

func TestNewServer_RequiresSearchService(t *testing.T) {
	_, err := NewServer(&Ports{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSearchService)
}
