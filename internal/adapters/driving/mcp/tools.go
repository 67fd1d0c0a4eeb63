package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// SearchInput is the input schema for the search_cases tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the search query; supports case numbers, citations like 'PPC 302' and free text"`
	Mode     string `json:"mode,omitempty" jsonschema:"retrieval mode: lexical, semantic or hybrid (default hybrid)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Offset   int    `json:"offset,omitempty" jsonschema:"number of results to skip for pagination"`
	Court    string `json:"court,omitempty" jsonschema:"restrict to a court, e.g. 'Lahore High Court'"`
	Status   string `json:"status,omitempty" jsonschema:"restrict to a case status, e.g. 'Decided'"`
	Judge    string `json:"judge,omitempty" jsonschema:"restrict to a presiding judge"`
	CaseType string `json:"case_type,omitempty" jsonschema:"restrict to a case type, e.g. 'Writ Petition'"`
	Section  string `json:"section,omitempty" jsonschema:"restrict to a statute section, e.g. '302'"`
	Citation string `json:"citation,omitempty" jsonschema:"restrict to a canonical citation, e.g. 'ppc:302'"`
	YearFrom int    `json:"year_from,omitempty" jsonschema:"earliest decision year"`
	YearTo   int    `json:"year_to,omitempty" jsonschema:"latest decision year"`
	Facets   bool   `json:"facets,omitempty" jsonschema:"include facet counts in the response"`
}

// SearchOutput is the output schema for the search_cases tool.
type SearchOutput struct {
	Results  []CaseResultOutput                       `json:"results"`
	Total    int                                      `json:"total"`
	Facets   map[domain.FacetType][]domain.FacetValue `json:"facets,omitempty"`
	Warnings []string                                 `json:"warnings,omitempty"`
}

// CaseResultOutput represents a single ranked case.
type CaseResultOutput struct {
	CaseID       int64    `json:"case_id"`
	CaseNumber   string   `json:"case_number"`
	Title        string   `json:"title"`
	Court        string   `json:"court"`
	Status       string   `json:"status"`
	DecisionDate string   `json:"decision_date,omitempty"`
	Score        float64  `json:"score"`
	Snippets     []string `json:"snippets,omitempty"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Query string `json:"query" jsonschema:"the partial query to complete (at least 2 characters)"`
	Type  string `json:"type,omitempty" jsonschema:"suggestion type: auto, case, citation, section or judge (default auto)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions (default 10)"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_cases",
		Description: "Search Pakistani higher court case law by citation, case number or free text",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest",
		Description: "Get typeahead completions for case numbers, citations, sections and judges",
	}, s.handleSuggest)
}

// handleSearch handles the search_cases tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Mode:   domain.ParseMode(input.Mode),
		Offset: input.Offset,
		Limit:  input.Limit,
		Filters: domain.Filters{
			Court:    input.Court,
			Status:   input.Status,
			Judge:    input.Judge,
			CaseType: input.CaseType,
			Section:  input.Section,
			Citation: input.Citation,
			YearFrom: input.YearFrom,
			YearTo:   input.YearTo,
		},
		ReturnFacets: input.Facets,
		Highlight:    true,
	}

	resp, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:  make([]CaseResultOutput, len(resp.Results)),
		Total:    resp.Pagination.Total,
		Facets:   resp.Facets,
		Warnings: resp.Warnings,
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		out := CaseResultOutput{
			CaseID:     r.CaseID,
			CaseNumber: r.CaseNumber,
			Title:      r.Title,
			Court:      r.Court,
			Status:     r.Status,
			Score:      r.FinalScore,
		}
		if !r.DecisionDate.IsZero() {
			out.DecisionDate = r.DecisionDate.Format("2006-01-02")
		}
		for _, snip := range r.Snippets {
			out.Snippets = append(out.Snippets, snip.Text)
		}
		output.Results[i] = out
	}

	return nil, output, nil
}

// handleSuggest handles the suggest tool invocation.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	suggestType := input.Type
	if suggestType == "" {
		suggestType = domain.SuggestAuto
	}

	suggestions, err := s.ports.Search.Suggest(ctx, input.Query, suggestType, input.Limit)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	return nil, SuggestOutput{Suggestions: suggestions}, nil
}
