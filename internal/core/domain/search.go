package domain

import (
	"strings"
	"time"
)

// SearchMode selects which retrieval channels run.
type SearchMode string

const (
	// ModeLexical runs only keyword (BM25) retrieval.
	ModeLexical SearchMode = "lexical"

	// ModeSemantic runs only vector retrieval.
	ModeSemantic SearchMode = "semantic"

	// ModeHybrid runs both channels and fuses the scores.
	ModeHybrid SearchMode = "hybrid"
)

// Valid reports whether the mode is one of the supported values.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeLexical, ModeSemantic, ModeHybrid:
		return true
	}
	return false
}

// ParseMode reads a user-supplied mode string, tolerant of case and
// surrounding space. Empty input selects hybrid.
func ParseMode(raw string) SearchMode {
	m := SearchMode(strings.ToLower(strings.TrimSpace(raw)))
	if m == "" {
		return ModeHybrid
	}
	return m
}

// Filters are hard predicates narrowing the candidate set. Empty
// fields are inactive. Filters never contribute to relevance scores.
type Filters struct {
	Court    string `json:"court,omitempty"`
	Status   string `json:"status,omitempty"`
	Judge    string `json:"judge,omitempty"`
	CaseType string `json:"case_type,omitempty"`
	Section  string `json:"section,omitempty"`
	Citation string `json:"citation,omitempty"`
	YearFrom int    `json:"year_from,omitempty"`
	YearTo   int    `json:"year_to,omitempty"`
}

// Empty reports whether no filter is active.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// ActiveCount returns the number of active filter dimensions.
func (f Filters) ActiveCount() int {
	n := 0
	for _, s := range []string{f.Court, f.Status, f.Judge, f.CaseType, f.Section, f.Citation} {
		if s != "" {
			n++
		}
	}
	if f.YearFrom != 0 || f.YearTo != 0 {
		n++
	}
	return n
}

// Validate checks filter consistency.
func (f Filters) Validate() error {
	if f.YearFrom < 0 || f.YearTo < 0 {
		return ErrFilterValidation
	}
	if f.YearFrom != 0 && f.YearTo != 0 && f.YearFrom > f.YearTo {
		return ErrFilterValidation
	}
	return nil
}

// Without returns a copy with the filter for the given facet dimension
// cleared. Used when counting facets: each dimension is counted under
// every other active filter but not its own.
func (f Filters) Without(ft FacetType) Filters {
	switch ft {
	case FacetCourt:
		f.Court = ""
	case FacetStatus:
		f.Status = ""
	case FacetJudge:
		f.Judge = ""
	case FacetCaseType:
		f.CaseType = ""
	case FacetSection:
		f.Section = ""
	case FacetCitation:
		f.Citation = ""
	case FacetYear:
		f.YearFrom = 0
		f.YearTo = 0
	}
	return f
}

// Pagination limits.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// SearchOptions carry everything about a search request besides the
// query text.
type SearchOptions struct {
	Mode         SearchMode
	Filters      Filters
	Offset       int
	Limit        int
	ReturnFacets bool
	Highlight    bool
}

// Explanation breaks a result's final score into its components.
type Explanation struct {
	VectorScore   float64            `json:"vector_score"`
	KeywordScore  float64            `json:"keyword_score"`
	FieldScores   map[string]float64 `json:"field_scores,omitempty"`
	BaseScore     float64            `json:"base_score"`
	Boosts        []BoostSignal      `json:"boosts,omitempty"`
	RecencyFactor float64            `json:"recency_factor"`
}

// TotalBoost sums the applied boost signals.
func (e Explanation) TotalBoost() float64 {
	var total float64
	for _, b := range e.Boosts {
		total += b.Value
	}
	return total
}

// Snippet is a highlighted fragment shown with a result.
type Snippet struct {
	// Text is the fragment, trimmed to a readable window.
	Text string `json:"text"`

	// Source names the extraction strategy: "lexical", "semantic" or
	// "metadata".
	Source string `json:"source"`

	// Terms are the query terms present in the fragment.
	Terms []string `json:"terms,omitempty"`

	// PageNumber is the judgment page the fragment starts on, when known.
	PageNumber int `json:"page_number,omitempty"`

	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// SearchResult is one ranked case in a response.
type SearchResult struct {
	Rank         int         `json:"rank"`
	CaseID       int64       `json:"case_id"`
	CaseNumber   string      `json:"case_number"`
	Title        string      `json:"title"`
	Court        string      `json:"court"`
	Status       string      `json:"status"`
	DecisionDate time.Time   `json:"decision_date,omitempty"`
	FinalScore   float64     `json:"final_score"`
	Explanation  Explanation `json:"explanation"`
	Snippets     []Snippet   `json:"snippets,omitempty"`
}

// Pagination describes the window a response covers.
type Pagination struct {
	Total       int  `json:"total"`
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// QueryInfo reports what normalisation extracted from the query.
type QueryInfo struct {
	NormalisedQuery   string   `json:"normalized_query"`
	CitationsFound    []string `json:"citations_found,omitempty"`
	ExactMatchesFound []string `json:"exact_matches_found,omitempty"`
}

// SearchStats summarises how a search executed.
type SearchStats struct {
	Mode         SearchMode `json:"mode"`
	TotalResults int        `json:"total_results"`
	LatencyMS    int64      `json:"latency_ms"`
}

// SearchResponse is the complete answer to a search request.
type SearchResponse struct {
	Results    []SearchResult             `json:"results"`
	Pagination Pagination                 `json:"pagination"`
	Facets     map[FacetType][]FacetValue `json:"facets,omitempty"`
	QueryInfo  QueryInfo                  `json:"query_info"`
	Stats      SearchStats                `json:"search_metadata"`
	Warnings   []string                   `json:"warnings,omitempty"`
}

// Suggestion types.
const (
	SuggestAuto     = "auto"
	SuggestCase     = "case"
	SuggestCitation = "citation"
	SuggestSection  = "section"
	SuggestJudge    = "judge"
)

// MinSuggestQueryLength is the shortest prefix that yields suggestions.
const MinSuggestQueryLength = 2

// Suggestion is one typeahead completion.
type Suggestion struct {
	Value          string `json:"value"`
	Type           string `json:"type"`
	CanonicalKey   string `json:"canonical_key,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// IndexStatus reports the health and coverage of the active index.
type IndexStatus struct {
	Built          bool      `json:"built"`
	Version        int64     `json:"version"`
	ConfigVersion  string    `json:"config_version"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimension      int       `json:"dimension"`
	CaseCount      int       `json:"case_count"`
	ChunkCount     int       `json:"chunk_count"`
	VectorCount    int       `json:"vector_count"`
	TotalCases     int       `json:"total_cases"`
	Coverage       float64   `json:"coverage"`
	LastBuildTime  time.Time `json:"last_build_time,omitempty"`
}
