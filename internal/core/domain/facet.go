package domain

// FacetType names a facet dimension.
type FacetType string

const (
	FacetCourt    FacetType = "court"
	FacetStatus   FacetType = "status"
	FacetYear     FacetType = "year"
	FacetCaseType FacetType = "case_type"
	FacetJudge    FacetType = "judge"
	FacetSection  FacetType = "section"
	FacetCitation FacetType = "citation"
)

// AllFacetTypes lists every dimension in response order.
var AllFacetTypes = []FacetType{
	FacetCourt, FacetStatus, FacetYear, FacetCaseType,
	FacetJudge, FacetSection, FacetCitation,
}

// FacetTerm associates one facet value with a case, precomputed at
// index build time.
type FacetTerm struct {
	CaseID    int64     `json:"case_id"`
	Dimension FacetType `json:"dimension"`
	Value     string    `json:"value"`
}

// FacetValue is one counted bucket in a facet response.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}
