package domain

// MaxQueryLength is the maximum accepted query length in characters.
const MaxQueryLength = 500

// Boost weights applied during ranking. Values are fixed increments,
// not scaled by occurrence count.
const (
	BoostCitation        = 2.0
	BoostExactMatch      = 3.0
	BoostLegalTerm       = 1.5
	BoostFilterAlignment = 0.3
)

// Citation is a statutory reference recognised in a query or judgment
// text, normalised to a canonical act:section form.
type Citation struct {
	// Act is the canonical act key (e.g. "ppc").
	Act string

	// Section is the section number within the act.
	Section string

	// Canonical is the act:section form (e.g. "ppc:302").
	Canonical string

	// Original is the text span the citation was recognised from.
	Original string

	// Confidence reflects how unambiguous the recognition was.
	// Alias-table hits score 1.0; looser pattern matches score lower.
	Confidence float64
}

// Confident reports whether the citation is trusted enough to drive
// boosting and citation-targeted retrieval.
func (c Citation) Confident() bool {
	return c.Confidence >= 1.0
}

// ExactIdentifier is a case-number-like token recognised in a query
// (e.g. "Application 2/2025" or a bare "123/2024").
type ExactIdentifier struct {
	Value    string
	Original string
}

// BoostSignal records one named boost contribution for explainability.
type BoostSignal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// NormalisedQuery is the result of query normalisation: the cleaned
// text plus every structured signal extracted from it.
type NormalisedQuery struct {
	// Raw is the query exactly as submitted.
	Raw string

	// Normalised is the lowercased, whitespace-collapsed query with
	// citations rewritten to canonical form.
	Normalised string

	// Terms are the tokenised query terms.
	Terms []string

	// Citations holds every recognised statutory reference.
	Citations []Citation

	// ExactIdentifiers holds every recognised case-number-like token.
	ExactIdentifiers []ExactIdentifier

	// Signals summarises the extraction for query_info reporting.
	Signals []BoostSignal
}

// Empty reports whether normalisation left no searchable content.
func (q *NormalisedQuery) Empty() bool {
	return len(q.Terms) == 0 && len(q.Citations) == 0 && len(q.ExactIdentifiers) == 0
}

// ConfidentCitations returns only the citations trusted for boosting.
func (q *NormalisedQuery) ConfidentCitations() []Citation {
	var out []Citation
	for _, c := range q.Citations {
		if c.Confident() {
			out = append(out, c)
		}
	}
	return out
}
