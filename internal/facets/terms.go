package facets

import (
	"strconv"
	"strings"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// TermsForCase derives the facet terms of one case from its metadata.
// Legal terms split by shape: act:section terms feed the section
// dimension, reported citations (reporter:year:court:page) feed the
// citation dimension.
func TermsForCase(meta *domain.SearchMetadata) []domain.FacetTerm {
	var out []domain.FacetTerm
	add := func(dim domain.FacetType, value string) {
		if value != "" {
			out = append(out, domain.FacetTerm{CaseID: meta.CaseID, Dimension: dim, Value: value})
		}
	}

	add(domain.FacetCourt, meta.Court)
	add(domain.FacetStatus, meta.Status)
	add(domain.FacetCaseType, meta.CaseType)
	add(domain.FacetJudge, meta.Judge)
	if year := meta.Year(); year != 0 {
		add(domain.FacetYear, strconv.Itoa(year))
	}
	for _, term := range meta.LegalTerms {
		if strings.Count(term, ":") == 1 {
			add(domain.FacetSection, term)
		} else if strings.Contains(term, ":") {
			add(domain.FacetCitation, term)
		}
	}
	return out
}

// GroupTerms partitions terms by dimension for snapshot storage.
func GroupTerms(terms []domain.FacetTerm) map[domain.FacetType][]domain.FacetTerm {
	out := make(map[domain.FacetType][]domain.FacetTerm)
	for _, t := range terms {
		out[t.Dimension] = append(out[t.Dimension], t)
	}
	return out
}
