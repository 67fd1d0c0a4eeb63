package facets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
)

func facetSnapshot(version int64) *index.Snapshot {
	metas := map[int64]*domain.SearchMetadata{
		1: {CaseID: 1, Court: "lahore high court", Status: "decided", CaseType: "writ petition",
			LegalTerms:   []string{"ppc:302"},
			DecisionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		2: {CaseID: 2, Court: "lahore high court", Status: "pending", CaseType: "appeal",
			LegalTerms:      []string{"ppc:302", "crpc:497"},
			InstitutionDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		3: {CaseID: 3, Court: "sindh high court", Status: "decided", CaseType: "appeal",
			DecisionDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	facetTerms := make(map[domain.FacetType][]domain.FacetTerm)
	for _, m := range metas {
		for dim, terms := range GroupTerms(TermsForCase(m)) {
			facetTerms[dim] = append(facetTerms[dim], terms...)
		}
	}
	return &index.Snapshot{
		Version:    version,
		Cases:      metas,
		Order:      []int64{1, 2, 3},
		FacetTerms: facetTerms,
	}
}

func TestTermsForCase(t *testing.T) {
	meta := &domain.SearchMetadata{
		CaseID: 9, Court: "lahore high court", Status: "decided",
		Judge: "justice shah", CaseType: "appeal",
		LegalTerms:   []string{"ppc:302", "pld:2020:sc:1"},
		DecisionDate: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	byDim := GroupTerms(TermsForCase(meta))

	assert.Equal(t, "lahore high court", byDim[domain.FacetCourt][0].Value)
	assert.Equal(t, "2021", byDim[domain.FacetYear][0].Value)
	assert.Equal(t, "ppc:302", byDim[domain.FacetSection][0].Value)
	assert.Equal(t, "pld:2020:sc:1", byDim[domain.FacetCitation][0].Value)
	assert.Empty(t, byDim[domain.FacetCitation][1:])
}

func TestCount_NoFilters(t *testing.T) {
	snap := facetSnapshot(1)
	c := NewCounter(index.NewHolder())

	out := c.Count(snap, "q", []int64{1, 2, 3}, domain.Filters{})
	require.NotEmpty(t, out)

	courts := out[domain.FacetCourt]
	require.Len(t, courts, 2)
	assert.Equal(t, domain.FacetValue{Value: "lahore high court", Count: 2}, courts[0])
	assert.Equal(t, domain.FacetValue{Value: "sindh high court", Count: 1}, courts[1])

	sections := out[domain.FacetSection]
	require.Len(t, sections, 2)
	assert.Equal(t, domain.FacetValue{Value: "ppc:302", Count: 2}, sections[0])
}

func TestCount_OwnDimensionExcluded(t *testing.T) {
	snap := facetSnapshot(1)
	c := NewCounter(index.NewHolder())

	// court filter active: court facet still counts every court, the
	// other dimensions only count lahore cases
	out := c.Count(snap, "q", []int64{1, 2, 3}, domain.Filters{Court: "lahore"})

	courts := out[domain.FacetCourt]
	require.Len(t, courts, 2)

	statuses := out[domain.FacetStatus]
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.Equal(t, 1, s.Count)
	}
}

func TestCount_BaseRestricts(t *testing.T) {
	snap := facetSnapshot(1)
	c := NewCounter(index.NewHolder())

	out := c.Count(snap, "q", []int64{3}, domain.Filters{})
	courts := out[domain.FacetCourt]
	require.Len(t, courts, 1)
	assert.Equal(t, "sindh high court", courts[0].Value)
}

func TestCount_CachedPerQueryAndVersion(t *testing.T) {
	h := index.NewHolder()
	c := NewCounter(h)
	snap := facetSnapshot(1)

	a := c.Count(snap, "q1", []int64{1, 2, 3}, domain.Filters{})
	// same key: cached map returned even though base differs
	b := c.Count(snap, "q1", []int64{3}, domain.Filters{})
	assert.Equal(t, a, b)

	// different query key recomputes
	d := c.Count(snap, "q2", []int64{3}, domain.Filters{})
	require.Len(t, d[domain.FacetCourt], 1)
}

func TestCount_CachePurgedOnSwap(t *testing.T) {
	h := index.NewHolder()
	c := NewCounter(h)

	a := c.Count(facetSnapshot(1), "q", []int64{1, 2, 3}, domain.Filters{})
	require.Len(t, a[domain.FacetCourt], 2)

	h.Swap(facetSnapshot(2))
	// new version in the key: no stale hit regardless of purge timing
	b := c.Count(facetSnapshot(2), "q", []int64{3}, domain.Filters{})
	require.Len(t, b[domain.FacetCourt], 1)
}

func TestTopValues_OrderAndCap(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 5}
	values := topValues(counts)
	require.Len(t, values, 3)
	assert.Equal(t, "c", values[0].Value)
	assert.Equal(t, "a", values[1].Value)
	assert.Equal(t, "b", values[2].Value)

	big := make(map[string]int)
	for i := 0; i < 30; i++ {
		big[string(rune('a'+i))] = i
	}
	assert.Len(t, topValues(big), MaxFacetValues)
}
