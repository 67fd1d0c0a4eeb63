package keyword

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
)

func testSnapshot() *index.Snapshot {
	cases := map[int64]*domain.SearchMetadata{
		1: {
			CaseID:     1,
			CaseNumber: "w.p. 123/2024",
			Title:      "ahmed khan vs state murder appeal",
			Parties:    "ahmed khan|state",
			Court:      "lahore high court",
			Status:     "decided",
			LegalTerms: []string{"ppc:302"},
		},
		2: {
			CaseID:     2,
			CaseNumber: "crl.a. 45/2023",
			Title:      "state vs bashir bail application",
			Parties:    "state|bashir ahmed",
			Court:      "sindh high court",
			Status:     "pending",
			LegalTerms: []string{"crpc:497"},
		},
		3: {
			CaseID:     3,
			CaseNumber: "c.a. 9/2022",
			Title:      "tax reference commissioner inland revenue",
			Parties:    "commissioner|pak steel",
			Court:      "lahore high court",
			Status:     "decided",
		},
	}
	texts := map[int64]string{
		1: "the conviction for murder is upheld",
		2: "interim bail granted subject to surety",
	}
	return &index.Snapshot{
		Cases:    cases,
		Order:    []int64{1, 2, 3},
		Postings: index.BuildPostings(cases, texts),
	}
}

func newHolder(s *index.Snapshot) *index.Holder {
	h := index.NewHolder()
	h.Swap(s)
	return h
}

func TestSearch_NoIndex(t *testing.T) {
	e := NewEngine(index.NewHolder())
	_, err := e.Search(context.Background(), &domain.NormalisedQuery{Terms: []string{"x"}}, domain.Filters{}, 10)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestSearch_RanksTitleMatches(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	q := &domain.NormalisedQuery{Terms: []string{"murder", "appeal"}}

	hits, err := e.Search(context.Background(), q, domain.Filters{}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(1), hits[0].CaseID)
	assert.Greater(t, hits[0].FieldScores[index.FieldTitle], 0.0)
}

func TestSearch_CitationHitsLegalTerms(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	q := &domain.NormalisedQuery{
		Citations: []domain.Citation{{Canonical: "ppc:302", Confidence: 1.0}},
	}

	hits, err := e.Search(context.Background(), q, domain.Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].CaseID)
	assert.Greater(t, hits[0].FieldScores[index.FieldLegalTerms], 0.0)
}

func TestSearch_ExactIdentifierHitsCaseNumber(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	q := &domain.NormalisedQuery{
		ExactIdentifiers: []domain.ExactIdentifier{{Value: "123/2024"}},
	}

	hits, err := e.Search(context.Background(), q, domain.Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].CaseID)
}

func TestSearch_FiltersRestrict(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	q := &domain.NormalisedQuery{Terms: []string{"state"}}

	all, err := e.Search(context.Background(), q, domain.Filters{}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sindh, err := e.Search(context.Background(), q, domain.Filters{Court: "sindh"}, 10)
	require.NoError(t, err)
	require.Len(t, sindh, 1)
	assert.Equal(t, int64(2), sindh[0].CaseID)
}

func TestSearch_TopK(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	q := &domain.NormalisedQuery{Terms: []string{"state", "court"}}

	hits, err := e.Search(context.Background(), q, domain.Filters{}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	hits, err := e.Search(context.Background(), &domain.NormalisedQuery{}, domain.Filters{}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_DoesNotMutateQuery(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	// Normalised queries are cached and shared; Search must not grow
	// the shared slice even when spare capacity invites an in-place
	// append.
	backing := make([]string, 4)
	backing[0] = "murder"
	q := &domain.NormalisedQuery{
		Terms:     backing[:1],
		Citations: []domain.Citation{{Canonical: "ppc:302", Confidence: 1.0}},
	}

	_, err := e.Search(context.Background(), q, domain.Filters{}, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"murder"}, q.Terms)
	assert.Equal(t, "", backing[1])

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Search(context.Background(), q, domain.Filters{}, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestSearch_RareTermOutweighsCommon(t *testing.T) {
	e := NewEngine(newHolder(testSnapshot()))
	// "state" appears in two cases, "bail" in one
	q := &domain.NormalisedQuery{Terms: []string{"state", "bail"}}
	hits, err := e.Search(context.Background(), q, domain.Filters{}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(2), hits[0].CaseID)
}
