package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
)

var fixedNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func newTestRanker() *Ranker {
	r := NewRanker(domain.DefaultIndexingConfig())
	r.now = func() time.Time { return fixedNow }
	return r
}

func rankSnapshot() *index.Snapshot {
	return &index.Snapshot{
		Cases: map[int64]*domain.SearchMetadata{
			1: {CaseID: 1, CaseNumber: "w.p. 123/2024", Court: "lahore high court",
				LegalTerms:   []string{"ppc:302"},
				DecisionDate: fixedNow.AddDate(0, -6, 0)},
			2: {CaseID: 2, CaseNumber: "crl.a. 45/2023", Court: "sindh high court",
				DecisionDate: fixedNow.AddDate(-1, 0, 0)},
			3: {CaseID: 3, CaseNumber: "c.a. 9/2010", Court: "lahore high court",
				DecisionDate: fixedNow.AddDate(-16, 0, 0)},
		},
		Order: []int64{1, 2, 3},
	}
}

func TestRank_FusesBothChannels(t *testing.T) {
	r := newTestRanker()
	q := &domain.NormalisedQuery{Terms: []string{"murder"}}

	keyword := []driven.Candidate{
		{CaseID: 1, Score: 10.0},
		{CaseID: 2, Score: 5.0},
	}
	vec := []driven.Candidate{
		{CaseID: 2, Score: 0.9, ChunkID: "c2", ChunkText: "bail text"},
	}

	ranked := r.Rank(rankSnapshot(), q, keyword, vec)
	require.Len(t, ranked, 2)

	byID := make(map[int64]Ranked)
	for _, rk := range ranked {
		byID[rk.CaseID] = rk
	}
	// case 1: keyword normalised to 1.0, no vector
	assert.InDelta(t, 1.0, byID[1].Explanation.KeywordScore, 1e-9)
	assert.InDelta(t, 0.4, byID[1].Explanation.BaseScore, 1e-9)
	// case 2: sole vector candidate normalises to 1.0, keyword to 0
	assert.InDelta(t, 1.0, byID[2].Explanation.VectorScore, 1e-9)
	assert.InDelta(t, 0.6, byID[2].Explanation.BaseScore, 1e-9)
	assert.Equal(t, "c2", byID[2].BestChunkID)
}

func TestRank_ExactMatchBoostWins(t *testing.T) {
	r := newTestRanker()
	q := &domain.NormalisedQuery{
		Terms:            []string{"123/2024"},
		ExactIdentifiers: []domain.ExactIdentifier{{Value: "123/2024"}},
	}
	keyword := []driven.Candidate{
		{CaseID: 1, Score: 2.0},
		{CaseID: 2, Score: 9.0},
	}

	ranked := r.Rank(rankSnapshot(), q, keyword, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(1), ranked[0].CaseID)

	var names []string
	for _, b := range ranked[0].Explanation.Boosts {
		names = append(names, b.Name)
	}
	assert.Contains(t, names, "exact_match")
}

func TestRank_CitationBoost(t *testing.T) {
	r := newTestRanker()
	q := &domain.NormalisedQuery{
		Citations: []domain.Citation{{Canonical: "ppc:302", Section: "302", Confidence: 1.0}},
	}
	keyword := []driven.Candidate{
		{CaseID: 1, Score: 1.0},
		{CaseID: 2, Score: 1.0},
	}

	ranked := r.Rank(rankSnapshot(), q, keyword, nil)
	assert.Equal(t, int64(1), ranked[0].CaseID)
	assert.InDelta(t, domain.BoostCitation, ranked[0].Explanation.TotalBoost(), 1e-9)
	assert.Zero(t, ranked[1].Explanation.TotalBoost())
}

func TestRank_SectionOnlyCitationWeakerBoost(t *testing.T) {
	r := newTestRanker()
	q := &domain.NormalisedQuery{
		Citations: []domain.Citation{{Canonical: "section:302", Section: "302", Confidence: 0.5}},
	}
	keyword := []driven.Candidate{{CaseID: 1, Score: 1.0}}

	ranked := r.Rank(rankSnapshot(), q, keyword, nil)
	require.Len(t, ranked, 1)
	require.Len(t, ranked[0].Explanation.Boosts, 1)
	assert.Equal(t, "legal_term", ranked[0].Explanation.Boosts[0].Name)
	assert.InDelta(t, domain.BoostLegalTerm, ranked[0].Explanation.Boosts[0].Value, 1e-9)
}

func TestRank_FilterAlignmentBoost(t *testing.T) {
	r := newTestRanker()
	q := &domain.NormalisedQuery{Terms: []string{"lahore", "murder"}}
	keyword := []driven.Candidate{
		{CaseID: 1, Score: 1.0},
		{CaseID: 2, Score: 1.0},
	}

	ranked := r.Rank(rankSnapshot(), q, keyword, nil)
	byID := make(map[int64]Ranked)
	for _, rk := range ranked {
		byID[rk.CaseID] = rk
	}
	assert.InDelta(t, domain.BoostFilterAlignment, byID[1].Explanation.TotalBoost(), 1e-9)
	assert.Zero(t, byID[2].Explanation.TotalBoost())
}

func TestRank_RecencyDampensOldCases(t *testing.T) {
	r := newTestRanker()
	q := &domain.NormalisedQuery{Terms: []string{"court"}}
	keyword := []driven.Candidate{
		{CaseID: 2, Score: 5.0},
		{CaseID: 3, Score: 5.0},
	}

	ranked := r.Rank(rankSnapshot(), q, keyword, nil)
	byID := make(map[int64]Ranked)
	for _, rk := range ranked {
		byID[rk.CaseID] = rk
	}
	// 16-year-old case hits the floor; 1-year-old case decays mildly
	assert.InDelta(t, 0.5, byID[3].Explanation.RecencyFactor, 1e-9)
	assert.Greater(t, byID[2].Explanation.RecencyFactor, 0.8)
	assert.Equal(t, int64(2), ranked[0].CaseID)
}

func TestRank_UnknownDateNeutralRecency(t *testing.T) {
	r := newTestRanker()
	snap := &index.Snapshot{
		Cases: map[int64]*domain.SearchMetadata{7: {CaseID: 7}},
		Order: []int64{7},
	}
	ranked := r.Rank(snap, &domain.NormalisedQuery{}, []driven.Candidate{{CaseID: 7, Score: 1}}, nil)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 1.0, ranked[0].Explanation.RecencyFactor, 1e-9)
}

func TestRank_DeterministicTieBreak(t *testing.T) {
	r := newTestRanker()
	snap := &index.Snapshot{
		Cases: map[int64]*domain.SearchMetadata{
			1: {CaseID: 1, CaseNumber: "b 2/2024", DecisionDate: fixedNow.AddDate(0, -1, 0)},
			2: {CaseID: 2, CaseNumber: "a 1/2024", DecisionDate: fixedNow.AddDate(0, -1, 0)},
			3: {CaseID: 3, CaseNumber: "c 3/2024", DecisionDate: fixedNow.AddDate(0, -2, 0)},
		},
		Order: []int64{1, 2, 3},
	}
	keyword := []driven.Candidate{
		{CaseID: 1, Score: 1.0},
		{CaseID: 2, Score: 1.0},
		{CaseID: 3, Score: 1.0},
	}
	q := &domain.NormalisedQuery{}

	first := r.Rank(snap, q, keyword, nil)
	for i := 0; i < 5; i++ {
		again := r.Rank(snap, q, keyword, nil)
		assert.Equal(t, first, again)
	}
	// same score and date: case number breaks the tie
	assert.Equal(t, int64(2), first[0].CaseID)
	assert.Equal(t, int64(1), first[1].CaseID)
	// older decision sorts after
	assert.Equal(t, int64(3), first[2].CaseID)
}

func TestDiversify_PenalisesNearDuplicates(t *testing.T) {
	snap := &index.Snapshot{
		Cases: map[int64]*domain.SearchMetadata{
			1: {CaseID: 1}, 2: {CaseID: 2}, 3: {CaseID: 3},
		},
		CaseCentroids: map[int64][]float32{
			1: {1, 0},
			2: {1, 0},   // duplicate of 1
			3: {0, 1},   // novel
		},
	}
	ranked := []Ranked{
		{CaseID: 1, FinalScore: 1.0},
		{CaseID: 2, FinalScore: 0.95},
		{CaseID: 3, FinalScore: 0.90},
	}

	out := diversify(snap, ranked)
	require.Len(t, out, 3)
	assert.Equal(t, int64(1), out[0].CaseID)
	// novel case leapfrogs the near-duplicate
	assert.Equal(t, int64(3), out[1].CaseID)
	assert.Equal(t, int64(2), out[2].CaseID)
}

func TestDiversify_RankOrderKeepsOriginalScores(t *testing.T) {
	snap := &index.Snapshot{
		Cases: map[int64]*domain.SearchMetadata{
			1: {CaseID: 1}, 2: {CaseID: 2}, 3: {CaseID: 3},
		},
		CaseCentroids: map[int64][]float32{
			1: {1, 0},
			2: {1, 0},
			3: {0, 1},
		},
	}
	ranked := []Ranked{
		{CaseID: 1, FinalScore: 1.0},
		{CaseID: 2, FinalScore: 0.95},
		{CaseID: 3, FinalScore: 0.90},
	}

	out := diversify(snap, ranked)
	require.Len(t, out, 3)

	// Rank order is diversity order. Each result keeps the score it
	// earned before diversification, so a demoted near-duplicate may
	// show a higher score than the result above it.
	assert.InDelta(t, 0.90, out[1].FinalScore, 1e-9)
	assert.InDelta(t, 0.95, out[2].FinalScore, 1e-9)
	assert.Greater(t, out[2].FinalScore, out[1].FinalScore)
}

func TestNormalise(t *testing.T) {
	cands := []driven.Candidate{
		{CaseID: 1, Score: 10},
		{CaseID: 2, Score: 5},
		{CaseID: 3, Score: 0},
	}
	norm := normalise(cands)
	assert.InDelta(t, 1.0, norm[1], 1e-9)
	assert.InDelta(t, 0.5, norm[2], 1e-9)
	assert.InDelta(t, 0.0, norm[3], 1e-9)

	single := normalise([]driven.Candidate{{CaseID: 9, Score: 0.2}})
	assert.InDelta(t, 1.0, single[9], 1e-9)

	assert.Empty(t, normalise(nil))
}
