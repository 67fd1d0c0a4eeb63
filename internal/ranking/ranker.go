// Package ranking fuses the retrieval channels into one ranked case
// list: min-max normalisation, weighted mixing, evidence boosts, a
// recency multiplier and greedy diversity re-ranking.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/vector"
)

// Recency decay: half-life of five years, floored so old cases are
// dampened, never buried.
const (
	recencyHalfLifeDays = 1825.0
	recencyFloor        = 0.5
)

var recencyLambda = math.Ln2 / recencyHalfLifeDays

// MMR trade-off between relevance and novelty.
const diversityLambda = 0.7

// Ranked is one case after fusion, carrying everything the response
// assembler needs.
type Ranked struct {
	CaseID      int64
	FinalScore  float64
	Explanation domain.Explanation

	// BestChunkID locates the best semantic hit for snippets.
	BestChunkID   string
	BestChunkText string
	PageNumber    int
	StartChar     int
}

// Ranker fuses channel candidates under the configured weights.
type Ranker struct {
	vectorWeight  float64
	keywordWeight float64
	now           func() time.Time
}

// NewRanker creates a ranker. Fusion weights are renormalised to sum
// to one.
func NewRanker(cfg domain.IndexingConfig) *Ranker {
	vw, kw := cfg.VectorWeight, cfg.KeywordWeight
	if sum := vw + kw; sum > 0 {
		vw /= sum
		kw /= sum
	}
	return &Ranker{vectorWeight: vw, keywordWeight: kw, now: time.Now}
}

// Rank fuses the channel candidate lists into a ranked case list.
// Either list may be empty; the other channel's normalised score then
// carries the whole base.
func (r *Ranker) Rank(snap *index.Snapshot, query *domain.NormalisedQuery, keyword, vec []driven.Candidate) []Ranked {
	keyNorm := normalise(keyword)
	vecNorm := normalise(vec)

	merged := make(map[int64]*Ranked)
	for _, c := range keyword {
		rk := &Ranked{CaseID: c.CaseID}
		rk.Explanation.KeywordScore = keyNorm[c.CaseID]
		rk.Explanation.FieldScores = c.FieldScores
		merged[c.CaseID] = rk
	}
	for _, c := range vec {
		rk := merged[c.CaseID]
		if rk == nil {
			rk = &Ranked{CaseID: c.CaseID}
			merged[c.CaseID] = rk
		}
		rk.Explanation.VectorScore = vecNorm[c.CaseID]
		rk.BestChunkID = c.ChunkID
		rk.BestChunkText = c.ChunkText
		rk.PageNumber = c.PageNumber
		rk.StartChar = c.StartChar
	}

	now := r.now()
	ranked := make([]Ranked, 0, len(merged))
	for _, rk := range merged {
		meta := snap.Metadata(rk.CaseID)

		rk.Explanation.BaseScore = r.vectorWeight*rk.Explanation.VectorScore +
			r.keywordWeight*rk.Explanation.KeywordScore
		rk.Explanation.Boosts = boosts(query, meta)
		rk.Explanation.RecencyFactor = recencyFactor(meta, now)

		rk.FinalScore = (rk.Explanation.BaseScore + rk.Explanation.TotalBoost()) *
			rk.Explanation.RecencyFactor
		ranked = append(ranked, *rk)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return less(snap, &ranked[i], &ranked[j])
	})

	return diversify(snap, ranked)
}

// less orders by score, then newer decision date, then case number,
// then case ID. Ties are fully broken so ranking is deterministic.
func less(snap *index.Snapshot, a, b *Ranked) bool {
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	ma, mb := snap.Metadata(a.CaseID), snap.Metadata(b.CaseID)
	if ma != nil && mb != nil {
		if !ma.DecisionDate.Equal(mb.DecisionDate) {
			return ma.DecisionDate.After(mb.DecisionDate)
		}
		if ma.CaseNumber != mb.CaseNumber {
			return ma.CaseNumber < mb.CaseNumber
		}
	}
	return a.CaseID < b.CaseID
}

// boosts applies each evidence boost at most once per case.
func boosts(query *domain.NormalisedQuery, meta *domain.SearchMetadata) []domain.BoostSignal {
	if meta == nil {
		return nil
	}
	var out []domain.BoostSignal

	for _, id := range query.ExactIdentifiers {
		if containsFold(meta.CaseNumber, id.Value) {
			out = append(out, domain.BoostSignal{Name: "exact_match", Value: domain.BoostExactMatch})
			break
		}
	}

	cited := false
	for _, c := range query.ConfidentCitations() {
		if hasTerm(meta.LegalTerms, c.Canonical) {
			cited = true
			break
		}
	}
	if cited {
		out = append(out, domain.BoostSignal{Name: "citation", Value: domain.BoostCitation})
	}

	// a section reference with no resolvable act still counts as a
	// weaker signal when the section number appears in the case's terms
	if !cited {
		for _, c := range query.Citations {
			if c.Confident() || c.Section == "" {
				continue
			}
			if hasSection(meta.LegalTerms, c.Section) {
				out = append(out, domain.BoostSignal{Name: "legal_term", Value: domain.BoostLegalTerm})
				break
			}
		}
	}

	if queryAlignsWithMetadata(query, meta) {
		out = append(out, domain.BoostSignal{Name: "filter_alignment", Value: domain.BoostFilterAlignment})
	}

	return out
}

// queryAlignsWithMetadata reports whether any query term also appears
// in the case's categorical fields.
func queryAlignsWithMetadata(query *domain.NormalisedQuery, meta *domain.SearchMetadata) bool {
	for _, term := range query.Terms {
		if len(term) < 4 {
			continue
		}
		for _, field := range []string{meta.Court, meta.Status, meta.CaseType} {
			if containsFold(field, term) {
				return true
			}
		}
	}
	return false
}

// recencyFactor decays exponentially with age from the decision date
// (institution date for undecided cases). Unknown dates are neutral.
func recencyFactor(meta *domain.SearchMetadata, now time.Time) float64 {
	if meta == nil {
		return 1.0
	}
	ref := meta.DecisionDate
	if ref.IsZero() {
		ref = meta.InstitutionDate
	}
	if ref.IsZero() {
		return 1.0
	}
	ageDays := now.Sub(ref).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	f := math.Exp(-recencyLambda * ageDays)
	if f < recencyFloor {
		return recencyFloor
	}
	return f
}

// diversify greedily re-picks results so near-duplicate cases don't
// stack: each pick maximises score minus its worst-case centroid
// similarity to already picked cases.
func diversify(snap *index.Snapshot, ranked []Ranked) []Ranked {
	if len(ranked) < 3 || len(snap.CaseCentroids) == 0 {
		return ranked
	}

	remaining := append([]Ranked(nil), ranked...)
	out := make([]Ranked, 0, len(ranked))
	out = append(out, remaining[0])
	remaining = remaining[1:]

	for len(remaining) > 0 {
		bestIdx, bestVal := 0, math.Inf(-1)
		for i := range remaining {
			sim := maxCentroidSim(snap, remaining[i].CaseID, out)
			val := diversityLambda*remaining[i].FinalScore - (1-diversityLambda)*sim
			if val > bestVal {
				bestIdx, bestVal = i, val
			}
		}
		out = append(out, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return out
}

func maxCentroidSim(snap *index.Snapshot, caseID int64, picked []Ranked) float64 {
	a := snap.CaseCentroids[caseID]
	if len(a) == 0 {
		return 0
	}
	var max float64
	for _, p := range picked {
		if sim := vector.Cosine(a, snap.CaseCentroids[p.CaseID]); sim > max {
			max = sim
		}
	}
	return max
}

// normalise min-max scales candidate scores to [0,1]. A single
// candidate scores 1.
func normalise(cands []driven.Candidate) map[int64]float64 {
	out := make(map[int64]float64, len(cands))
	if len(cands) == 0 {
		return out
	}
	min, max := cands[0].Score, cands[0].Score
	for _, c := range cands[1:] {
		if c.Score < min {
			min = c.Score
		}
		if c.Score > max {
			max = c.Score
		}
	}
	for _, c := range cands {
		if max == min {
			out[c.CaseID] = 1.0
		} else {
			out[c.CaseID] = (c.Score - min) / (max - min)
		}
	}
	return out
}

func hasTerm(terms []string, want string) bool {
	for _, t := range terms {
		if t == want {
			return true
		}
	}
	return false
}

func hasSection(terms []string, section string) bool {
	for _, t := range terms {
		if idx := strings.LastIndexByte(t, ':'); idx >= 0 && t[idx+1:] == section {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
