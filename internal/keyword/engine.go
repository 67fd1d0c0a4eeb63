// Package keyword implements the lexical retrieval channel: BM25
// scoring over field-partitioned posting lists, with per-field
// weights favouring identifying fields over descriptive ones.
package keyword

import (
	"context"
	"math"
	"sort"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// fieldWeights scale each field's BM25 contribution. Identifying
// fields dominate descriptive ones.
var fieldWeights = map[string]float64{
	index.FieldCaseNumber: 5.0,
	index.FieldLegalTerms: 4.0,
	index.FieldTitle:      3.0,
	index.FieldParties:    2.0,
	index.FieldCourt:      1.5,
	index.FieldJudge:      1.5,
	index.FieldStatus:     1.0,
	index.FieldCaseType:   1.0,
	index.FieldText:       1.0,
}

// Engine is the keyword retrieval channel.
type Engine struct {
	holder *index.Holder
}

// NewEngine creates a keyword engine reading from the given holder.
func NewEngine(holder *index.Holder) *Engine {
	return &Engine{holder: holder}
}

// Name identifies the channel.
func (e *Engine) Name() string {
	return "keyword"
}

// Search scores filter-matching cases with weighted per-field BM25 and
// returns the top-k. Canonical citations from the query are matched
// against the legal_terms field as whole terms.
func (e *Engine) Search(ctx context.Context, query *domain.NormalisedQuery, filters domain.Filters, topK int) ([]driven.Candidate, error) {
	snap := e.holder.Current()
	if snap.Empty() || snap.Postings == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Copy before appending: the normalised query is memoised and
	// shared across concurrent searches.
	terms := append([]string(nil), query.Terms...)
	for _, c := range query.ConfidentCitations() {
		terms = append(terms, c.Canonical)
	}
	for _, id := range query.ExactIdentifiers {
		terms = append(terms, id.Value)
	}
	if len(terms) == 0 {
		return nil, nil
	}

	allowed := allowedSet(snap, filters)

	type accum struct {
		score  float64
		fields map[string]float64
	}
	scores := make(map[int64]*accum)

	p := snap.Postings
	n := float64(p.DocCount())

	for _, field := range p.Fields() {
		weight := fieldWeights[field]
		if weight == 0 {
			weight = 1.0
		}
		avgLen := p.AvgFieldLength(field)
		if avgLen == 0 {
			continue
		}
		for _, term := range terms {
			list := p.Lookup(field, term)
			if len(list) == 0 {
				continue
			}
			df := float64(len(list))
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			for _, post := range list {
				if allowed != nil {
					if _, ok := allowed[post.CaseID]; !ok {
						continue
					}
				}
				tf := float64(post.Freq)
				dl := float64(p.FieldLength(field, post.CaseID))
				norm := tf * (k1 + 1) / (tf + k1*(1-b+b*dl/avgLen))
				a := scores[post.CaseID]
				if a == nil {
					a = &accum{fields: make(map[string]float64)}
					scores[post.CaseID] = a
				}
				contrib := weight * idf * norm
				a.score += contrib
				a.fields[field] += contrib
			}
		}
	}

	candidates := make([]driven.Candidate, 0, len(scores))
	for caseID, a := range scores {
		candidates = append(candidates, driven.Candidate{
			CaseID:      caseID,
			Score:       a.score,
			FieldScores: a.fields,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CaseID < candidates[j].CaseID
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	logger.Debug("keyword search: %d terms, %d candidates", len(terms), len(candidates))
	return candidates, nil
}

// allowedSet returns the filter-matching case IDs, or nil when no
// filter is active.
func allowedSet(snap *index.Snapshot, filters domain.Filters) map[int64]struct{} {
	if filters.Empty() {
		return nil
	}
	ids := snap.FilterCases(filters)
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
