package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driving"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/facets"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/querynorm"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/ranking"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/snippets"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// candidatePool is how many candidates each channel contributes before
// fusion. Larger than any page so boosts can promote deep hits.
const candidatePool = 200

// facetBasePool bounds the unfiltered match set used for facet counts.
const facetBasePool = 1000

// SearchService runs the full retrieval pipeline: validation,
// normalisation, parallel retrieval, fusion, faceting and snippets.
type SearchService struct {
	holder     *index.Holder
	normaliser *querynorm.Normaliser
	keyword    driven.Searcher
	vector     driven.Searcher
	facets     *facets.Counter
}

// NewSearchService creates a search service. The vector searcher is
// optional (can be nil); hybrid searches then degrade to keyword-only.
func NewSearchService(
	holder *index.Holder,
	normaliser *querynorm.Normaliser,
	keyword driven.Searcher,
	vector driven.Searcher,
	facetCounter *facets.Counter,
) *SearchService {
	return &SearchService{
		holder:     holder,
		normaliser: normaliser,
		keyword:    keyword,
		vector:     vector,
		facets:     facetCounter,
	}
}

// Search performs a case search.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)
	started := time.Now()

	opts, err := validateOptions(query, opts)
	if err != nil {
		return nil, err
	}

	snap := s.holder.Current()
	if snap.Empty() {
		return nil, domain.ErrIndexUnavailable
	}

	nq := s.normaliser.Normalise(query)
	logger.Debug("Normalised: %q, %d terms, %d citations, %d identifiers",
		nq.Normalised, len(nq.Terms), len(nq.Citations), len(nq.ExactIdentifiers))

	mode := s.effectiveMode(opts.Mode)
	logger.Info("Effective search mode: %s", mode)

	var warnings []string
	var ranked []ranking.Ranked

	if nq.Empty() {
		logger.Debug("Empty query after normalisation, returning no results")
	} else {
		var keywordHits, vectorHits []driven.Candidate
		keywordHits, vectorHits, warnings, err = s.retrieve(ctx, mode, nq, opts.Filters)
		if err != nil {
			return nil, err
		}
		ranked = ranking.NewRanker(snap.Config).Rank(snap, nq, keywordHits, vectorHits)
	}
	logger.Debug("Ranked results: %d cases", len(ranked))

	resp := &domain.SearchResponse{
		Results: []domain.SearchResult{},
		QueryInfo: domain.QueryInfo{
			NormalisedQuery:   nq.Normalised,
			CitationsFound:    canonicals(nq.Citations),
			ExactMatchesFound: identifierValues(nq.ExactIdentifiers),
		},
		Warnings: warnings,
	}

	resp.Pagination = paginate(len(ranked), opts.Offset, opts.Limit)
	gen := snippets.New(opts.Highlight)
	for i, rk := range pageSlice(ranked, opts.Offset, opts.Limit) {
		meta := snap.Metadata(rk.CaseID)
		if meta == nil {
			continue
		}
		resp.Results = append(resp.Results, domain.SearchResult{
			Rank:         opts.Offset + i + 1,
			CaseID:       rk.CaseID,
			CaseNumber:   meta.CaseNumber,
			Title:        meta.Title,
			Court:        meta.Court,
			Status:       meta.Status,
			DecisionDate: meta.DecisionDate,
			FinalScore:   rk.FinalScore,
			Explanation:  rk.Explanation,
			Snippets:     gen.Generate(snap, rk.CaseID, nq, rk.BestChunkID),
		})
	}

	if opts.ReturnFacets {
		base := s.facetBase(ctx, snap, nq)
		resp.Facets = s.facets.Count(snap, nq.Normalised, base, opts.Filters)
	}

	resp.Stats = domain.SearchStats{
		Mode:         mode,
		TotalResults: len(ranked),
		LatencyMS:    time.Since(started).Milliseconds(),
	}
	logger.Info("Final results: %d of %d in %dms",
		len(resp.Results), len(ranked), resp.Stats.LatencyMS)
	return resp, nil
}

// retrieve runs the channels the mode asks for. In hybrid mode the
// channels run in parallel and a single channel failure degrades the
// search with a warning instead of failing it.
func (s *SearchService) retrieve(
	ctx context.Context, mode domain.SearchMode, nq *domain.NormalisedQuery, filters domain.Filters,
) (keywordHits, vectorHits []driven.Candidate, warnings []string, err error) {
	switch mode {
	case domain.ModeLexical:
		keywordHits, err = s.keyword.Search(ctx, nq, filters, candidatePool)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("keyword search: %w", err)
		}

	case domain.ModeSemantic:
		vectorHits, err = s.vector.Search(ctx, nq, filters, candidatePool)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("vector search: %w", err)
		}

	case domain.ModeHybrid:
		var keywordErr, vectorErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			keywordHits, keywordErr = s.keyword.Search(ctx, nq, filters, candidatePool)
		}()
		go func() {
			defer wg.Done()
			vectorHits, vectorErr = s.vector.Search(ctx, nq, filters, candidatePool)
		}()
		wg.Wait()

		if keywordErr != nil && vectorErr != nil {
			return nil, nil, nil, fmt.Errorf("hybrid search: keyword=%v, vector=%w", keywordErr, vectorErr)
		}
		if keywordErr != nil {
			logger.Warn("Hybrid search: keyword channel failed, using vector results only: %v", keywordErr)
			warnings = append(warnings, "keyword search unavailable, semantic results only")
			keywordHits = nil
		}
		if vectorErr != nil {
			logger.Warn("Hybrid search: vector channel failed, using keyword results only: %v", vectorErr)
			warnings = append(warnings, "semantic search unavailable, keyword results only")
			vectorHits = nil
		}
	}
	return keywordHits, vectorHits, warnings, nil
}

// effectiveMode degrades hybrid and semantic requests to lexical when
// no vector channel is wired.
func (s *SearchService) effectiveMode(mode domain.SearchMode) domain.SearchMode {
	if mode == "" {
		mode = domain.ModeHybrid
	}
	if s.vector == nil && mode != domain.ModeLexical {
		logger.Debug("Vector channel unavailable, degrading %s to lexical", mode)
		return domain.ModeLexical
	}
	return mode
}

// facetBase returns the case IDs the query matches before any filter,
// so each facet dimension can be counted without its own filter. An
// empty query matches every indexed case.
func (s *SearchService) facetBase(ctx context.Context, snap *index.Snapshot, nq *domain.NormalisedQuery) []int64 {
	if nq.Empty() {
		return snap.Order
	}
	hits, err := s.keyword.Search(ctx, nq, domain.Filters{}, facetBasePool)
	if err != nil {
		logger.Warn("Facet base retrieval failed: %v", err)
		return nil
	}
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.CaseID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func validateOptions(query string, opts domain.SearchOptions) (domain.SearchOptions, error) {
	if len(query) > domain.MaxQueryLength {
		return opts, fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidQuery, domain.MaxQueryLength)
	}
	if opts.Mode != "" && !opts.Mode.Valid() {
		return opts, fmt.Errorf("%w: unsupported mode %q", domain.ErrInvalidQuery, opts.Mode)
	}
	if err := opts.Filters.Validate(); err != nil {
		return opts, err
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultSearchLimit
	}
	if opts.Limit > domain.MaxSearchLimit {
		opts.Limit = domain.MaxSearchLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts, nil
}

func paginate(total, offset, limit int) domain.Pagination {
	return domain.Pagination{
		Total:       total,
		Offset:      offset,
		Limit:       limit,
		HasNext:     offset+limit < total,
		HasPrevious: offset > 0,
	}
}

func pageSlice(ranked []ranking.Ranked, offset, limit int) []ranking.Ranked {
	if offset >= len(ranked) {
		return nil
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end]
}

func canonicals(cits []domain.Citation) []string {
	var out []string
	for _, c := range cits {
		out = append(out, c.Canonical)
	}
	return out
}

func identifierValues(ids []domain.ExactIdentifier) []string {
	var out []string
	for _, id := range ids {
		out = append(out, id.Value)
	}
	return out
}
