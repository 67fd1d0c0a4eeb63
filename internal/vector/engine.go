// Package vector implements the semantic retrieval channel: the query
// is embedded and compared against chunk embeddings with a flat
// inner-product scan. Vectors are L2-normalised at build time, so the
// inner product is cosine similarity.
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
)

// embedTimeout bounds the query embedding call so a stalled embedding
// service degrades the search instead of hanging it.
const embedTimeout = 5 * time.Second

// Engine is the semantic retrieval channel.
type Engine struct {
	holder    *index.Holder
	embedding driven.EmbeddingService
}

// NewEngine creates a vector engine. The embedding service may be nil,
// in which case every search reports the channel unavailable.
func NewEngine(holder *index.Holder, embedding driven.EmbeddingService) *Engine {
	return &Engine{holder: holder, embedding: embedding}
}

// Name identifies the channel.
func (e *Engine) Name() string {
	return "vector"
}

// Search embeds the query and scans chunk vectors, folding chunk hits
// to their best-scoring chunk per case. Similarities below the
// configured floor are discarded.
func (e *Engine) Search(ctx context.Context, query *domain.NormalisedQuery, filters domain.Filters, topK int) ([]driven.Candidate, error) {
	if e.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	snap := e.holder.Current()
	if snap.Empty() {
		return nil, domain.ErrIndexUnavailable
	}
	if snap.Dimension == 0 {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	qvec, err := e.embedding.Embed(embedCtx, query.Normalised)
	if err != nil {
		if embedCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSearchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(qvec) != snap.Dimension {
		return nil, fmt.Errorf("%w: query %d, index %d",
			domain.ErrDimensionMismatch, len(qvec), snap.Dimension)
	}
	Normalise(qvec)

	allowed := allowedSet(snap, filters)
	minSim := snap.Config.MinSimilarity

	best := make(map[int64]driven.Candidate)
	for _, chunkID := range sortedChunkIDs(snap) {
		chunk := snap.Chunks[chunkID]
		if len(chunk.Embedding) == 0 {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[chunk.CaseID]; !ok {
				continue
			}
		}
		sim := float64(Dot(qvec, chunk.Embedding))
		if sim < minSim {
			continue
		}
		if cur, ok := best[chunk.CaseID]; !ok || sim > cur.Score {
			best[chunk.CaseID] = driven.Candidate{
				CaseID:     chunk.CaseID,
				ChunkID:    chunk.ID,
				Score:      sim,
				ChunkText:  chunk.Text,
				PageNumber: chunk.PageNumber,
				StartChar:  chunk.StartChar,
			}
		}
	}

	candidates := make([]driven.Candidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
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

	logger.Debug("vector search: %d candidates above %.2f", len(candidates), minSim)
	return candidates, nil
}

// sortedChunkIDs iterates chunks in case order so scans are deterministic.
func sortedChunkIDs(snap *index.Snapshot) []string {
	ids := make([]string, 0, len(snap.Chunks))
	for _, caseID := range snap.Order {
		ids = append(ids, snap.ChunksByCase[caseID]...)
	}
	return ids
}

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

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalise scales the vector to unit length in place. Zero vectors
// are left untouched.
func Normalise(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// Cosine returns the cosine similarity of two vectors regardless of
// their length. Used for diversity comparisons between case centroids.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}
