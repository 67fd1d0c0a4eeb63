package index

import (
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// Snapshot is one immutable, internally consistent view of the index.
// Readers hold a snapshot for the duration of a request; builds
// construct a fresh snapshot off to the side and swap it in atomically.
// Nothing in a published snapshot is ever mutated.
type Snapshot struct {
	// Version increases monotonically with each swap.
	Version int64

	// BuiltAt is when the snapshot finished building.
	BuiltAt time.Time

	// Config is the configuration the snapshot was built under.
	Config domain.IndexingConfig

	// Dimension is the embedding dimension, 0 when no vectors exist.
	Dimension int

	// Cases maps case ID to its search metadata.
	Cases map[int64]*domain.SearchMetadata

	// Order lists case IDs ascending, for deterministic iteration.
	Order []int64

	// Chunks maps chunk ID to chunk. Embeddings live on the chunks.
	Chunks map[string]*domain.DocumentChunk

	// ChunksByCase maps case ID to its chunk IDs in document order.
	ChunksByCase map[int64][]string

	// Postings is the keyword inverted index over case metadata.
	Postings *Postings

	// FacetTerms maps each facet dimension to its per-case values.
	FacetTerms map[domain.FacetType][]domain.FacetTerm

	// CaseCentroids maps case ID to the mean of its chunk embeddings,
	// used for diversity comparisons between cases.
	CaseCentroids map[int64][]float32

	// TotalCases is the case count in the source store at build time,
	// which may exceed len(Cases) when some cases failed to index.
	TotalCases int
}

// Empty reports whether the snapshot indexes no cases.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Cases) == 0
}

// VectorCount returns the number of chunks carrying embeddings.
func (s *Snapshot) VectorCount() int {
	n := 0
	for _, c := range s.Chunks {
		if len(c.Embedding) > 0 {
			n++
		}
	}
	return n
}

// Status summarises the snapshot for health reporting.
func (s *Snapshot) Status() domain.IndexStatus {
	if s.Empty() {
		return domain.IndexStatus{}
	}
	st := domain.IndexStatus{
		Built:          true,
		Version:        s.Version,
		ConfigVersion:  s.Config.Version(),
		EmbeddingModel: s.Config.EmbeddingModel,
		Dimension:      s.Dimension,
		CaseCount:      len(s.Cases),
		ChunkCount:     len(s.Chunks),
		VectorCount:    s.VectorCount(),
		TotalCases:     s.TotalCases,
		LastBuildTime:  s.BuiltAt,
	}
	if st.TotalCases > 0 {
		st.Coverage = float64(st.CaseCount) / float64(st.TotalCases)
	}
	return st
}

// Metadata returns the search metadata for a case, nil when absent.
func (s *Snapshot) Metadata(caseID int64) *domain.SearchMetadata {
	if s == nil {
		return nil
	}
	return s.Cases[caseID]
}

// FilterCases returns the IDs of cases matching the filters, ascending.
func (s *Snapshot) FilterCases(f domain.Filters) []int64 {
	if s.Empty() {
		return nil
	}
	if f.Empty() {
		return s.Order
	}
	var out []int64
	for _, id := range s.Order {
		if s.Cases[id].MatchesFilters(f) {
			out = append(out, id)
		}
	}
	return out
}
