package driven

import (
	"context"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// Searcher is one retrieval channel over the active index snapshot.
// The keyword and vector engines both implement it, which lets the
// search service run them in parallel and fuse the candidate lists.
type Searcher interface {
	// Search returns the top-k candidates for the normalised query,
	// restricted to cases matching the filters.
	Search(ctx context.Context, query *domain.NormalisedQuery, filters domain.Filters, topK int) ([]Candidate, error)

	// Name identifies the channel ("keyword" or "vector") for
	// logging and score explanations.
	Name() string
}

// Candidate is one scored hit from a retrieval channel, before fusion.
type Candidate struct {
	// CaseID is the matched case.
	CaseID int64

	// ChunkID is the matched chunk, when the channel scores chunks.
	// Empty for metadata-level matches.
	ChunkID string

	// Score is the channel-native score: BM25 for keyword, cosine
	// similarity for vector. Scales differ between channels; fusion
	// normalises before mixing.
	Score float64

	// FieldScores breaks the keyword score down per metadata field.
	FieldScores map[string]float64

	// ChunkText carries the matched chunk's text for snippet extraction.
	ChunkText string

	// PageNumber and StartChar locate the chunk in the judgment.
	PageNumber int
	StartChar  int
}
