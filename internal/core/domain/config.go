package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// IndexingConfig controls how the index is built and searched. A
// change to any field that alters index contents changes Version(),
// which forces a full rebuild.
type IndexingConfig struct {
	// ChunkSize is the target chunk length in tokens.
	ChunkSize int `toml:"chunk_size" json:"chunk_size"`

	// ChunkOverlap is the token overlap between adjacent chunks.
	ChunkOverlap int `toml:"chunk_overlap" json:"chunk_overlap"`

	// MaxChunksPerCase caps how many chunks one case may contribute.
	MaxChunksPerCase int `toml:"max_chunks_per_case" json:"max_chunks_per_case"`

	// EmbeddingModel names the model used for chunk and query vectors.
	EmbeddingModel string `toml:"embedding_model" json:"embedding_model"`

	// EmbeddingBatchSize is how many chunks are embedded per request.
	EmbeddingBatchSize int `toml:"embedding_batch_size" json:"embedding_batch_size"`

	// VectorWeight and KeywordWeight set the hybrid fusion mix.
	VectorWeight  float64 `toml:"vector_weight" json:"vector_weight"`
	KeywordWeight float64 `toml:"keyword_weight" json:"keyword_weight"`

	// MinSimilarity is the cosine similarity floor for the vector
	// channel; weaker matches are discarded.
	MinSimilarity float64 `toml:"min_similarity" json:"min_similarity"`
}

// DefaultIndexingConfig returns the standard configuration.
func DefaultIndexingConfig() IndexingConfig {
	return IndexingConfig{
		ChunkSize:          512,
		ChunkOverlap:       50,
		MaxChunksPerCase:   50,
		EmbeddingModel:     "all-MiniLM-L6-v2",
		EmbeddingBatchSize: 32,
		VectorWeight:       0.6,
		KeywordWeight:      0.4,
		MinSimilarity:      0.3,
	}
}

// Validate checks the configuration for consistency.
func (c IndexingConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidQuery)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", ErrInvalidQuery)
	}
	if c.MaxChunksPerCase <= 0 {
		return fmt.Errorf("%w: max_chunks_per_case must be positive", ErrInvalidQuery)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: embedding_model is required", ErrInvalidQuery)
	}
	if c.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("%w: embedding_batch_size must be positive", ErrInvalidQuery)
	}
	if c.VectorWeight < 0 || c.KeywordWeight < 0 {
		return fmt.Errorf("%w: fusion weights must be non-negative", ErrInvalidQuery)
	}
	if c.VectorWeight+c.KeywordWeight == 0 {
		return fmt.Errorf("%w: fusion weights must not both be zero", ErrInvalidQuery)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("%w: min_similarity must be in [0,1]", ErrInvalidQuery)
	}
	return nil
}

// Version returns a short digest identifying the index-affecting
// parts of the configuration.
func (c IndexingConfig) Version() string {
	h := sha256.Sum256([]byte(fmt.Sprintf(
		"%d|%d|%d|%s", c.ChunkSize, c.ChunkOverlap, c.MaxChunksPerCase, c.EmbeddingModel,
	)))
	return hex.EncodeToString(h[:])[:12]
}
