package file

import (
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
)

// IndexingConfigFrom builds an IndexingConfig from stored settings,
// falling back to defaults for any key the user never set.
func IndexingConfigFrom(store driven.ConfigStore) domain.IndexingConfig {
	cfg := domain.DefaultIndexingConfig()

	if v := store.GetInt("indexing.chunk_size"); v > 0 {
		cfg.ChunkSize = v
	}
	if _, ok := store.Get("indexing.chunk_overlap"); ok {
		cfg.ChunkOverlap = store.GetInt("indexing.chunk_overlap")
	}
	if v := store.GetInt("indexing.max_chunks_per_case"); v > 0 {
		cfg.MaxChunksPerCase = v
	}
	if v := store.GetString("embedding.model"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := store.GetInt("embedding.batch_size"); v > 0 {
		cfg.EmbeddingBatchSize = v
	}
	if v := store.GetFloat("search.vector_weight"); v > 0 {
		cfg.VectorWeight = v
	}
	if v := store.GetFloat("search.keyword_weight"); v > 0 {
		cfg.KeywordWeight = v
	}
	if v := store.GetFloat("search.min_similarity"); v > 0 {
		cfg.MinSimilarity = v
	}
	return cfg
}
