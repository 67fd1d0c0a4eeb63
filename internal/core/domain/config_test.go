package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIndexingConfig(t *testing.T) {
	cfg := DefaultIndexingConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.EmbeddingModel)
	assert.InDelta(t, 1.0, cfg.VectorWeight+cfg.KeywordWeight, 1e-9)
}

func TestIndexingConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IndexingConfig)
	}{
		{"zero chunk size", func(c *IndexingConfig) { c.ChunkSize = 0 }},
		{"overlap not below size", func(c *IndexingConfig) { c.ChunkOverlap = c.ChunkSize }},
		{"negative overlap", func(c *IndexingConfig) { c.ChunkOverlap = -1 }},
		{"missing model", func(c *IndexingConfig) { c.EmbeddingModel = "" }},
		{"zero batch", func(c *IndexingConfig) { c.EmbeddingBatchSize = 0 }},
		{"zero weights", func(c *IndexingConfig) { c.VectorWeight = 0; c.KeywordWeight = 0 }},
		{"similarity above one", func(c *IndexingConfig) { c.MinSimilarity = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultIndexingConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIndexingConfigVersion(t *testing.T) {
	a := DefaultIndexingConfig()
	b := DefaultIndexingConfig()
	assert.Equal(t, a.Version(), b.Version())

	b.ChunkSize = 256
	assert.NotEqual(t, a.Version(), b.Version())

	// fusion weights do not affect index contents
	c := DefaultIndexingConfig()
	c.VectorWeight = 0.8
	assert.Equal(t, a.Version(), c.Version())
}
