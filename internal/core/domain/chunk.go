package domain

// DocumentChunk is a contiguous slice of judgment text sized for
// embedding. Chunk identity is deterministic: the same case text
// always yields the same chunk IDs, so rebuilds are idempotent.
type DocumentChunk struct {
	// ID is derived from the case ID, chunk index and content hash.
	ID string

	// CaseID is the owning case.
	CaseID int64

	// Index is the zero-based position of this chunk within the case.
	Index int

	// Text is the chunk content.
	Text string

	// TokenCount is the approximate token length of Text.
	TokenCount int

	// ContentHash is a SHA-256 digest of Text, used for deduplication
	// and incremental change detection.
	ContentHash string

	// PageNumber is the 1-based judgment page the chunk starts on.
	// Zero when pagination is unknown.
	PageNumber int

	// StartChar and EndChar delimit the chunk within the case text.
	StartChar int
	EndChar   int

	// Embedding is the chunk vector. Nil when embedding was skipped
	// or failed; such chunks are excluded from the vector channel.
	Embedding []float32
}
