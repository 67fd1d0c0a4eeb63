// Package chunker splits judgment text into embedding-sized chunks
// with deterministic identities, so rebuilding an unchanged case
// yields byte-identical chunks.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping tokens.
const DefaultChunkOverlap = 50

// DefaultMaxChunks caps how many chunks one case may produce.
const DefaultMaxChunks = 50

// Chunker splits case text into overlapping token windows, preferring
// to end a chunk at a sentence boundary near the target size.
type Chunker struct {
	chunkSize int
	overlap   int
	maxChunks int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMaxChunks caps chunks per case.
func WithMaxChunks(max int) Option {
	return func(c *Chunker) {
		if max > 0 {
			c.maxChunks = max
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChunks: DefaultMaxChunks,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// FromConfig creates a chunker from the indexing configuration.
func FromConfig(cfg domain.IndexingConfig) *Chunker {
	return New(
		WithChunkSize(cfg.ChunkSize),
		WithOverlap(cfg.ChunkOverlap),
		WithMaxChunks(cfg.MaxChunksPerCase),
	)
}

// token is a word plus its position in the source text.
type token struct {
	text  string
	start int
	end   int
}

// Chunk splits the case's text into chunks. Empty text produces no
// chunks. Exact duplicate chunks within a case are dropped.
func (c *Chunker) Chunk(rec *domain.CaseRecord) []domain.DocumentChunk {
	toks := tokenise(rec.Text)
	if len(toks) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	estimated := len(toks)/step + 1
	chunks := make([]domain.DocumentChunk, 0, estimated)
	seen := make(map[string]struct{})

	start := 0
	for start < len(toks) && len(chunks) < c.maxChunks {
		end := start + c.chunkSize
		if end > len(toks) {
			end = len(toks)
		} else {
			end = sentenceEnd(rec.Text, toks, start, end)
		}

		startChar := toks[start].start
		endChar := toks[end-1].end
		text := strings.TrimSpace(rec.Text[startChar:endChar])
		hash := contentHash(text)

		if _, dup := seen[hash]; !dup {
			seen[hash] = struct{}{}
			idx := len(chunks)
			chunks = append(chunks, domain.DocumentChunk{
				ID:          chunkID(rec.ID, idx, hash),
				CaseID:      rec.ID,
				Index:       idx,
				Text:        text,
				TokenCount:  end - start,
				ContentHash: hash,
				PageNumber:  pageNumber(rec.PageBreaks, startChar),
				StartChar:   startChar,
				EndChar:     endChar,
			})
		}

		if end == len(toks) {
			break
		}
		// A sentence nudge can pull end below start+overlap; the next
		// window must still move forward.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// sentenceEnd nudges the chunk boundary back to the nearest sentence
// terminator within the last tenth of the window. Falls back to the
// hard boundary when no terminator is close enough.
func sentenceEnd(text string, toks []token, start, end int) int {
	window := (end - start) / 10
	for i := end - 1; i > end-1-window && i > start; i-- {
		t := toks[i]
		if strings.HasSuffix(text[t.start:t.end], ".") {
			return i + 1
		}
	}
	return end
}

// pageNumber returns the 1-based page containing the offset.
// breaks holds the start offset of each page after the first.
func pageNumber(breaks []int, offset int) int {
	if len(breaks) == 0 {
		return 0
	}
	return sort.SearchInts(breaks, offset+1) + 1
}

func tokenise(text string) []token {
	var toks []token
	inWord := false
	start := 0
	for i, r := range text {
		space := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if !space && !inWord {
			start = i
			inWord = true
		} else if space && inWord {
			toks = append(toks, token{text: text[start:i], start: start, end: i})
			inWord = false
		}
	}
	if inWord {
		toks = append(toks, token{text: text[start:], start: start, end: len(text)})
	}
	return toks
}

func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func chunkID(caseID int64, index int, hash string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", caseID, index, hash)))
	return hex.EncodeToString(h[:])[:16]
}
