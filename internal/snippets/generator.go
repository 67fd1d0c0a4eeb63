// Package snippets extracts readable fragments for search results.
// Strategies run in priority order: a lexical window around query term
// hits, the best semantic chunk, and a metadata line as the fallback
// so every result carries at least one snippet.
package snippets

import (
	"sort"
	"strings"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
)

// Snippet window bounds in characters.
const (
	MinWindow = 80
	MaxWindow = 300
)

// MaxSnippets caps snippets per result.
const MaxSnippets = 2

// Sources named on produced snippets.
const (
	SourceLexical  = "lexical"
	SourceSemantic = "semantic"
	SourceMetadata = "metadata"
)

// Generator extracts snippets from the active snapshot's chunks.
type Generator struct {
	highlight bool
}

// New creates a generator. With highlight enabled, matched terms are
// wrapped in <em> tags.
func New(highlight bool) *Generator {
	return &Generator{highlight: highlight}
}

// Generate returns up to MaxSnippets snippets for a case. bestChunkID
// is the vector channel's best hit for the case, empty when the
// semantic channel produced none.
func (g *Generator) Generate(snap *index.Snapshot, caseID int64, query *domain.NormalisedQuery, bestChunkID string) []domain.Snippet {
	var out []domain.Snippet

	lex, lexChunk := g.lexical(snap, caseID, query)
	if lex != nil {
		out = append(out, *lex)
	}
	if bestChunkID != "" && bestChunkID != lexChunk && len(out) < MaxSnippets {
		if sem := g.semantic(snap, bestChunkID); sem != nil {
			out = append(out, *sem)
		}
	}
	if len(out) == 0 {
		if meta := g.metadata(snap.Metadata(caseID)); meta != nil {
			out = append(out, *meta)
		}
	}
	return out
}

// lexical finds the chunk with the most distinct query terms and cuts
// a window around the first hit.
func (g *Generator) lexical(snap *index.Snapshot, caseID int64, query *domain.NormalisedQuery) (*domain.Snippet, string) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, ""
	}

	var bestChunk *domain.DocumentChunk
	var bestTerms []string
	bestFirst := -1

	for _, chunkID := range snap.ChunksByCase[caseID] {
		chunk := snap.Chunks[chunkID]
		lower := strings.ToLower(chunk.Text)

		var matched []string
		first := -1
		for _, t := range terms {
			if idx := strings.Index(lower, t); idx >= 0 {
				matched = append(matched, t)
				if first == -1 || idx < first {
					first = idx
				}
			}
		}
		if len(matched) > len(bestTerms) {
			bestChunk, bestTerms, bestFirst = chunk, matched, first
		}
	}
	if bestChunk == nil {
		return nil, ""
	}

	start, end := window(bestChunk.Text, bestFirst)
	text := strings.TrimSpace(bestChunk.Text[start:end])
	if g.highlight {
		text = highlightTerms(text, bestTerms)
	}
	sort.Strings(bestTerms)
	return &domain.Snippet{
		Text:       text,
		Source:     SourceLexical,
		Terms:      bestTerms,
		PageNumber: bestChunk.PageNumber,
		StartChar:  bestChunk.StartChar + start,
		EndChar:    bestChunk.StartChar + end,
	}, bestChunk.ID
}

func (g *Generator) semantic(snap *index.Snapshot, chunkID string) *domain.Snippet {
	chunk := snap.Chunks[chunkID]
	if chunk == nil || chunk.Text == "" {
		return nil
	}
	start, end := window(chunk.Text, 0)
	return &domain.Snippet{
		Text:       strings.TrimSpace(chunk.Text[start:end]),
		Source:     SourceSemantic,
		PageNumber: chunk.PageNumber,
		StartChar:  chunk.StartChar + start,
		EndChar:    chunk.StartChar + end,
	}
}

func (g *Generator) metadata(meta *domain.SearchMetadata) *domain.Snippet {
	if meta == nil {
		return nil
	}
	var parts []string
	if meta.Title != "" {
		parts = append(parts, meta.Title)
	}
	if meta.Court != "" {
		parts = append(parts, meta.Court)
	}
	if meta.Status != "" {
		parts = append(parts, meta.Status)
	}
	if len(parts) == 0 {
		return nil
	}
	return &domain.Snippet{
		Text:   strings.Join(parts, ", "),
		Source: SourceMetadata,
	}
}

// window cuts [start,end) around the hit offset, at most MaxWindow
// chars, expanded to at least MinWindow when the text allows, and
// aligned to word boundaries.
func window(text string, hit int) (int, int) {
	if hit < 0 {
		hit = 0
	}
	start := hit - MaxWindow/4
	if start < 0 {
		start = 0
	}
	end := start + MaxWindow
	if end > len(text) {
		end = len(text)
	}
	if end-start < MinWindow {
		start = end - MinWindow
		if start < 0 {
			start = 0
		}
	}
	// align to word boundaries
	if start > 0 {
		if idx := strings.IndexByte(text[start:end], ' '); idx >= 0 && idx < MinWindow/2 {
			start += idx + 1
		}
	}
	if end < len(text) {
		if idx := strings.LastIndexByte(text[start:end], ' '); idx > 0 && end-start-idx < MinWindow/2 {
			end = start + idx
		}
	}
	return start, end
}

func highlightTerms(text string, terms []string) string {
	for _, t := range terms {
		lower := strings.ToLower(text)
		idx := strings.Index(lower, t)
		if idx < 0 {
			continue
		}
		orig := text[idx : idx+len(t)]
		text = text[:idx] + "<em>" + orig + "</em>" + text[idx+len(t):]
	}
	return text
}

func queryTerms(query *domain.NormalisedQuery) []string {
	terms := append([]string(nil), query.Terms...)
	for _, c := range query.ConfidentCitations() {
		terms = append(terms, c.Canonical)
	}
	return terms
}
