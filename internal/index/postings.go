// Package index holds the in-memory search index: an immutable
// snapshot of cases, chunks, vectors and posting lists, plus the
// holder that swaps snapshots atomically.
package index

import (
	"sort"
	"strings"
	"unicode"
)

// Posting records one case's term frequency for a term in a field.
type Posting struct {
	CaseID int64
	Freq   int
}

// fieldIndex is the inverted index for one metadata field.
type fieldIndex struct {
	postings map[string][]Posting
	lengths  map[int64]int
	totalLen int
}

// Postings is a field-partitioned inverted index over case metadata.
// Each field keeps its own posting lists and length statistics so the
// keyword engine can score fields independently and weight them.
// Immutable once built.
type Postings struct {
	fields map[string]*fieldIndex
	docs   map[int64]struct{}
}

// PostingsBuilder accumulates documents before freezing them into a
// Postings index.
type PostingsBuilder struct {
	p *Postings
}

// NewPostingsBuilder returns an empty builder.
func NewPostingsBuilder() *PostingsBuilder {
	return &PostingsBuilder{p: &Postings{
		fields: make(map[string]*fieldIndex),
		docs:   make(map[int64]struct{}),
	}}
}

// Add indexes the tokens of one field of one case. Calling Add twice
// for the same case and field appends, so callers index each field once.
func (b *PostingsBuilder) Add(caseID int64, field string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	fi := b.p.fields[field]
	if fi == nil {
		fi = &fieldIndex{
			postings: make(map[string][]Posting),
			lengths:  make(map[int64]int),
		}
		b.p.fields[field] = fi
	}
	freqs := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freqs[t]++
	}
	for term, freq := range freqs {
		fi.postings[term] = append(fi.postings[term], Posting{CaseID: caseID, Freq: freq})
	}
	fi.lengths[caseID] += len(tokens)
	fi.totalLen += len(tokens)
	b.p.docs[caseID] = struct{}{}
}

// Build freezes the accumulated documents. Posting lists are sorted by
// case ID so lookups are deterministic.
func (b *PostingsBuilder) Build() *Postings {
	for _, fi := range b.p.fields {
		for term := range fi.postings {
			list := fi.postings[term]
			sort.Slice(list, func(i, j int) bool { return list[i].CaseID < list[j].CaseID })
		}
	}
	return b.p
}

// DocCount returns the number of indexed cases.
func (p *Postings) DocCount() int {
	return len(p.docs)
}

// Lookup returns the posting list for a term in a field.
func (p *Postings) Lookup(field, term string) []Posting {
	fi := p.fields[field]
	if fi == nil {
		return nil
	}
	return fi.postings[term]
}

// DocFreq returns how many cases contain the term in the field.
func (p *Postings) DocFreq(field, term string) int {
	return len(p.Lookup(field, term))
}

// FieldLength returns the token length of a case's field.
func (p *Postings) FieldLength(field string, caseID int64) int {
	fi := p.fields[field]
	if fi == nil {
		return 0
	}
	return fi.lengths[caseID]
}

// AvgFieldLength returns the mean token length of a field across all
// cases that have it.
func (p *Postings) AvgFieldLength(field string) float64 {
	fi := p.fields[field]
	if fi == nil || len(fi.lengths) == 0 {
		return 0
	}
	return float64(fi.totalLen) / float64(len(fi.lengths))
}

// Fields returns the indexed field names in sorted order.
func (p *Postings) Fields() []string {
	names := make([]string, 0, len(p.fields))
	for name := range p.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tokenise splits text into lowercase index terms. Letters and digits
// form tokens; ':' and '/' are kept inside tokens so canonical
// citations ("ppc:302") and case numbers ("123/2024") survive as
// single terms.
func Tokenise(text string) []string {
	var tokens []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			tok := strings.Trim(sb.String(), ":/")
			if tok != "" {
				tokens = append(tokens, tok)
			}
			sb.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ':' || r == '/' {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
