// Package memory provides in-process implementations of the storage
// ports, used in tests and as a scratch backend when no database path
// is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
)

// Ensure Store implements the storage ports.
var (
	_ driven.CaseStore  = (*Store)(nil)
	_ driven.IndexStore = (*Store)(nil)
)

// Store keeps everything in maps guarded by one mutex.
type Store struct {
	mu         sync.RWMutex
	cases      map[int64]domain.CaseRecord
	metadata   map[int64]domain.SearchMetadata
	chunks     map[int64][]domain.DocumentChunk
	facetTerms map[int64][]domain.FacetTerm
	logs       []domain.IndexingLog
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		cases:      make(map[int64]domain.CaseRecord),
		metadata:   make(map[int64]domain.SearchMetadata),
		chunks:     make(map[int64][]domain.DocumentChunk),
		facetTerms: make(map[int64][]domain.FacetTerm),
	}
}

// GetCase retrieves a case by ID.
func (s *Store) GetCase(_ context.Context, id int64) (*domain.CaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// ListCases returns all cases ordered by ID.
func (s *Store) ListCases(_ context.Context) ([]domain.CaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CaseRecord, 0, len(s.cases))
	for _, rec := range s.cases {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListCasesUpdatedSince returns cases touched at or after since.
func (s *Store) ListCasesUpdatedSince(ctx context.Context, since time.Time) ([]domain.CaseRecord, error) {
	all, err := s.ListCases(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.CaseRecord
	for _, rec := range all {
		if !rec.UpdatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// CountCases returns the number of stored cases.
func (s *Store) CountCases(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases), nil
}

// SaveCase stores or updates a case record.
func (s *Store) SaveCase(_ context.Context, rec *domain.CaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[rec.ID] = *rec
	return nil
}

// RemoveCase drops a case record. Index artefacts for the case stay
// until the next build cleans them up.
func (s *Store) RemoveCase(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, id)
	return nil
}

// SaveMetadata stores or updates search metadata.
func (s *Store) SaveMetadata(_ context.Context, meta *domain.SearchMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[meta.CaseID] = *meta
	return nil
}

// ListMetadata returns metadata ordered by case ID.
func (s *Store) ListMetadata(_ context.Context) ([]domain.SearchMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SearchMetadata, 0, len(s.metadata))
	for _, m := range s.metadata {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseID < out[j].CaseID })
	return out, nil
}

// SaveChunks replaces a case's chunks.
func (s *Store) SaveChunks(_ context.Context, caseID int64, chunks []domain.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[caseID] = append([]domain.DocumentChunk(nil), chunks...)
	return nil
}

// ListChunks returns all chunks ordered by case ID then index.
func (s *Store) ListChunks(_ context.Context) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DocumentChunk
	ids := make([]int64, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, s.chunks[id]...)
	}
	return out, nil
}

// DeleteCase removes all index artefacts for a case.
func (s *Store) DeleteCase(_ context.Context, caseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metadata, caseID)
	delete(s.chunks, caseID)
	delete(s.facetTerms, caseID)
	return nil
}

// SaveFacetTerms replaces a case's facet terms.
func (s *Store) SaveFacetTerms(_ context.Context, caseID int64, terms []domain.FacetTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facetTerms[caseID] = append([]domain.FacetTerm(nil), terms...)
	return nil
}

// SaveIndexingLog appends a build log entry.
func (s *Store) SaveIndexingLog(_ context.Context, log *domain.IndexingLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *log)
	return nil
}

// LastIndexingLog returns the most recent successful build log.
func (s *Store) LastIndexingLog(_ context.Context) (*domain.IndexingLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].Success {
			log := s.logs[i]
			return &log, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Close releases nothing; it satisfies the port.
func (s *Store) Close() error {
	return nil
}
