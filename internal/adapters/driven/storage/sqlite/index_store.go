package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
)

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// SaveMetadata stores or updates search metadata for a case.
func (s *indexStore) SaveMetadata(ctx context.Context, meta *domain.SearchMetadata) error {
	termsJSON, err := json.Marshal(meta.LegalTerms)
	if err != nil {
		return fmt.Errorf("marshalling legal terms: %w", err)
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO search_metadata (case_id, case_number, title, parties, court,
			status, judge, case_type, legal_terms, institution_date, decision_date,
			content_hash, text_hash, is_indexed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_id) DO UPDATE SET
			case_number = excluded.case_number,
			title = excluded.title,
			parties = excluded.parties,
			court = excluded.court,
			status = excluded.status,
			judge = excluded.judge,
			case_type = excluded.case_type,
			legal_terms = excluded.legal_terms,
			institution_date = excluded.institution_date,
			decision_date = excluded.decision_date,
			content_hash = excluded.content_hash,
			text_hash = excluded.text_hash,
			is_indexed = excluded.is_indexed,
			updated_at = excluded.updated_at
	`, meta.CaseID, meta.CaseNumber, meta.Title, meta.Parties, meta.Court,
		meta.Status, meta.Judge, meta.CaseType, string(termsJSON),
		nullTime(meta.InstitutionDate), nullTime(meta.DecisionDate),
		meta.ContentHash, meta.TextHash, meta.IsIndexed, meta.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

// ListMetadata returns metadata for all indexed cases, ordered by case ID.
func (s *indexStore) ListMetadata(ctx context.Context) ([]domain.SearchMetadata, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT case_id, case_number, title, parties, court, status, judge,
			case_type, legal_terms, institution_date, decision_date,
			content_hash, text_hash, is_indexed, updated_at
		FROM search_metadata ORDER BY case_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing metadata: %w", err)
	}
	defer rows.Close()

	var out []domain.SearchMetadata
	for rows.Next() {
		var m domain.SearchMetadata
		var termsJSON string
		var institution, decision sql.NullTime
		if err := rows.Scan(&m.CaseID, &m.CaseNumber, &m.Title, &m.Parties, &m.Court,
			&m.Status, &m.Judge, &m.CaseType, &termsJSON, &institution, &decision,
			&m.ContentHash, &m.TextHash, &m.IsIndexed, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		if err := json.Unmarshal([]byte(termsJSON), &m.LegalTerms); err != nil {
			return nil, fmt.Errorf("unmarshalling legal terms: %w", err)
		}
		if institution.Valid {
			m.InstitutionDate = institution.Time
		}
		if decision.Valid {
			m.DecisionDate = decision.Time
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveChunks stores chunks for a case, replacing any previous set.
func (s *indexStore) SaveChunks(ctx context.Context, caseID int64, chunks []domain.DocumentChunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE case_id = ?`, caseID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, case_id, idx, text, token_count, content_hash,
			page_number, start_char, end_char, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, caseID, c.Index, c.Text,
			c.TokenCount, c.ContentHash, c.PageNumber, c.StartChar, c.EndChar,
			encodeEmbedding(c.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// ListChunks returns all stored chunks, ordered by case ID then index.
func (s *indexStore) ListChunks(ctx context.Context) ([]domain.DocumentChunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, case_id, idx, text, token_count, content_hash,
			page_number, start_char, end_char, embedding
		FROM chunks ORDER BY case_id, idx
	`)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.CaseID, &c.Index, &c.Text, &c.TokenCount,
			&c.ContentHash, &c.PageNumber, &c.StartChar, &c.EndChar, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeEmbedding(blob)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCase removes all index artefacts for a case.
func (s *indexStore) DeleteCase(ctx context.Context, caseID int64) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"chunks", "facet_terms", "search_metadata"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE case_id = ?`, caseID); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SaveFacetTerms stores facet terms for a case, replacing any previous set.
func (s *indexStore) SaveFacetTerms(ctx context.Context, caseID int64, terms []domain.FacetTerm) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM facet_terms WHERE case_id = ?`, caseID); err != nil {
		return fmt.Errorf("clearing facet terms: %w", err)
	}
	for _, t := range terms {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO facet_terms (case_id, dimension, value) VALUES (?, ?, ?)
			ON CONFLICT(case_id, dimension, value) DO NOTHING
		`, caseID, string(t.Dimension), t.Value); err != nil {
			return fmt.Errorf("inserting facet term: %w", err)
		}
	}
	return tx.Commit()
}

// SaveIndexingLog appends a build log entry.
func (s *indexStore) SaveIndexingLog(ctx context.Context, log *domain.IndexingLog) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO indexing_logs (build_id, operation, cases_processed,
			chunks_created, vectors_created, chunks_skipped, started_at,
			finished_at, success, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.BuildID, log.Operation, log.CasesProcessed, log.ChunksCreated,
		log.VectorsCreated, log.ChunksSkipped, log.StartedAt, log.FinishedAt,
		log.Success, log.Message)
	if err != nil {
		return fmt.Errorf("saving indexing log: %w", err)
	}
	return nil
}

// LastIndexingLog returns the most recent successful build log.
func (s *indexStore) LastIndexingLog(ctx context.Context) (*domain.IndexingLog, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT build_id, operation, cases_processed, chunks_created,
			vectors_created, chunks_skipped, started_at, finished_at,
			success, message
		FROM indexing_logs WHERE success = 1
		ORDER BY finished_at DESC LIMIT 1
	`)
	var l domain.IndexingLog
	if err := row.Scan(&l.BuildID, &l.Operation, &l.CasesProcessed, &l.ChunksCreated,
		&l.VectorsCreated, &l.ChunksSkipped, &l.StartedAt, &l.FinishedAt,
		&l.Success, &l.Message); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("loading indexing log: %w", err)
	}
	return &l, nil
}

// Close releases the underlying database handle.
func (s *indexStore) Close() error {
	return s.store.Close()
}

// encodeEmbedding packs a vector as little-endian float32 bits.
// Nil vectors encode as nil so the column stays NULL.
func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
