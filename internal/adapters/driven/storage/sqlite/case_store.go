package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
)

// caseStore implements driven.CaseStore.
type caseStore struct {
	store *Store
}

var _ driven.CaseStore = (*caseStore)(nil)

const caseColumns = `id, case_number, title, parties, court, status, judge, case_type,
	institution_date, decision_date, text, page_breaks, updated_at`

// SaveCase stores or updates a case record.
func (s *caseStore) SaveCase(ctx context.Context, rec *domain.CaseRecord) error {
	partiesJSON, err := json.Marshal(rec.Parties)
	if err != nil {
		return fmt.Errorf("marshalling parties: %w", err)
	}
	breaksJSON, err := json.Marshal(rec.PageBreaks)
	if err != nil {
		return fmt.Errorf("marshalling page breaks: %w", err)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			case_number = excluded.case_number,
			title = excluded.title,
			parties = excluded.parties,
			court = excluded.court,
			status = excluded.status,
			judge = excluded.judge,
			case_type = excluded.case_type,
			institution_date = excluded.institution_date,
			decision_date = excluded.decision_date,
			text = excluded.text,
			page_breaks = excluded.page_breaks,
			updated_at = excluded.updated_at
	`, rec.ID, rec.CaseNumber, rec.Title, string(partiesJSON), rec.Court, rec.Status,
		rec.Judge, rec.CaseType, nullTime(rec.InstitutionDate), nullTime(rec.DecisionDate),
		rec.Text, string(breaksJSON), rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving case: %w", err)
	}
	return nil
}

// GetCase retrieves a case by ID.
func (s *caseStore) GetCase(ctx context.Context, id int64) (*domain.CaseRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)
	rec, err := scanCase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListCases returns all cases ordered by ID.
func (s *caseStore) ListCases(ctx context.Context) ([]domain.CaseRecord, error) {
	return s.listCases(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id`)
}

// ListCasesUpdatedSince returns cases touched at or after since.
func (s *caseStore) ListCasesUpdatedSince(ctx context.Context, since time.Time) ([]domain.CaseRecord, error) {
	return s.listCases(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE updated_at >= ? ORDER BY id`, since)
}

// CountCases returns the total number of cases.
func (s *caseStore) CountCases(ctx context.Context) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cases: %w", err)
	}
	return n, nil
}

func (s *caseStore) listCases(ctx context.Context, query string, args ...any) ([]domain.CaseRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	var out []domain.CaseRecord
	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*domain.CaseRecord, error) {
	var rec domain.CaseRecord
	var partiesJSON, breaksJSON string
	var institution, decision sql.NullTime

	if err := row.Scan(&rec.ID, &rec.CaseNumber, &rec.Title, &partiesJSON, &rec.Court,
		&rec.Status, &rec.Judge, &rec.CaseType, &institution, &decision,
		&rec.Text, &breaksJSON, &rec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning case: %w", err)
	}

	if err := json.Unmarshal([]byte(partiesJSON), &rec.Parties); err != nil {
		return nil, fmt.Errorf("unmarshalling parties: %w", err)
	}
	if err := json.Unmarshal([]byte(breaksJSON), &rec.PageBreaks); err != nil {
		return nil, fmt.Errorf("unmarshalling page breaks: %w", err)
	}
	if institution.Valid {
		rec.InstitutionDate = institution.Time
	}
	if decision.Valid {
		rec.DecisionDate = decision.Time
	}
	return &rec, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
