package domain

import (
	"strings"
	"time"
)

// CaseRecord is a court case as supplied by the ingestion pipeline.
// It is the canonical read-only input to the index builder; the engine
// never mutates case records.
type CaseRecord struct {
	// ID is the unique case identifier assigned by the ingestion pipeline.
	ID int64

	// CaseNumber is the court-assigned case number (e.g. "W.P. 123/2024").
	CaseNumber string

	// Title is the cause title (e.g. "State vs Ahmed Khan").
	Title string

	// Parties lists the named parties to the case.
	Parties []string

	// Court is the court or bench that heard the case.
	Court string

	// Status is the procedural status (e.g. "Decided", "Pending").
	Status string

	// Judge is the presiding judge, when known.
	Judge string

	// CaseType classifies the proceeding (e.g. "Writ Petition", "Appeal").
	CaseType string

	// InstitutionDate is when the case was filed.
	InstitutionDate time.Time

	// DecisionDate is when the case was decided. Zero when undecided.
	DecisionDate time.Time

	// Text is the full extracted judgment text after cleaning/OCR.
	Text string

	// PageBreaks holds the character offsets in Text where each page
	// after the first begins. Empty when pagination is unknown.
	PageBreaks []int

	// UpdatedAt is when the ingestion pipeline last touched this record.
	UpdatedAt time.Time
}

// SearchMetadata is the normalised, search-ready projection of a case.
// It drives keyword scoring and faceting and is rebuilt whenever the
// source case changes.
type SearchMetadata struct {
	// CaseID links back to the source CaseRecord.
	CaseID int64

	// CaseNumber is the normalised case number.
	CaseNumber string

	// Title is the normalised cause title.
	Title string

	// Parties is the normalised, pipe-joined party list.
	Parties string

	// Court is the normalised court name.
	Court string

	// Status is the normalised status.
	Status string

	// Judge is the normalised judge name.
	Judge string

	// CaseType is the normalised case type.
	CaseType string

	// LegalTerms holds canonical act:section terms extracted from the
	// judgment text (e.g. "ppc:302").
	LegalTerms []string

	// InstitutionDate is carried over from the source record.
	InstitutionDate time.Time

	// DecisionDate is carried over from the source record.
	DecisionDate time.Time

	// ContentHash is a SHA-256 digest over the normalised metadata
	// fields, used for change detection.
	ContentHash string

	// TextHash is a SHA-256 digest over the judgment text.
	TextHash string

	// IsIndexed reports whether this case is part of the active index.
	IsIndexed bool

	// UpdatedAt is when this metadata record was last rebuilt.
	UpdatedAt time.Time
}

// MatchesFilters reports whether the record satisfies every active
// filter predicate. Filters are hard predicates: they narrow the
// candidate set and never contribute to relevance scores.
func (m *SearchMetadata) MatchesFilters(f Filters) bool {
	if f.Court != "" && !containsFold(m.Court, f.Court) {
		return false
	}
	if f.Status != "" && !containsFold(m.Status, f.Status) {
		return false
	}
	if f.Judge != "" && !containsFold(m.Judge, f.Judge) {
		return false
	}
	if f.CaseType != "" && !containsFold(m.CaseType, f.CaseType) {
		return false
	}
	if f.Citation != "" && !m.hasLegalTerm(f.Citation) {
		return false
	}
	if f.Section != "" && f.Citation == "" && !m.hasSection(f.Section) {
		return false
	}
	if f.YearFrom != 0 || f.YearTo != 0 {
		year := m.Year()
		if year == 0 {
			return false
		}
		if f.YearFrom != 0 && year < f.YearFrom {
			return false
		}
		if f.YearTo != 0 && year > f.YearTo {
			return false
		}
	}
	return true
}

// Year returns the facet year for the case: the decision year when
// decided, otherwise the institution year. Zero when neither is known.
func (m *SearchMetadata) Year() int {
	if !m.DecisionDate.IsZero() {
		return m.DecisionDate.Year()
	}
	if !m.InstitutionDate.IsZero() {
		return m.InstitutionDate.Year()
	}
	return 0
}

func (m *SearchMetadata) hasLegalTerm(term string) bool {
	for _, t := range m.LegalTerms {
		if equalFold(t, term) {
			return true
		}
	}
	return false
}

// hasSection matches a section filter against the stored
// statute:section terms. A bare number ("302") matches the section
// part of any statute; a full term ("ppc:302") must match exactly.
func (m *SearchMetadata) hasSection(section string) bool {
	for _, t := range m.LegalTerms {
		if equalFold(t, section) {
			return true
		}
		if idx := strings.LastIndexByte(t, ':'); idx >= 0 && equalFold(t[idx+1:], section) {
			return true
		}
	}
	return false
}
