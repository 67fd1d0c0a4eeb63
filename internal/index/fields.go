package index

import "github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"

// Metadata field names used by the keyword index. The builder indexes
// each case under these fields; the keyword engine scores and weights
// them independently.
const (
	FieldCaseNumber = "case_number"
	FieldTitle      = "title"
	FieldParties    = "parties"
	FieldCourt      = "court"
	FieldStatus     = "status"
	FieldJudge      = "judge"
	FieldCaseType   = "case_type"
	FieldLegalTerms = "legal_terms"
	FieldText       = "text"
)

// BuildPostings indexes every case's metadata under the standard
// fields, plus its judgment text under the text field. Legal terms are
// indexed verbatim so canonical citations stay single terms.
func BuildPostings(cases map[int64]*domain.SearchMetadata, texts map[int64]string) *Postings {
	b := NewPostingsBuilder()
	for id, m := range cases {
		b.Add(id, FieldCaseNumber, Tokenise(m.CaseNumber))
		b.Add(id, FieldTitle, Tokenise(m.Title))
		b.Add(id, FieldParties, Tokenise(m.Parties))
		b.Add(id, FieldCourt, Tokenise(m.Court))
		b.Add(id, FieldStatus, Tokenise(m.Status))
		b.Add(id, FieldJudge, Tokenise(m.Judge))
		b.Add(id, FieldCaseType, Tokenise(m.CaseType))
		b.Add(id, FieldLegalTerms, m.LegalTerms)
		b.Add(id, FieldText, Tokenise(texts[id]))
	}
	return b.Build()
}
