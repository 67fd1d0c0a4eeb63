package querynorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalise_Citations(t *testing.T) {
	n := New()

	tests := []struct {
		name      string
		query     string
		canonical string
	}{
		{"act first", "PPC 302 murder", "ppc:302"},
		{"section first with act", "section 302 ppc", "ppc:302"},
		{"under section", "bail under section 497 CrPC", "crpc:497"},
		{"u/s shorthand", "u/s 302 PPC", "ppc:302"},
		{"full act name", "section 302 of the Pakistan Penal Code", "ppc:302"},
		{"civil procedure", "order under CPC 151", "cpc:151"},
		{"subsection", "section 497(2) crpc", "crpc:497(2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := n.Normalise(tt.query)
			require.NotEmpty(t, q.Citations, "no citations in %q", tt.query)
			assert.Equal(t, tt.canonical, q.Citations[0].Canonical)
			assert.True(t, q.Citations[0].Confident())
			assert.Contains(t, q.Normalised, tt.canonical)
		})
	}
}

func TestNormalise_SectionWithoutAct(t *testing.T) {
	n := New()
	q := n.Normalise("section 302 bail")
	require.Len(t, q.Citations, 1)
	assert.Equal(t, "section:302", q.Citations[0].Canonical)
	assert.False(t, q.Citations[0].Confident())
	assert.Empty(t, q.ConfidentCitations())
}

func TestNormalise_ReportedCitation(t *testing.T) {
	n := New()
	q := n.Normalise("PLD 2020 SC 1")
	require.Len(t, q.Citations, 1)
	assert.Equal(t, "pld:2020:sc:1", q.Citations[0].Canonical)
	assert.True(t, q.Citations[0].Confident())
}

func TestNormalise_ExactIdentifiers(t *testing.T) {
	n := New()

	q := n.Normalise("Application 2/2025")
	require.Len(t, q.ExactIdentifiers, 1)
	assert.Equal(t, "2/2025", q.ExactIdentifiers[0].Value)

	q = n.Normalise("writ petition no. 123/2024 lahore")
	require.Len(t, q.ExactIdentifiers, 1)
	assert.Equal(t, "123/2024", q.ExactIdentifiers[0].Value)

	// bare number/year still recognised
	q = n.Normalise("123/2024")
	require.Len(t, q.ExactIdentifiers, 1)
	assert.Equal(t, "123/2024", q.ExactIdentifiers[0].Value)
}

func TestNormalise_TextCleaning(t *testing.T) {
	n := New()
	q := n.Normalise("  Murder   APPEAL of the State  ")
	assert.Equal(t, "murder appeal of the state", q.Normalised)
	// stopwords dropped from terms
	assert.Equal(t, []string{"murder", "appeal", "state"}, q.Terms)
}

func TestNormalise_Empty(t *testing.T) {
	n := New()
	assert.True(t, n.Normalise("").Empty())
	assert.True(t, n.Normalise("  the of  ").Empty())
	assert.False(t, n.Normalise("bail").Empty())
}

func TestNormalise_Memoised(t *testing.T) {
	n := New()
	a := n.Normalise("bail under section 497 crpc")
	b := n.Normalise("bail under section 497 CrPC")
	// same cleaned form hits the memo
	assert.Same(t, a, b)
}

func TestExtractCitations_JudgmentText(t *testing.T) {
	n := New()
	text := n.NormaliseText(`The accused was charged under section 302 PPC read with
		section 34 PPC. Bail was sought u/s 497 CrPC.`)
	cits := n.ExtractCitations(text)

	canon := make([]string, 0, len(cits))
	for _, c := range cits {
		canon = append(canon, c.Canonical)
	}
	assert.Contains(t, canon, "ppc:302")
	assert.Contains(t, canon, "ppc:34")
	assert.Contains(t, canon, "crpc:497")
}

func TestExtractCitations_Deduplicated(t *testing.T) {
	n := New()
	cits := n.ExtractCitations("ppc 302 and section 302 ppc and 302 ppc")
	assert.Len(t, cits, 1)
}
