package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenise(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain words", "Murder Appeal", []string{"murder", "appeal"}},
		{"citation survives", "ppc:302 bail", []string{"ppc:302", "bail"}},
		{"case number survives", "W.P. 123/2024", []string{"w", "p", "123/2024"}},
		{"punctuation split", "State vs. Ahmed-Khan", []string{"state", "vs", "ahmed", "khan"}},
		{"stray separators trimmed", "::302 /2024/", []string{"302", "2024"}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenise(tt.input))
		})
	}
}

func TestPostings(t *testing.T) {
	b := NewPostingsBuilder()
	b.Add(1, "title", Tokenise("State vs Ahmed murder appeal"))
	b.Add(2, "title", Tokenise("Bail application murder"))
	b.Add(2, "court", Tokenise("Lahore High Court"))
	b.Add(3, "title", Tokenise("Tax reference"))
	p := b.Build()

	assert.Equal(t, 3, p.DocCount())
	assert.Equal(t, 2, p.DocFreq("title", "murder"))
	assert.Equal(t, 0, p.DocFreq("court", "murder"))

	list := p.Lookup("title", "murder")
	require.Len(t, list, 2)
	// sorted by case ID
	assert.Equal(t, int64(1), list[0].CaseID)
	assert.Equal(t, int64(2), list[1].CaseID)
	assert.Equal(t, 1, list[0].Freq)

	assert.Equal(t, 5, p.FieldLength("title", 1))
	assert.Equal(t, 3, p.FieldLength("court", 2))
	assert.InDelta(t, (5.0+3.0+2.0)/3.0, p.AvgFieldLength("title"), 1e-9)

	assert.Equal(t, []string{"court", "title"}, p.Fields())
}

func TestPostingsRepeatedTerm(t *testing.T) {
	b := NewPostingsBuilder()
	b.Add(7, "parties", Tokenise("khan khan khan"))
	p := b.Build()

	list := p.Lookup("parties", "khan")
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Freq)
}
