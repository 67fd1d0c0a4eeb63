package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testCase(id int64, number string) *domain.CaseRecord {
	return &domain.CaseRecord{
		ID:           id,
		CaseNumber:   number,
		Title:        "State vs Ahmed Khan",
		Parties:      []string{"State", "Ahmed Khan"},
		Court:        "Lahore High Court",
		Status:       "Decided",
		Judge:        "Justice Malik",
		CaseType:     "Writ Petition",
		DecisionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Text:         "The appellant was convicted under section 302 PPC.",
		PageBreaks:   []int{40},
	}
}

func TestCaseStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	cases := store.CaseStore()
	ctx := context.Background()

	rec := testCase(1, "W.P. 123/2024")
	require.NoError(t, cases.SaveCase(ctx, rec))

	got, err := cases.GetCase(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "W.P. 123/2024", got.CaseNumber)
	assert.Equal(t, []string{"State", "Ahmed Khan"}, got.Parties)
	assert.Equal(t, []int{40}, got.PageBreaks)
	assert.Equal(t, 2024, got.DecisionDate.Year())
	assert.True(t, got.InstitutionDate.IsZero())

	// Upsert replaces the existing row.
	rec.Status = "Pending"
	require.NoError(t, cases.SaveCase(ctx, rec))

	got, err = cases.GetCase(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pending", got.Status)

	n, err := cases.CountCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCaseStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CaseStore().GetCase(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCaseStore_ListUpdatedSince(t *testing.T) {
	store := newTestStore(t)
	cases := store.CaseStore()
	ctx := context.Background()

	old := testCase(1, "W.P. 1/2020")
	old.UpdatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, cases.SaveCase(ctx, old))

	fresh := testCase(2, "W.P. 2/2024")
	fresh.UpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, cases.SaveCase(ctx, fresh))

	got, err := cases.ListCasesUpdatedSince(ctx, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	all, err := cases.ListCases(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIndexStore_Metadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CaseStore().SaveCase(ctx, testCase(1, "W.P. 123/2024")))

	idx := store.IndexStore()
	meta := &domain.SearchMetadata{
		CaseID:      1,
		CaseNumber:  "w.p. 123/2024",
		Title:       "state vs ahmed khan",
		Court:       "lahore high court",
		LegalTerms:  []string{"ppc:302"},
		ContentHash: "abc",
		TextHash:    "def",
		IsIndexed:   true,
	}
	require.NoError(t, idx.SaveMetadata(ctx, meta))

	got, err := idx.ListMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"ppc:302"}, got[0].LegalTerms)
	assert.True(t, got[0].IsIndexed)
	assert.Equal(t, "abc", got[0].ContentHash)
}

func TestIndexStore_ChunksRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CaseStore().SaveCase(ctx, testCase(1, "W.P. 123/2024")))

	idx := store.IndexStore()
	chunks := []domain.DocumentChunk{
		{ID: "c1", CaseID: 1, Index: 0, Text: "first", TokenCount: 1,
			ContentHash: "h1", PageNumber: 1, Embedding: []float32{0.25, -1, 3.5}},
		{ID: "c2", CaseID: 1, Index: 1, Text: "second", TokenCount: 1,
			ContentHash: "h2", PageNumber: 2},
	}
	require.NoError(t, idx.SaveChunks(ctx, 1, chunks))

	got, err := idx.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.25, -1, 3.5}, got[0].Embedding)
	assert.Nil(t, got[1].Embedding)

	// Saving again replaces the previous set.
	require.NoError(t, idx.SaveChunks(ctx, 1, chunks[:1]))
	got, err = idx.ListChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIndexStore_DeleteCase(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CaseStore().SaveCase(ctx, testCase(1, "W.P. 123/2024")))

	idx := store.IndexStore()
	require.NoError(t, idx.SaveMetadata(ctx, &domain.SearchMetadata{
		CaseID: 1, CaseNumber: "w.p. 123/2024", ContentHash: "a", TextHash: "b",
	}))
	require.NoError(t, idx.SaveChunks(ctx, 1, []domain.DocumentChunk{
		{ID: "c1", CaseID: 1, Text: "text", ContentHash: "h"},
	}))
	require.NoError(t, idx.SaveFacetTerms(ctx, 1, []domain.FacetTerm{
		{CaseID: 1, Dimension: domain.FacetSection, Value: "302"},
	}))

	require.NoError(t, idx.DeleteCase(ctx, 1))

	meta, err := idx.ListMetadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, meta)
	chunks, err := idx.ListChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestIndexStore_IndexingLogs(t *testing.T) {
	store := newTestStore(t)
	idx := store.IndexStore()
	ctx := context.Background()

	_, err := idx.LastIndexingLog(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	started := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, idx.SaveIndexingLog(ctx, &domain.IndexingLog{
		BuildID: "b1", Operation: domain.BuildFull, CasesProcessed: 3,
		StartedAt: started, FinishedAt: started.Add(time.Minute), Success: true,
	}))
	require.NoError(t, idx.SaveIndexingLog(ctx, &domain.IndexingLog{
		BuildID: "b2", Operation: domain.BuildIncremental,
		StartedAt: started.Add(time.Hour), FinishedAt: started.Add(time.Hour), Success: false,
		Message: "embedding service unreachable",
	}))

	last, err := idx.LastIndexingLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b1", last.BuildID)
	assert.Equal(t, 3, last.CasesProcessed)
}

func TestEmbeddingCodec(t *testing.T) {
	vec := []float32{0, 1.5, -2.25}
	assert.Equal(t, vec, decodeEmbedding(encodeEmbedding(vec)))
	assert.Nil(t, encodeEmbedding(nil))
	assert.Nil(t, decodeEmbedding(nil))
	assert.Nil(t, decodeEmbedding([]byte{1, 2, 3}))
}
