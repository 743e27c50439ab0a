package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder produces deterministic 4-dim vectors keyed on which
// test keywords the text mentions.
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vec := []float32{0.05, 0.05, 0.05, 0.05}
	if strings.Contains(lower, "foul") {
		vec[0] = 1
	}
	if strings.Contains(lower, "salary") {
		vec[1] = 1
	}
	if strings.Contains(lower, "finals") {
		vec[2] = 1
	}
	return vec, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embedder down")
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	st, err := CreateSQLite(dbPath, keywordEmbedder{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestNewSQLite_MissingFile_Unavailable(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "nope.db"), keywordEmbedder{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestSQLite_Search_EmptyCorpus(t *testing.T) {
	st := newTestStore(t)

	hits, err := st.Search(context.Background(), "how many fouls", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSQLite_Search_OrdersByDescendingSimilarity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddPassages(ctx, []Passage{
		{ID: "p-fouls", Text: "A player fouls out after six personal fouls.", Embedding: []float32{1, 0.05, 0.05, 0.05}},
		{ID: "p-salary", Text: "The salary cap limits team payrolls.", Embedding: []float32{0.05, 1, 0.05, 0.05}},
		{ID: "p-finals", Text: "The finals decide the champion.", Embedding: []float32{0.05, 0.05, 1, 0.05}},
	}))

	hits, err := st.Search(ctx, "personal foul limit", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p-fouls", hits[0].PassageID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Similarity, 0.0)
		assert.LessOrEqual(t, h.Similarity, 1.0)
	}
}

func TestSQLite_Search_RespectsTopK(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	passages := make([]Passage, 10)
	for i := range passages {
		passages[i] = Passage{
			ID:        string(rune('a' + i)),
			Text:      "filler passage",
			Embedding: []float32{0.1, 0.2, 0.3, 0.4},
		}
	}
	require.NoError(t, st.AddPassages(ctx, passages))

	hits, err := st.Search(ctx, "anything", 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSQLite_Search_EmbedderFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	st, err := CreateSQLite(dbPath, failingEmbedder{})
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	_, err = st.Search(context.Background(), "query", 5)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestSQLite_AddPassages_ReplaceIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := Passage{ID: "p1", Text: "original", Embedding: []float32{1, 0, 0, 0}}
	require.NoError(t, st.AddPassages(ctx, []Passage{p}))
	p.Text = "updated"
	require.NoError(t, st.AddPassages(ctx, []Passage{p}))

	n, err := st.CountPassages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := st.Search(ctx, "anything", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "updated", hits[0].Text)
}

func TestSQLite_TestConnection(t *testing.T) {
	st := newTestStore(t)
	assert.True(t, st.TestConnection(context.Background()))

	// Without migration the passages table is absent.
	bare, err := CreateSQLite(filepath.Join(t.TempDir(), "bare.db"), keywordEmbedder{})
	require.NoError(t, err)
	defer bare.Close()
	assert.False(t, bare.TestConnection(context.Background()))
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75, 0}
	got, err := decodeVector(encodeVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestSimilarity_Clamped(t *testing.T) {
	assert.Equal(t, 1.0, similarity([]float32{1, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, similarity([]float32{1, 0}, []float32{-1, 0}))
	assert.Equal(t, 0.0, similarity([]float32{0, 0}, []float32{1, 0}))
}
