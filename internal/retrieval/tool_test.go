package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/rag-cli/internal/store"
)

type stubSearcher struct {
	hits     []store.Hit
	err      error
	gotQuery string
	gotTopK  int
}

func (s *stubSearcher) Search(_ context.Context, query string, topK int) ([]store.Hit, error) {
	s.gotQuery = query
	s.gotTopK = topK
	return s.hits, s.err
}

func TestTool_Retrieve_StampsProvenance(t *testing.T) {
	s := &stubSearcher{hits: []store.Hit{
		{PassageID: "p1", Text: "first", Similarity: 0.9},
		{PassageID: "p2", Text: "second", Similarity: 0.7},
	}}
	tool := New(s, 5)

	records, err := tool.Retrieve(context.Background(), "foul limit", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "foul limit", s.gotQuery)
	assert.Equal(t, 5, s.gotTopK)
	for _, r := range records {
		assert.Equal(t, "foul limit", r.SourceQuery)
		assert.Equal(t, 2, r.RetrievalOrder)
	}
	assert.Equal(t, "p1", records[0].PassageID)
	assert.Equal(t, 0.9, records[0].Similarity)
}

func TestTool_Retrieve_PropagatesStoreUnavailable(t *testing.T) {
	s := &stubSearcher{err: store.ErrUnavailable}
	tool := New(s, 3)

	_, err := tool.Retrieve(context.Background(), "q", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}

func TestTool_Retrieve_EmptyResults(t *testing.T) {
	tool := New(&stubSearcher{}, 3)

	records, err := tool.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
