package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/rag-cli/internal/evidence"
	"github.com/courtside/rag-cli/internal/model"
)

func TestCompose_EmptyPool(t *testing.T) {
	result := compose("a confident but ungrounded claim", evidence.NewPool())

	assert.Equal(t, noEvidenceAnswer, result.Answer)
	require.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
}

func TestCompose_RankedSources(t *testing.T) {
	pool := evidence.NewPool()
	pool.Add([]model.EvidenceRecord{
		{PassageID: "a", Text: "alpha", Similarity: 0.4, RetrievalOrder: 0},
		{PassageID: "b", Text: "beta", Similarity: 0.9, RetrievalOrder: 0},
	})

	result := compose("grounded answer", pool)
	assert.Equal(t, "grounded answer", result.Answer)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "b", result.Sources[0].PassageID)
	assert.Equal(t, "a", result.Sources[1].PassageID)
}

func TestCompose_EmptyAnswerFallsBack(t *testing.T) {
	pool := evidence.NewPool()
	pool.Add([]model.EvidenceRecord{{PassageID: "a", Text: "alpha", Similarity: 0.5}})

	result := compose("", pool)
	assert.Equal(t, noEvidenceAnswer, result.Answer)
	assert.Len(t, result.Sources, 1)
}

func TestFormatEvidence(t *testing.T) {
	assert.Equal(t, "No passages matched this query.", formatEvidence(nil))

	out := formatEvidence([]model.EvidenceRecord{
		{Similarity: 0.812, Text: "first passage"},
		{Similarity: 0.455, Text: "second passage"},
	})
	assert.Contains(t, out, "Passage 1 (similarity 0.812):\nfirst passage")
	assert.Contains(t, out, "Passage 2 (similarity 0.455):\nsecond passage")
}
