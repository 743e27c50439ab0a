// Package retrieval adapts agent-issued query strings into vector store
// searches and normalizes hits into evidence records with provenance.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/courtside/rag-cli/internal/model"
	"github.com/courtside/rag-cli/internal/store"
)

// Searcher is the slice of the store interface the tool needs.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]store.Hit, error)
}

// Tool executes one retrieval per agent decision with a fixed top-k.
type Tool struct {
	searcher Searcher
	topK     int
}

// New returns a Tool searching via s with the given top-k per query.
func New(s Searcher, topK int) *Tool {
	return &Tool{searcher: s, topK: topK}
}

// Retrieve runs one search and stamps each hit with the query that
// produced it and the loop iteration it was retrieved on. Store failures
// propagate unchanged; the caller treats them as fatal for the run.
func (t *Tool) Retrieve(ctx context.Context, query string, iteration int) ([]model.EvidenceRecord, error) {
	hits, err := t.searcher.Search(ctx, query, t.topK)
	if err != nil {
		return nil, err
	}

	records := make([]model.EvidenceRecord, len(hits))
	for i, h := range hits {
		records[i] = model.EvidenceRecord{
			PassageID:      h.PassageID,
			Text:           h.Text,
			Similarity:     h.Similarity,
			SourceQuery:    query,
			RetrievalOrder: iteration,
		}
	}

	zap.L().Debug("retrieval complete",
		zap.String("query", query),
		zap.Int("iteration", iteration),
		zap.Int("hits", len(records)),
	)
	return records, nil
}
