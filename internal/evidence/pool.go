// Package evidence accumulates retrieved passages across the tool calls
// of a single run and exposes a ranked, deduplicated view for answer
// composition.
package evidence

import (
	"sort"

	"github.com/courtside/rag-cli/internal/model"
)

// Pool collects evidence records for one question. It is owned by a
// single orchestration run and is not safe for concurrent use; concurrent
// runs each build their own pool.
type Pool struct {
	records map[string]model.EvidenceRecord
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{records: make(map[string]model.EvidenceRecord)}
}

// Add merges records into the pool. Records sharing a passage ID collapse
// to one entry keeping the highest similarity and the earliest retrieval
// order seen.
func (p *Pool) Add(records []model.EvidenceRecord) {
	for _, r := range records {
		existing, ok := p.records[r.PassageID]
		if !ok {
			p.records[r.PassageID] = r
			continue
		}
		if r.Similarity > existing.Similarity {
			existing.Similarity = r.Similarity
		}
		if r.RetrievalOrder < existing.RetrievalOrder {
			existing.RetrievalOrder = r.RetrievalOrder
			existing.SourceQuery = r.SourceQuery
		}
		p.records[r.PassageID] = existing
	}
}

// Len returns the number of distinct passages in the pool.
func (p *Pool) Len() int {
	return len(p.records)
}

// RankedView returns the pool contents sorted by descending similarity,
// ties broken by ascending retrieval order (first-seen wins).
func (p *Pool) RankedView() []model.EvidenceRecord {
	out := make([]model.EvidenceRecord, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		if out[i].RetrievalOrder != out[j].RetrievalOrder {
			return out[i].RetrievalOrder < out[j].RetrievalOrder
		}
		return out[i].PassageID < out[j].PassageID
	})
	return out
}
