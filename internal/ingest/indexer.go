package ingest

import (
	"context"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/courtside/rag-cli/internal/store"
)

// BatchEmbedder produces one vector per input text, in input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer reads manifest documents, chunks them, embeds the chunks in
// bounded-concurrency batches and writes them to the store.
type Indexer struct {
	embedder    BatchEmbedder
	store       store.Store
	chunkSize   int
	batchSize   int
	concurrency int
}

// Stats summarizes one indexing run.
type Stats struct {
	Documents int
	Passages  int
}

// NewIndexer constructs an Indexer. Zero or negative tuning values fall
// back to workable minimums.
func NewIndexer(embedder BatchEmbedder, st store.Store, chunkSize, batchSize, concurrency int) *Indexer {
	if chunkSize < 1 {
		chunkSize = 1200
	}
	if batchSize < 1 {
		batchSize = 32
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Indexer{
		embedder:    embedder,
		store:       st,
		chunkSize:   chunkSize,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// Index chunks every manifest document and writes embedded passages to
// the store. Duplicate passage content across documents collapses to a
// single row.
func (idx *Indexer) Index(ctx context.Context, m *Manifest) (*Stats, error) {
	log := zap.L().With(zap.String("corpus", m.Name))

	seen := make(map[string]bool)
	var passages []store.Passage
	for _, doc := range m.Documents {
		data, err := os.ReadFile(doc.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read document %s", doc.Path)
		}
		for _, p := range Chunk(string(data), doc.Title, idx.chunkSize) {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			passages = append(passages, p)
		}
	}
	log.Info("chunked corpus",
		zap.Int("documents", len(m.Documents)),
		zap.Int("passages", len(passages)))

	if err := idx.store.Migrate(ctx); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.concurrency)

	for start := 0; start < len(passages); start += idx.batchSize {
		end := start + idx.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, p := range batch {
				texts[i] = p.Text
			}
			vectors, err := idx.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return eris.Wrap(err, "ingest: embed batch")
			}
			if len(vectors) != len(batch) {
				return eris.Errorf("ingest: got %d vectors for %d passages", len(vectors), len(batch))
			}
			embedded := make([]store.Passage, len(batch))
			for i, p := range batch {
				p.Embedding = vectors[i]
				embedded[i] = p
			}
			mu.Lock()
			defer mu.Unlock()
			return idx.store.AddPassages(gctx, embedded)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Stats{Documents: len(m.Documents), Passages: len(passages)}, nil
}
