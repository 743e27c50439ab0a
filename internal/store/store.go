// Package store provides the passage store backing retrieval: a SQLite
// table of passages with precomputed embeddings, queried by brute-force
// cosine similarity over an embedded query vector.
package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrUnavailable indicates the vector store cannot be reached or opened.
// It is fatal for the run that observes it and is distinct from a search
// returning zero results.
var ErrUnavailable = eris.New("vector store unavailable")

// Hit is one similarity-search result.
type Hit struct {
	PassageID  string
	Text       string
	Similarity float64
}

// Passage is one corpus chunk with its embedding, as written at index time.
type Passage struct {
	ID        string
	Text      string
	SourceDoc string
	Embedding []float32
}

// Embedder converts text into a vector comparable with stored embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the persistence interface for the passage corpus.
type Store interface {
	// Search returns up to topK hits ordered by descending similarity.
	// An empty corpus yields an empty slice, not an error.
	Search(ctx context.Context, query string, topK int) ([]Hit, error)

	// AddPassages inserts or replaces passages. Used by the indexer only;
	// the agent never writes.
	AddPassages(ctx context.Context, passages []Passage) error

	// TestConnection is a cheap liveness probe for callers to run before
	// issuing questions.
	TestConnection(ctx context.Context) bool

	// CountPassages reports the corpus size.
	CountPassages(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
