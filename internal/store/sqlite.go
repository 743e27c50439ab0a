package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. The connection
// is safe to share across concurrent read-only searches; writes happen
// only during indexing.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	embedder Embedder
}

// NewSQLite opens the passage database at path. The file must already
// exist: a missing file is a configuration error, not an empty corpus,
// and is reported as ErrUnavailable.
func NewSQLite(path string, embedder Embedder) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "no database at %s", path)
	}
	return openSQLite(path, embedder)
}

// CreateSQLite opens (creating if needed) the passage database at path.
// Used by the indexer, which is allowed to start from nothing.
func CreateSQLite(path string, embedder Embedder) (*SQLiteStore, error) {
	return openSQLite(path, embedder)
}

func openSQLite(path string, embedder Embedder) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "open %s: %v", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(ErrUnavailable, "exec %s: %v", pragma, err)
		}
	}
	return &SQLiteStore{db: db, path: path, embedder: embedder}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS passages (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	source_doc TEXT NOT NULL DEFAULT '',
	embedding  BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_passages_source_doc ON passages(source_doc);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: embed query")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, text, embedding FROM passages`)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "query passages: %v", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var id, text string
		var blob []byte
		if err := rows.Scan(&id, &text, &blob); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan passage")
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: passage %s", id)
		}
		hits = append(hits, Hit{
			PassageID:  id,
			Text:       text,
			Similarity: similarity(queryVec, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate passages")
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].PassageID < hits[j].PassageID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *SQLiteStore) AddPassages(ctx context.Context, passages []Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO passages (id, text, source_doc, embedding) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, p := range passages {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Text, p.SourceDoc, encodeVector(p.Embedding)); err != nil {
			return eris.Wrapf(err, "sqlite: insert passage %s", p.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) CountPassages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count passages")
}

func (s *SQLiteStore) TestConnection(ctx context.Context) bool {
	if err := s.db.PingContext(ctx); err != nil {
		return false
	}
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'passages'`,
	).Scan(&name)
	return err == nil
}

// encodeVector packs a float32 vector as little-endian bytes for BLOB storage.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, eris.Errorf("malformed embedding blob: %d bytes", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}

// similarity computes cosine similarity clamped to [0,1]. Text embeddings
// rarely produce negative cosines; clamping keeps the contract range.
func similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}
