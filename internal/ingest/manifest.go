// Package ingest builds the passage corpus: it reads a document manifest,
// splits each document into passages, and hands them to the embedding
// pipeline for indexing.
package ingest

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest lists the documents that make up one corpus.
type Manifest struct {
	Name      string     `yaml:"name"`
	Documents []Document `yaml:"documents"`
}

// Document is one manifest entry. Path is resolved relative to the
// manifest file.
type Document struct {
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
}

// LoadManifest reads a corpus manifest from a YAML file and resolves
// document paths against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read manifest %s", path)
	}

	// The YAML has a top-level "corpus" key
	var wrapper struct {
		Corpus Manifest `yaml:"corpus"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "ingest: parse manifest")
	}

	m := &wrapper.Corpus
	if len(m.Documents) == 0 {
		return nil, eris.Errorf("ingest: manifest %s lists no documents", path)
	}

	base := filepath.Dir(path)
	for i, doc := range m.Documents {
		if doc.Path == "" {
			return nil, eris.Errorf("ingest: manifest document %d has no path", i)
		}
		if !filepath.IsAbs(doc.Path) {
			m.Documents[i].Path = filepath.Join(base, doc.Path)
		}
		if doc.Title == "" {
			m.Documents[i].Title = filepath.Base(doc.Path)
		}
	}

	return m, nil
}
