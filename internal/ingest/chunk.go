package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/courtside/rag-cli/internal/store"
)

// Chunk splits one document into passages. Text is NFC-normalized first
// so the same content always hashes to the same passage ID regardless of
// the source file's Unicode composition. Paragraphs are packed greedily
// up to maxRunes; a single paragraph longer than maxRunes is hard-split.
func Chunk(text, sourceDoc string, maxRunes int) []store.Passage {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)
		if len(runes) > maxRunes {
			flush()
			for len(runes) > maxRunes {
				chunks = append(chunks, strings.TrimSpace(string(runes[:maxRunes])))
				runes = runes[maxRunes:]
			}
			if len(runes) > 0 {
				chunks = append(chunks, strings.TrimSpace(string(runes)))
			}
			continue
		}
		if currentLen > 0 && currentLen+2+len(runes) > maxRunes {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += len(runes)
	}
	flush()

	passages := make([]store.Passage, 0, len(chunks))
	for _, c := range chunks {
		if c == "" {
			continue
		}
		passages = append(passages, store.Passage{
			ID:        PassageID(c),
			Text:      c,
			SourceDoc: sourceDoc,
		})
	}
	return passages
}

// PassageID derives a stable identifier from passage content. Identical
// passages collapse to one row at index time and to one evidence record
// at query time.
func PassageID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}
