package agent

import (
	"fmt"
	"strings"

	"github.com/courtside/rag-cli/internal/model"
	"github.com/courtside/rag-cli/pkg/anthropic"
)

// searchToolName is the single tool offered to the model during the loop.
const searchToolName = "search_passages"

const systemPrompt = `You are a research assistant answering questions from a fixed reference corpus.

You have one tool, search_passages, which runs a similarity search over the corpus and returns the most relevant passages. Before answering, search for the evidence you need. You may search multiple times with different queries if the first results are incomplete, but each search costs money, so stop as soon as you have enough.

When you answer:
- Only state facts supported by the retrieved passages.
- If the retrieved passages do not contain the answer, say so plainly instead of guessing.
- Answer concisely and directly.`

func searchToolDef() anthropic.ToolDef {
	return anthropic.ToolDef{
		Name:        searchToolName,
		Description: "Search the reference corpus for passages relevant to a query. Returns up to top-k passages ordered by similarity.",
		Properties: map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query. Use specific keywords from the question.",
			},
		},
		Required: []string{"query"},
	}
}

// formatEvidence renders retrieved records as the tool_result content the
// model reads on its next turn.
func formatEvidence(records []model.EvidenceRecord) string {
	if len(records) == 0 {
		return "No passages matched this query."
	}
	var b strings.Builder
	for i, r := range records {
		fmt.Fprintf(&b, "Passage %d (similarity %.3f):\n%s\n\n", i+1, r.Similarity, r.Text)
	}
	return strings.TrimSpace(b.String())
}
