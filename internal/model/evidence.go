package model

// EvidenceRecord is one retrieved passage with full provenance: which
// query produced it and on which iteration of the loop. Records are
// created by the retrieval tool and never mutated afterwards.
type EvidenceRecord struct {
	PassageID      string  `json:"passage_id"`
	Text           string  `json:"text"`
	Similarity     float64 `json:"similarity"`
	SourceQuery    string  `json:"source_query"`
	RetrievalOrder int     `json:"retrieval_order"`
}

// ToolCall records one retrieval decision made by the agent.
type ToolCall struct {
	Query     string `json:"query"`
	Iteration int    `json:"iteration"`
}

// Source is the boundary shape for a single attribution, as surfaced to
// callers of Ask.
type Source struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// TokenUsage tallies model token consumption across one run.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AgentResult is the terminal output of one run: the composed answer and
// the ranked evidence that grounds it, plus the tool-call trace and token
// accounting for cost attribution.
type AgentResult struct {
	Answer    string           `json:"answer"`
	Sources   []EvidenceRecord `json:"sources"`
	ToolCalls []ToolCall       `json:"tool_calls,omitempty"`
	Usage     TokenUsage       `json:"usage"`
}

// SourceList maps the ranked evidence to the boundary output shape.
func (r *AgentResult) SourceList() []Source {
	out := make([]Source, len(r.Sources))
	for i, s := range r.Sources {
		out[i] = Source{Text: s.Text, Similarity: s.Similarity}
	}
	return out
}
