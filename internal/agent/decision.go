package agent

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/courtside/rag-cli/pkg/anthropic"
)

// DecisionKind discriminates the model's next action.
type DecisionKind int

const (
	// DecisionStop means the model is done retrieving and has composed
	// (or will be forced to compose) an answer.
	DecisionStop DecisionKind = iota
	// DecisionQuery means the model requested another retrieval.
	DecisionQuery
)

// Decision is the parsed outcome of one model turn.
type Decision struct {
	Kind   DecisionKind
	Query  string // set for DecisionQuery
	ToolID string // tool_use ID to answer on the next turn
	Answer string // accumulated text, meaningful for DecisionStop
}

type searchInput struct {
	Query string `json:"query"`
}

// parseDecision maps a model response onto the Decision variant. A
// tool_use block takes precedence over any accompanying text; a response
// with neither text nor tool_use is malformed.
func parseDecision(resp *anthropic.MessageResponse) (Decision, error) {
	if tu := resp.FirstToolUse(); tu != nil {
		if tu.ToolName != searchToolName {
			return Decision{}, eris.Errorf("unexpected tool %q in model response", tu.ToolName)
		}
		var input searchInput
		if err := json.Unmarshal(tu.ToolInput, &input); err != nil {
			return Decision{}, eris.Wrap(err, "malformed tool input")
		}
		if strings.TrimSpace(input.Query) == "" {
			return Decision{}, eris.New("tool call missing query")
		}
		return Decision{Kind: DecisionQuery, Query: input.Query, ToolID: tu.ToolID}, nil
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Decision{}, eris.New("model response contained no text and no tool call")
	}
	return Decision{Kind: DecisionStop, Answer: text}, nil
}
