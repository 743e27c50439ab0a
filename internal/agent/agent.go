// Package agent implements the retrieval–reasoning orchestration loop:
// given one question, it alternates between asking the model what to do
// next and executing the retrieval it requests, bounded by a hard ceiling
// on tool calls, then composes a grounded answer with ranked sources.
package agent

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courtside/rag-cli/internal/evidence"
	"github.com/courtside/rag-cli/internal/model"
	"github.com/courtside/rag-cli/pkg/anthropic"
)

// ModelError wraps an unrecoverable failure from the language-model
// provider (auth, rate limit after provider retries, malformed response).
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string { return "model provider: " + e.Err.Error() }
func (e *ModelError) Unwrap() error { return e.Err }

// Retriever executes one corpus search on behalf of the agent.
type Retriever interface {
	Retrieve(ctx context.Context, query string, iteration int) ([]model.EvidenceRecord, error)
}

// Config is the per-agent configuration, read once and never mutated
// during a run.
type Config struct {
	Model     string
	MaxTokens int64
	// MaxIter caps the number of retrieval tool calls per question. The
	// ceiling is authoritative: the model's own judgment is advisory.
	MaxIter int
}

// Agent runs the orchestration loop. One Agent may serve concurrent Ask
// calls; each call owns its own pool and iteration counter.
type Agent struct {
	llm       anthropic.Client
	retriever Retriever
	cfg       Config
}

// New constructs an Agent. MaxIter and MaxTokens are clamped to sane
// minimums so a zero Config cannot produce an unbounded or useless loop.
func New(llm anthropic.Client, retriever Retriever, cfg Config) *Agent {
	if cfg.MaxIter < 1 {
		cfg.MaxIter = 1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Agent{llm: llm, retriever: retriever, cfg: cfg}
}

// Ask answers one question. It returns the composed answer with its
// ranked sources, or an error if the store or the model provider failed;
// a failed run produces no partial result.
func (a *Agent) Ask(ctx context.Context, question string) (*model.AgentResult, error) {
	log := zap.L().With(
		zap.String("run_id", uuid.NewString()),
		zap.String("model", a.cfg.Model),
	)

	pool := evidence.NewPool()
	msgs := []anthropic.Message{anthropic.NewTextMessage("user", question)}
	system := anthropic.BuildCachedSystemBlocks(systemPrompt)

	var usage model.TokenUsage
	var toolCalls []model.ToolCall

	for iteration := 0; ; {
		// Cancellation is observed between iterations only, so an expiring
		// deadline never corrupts the pool mid-merge.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := anthropic.MessageRequest{
			Model:     a.cfg.Model,
			MaxTokens: a.cfg.MaxTokens,
			System:    system,
			Messages:  msgs,
		}
		if iteration < a.cfg.MaxIter {
			req.Tools = []anthropic.ToolDef{searchToolDef()}
			req.ToolChoice = "auto"
		}
		// Past the ceiling no tools are offered, which forces composition.

		resp, err := a.llm.CreateMessage(ctx, req)
		if err != nil {
			return nil, &ModelError{Err: err}
		}
		usage.InputTokens += int(resp.Usage.InputTokens)
		usage.OutputTokens += int(resp.Usage.OutputTokens)

		decision, err := parseDecision(resp)
		if err != nil {
			return nil, &ModelError{Err: err}
		}

		if decision.Kind == DecisionQuery && iteration < a.cfg.MaxIter {
			resp.Usage.LogCost(a.cfg.Model, "decide")
			records, err := a.retriever.Retrieve(ctx, decision.Query, iteration)
			if err != nil {
				return nil, err
			}
			pool.Add(records)
			toolCalls = append(toolCalls, model.ToolCall{Query: decision.Query, Iteration: iteration})
			msgs = append(msgs,
				resp.AsMessage(),
				anthropic.NewToolResultMessage(decision.ToolID, formatEvidence(records), false),
			)
			iteration++
			continue
		}

		resp.Usage.LogCost(a.cfg.Model, "compose")
		result := compose(decision.Answer, pool)
		result.ToolCalls = toolCalls
		result.Usage = usage

		log.Info("run complete",
			zap.Int("tool_calls", len(toolCalls)),
			zap.Int("sources", len(result.Sources)),
		)
		return result, nil
	}
}
