package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/courtside/rag-cli/internal/agent"
	"github.com/courtside/rag-cli/internal/model"
	"github.com/courtside/rag-cli/internal/retrieval"
	"github.com/courtside/rag-cli/internal/store"
	anthropicpkg "github.com/courtside/rag-cli/pkg/anthropic"
	"github.com/courtside/rag-cli/pkg/openai"
)

var (
	askTopK    int
	askMaxIter int
)

// askResult is the boundary shape printed to stdout.
type askResult struct {
	Answer    string           `json:"answer"`
	Sources   []model.Source   `json:"sources"`
	ToolCalls []model.ToolCall `json:"tool_calls,omitempty"`
	Usage     model.TokenUsage `json:"usage"`
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := args[0]

		embedder := openai.NewClient(cfg.OpenAI.Key,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.EmbedModel),
			openai.WithRateLimit(cfg.OpenAI.RequestsPerSec),
		)

		st, err := store.NewSQLite(cfg.Store.Path, embedder)
		if err != nil {
			return err
		}
		defer st.Close()

		topK := askTopK
		if topK == 0 {
			topK = cfg.Agent.TopK
		}
		maxIter := askMaxIter
		if maxIter == 0 {
			maxIter = cfg.Agent.MaxIter
		}

		a := agent.New(
			anthropicpkg.NewClient(cfg.Anthropic.Key),
			retrieval.New(st, topK),
			agent.Config{
				Model:     cfg.Anthropic.Model,
				MaxTokens: cfg.Anthropic.MaxTokens,
				MaxIter:   maxIter,
			},
		)

		result, err := a.Ask(ctx, question)
		if err != nil {
			return eris.Wrap(err, "ask")
		}

		zap.L().Info("question answered",
			zap.Int("tool_calls", len(result.ToolCalls)),
			zap.Int("sources", len(result.Sources)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(askResult{
			Answer:    result.Answer,
			Sources:   result.SourceList(),
			ToolCalls: result.ToolCalls,
			Usage:     result.Usage,
		})
	},
}

func init() {
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "passages per retrieval (default from config)")
	askCmd.Flags().IntVar(&askMaxIter, "max-iter", 0, "retrieval ceiling per question (default from config)")
	rootCmd.AddCommand(askCmd)
}
