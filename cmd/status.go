package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/courtside/rag-cli/internal/store"
	"github.com/courtside/rag-cli/pkg/openai"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the vector store and report corpus size",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		out := struct {
			Store     string `json:"store"`
			Reachable bool   `json:"reachable"`
			Passages  int    `json:"passages"`
		}{Store: cfg.Store.Path}

		embedder := openai.NewClient(cfg.OpenAI.Key,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.EmbedModel),
		)

		st, err := store.NewSQLite(cfg.Store.Path, embedder)
		if err == nil {
			defer st.Close()
			out.Reachable = st.TestConnection(ctx)
			if out.Reachable {
				if n, cErr := st.CountPassages(ctx); cErr == nil {
					out.Passages = n
				}
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
