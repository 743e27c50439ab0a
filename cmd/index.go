package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/courtside/rag-cli/internal/ingest"
	"github.com/courtside/rag-cli/internal/store"
	"github.com/courtside/rag-cli/pkg/openai"
)

var indexManifest string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector store from a corpus manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, err := ingest.LoadManifest(indexManifest)
		if err != nil {
			return err
		}

		embedder := openai.NewClient(cfg.OpenAI.Key,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.EmbedModel),
			openai.WithRateLimit(cfg.OpenAI.RequestsPerSec),
		)

		st, err := store.CreateSQLite(cfg.Store.Path, embedder)
		if err != nil {
			return err
		}
		defer st.Close()

		idx := ingest.NewIndexer(embedder, st,
			cfg.Ingest.ChunkSize,
			cfg.Ingest.BatchSize,
			cfg.Ingest.Concurrency,
		)

		stats, err := idx.Index(ctx, m)
		if err != nil {
			return eris.Wrap(err, "index corpus")
		}

		zap.L().Info("index complete",
			zap.String("corpus", m.Name),
			zap.String("store", cfg.Store.Path),
			zap.Int("documents", stats.Documents),
			zap.Int("passages", stats.Passages),
		)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexManifest, "manifest", "", "corpus manifest YAML (required)")
	_ = indexCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(indexCmd)
}
