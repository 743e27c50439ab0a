package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
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

var servePort int

// asker answers one question. Satisfied by *agent.Agent.
type asker interface {
	Ask(ctx context.Context, question string) (*model.AgentResult, error)
}

// prober reports store liveness. Satisfied by *store.SQLiteStore.
type prober interface {
	TestConnection(ctx context.Context) bool
	CountPassages(ctx context.Context) (int, error)
}

func newRouter(a asker, p prober) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !p.TestConnection(req.Context()) {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "store unavailable"})
			return
		}
		passages, _ := p.CountPassages(req.Context())
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "passages": passages})
	})

	r.Post("/ask", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if body.Question == "" {
			http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
			return
		}

		result, err := a.Ask(req.Context(), body.Question)
		if err != nil {
			status := http.StatusInternalServerError
			var me *agent.ModelError
			switch {
			case errors.Is(err, store.ErrUnavailable):
				status = http.StatusServiceUnavailable
			case errors.As(err, &me):
				status = http.StatusBadGateway
			}
			zap.L().Error("ask failed", zap.String("question", body.Question), zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": "question could not be answered"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(askResult{
			Answer:    result.Answer,
			Sources:   result.SourceList(),
			ToolCalls: result.ToolCalls,
			Usage:     result.Usage,
		})
	})

	return r
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve question answering over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

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

		a := agent.New(
			anthropicpkg.NewClient(cfg.Anthropic.Key),
			retrieval.New(st, cfg.Agent.TopK),
			agent.Config{
				Model:     cfg.Anthropic.Model,
				MaxTokens: cfg.Anthropic.MaxTokens,
				MaxIter:   cfg.Agent.MaxIter,
			},
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(a, st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
