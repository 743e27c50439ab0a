package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "corpus.db", cfg.Store.Path)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbedModel)
	assert.Equal(t, 5, cfg.Agent.TopK)
	assert.Equal(t, 3, cfg.Agent.MaxIter)
	assert.Equal(t, 1200, cfg.Ingest.ChunkSize)
	assert.Equal(t, 4, cfg.Ingest.Concurrency)
	assert.Equal(t, 32, cfg.Ingest.BatchSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: /data/nba.db
agent:
  top_k: 8
  max_iter: 5
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/nba.db", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Agent.TopK)
	assert.Equal(t, 5, cfg.Agent.MaxIter)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbedModel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: from-file.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RAG_STORE_PATH", "from-env.db")
	t.Setenv("RAG_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from-env.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("RAG_AGENT_MAX_ITER", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Agent.MaxIter)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("RAG_AGENT_TOP_K", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_k")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Store:     StoreConfig{Path: "corpus.db"},
		Anthropic: AnthropicConfig{MaxTokens: 1024},
		Agent:     AgentConfig{TopK: 5, MaxIter: 3},
		Ingest:    IngestConfig{ChunkSize: 1200, Concurrency: 4, BatchSize: 32},
	}
	assert.NoError(t, valid.Validate())

	broken := valid
	broken.Agent.MaxIter = 0
	assert.Error(t, broken.Validate())

	broken = valid
	broken.Store.Path = ""
	assert.Error(t, broken.Validate())

	broken = valid
	broken.Ingest.BatchSize = -1
	assert.Error(t, broken.Validate())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
