package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Agent     AgentConfig     `yaml:"agent" mapstructure:"agent"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the vector store backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OpenAIConfig holds settings for the OpenAI-compatible embeddings API.
type OpenAIConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	EmbedModel     string  `yaml:"embed_model" mapstructure:"embed_model"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// AgentConfig configures the retrieval loop.
type AgentConfig struct {
	TopK    int `yaml:"top_k" mapstructure:"top_k"`
	MaxIter int `yaml:"max_iter" mapstructure:"max_iter"`
}

// IngestConfig configures corpus indexing.
type IngestConfig struct {
	ChunkSize   int `yaml:"chunk_size" mapstructure:"chunk_size"`
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	BatchSize   int `yaml:"batch_size" mapstructure:"batch_size"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "corpus.db")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.embed_model", "text-embedding-3-small")
	v.SetDefault("openai.requests_per_sec", 10)
	v.SetDefault("agent.top_k", 5)
	v.SetDefault("agent.max_iter", 3)
	v.SetDefault("ingest.chunk_size", 1200)
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.batch_size", 32)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that would make a run meaningless.
func (c *Config) Validate() error {
	if c.Agent.TopK < 1 {
		return eris.Errorf("config: agent.top_k must be >= 1, got %d", c.Agent.TopK)
	}
	if c.Agent.MaxIter < 1 {
		return eris.Errorf("config: agent.max_iter must be >= 1, got %d", c.Agent.MaxIter)
	}
	if c.Anthropic.MaxTokens < 1 {
		return eris.Errorf("config: anthropic.max_tokens must be >= 1, got %d", c.Anthropic.MaxTokens)
	}
	if c.Ingest.ChunkSize < 1 {
		return eris.Errorf("config: ingest.chunk_size must be >= 1, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.Concurrency < 1 {
		return eris.Errorf("config: ingest.concurrency must be >= 1, got %d", c.Ingest.Concurrency)
	}
	if c.Ingest.BatchSize < 1 {
		return eris.Errorf("config: ingest.batch_size must be >= 1, got %d", c.Ingest.BatchSize)
	}
	if c.Store.Path == "" {
		return eris.New("config: store.path must not be empty")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
