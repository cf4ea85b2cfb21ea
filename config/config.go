// Package config loads the research assistant's configuration from an
// optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/research"
)

// Config holds all configuration for the research assistant.
type Config struct {
	Research research.Settings `yaml:"research"`
	LLM      LLMConfig         `yaml:"llm"`
	Ingest   IngestConfig      `yaml:"ingest"`
	Store    StoreConfig       `yaml:"store"`
	Logging  LoggingConfig     `yaml:"logging"`
}

// LLMConfig selects the text generator and embedder.
type LLMConfig struct {
	Provider       string  `yaml:"provider"` // langchain, openai
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	Embedder       string  `yaml:"embedder"` // hash, openai
	EmbeddingModel string  `yaml:"embedding_model"`
	EmbeddingDim   int     `yaml:"embedding_dim"`
}

// IngestConfig configures document loading and chunking.
type IngestConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	ArxivBaseURL string `yaml:"arxiv_base_url"`
}

// StoreConfig selects the checkpoint backend.
type StoreConfig struct {
	Backend  string `yaml:"backend"` // memory, sqlite, redis, postgres
	Path     string `yaml:"path"`    // sqlite file
	Addr     string `yaml:"addr"`    // redis address
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	DSN      string `yaml:"dsn"` // postgres connection string
	Table    string `yaml:"table"`
	Prefix   string `yaml:"prefix"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error, none
}

var (
	// ValidProviders lists the supported text generator backends.
	ValidProviders = []string{"langchain", "openai"}
	// ValidEmbedders lists the supported embedders.
	ValidEmbedders = []string{"hash", "openai"}
	// ValidBackends lists the supported checkpoint backends.
	ValidBackends = []string{"memory", "sqlite", "redis", "postgres"}
)

// ErrNoAPIKey is returned by Validate when the generator has no credentials.
var ErrNoAPIKey = errors.New("LLM API key not configured (set OPENAI_API_KEY or llm.api_key)")

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Research: research.DefaultSettings(),
		LLM: LLMConfig{
			Provider:     "langchain",
			Model:        "gpt-4o-mini",
			Temperature:  0.2,
			Embedder:     "hash",
			EmbeddingDim: 256,
		},
		Ingest: IngestConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			ArxivBaseURL: "https://arxiv.org",
		},
		Store: StoreConfig{
			Backend: "memory",
			Path:    "research.db",
			Addr:    "localhost:6379",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}

	strs := map[string]*string{
		"RESEARCH_PROVIDER":   &c.LLM.Provider,
		"RESEARCH_EMBEDDER":   &c.LLM.Embedder,
		"RESEARCH_LOG_LEVEL":  &c.Logging.Level,
		"RESEARCH_STORE":      &c.Store.Backend,
		"RESEARCH_STORE_PATH": &c.Store.Path,
		"RESEARCH_STORE_ADDR": &c.Store.Addr,
		"RESEARCH_STORE_DSN":  &c.Store.DSN,
		"RESEARCH_ARXIV_URL":  &c.Ingest.ArxivBaseURL,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"RESEARCH_MAX_STEPS":    &c.Research.MaxSteps,
		"RESEARCH_MAX_MESSAGES": &c.Research.MaxMessages,
		"RESEARCH_RETRIEVAL_K":  &c.Research.RetrieveK,
		"CHUNK_SIZE":            &c.Ingest.ChunkSize,
		"CHUNK_OVERLAP":         &c.Ingest.ChunkOverlap,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidProviders, c.LLM.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if !slices.Contains(ValidEmbedders, c.LLM.Embedder) {
		return fmt.Errorf("invalid embedder: %s (valid: %v)", c.LLM.Embedder, ValidEmbedders)
	}
	if !slices.Contains(ValidBackends, c.Store.Backend) {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, ValidBackends)
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, %d), got %d", c.Ingest.ChunkSize, c.Ingest.ChunkOverlap)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Store.Backend {
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres backend")
		}
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite backend")
		}
	}
	return nil
}

// ValidateLLM checks that a generator can be built from the configuration.
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// LogLevel returns the configured log level, falling back to info.
func (c *Config) LogLevel() log.LogLevel {
	level, _ := log.ParseLevel(c.Logging.Level)
	return level
}
