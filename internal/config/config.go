package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ragdocs/internal/chunker"
	"ragdocs/internal/domain"
	embopenai "ragdocs/internal/embedding/openai"
	genopenai "ragdocs/internal/generation/openai"
	"ragdocs/internal/logger"
	"ragdocs/internal/openaicompat"
)

// DocsConfig locates the documents to ingest.
type DocsConfig struct {
	Dir        string   `yaml:"dir" toml:"dir"`
	Extensions []string `yaml:"extensions" toml:"extensions"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MinSize int `yaml:"min_size" toml:"min_size"`
	MaxSize int `yaml:"max_size" toml:"max_size"`
}

// StoreConfig locates the persisted collection.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string `yaml:"type" toml:"type"`
	Model       string `yaml:"model" toml:"model"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
}

// GeneratorConfig configures the chat model.
type GeneratorConfig struct {
	Model        string `yaml:"model" toml:"model"`
	SystemPrompt string `yaml:"system_prompt" toml:"system_prompt"`
}

// APIConfig holds the endpoint and credentials of the OpenAI-compatible API
// shared by the embedder and the generator.
type APIConfig struct {
	BaseURL           string  `yaml:"base_url" toml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env" toml:"api_key_env"`
	AllowAnonymous    bool    `yaml:"allow_anonymous" toml:"allow_anonymous"`
	TimeoutSecs       int     `yaml:"timeout_secs" toml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" toml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`

	// APIKey is resolved from the environment and never written to disk.
	APIKey string `yaml:"-" toml:"-"`
}

// RetrievalConfig configures query-time search.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" toml:"top_k"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr    string `yaml:"addr" toml:"addr"`
	GinMode string `yaml:"gin_mode" toml:"gin_mode"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Docs      DocsConfig      `yaml:"docs" toml:"docs"`
	Chunker   ChunkerConfig   `yaml:"chunker" toml:"chunker"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Embedder  EmbedderConfig  `yaml:"embedder" toml:"embedder"`
	Generator GeneratorConfig `yaml:"generator" toml:"generator"`
	API       APIConfig       `yaml:"api" toml:"api"`
	Retrieval RetrievalConfig `yaml:"retrieval" toml:"retrieval"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
}

// DefaultSystemPrompt frames the assistant as a documentation helper.
const DefaultSystemPrompt = "You are a RAG assistant. Answer the user's question using the documentation provided. If the documentation does not contain the answer, say so."

// Load reads a config from a specified path, applies environment overrides
// and validates the result. If the file does not exist, defaults are used.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	applyConfigDefaults(cfg)
	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml, ./config.toml, then
// ~/.config/ragdocs/config.yaml. If none exists, it writes defaults to the
// user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	for _, p := range []string{"config.yaml", "config.toml"} {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err != nil {
		if err := Save(userPath, defaultConfig()); err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
// The format follows the file extension.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	if c.Chunker.MinSize <= 0 || c.Chunker.MinSize >= c.Chunker.MaxSize {
		return fmt.Errorf("%w: chunker sizes must satisfy 0 < min_size (%d) < max_size (%d)", domain.ErrInvalidInput, c.Chunker.MinSize, c.Chunker.MaxSize)
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("%w: retrieval.top_k must not be negative", domain.ErrInvalidInput)
	}
	if c.Embedder.Concurrency < 1 {
		return fmt.Errorf("%w: embedder.concurrency must be at least 1", domain.ErrInvalidInput)
	}
	switch c.Embedder.Type {
	case "openai", "tfidf":
	default:
		return fmt.Errorf("%w: unknown embedder %q", domain.ErrInvalidInput, c.Embedder.Type)
	}
	return nil
}

// Transport returns the settings of the OpenAI-compatible transport.
func (c *AppConfig) Transport() openaicompat.Config {
	return openaicompat.Config{
		BaseURL:           c.API.BaseURL,
		APIKey:            c.API.APIKey,
		AllowAnonymous:    c.API.AllowAnonymous,
		Timeout:           time.Duration(c.API.TimeoutSecs) * time.Second,
		MaxRetries:        c.API.MaxRetries,
		RequestsPerSecond: c.API.RequestsPerSecond,
	}
}

func decode(path string, data []byte, cfg *AppConfig) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragdocs", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Docs:      DocsConfig{Dir: "./docs/", Extensions: []string{".txt", ".md", ".pdf"}},
		Chunker:   ChunkerConfig{MinSize: chunker.DefaultMinSize, MaxSize: chunker.DefaultMaxSize},
		Store:     StoreConfig{Path: "./vectorStore.json"},
		Embedder:  EmbedderConfig{Type: "openai", Model: embopenai.DefaultModel, Concurrency: 1},
		Generator: GeneratorConfig{Model: genopenai.DefaultModel, SystemPrompt: DefaultSystemPrompt},
		API:       APIConfig{APIKeyEnv: "OPENAI_API_KEY", TimeoutSecs: 60, MaxRetries: 2},
		Retrieval: RetrievalConfig{TopK: 3},
		Server:    ServerConfig{Addr: ":8080", GinMode: "release"},
	}
}

// applyConfigDefaults fills fields a partial config file left empty.
func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Docs.Dir == "" {
		cfg.Docs.Dir = def.Docs.Dir
	}
	if len(cfg.Docs.Extensions) == 0 {
		cfg.Docs.Extensions = def.Docs.Extensions
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.Concurrency == 0 {
		cfg.Embedder.Concurrency = def.Embedder.Concurrency
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.SystemPrompt == "" {
		cfg.Generator.SystemPrompt = def.Generator.SystemPrompt
	}
	if cfg.API.APIKeyEnv == "" {
		cfg.API.APIKeyEnv = def.API.APIKeyEnv
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.GinMode == "" {
		cfg.Server.GinMode = def.Server.GinMode
	}
}

func overrideByEnv(cfg *AppConfig) {
	cfg.API.APIKey = firstEnv(cfg.API.APIKey, cfg.API.APIKeyEnv, "VITE_OPENAI_API_KEY")
	cfg.API.BaseURL = firstEnv(cfg.API.BaseURL, "OPENAI_BASE_URL", "VITE_OPENAI_BASE_URL")
	cfg.Embedder.Model = firstEnv(cfg.Embedder.Model, "EMBEDDING_MODEL", "VITE_EMBEDDING_MODEL")
	cfg.Generator.Model = firstEnv(cfg.Generator.Model, "CHAT_MODEL")
	cfg.Docs.Dir = firstEnv(cfg.Docs.Dir, "RAG_DOCS_DIR")
	cfg.Store.Path = firstEnv(cfg.Store.Path, "RAG_STORE_PATH")
	cfg.Server.Addr = firstEnv(cfg.Server.Addr, "RAG_SERVER_ADDR")
	cfg.Chunker.MinSize = getEnvAsInt("RAG_CHUNK_MIN_SIZE", cfg.Chunker.MinSize)
	cfg.Chunker.MaxSize = getEnvAsInt("RAG_CHUNK_MAX_SIZE", cfg.Chunker.MaxSize)
	cfg.Retrieval.TopK = getEnvAsInt("RAG_TOP_K", cfg.Retrieval.TopK)
}

// firstEnv returns the first non-empty variable among keys, or fallback.
func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logger.Warn("ignoring %s=%q: not an integer, keeping %d", key, raw, fallback)
		return fallback
	}
	return parsed
}
