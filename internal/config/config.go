// Package config assembles runtime configuration from an optional TOML
// file layered under environment variables. Environment always wins, so
// deployments can override a checked-in config file without editing it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/docsage/docsage/internal/core/domain"
)

// Defaults applied when neither the config file nor the environment sets
// a value.
const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4o-mini"
	DefaultAddr           = ":8000"
)

// Config holds everything the application needs at startup.
type Config struct {
	APIKey         string `toml:"-"`
	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
	ChatModel      string `toml:"chat_model"`
	DBPath         string `toml:"db_path"`
	Addr           string `toml:"addr"`
	TopK           int    `toml:"top_k"`
}

// Load builds the configuration. A .env file in the working directory is
// read first, then the TOML file at configPath (or ~/.docsage/config.toml
// when empty), then environment variables on top. The API key is required
// and only ever comes from the environment.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:        DefaultBaseURL,
		EmbeddingModel: DefaultEmbeddingModel,
		ChatModel:      DefaultChatModel,
		Addr:           DefaultAddr,
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	cfg.loadEnv()

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY", domain.ErrMissingAPIKey)
	}
	return cfg, nil
}

// loadFile merges values from the TOML config file. A missing file is not
// an error; a malformed one is.
func (c *Config) loadFile(path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".docsage", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overrides config values from the environment.
func (c *Config) loadEnv() {
	c.APIKey = os.Getenv("OPENAI_API_KEY")
	setIfPresent(&c.BaseURL, "OPENAI_BASE")
	setIfPresent(&c.EmbeddingModel, "EMBEDDING_MODEL")
	setIfPresent(&c.ChatModel, "CHAT_MODEL")
	setIfPresent(&c.DBPath, "DOCSAGE_DB_PATH")
	setIfPresent(&c.Addr, "DOCSAGE_ADDR")

	if v := os.Getenv("DOCSAGE_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TopK = n
		}
	}
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
