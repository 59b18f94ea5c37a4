package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"chefbook/internal/llm"
	"chefbook/internal/recipe"
)

// PlaceholderAPIKey is the build-time default key shipped in the app. A default key equal to it
// counts as "not configured".
const PlaceholderAPIKey = "YOUR_GEMINI_API_KEY_HERE"

// EnvPrefix is the prefix for environment overrides, e.g. CHEFBOOK_GEMINI_MODEL -> gemini.model.
const EnvPrefix = "CHEFBOOK_"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// DefaultRequestsPerMinute matches the Gemini free tier.
const DefaultRequestsPerMinute = 15

const maxConfigFileSize = 1024 * 1024

// Config holds the configuration for the application.
type Config struct {
	Gemini   GeminiConfig   `koanf:"gemini"`
	Storage  StorageConfig  `koanf:"storage"`
	Recipes  RecipesConfig  `koanf:"recipes"`
	Telegram TelegramConfig `koanf:"telegram"`
	Log      LogConfig      `koanf:"log"`
}

// GeminiConfig configures the generative model. RequestsPerMinute paces model
// calls; 0 means unlimited.
type GeminiConfig struct {
	DefaultAPIKey     string `koanf:"default_api_key"`
	Model             string `koanf:"model"`
	RequestsPerMinute int    `koanf:"requests_per_minute"`
}

// StorageConfig selects and configures the document store backend.
type StorageConfig struct {
	Backend      string `koanf:"backend"`
	DatabasePath string `koanf:"database_path"`
	DocumentsDir string `koanf:"documents_dir"`
}

// RecipesConfig configures the recipe lookup API.
type RecipesConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// TelegramConfig is only needed by the telegram shell.
type TelegramConfig struct {
	BotToken      string `koanf:"bot_token"`
	AllowedUserID int64  `koanf:"allowed_user_id"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// Load reads the YAML file at path (skipped when empty or missing), then applies
// CHEFBOOK_* environment overrides and defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Keys absent from file and env keep these values.
	cfg := Config{Gemini: GeminiConfig{RequestsPerMinute: DefaultRequestsPerMinute}}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps CHEFBOOK_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gemini.DefaultAPIKey == "" {
		cfg.Gemini.DefaultAPIKey = PlaceholderAPIKey
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = llm.DefaultModel
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendSQLite
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "data/chefbook.db"
	}
	if cfg.Storage.DocumentsDir == "" {
		cfg.Storage.DocumentsDir = "data/documents"
	}
	if cfg.Recipes.BaseURL == "" {
		cfg.Recipes.BaseURL = recipe.DefaultBaseURL
	}
	if cfg.Recipes.Timeout == 0 {
		cfg.Recipes.Timeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Gemini.RequestsPerMinute < 0 {
		return fmt.Errorf("gemini.requests_per_minute must not be negative")
	}
	if !strings.HasPrefix(c.Recipes.BaseURL, "http://") && !strings.HasPrefix(c.Recipes.BaseURL, "https://") {
		return fmt.Errorf("recipes.base_url must be an http(s) URL, got %q", c.Recipes.BaseURL)
	}
	return nil
}

// HasDefaultKey reports whether a real default key was configured.
func (c *Config) HasDefaultKey() bool {
	return c.Gemini.DefaultAPIKey != "" && c.Gemini.DefaultAPIKey != PlaceholderAPIKey
}
