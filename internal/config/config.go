// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDBFile           = "tasks_db.json"
	DefaultAIBaseURL        = "https://api.openai.com/v1/chat/completions"
	DefaultAIModel          = "gpt-4o-mini"
	DefaultAITimeoutSeconds = 30
	DefaultAPIKeyEnv        = "OPENAI_API_KEY"

	configFileName = "config.yaml"
)

// Config holds the full configuration for taskline. Root is the store
// directory; DBFile is the database document inside it unless absolute.
type Config struct {
	Root   string   `yaml:"-"`
	DBFile string   `yaml:"db_file"`
	AI     AIConfig `yaml:"ai"`
}

// AIConfig configures the generation provider. The credential itself stays
// out of the file; only the name of the environment variable holding it is
// configurable.
type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	APIKeyEnv      string `yaml:"api_key_env"`
}

// Load resolves configuration in priority order: defaults, then
// <root>/config.yaml if present, then environment overrides.
func Load(root string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	root = strings.TrimSpace(root)
	if root == "" {
		root = DefaultRoot()
	}
	cfg.Root = expandHome(root)

	path := filepath.Join(cfg.Root, configFileName)
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if strings.TrimSpace(cfg.DBFile) == "" {
		cfg.DBFile = DefaultDBFile
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = DefaultAITimeoutSeconds
	}
	return cfg, nil
}

// DefaultRoot returns the store root: TASKLINE_ROOT if set, else
// ~/.taskline.
func DefaultRoot() string {
	if env := os.Getenv("TASKLINE_ROOT"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		return filepath.Join(home, ".taskline")
	}
	return ".taskline"
}

// DBPath returns the absolute path of the database document.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.Root, c.DBFile)
}

// APIKey reads the provider credential from the configured environment
// variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.AI.APIKeyEnv)
}

// AITimeout bounds the provider call.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

func setDefaults(cfg *Config) {
	cfg.DBFile = DefaultDBFile
	cfg.AI.BaseURL = DefaultAIBaseURL
	cfg.AI.Model = DefaultAIModel
	cfg.AI.TimeoutSeconds = DefaultAITimeoutSeconds
	cfg.AI.APIKeyEnv = DefaultAPIKeyEnv
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKLINE_DB"); v != "" {
		cfg.DBFile = v
	}
	if v := os.Getenv("TASKLINE_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("TASKLINE_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("TASKLINE_AI_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AI.TimeoutSeconds = n
		}
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
