// Package config provides configuration loading for chat-memory.
//
// Precedence (highest to lowest): CHAT_MEMORY_* environment variables,
// YAML config file, hardcoded defaults. The default config path is
// ~/.chat-memory/config.yaml.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CHAT_MEMORY_"

// Config is the top-level configuration.
type Config struct {
	Store      StoreConfig      `koanf:"store"`
	Log        LogConfig        `koanf:"log"`
	Fetch      FetchConfig      `koanf:"fetch"`
	Extraction ExtractionConfig `koanf:"extraction"`
}

// StoreConfig controls the persistent backend.
type StoreConfig struct {
	DBPath string `koanf:"db_path"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// FetchConfig controls the conversation fetcher.
type FetchConfig struct {
	BaseURL        string  `koanf:"base_url"`
	OrgID          string  `koanf:"org_id"`
	SessionKey     string  `koanf:"session_key"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
	RatePerSecond  float64 `koanf:"rate_per_second"`
}

// ExtractionConfig holds the orchestrator tunables. The caps and the
// dedupe threshold carry no documented rationale; they are configurable
// rather than hard-coded for that reason.
type ExtractionConfig struct {
	MaxConversations int     `koanf:"max_conversations"`
	BatchSize        int     `koanf:"batch_size"`
	BatchPauseMS     int     `koanf:"batch_pause_ms"`
	MaxRetries       int     `koanf:"max_retries"`
	InitialBackoffMS int     `koanf:"initial_backoff_ms"`
	DedupeThreshold  float64 `koanf:"dedupe_threshold"`
}

// Default returns the hardcoded defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Store: StoreConfig{
			DBPath: filepath.Join(home, ".chat-memory", "memory.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Fetch: FetchConfig{
			BaseURL:        "https://claude.ai/api/organizations",
			TimeoutSeconds: 30,
			RatePerSecond:  2,
		},
		Extraction: ExtractionConfig{
			MaxConversations: 15,
			BatchSize:        3,
			BatchPauseMS:     2000,
			MaxRetries:       3,
			InitialBackoffMS: 1000,
			DedupeThreshold:  0.8,
		},
	}
}

// Load reads configuration from the YAML file at path (default path when
// empty, silently skipped when absent), then overrides with environment
// variables. CHAT_MEMORY_FETCH_SESSION_KEY maps to fetch.session_key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home directory: %w", err)
		}
		path = filepath.Join(home, ".chat-memory", "config.yaml")
	}

	if f, err := os.Open(path); err == nil {
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// CHAT_MEMORY_FETCH_SESSION_KEY -> fetch.session_key:
		// first segment is the section, the rest is the field name.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
