// Package config loads CLI settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvFile         = "INTENT_ENV_FILE"
	EnvLogLevel     = "INTENT_LOG_LEVEL"
	EnvLogFormat    = "INTENT_LOG_FORMAT"
	EnvOutput       = "INTENT_OUTPUT"
	EnvResolveCache = "INTENT_RESOLVE_CACHE"
)

type Config struct {
	LogLevel         slog.Level
	LogFormat        string // text or json
	Output           string // uri, yaml, json or binary
	ResolveCacheSize int
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel:         slog.LevelWarn,
		LogFormat:        "text",
		Output:           "uri",
		ResolveCacheSize: 1024,
	}
}

// Load reads envFile (or $INTENT_ENV_FILE, or ".env") into the process
// environment without overriding variables that are already set, then builds
// a Config from it. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = os.Getenv(EnvFile)
		if envFile == "" {
			envFile = ".env"
		}
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, starting from Default.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return nil, fmt.Errorf("%s: unknown log format %q", EnvLogFormat, v)
		}
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		out, err := ParseOutput(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvOutput, err)
		}
		cfg.Output = out
	}
	if v, ok := lookup(EnvResolveCache); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s: want a positive integer, got %q", EnvResolveCache, v)
		}
		cfg.ResolveCacheSize = n
	}
	return cfg, nil
}

// ParseOutput normalizes an output format name.
func ParseOutput(s string) (string, error) {
	switch v := strings.ToLower(s); v {
	case "uri", "yaml", "json", "binary":
		return v, nil
	case "yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Logger builds the slog logger described by cfg, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
