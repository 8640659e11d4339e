package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix      = "CASCADE_"
	envConfigPath  = "CASCADE_CONFIG"
	envFile        = ".env"
	defaultCfgFile = "config.json"
)

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env in the working directory, never overriding variables already set
//  3. the file named by CASCADE_CONFIG, else config.json when present (YAML or JSON)
//  4. env (prefix CASCADE_, "__" for nesting, comma-separated lists)
//
// The result is not validated; call Validate before a run.
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, envFile, err)
	}

	k := koanf.New(".")

	if path := configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CASCADE_LOADER_WORKERS -> loader_workers, CASCADE_COLUMNS__ID -> columns.id
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".")
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return &cfg, nil
}

// listKeys are the keys whose env values are comma-separated lists.
var listKeys = map[string]struct{}{
	"files":         {},
	"budget_places": {},
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func configPath() string {
	if path := os.Getenv(envConfigPath); path != "" {
		return path
	}
	if _, err := os.Stat(defaultCfgFile); err == nil {
		return defaultCfgFile
	}
	return ""
}
