package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "PETSHOP_CONFIG"

// defaultConfigPaths are searched in order; the first file found wins.
var defaultConfigPaths = []string{
	"pet-shop-client.yaml",
	"pet-shop-client.yml",
}

type Config struct {
	// BaseURL is the default backend address. A base URL saved in the durable
	// store overrides it at runtime, matching the old front-end behavior.
	BaseURL string `koanf:"base_url"`
	// StorePath is the directory for the durable client store.
	StorePath string `koanf:"store_path"`
	LogLevel  string `koanf:"log_level"`
}

func defaults() Config {
	storePath := ".pet-shop-client"
	if home, err := os.UserHomeDir(); err == nil {
		storePath = filepath.Join(home, ".pet-shop-client")
	}
	return Config{
		BaseURL:   "http://127.0.0.1:8000",
		StorePath: storePath,
		LogLevel:  "info",
	}
}

// Load layers defaults, an optional YAML config file, and PETSHOP_* env vars
// (highest priority). A .env file is honored the same way the backend does.
func Load() (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// PETSHOP_BASE_URL -> base_url
	envProvider := env.Provider("PETSHOP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PETSHOP_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
