// Package config loads process configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is used when ANAR_CONFIG is not set.
const DefaultPath = "./anar.yaml"

// Config is the root configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Rules     RulesConfig     `yaml:"rules"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Batch     BatchConfig     `yaml:"batch"`
	Store     StoreConfig     `yaml:"store"`
	Milvus    MilvusConfig    `yaml:"milvus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	GitHub    GitHubConfig    `yaml:"github"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"ANAR_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"ANAR_LOG_FORMAT" env-default:"console"`
}

// RulesConfig points at rule documents; empty paths use the built-in rules.
type RulesConfig struct {
	ContextPath    string `yaml:"context_path" env:"ANAR_CONTEXT_RULES"`
	ValidationPath string `yaml:"validation_path" env:"ANAR_VALIDATION_RULES"`
}

type AnalysisConfig struct {
	MaxDepth        int    `yaml:"max_depth" env:"ANAR_MAX_DEPTH" env-default:"6"`
	DefaultNarrator string `yaml:"default_narrator" env:"ANAR_DEFAULT_NARRATOR"`
}

type BatchConfig struct {
	Workers   int `yaml:"workers" env:"ANAR_WORKERS" env-default:"4"`
	BatchSize int `yaml:"batch_size" env:"ANAR_BATCH_SIZE" env-default:"16"`
}

type StoreConfig struct {
	Path string `yaml:"path" env:"ANAR_STORE_PATH" env-default:"anar.db"`
}

type MilvusConfig struct {
	Address    string `yaml:"address" env:"MILVUS_ADDRESS" env-default:"localhost:19530"`
	Collection string `yaml:"collection" env:"MILVUS_COLLECTION" env-default:"anar_cultural_elements"`
}

type EmbeddingConfig struct {
	Model     string `yaml:"model" env:"ANAR_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	Dimension int    `yaml:"dimension" env:"ANAR_EMBEDDING_DIMENSION" env-default:"1536"`
}

type GitHubConfig struct {
	Token string `yaml:"token" env:"GITHUB_TOKEN"`
}

// Load reads the file named by ANAR_CONFIG (or DefaultPath) when it exists,
// then applies environment overrides and validates the result.
func Load() (*Config, error) {
	path := os.Getenv("ANAR_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	} else {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Analysis.MaxDepth <= 0:
		return fmt.Errorf("config: analysis.max_depth must be positive, got %d", c.Analysis.MaxDepth)
	case c.Batch.Workers <= 0:
		return fmt.Errorf("config: batch.workers must be positive, got %d", c.Batch.Workers)
	case c.Batch.BatchSize <= 0:
		return fmt.Errorf("config: batch.batch_size must be positive, got %d", c.Batch.BatchSize)
	case c.Embedding.Dimension <= 0:
		return fmt.Errorf("config: embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
