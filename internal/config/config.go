package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pydocmd/internal/render"
)

// DefaultPath is read when no config file is named explicitly. It is
// optional.
const DefaultPath = "pydocmd.yaml"

type Config struct {
	// Roots are the directories searched for Python modules.
	Roots []string `yaml:"roots"`
	// Index is an optional SQLite module index built by "pydocmd index".
	Index     string `yaml:"index"`
	CacheSize int    `yaml:"cache_size"`
	// CacheTTL expires parsed modules; zero keeps them until evicted.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Workers  int           `yaml:"workers"`
	LogLevel string        `yaml:"log_level"`

	// Render holds the defaults of every placeholder.
	Render render.Config `yaml:"render"`
	Folder struct {
		Pattern       string `yaml:"pattern"`
		CaseSensitive bool   `yaml:"case_sensitive"`
		Recursive     bool   `yaml:"recursive"`
	} `yaml:"folder"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Roots:     []string{"."},
		CacheSize: 256,
		Workers:   4,
		LogLevel:  "info",
		Render:    render.DefaultConfig(),
	}
	return cfg
}

// LoadConfig reads the YAML file at path on top of the defaults. An empty
// path reads DefaultPath if it exists.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if roots := os.Getenv("PYDOCMD_ROOTS"); roots != "" {
		cfg.Roots = filepath.SplitList(roots)
	}
	if index := os.Getenv("PYDOCMD_INDEX"); index != "" {
		cfg.Index = index
	}
	if level := os.Getenv("PYDOCMD_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Render.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
