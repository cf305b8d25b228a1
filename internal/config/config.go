package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project-local configuration file overlaid on the defaults.
const FileName = ".canopy.yaml"

// Environment variables that override the file.
const (
	EnvInstanceAddress = "CANOPY_INSTANCE_ADDRESS"
	EnvAccessToken     = "CANOPY_ACCESS_TOKEN"
	EnvMaxPerPage      = "CANOPY_MAX_PER_PAGE"
)

// SessionConfig holds the credentials used by commands that talk to an
// instance.
type SessionConfig struct {
	InstanceAddress string        `yaml:"instanceAddress"`
	AccessToken     string        `yaml:"accessToken"`
	MaxPerPage      int           `yaml:"maxPerPage"`
	Timeout         time.Duration `yaml:"timeout"`
}

// GeneratorConfig drives the code generator.
type GeneratorConfig struct {
	SpecDir   string `yaml:"specDir"`
	OutputDir string `yaml:"outputDir"`
	Package   string `yaml:"package"`
	// Blacklist names spec files skipped by batch builds.
	Blacklist []string `yaml:"blacklist"`
	// ExcludeFiles names generated files that never hold an API type.
	ExcludeFiles []string `yaml:"excludeFiles"`
	// TemplateDir overrides the embedded templates file by file.
	TemplateDir   string   `yaml:"templateDir"`
	ReservedWords []string `yaml:"reservedWords"`
	Models        bool     `yaml:"models"`
}

// RefreshConfig locates the upstream spec index and the optional converter.
type RefreshConfig struct {
	DocsBaseURL  string `yaml:"docsBaseURL"`
	DocsIndex    string `yaml:"docsIndex"`
	ConverterURL string `yaml:"converterURL"`
	ConvertedDir string `yaml:"convertedDir"`
	Concurrency  int    `yaml:"concurrency"`
}

type Config struct {
	Session   SessionConfig   `yaml:"session"`
	Generator GeneratorConfig `yaml:"generator"`
	Refresh   RefreshConfig   `yaml:"refresh"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			MaxPerPage: 100,
			Timeout:    30 * time.Second,
		},
		Generator: GeneratorConfig{
			SpecDir:      "specfiles",
			OutputDir:    "canvasapi",
			Package:      "canvasapi",
			Blacklist:    []string{},
			ExcludeFiles: []string{"client.go", "doc.go"},
		},
		Refresh: RefreshConfig{
			DocsBaseURL: "https://canvas.instructure.com/doc/api/",
			DocsIndex:   "api-docs.json",
			Concurrency: 1,
		},
	}
}

// Load builds the defaults, overlays <projectPath>/.canopy.yaml when it
// exists, then applies .env and environment overrides.
func Load(projectPath string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(projectPath, FileName)
	data, err := os.ReadFile(configPath)
	if err == nil {
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, unmarshalErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	envPath := filepath.Join(projectPath, ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvInstanceAddress); v != "" {
		c.Session.InstanceAddress = v
	}
	if v := os.Getenv(EnvAccessToken); v != "" {
		c.Session.AccessToken = v
	}
	if v := os.Getenv(EnvMaxPerPage); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPerPage, err)
		}
		c.Session.MaxPerPage = n
	}
	return nil
}
