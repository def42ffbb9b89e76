// Package config loads idekotlin settings from ~/.idekotlin/config.yaml and
// detects the project's pinned Kotlin version.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/releases"
)

// GitHub API backends.
const (
	BackendGH  = "gh"
	BackendAPI = "api"
)

// Tag listing sources.
const (
	TagSourceAPI = "api"
	TagSourceGit = "git"
)

// Config holds global settings.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Feeds  FeedsConfig  `yaml:"feeds"`
	Debug  DebugConfig  `yaml:"debug"`
}

// GitHubConfig selects the repository and how it is reached.
type GitHubConfig struct {
	Repo       string `yaml:"repo"`
	Backend    string `yaml:"backend"`
	TagSource  string `yaml:"tag_source"`
	RawBaseURL string `yaml:"raw_base_url"`
	APIBaseURL string `yaml:"api_base_url"`
}

// FeedsConfig overrides the release feed locations.
type FeedsConfig struct {
	IntelliJURL      string `yaml:"intellij_url"`
	AndroidStudioURL string `yaml:"android_studio_url"`
}

// DebugConfig controls debug log files.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Repo:       github.DefaultRepo,
			Backend:    BackendGH,
			TagSource:  TagSourceAPI,
			RawBaseURL: github.DefaultRawBaseURL,
			APIBaseURL: github.DefaultAPIBaseURL,
		},
		Feeds: FeedsConfig{
			IntelliJURL:      releases.DefaultIntelliJURL,
			AndroidStudioURL: releases.DefaultAndroidStudioURL,
		},
		Debug: DebugConfig{
			RetentionDays: 14,
		},
	}
}

// Dir returns ~/.idekotlin.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".idekotlin")
	}
	return filepath.Join(home, ".idekotlin")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DebugDir returns where debug logs are written.
func DebugDir() string {
	return filepath.Join(Dir(), "debug")
}

// Load reads the config file, if any, over the defaults and applies
// environment overrides. A missing file is not an error; a malformed one is.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if v := os.Getenv("IDEKOTLIN_GITHUB_BACKEND"); v != "" {
		cfg.GitHub.Backend = v
	}
	if v := os.Getenv("IDEKOTLIN_TAG_SOURCE"); v != "" {
		cfg.GitHub.TagSource = v
	}
	if v := os.Getenv("IDEKOTLIN_GITHUB_REPO"); v != "" {
		cfg.GitHub.Repo = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.GitHub.Backend {
	case BackendGH, BackendAPI:
	default:
		return fmt.Errorf("github.backend: unknown backend %q (want %s or %s)", c.GitHub.Backend, BackendGH, BackendAPI)
	}
	switch c.GitHub.TagSource {
	case TagSourceAPI, TagSourceGit:
	default:
		return fmt.Errorf("github.tag_source: unknown source %q (want %s or %s)", c.GitHub.TagSource, TagSourceAPI, TagSourceGit)
	}
	if c.Debug.RetentionDays < 0 {
		return fmt.Errorf("debug.retention_days must not be negative")
	}
	return nil
}
