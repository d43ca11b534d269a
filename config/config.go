// Package config loads, normalizes, and validates epgmerge settings.
//
// Settings come from repository defaults, an optional YAML or TOML file,
// EPGMERGE_* environment overrides, and finally command-line overrides, in
// that order. The timezone policy used for programme timestamps is an
// explicit option here rather than a process-wide TZ setting.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.yaml
var sampleConfig string

const (
	TimezonePolicyUTC      = "utc"
	TimezonePolicyRegional = "regional"
)

// Paths contains the input list, output guide, log and scratch locations.
type Paths struct {
	Input   string `yaml:"input" toml:"input" validate:"required"`
	Output  string `yaml:"output" toml:"output" validate:"required"`
	Log     string `yaml:"log" toml:"log" validate:"required"`
	WorkDir string `yaml:"work_dir" toml:"work_dir"`
	Lock    string `yaml:"lock" toml:"lock"`
}

// HTTP contains transport settings for source downloads.
type HTTP struct {
	// TimeoutSeconds of 0 disables the client timeout.
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds" validate:"gte=0"`
	UserAgent      string `yaml:"user_agent" toml:"user_agent" validate:"required"`
}

// Timezone selects the offset programme timestamps are rewritten to.
type Timezone struct {
	Policy string `yaml:"policy" toml:"policy" validate:"oneof=utc regional"`
	Region string `yaml:"region" toml:"region" validate:"required_if=Policy regional"`
}

// Output contains settings for the merged document header.
type Output struct {
	GeneratorName       string `yaml:"generator_name" toml:"generator_name" validate:"required"`
	GeneratorTimeFormat string `yaml:"generator_time_format" toml:"generator_time_format" validate:"required"`
}

// Logging contains configuration for console output.
type Logging struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=console json"`
}

// Config encapsulates all configuration values for a merge run.
type Config struct {
	Paths    Paths    `yaml:"paths" toml:"paths"`
	HTTP     HTTP     `yaml:"http" toml:"http"`
	Timezone Timezone `yaml:"timezone" toml:"timezone"`
	Output   Output   `yaml:"output" toml:"output"`
	Logging  Logging  `yaml:"logging" toml:"logging"`
}

// Override mutates a loaded config before normalization, typically from CLI flags.
type Override func(*Config)

var candidateNames = []string{"epgmerge.yaml", "epgmerge.yml", "epgmerge.toml"}

// Load locates, parses, and validates a configuration file. An empty path
// searches the working directory; when nothing is found the defaults are used.
func Load(path string, overrides ...Override) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	cfg.applyEnv()
	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return "", false, fmt.Errorf("config %s: %w", expanded, err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	for _, name := range candidateNames {
		candidate, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}

	fallback, err := filepath.Abs(candidateNames[0])
	if err != nil {
		return "", false, err
	}
	return fallback, false, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("EPGMERGE_TZ_POLICY"); ok && strings.TrimSpace(v) != "" {
		c.Timezone.Policy = v
	}
	if v, ok := os.LookupEnv("EPGMERGE_TZ_REGION"); ok && strings.TrimSpace(v) != "" {
		c.Timezone.Region = v
	}
}

// HTTPTimeout returns the download timeout; zero means no timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Regional reports whether timestamps are rewritten to a fixed regional offset.
func (c *Config) Regional() bool {
	return c.Timezone.Policy == TimezonePolicyRegional
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
