// Package config loads drafty settings from defaults, .drafty/config.yaml and
// DRAFTY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

const (
	// FileName is the config file inside the workspace directory.
	FileName = "config.yaml"
	// EnvPrefix marks environment overrides, e.g. DRAFTY_PARSE_URL.
	EnvPrefix = "DRAFTY_"

	maxConfigFileSize = 1024 * 1024
)

var defaults = []byte(`
parse:
  url: http://127.0.0.1:5000
  timeout: 5m
storage:
  backend: file
  sqlite_path: .drafty/drafty.db
log:
  level: info
  format: console
dashboard:
  addr: 127.0.0.1:8088
session:
  max_age: 168h
nudge:
  schedule: ""
export:
  dir: .
`)

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Parse     ParseConfig     `koanf:"parse"`
	Storage   StorageConfig   `koanf:"storage"`
	Log       LogConfig       `koanf:"log"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Session   SessionConfig   `koanf:"session"`
	Nudge     NudgeConfig     `koanf:"nudge"`
	Export    ExportConfig    `koanf:"export"`
}

// ParseConfig points at the drawing parse service.
type ParseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type StorageConfig struct {
	Backend    string `koanf:"backend"`
	SQLitePath string `koanf:"sqlite_path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type DashboardConfig struct {
	Addr string `koanf:"addr"`
}

// SessionConfig bounds how old a saved session may be and still restore.
type SessionConfig struct {
	MaxAge time.Duration `koanf:"max_age"`
}

// NudgeConfig holds the cron spec for review reminders. Empty disables them.
type NudgeConfig struct {
	Schedule string `koanf:"schedule"`
}

type ExportConfig struct {
	Dir string `koanf:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := load(nil, false)
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads the workspace config under root, then applies environment
// overrides. A missing config file is not an error.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(FileName)
	if err != nil {
		return nil, err
	}

	var content []byte
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrInvalidConfig, path, maxConfigFileSize)
		}
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	return load(content, true)
}

func load(file []byte, withEnv bool) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if len(file) > 0 {
		if err := k.Load(rawbytes.Provider(file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if withEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps DRAFTY_SECTION_FIELD_NAME to section.field_name.
func envKey(key string) string {
	lower := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// Validate checks enumerations and required values.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Parse.URL) == "" {
		problems = append(problems, "parse.url is required")
	}
	if c.Parse.Timeout <= 0 {
		problems = append(problems, "parse.timeout must be positive")
	}
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite:
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q must be %q or %q", c.Storage.Backend, storage.BackendFile, storage.BackendSQLite))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be console or json", c.Log.Format))
	}
	if c.Session.MaxAge <= 0 {
		problems = append(problems, "session.max_age must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
