// Package config loads nodeboard settings.
//
// Sources, from lowest to highest priority:
//  1. Default values (in code)
//  2. An optional YAML file
//  3. NODEBOARD_* environment variables
//
// The merged result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"nodeboard/storage"
)

// Storage backends.
const (
	BackendSQLite = storage.BackendSQLite
	BackendFile   = storage.BackendFile
	BackendMemory = storage.BackendMemory
)

// Environment variables read by Load.
const (
	EnvDB       = "NODEBOARD_DB"
	EnvStorage  = "NODEBOARD_STORAGE"
	EnvLogLevel = "NODEBOARD_LOG_LEVEL"
	EnvLogFile  = "NODEBOARD_LOG_FILE"
	EnvZoomStep = "NODEBOARD_ZOOM_STEP"
)

// Config is the complete application configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
	View    View    `yaml:"view"`
	Shell   Shell   `yaml:"shell"`
}

// Storage selects where diagrams are persisted.
type Storage struct {
	// Backend is one of sqlite, file or memory.
	Backend string `yaml:"backend" validate:"oneof=sqlite file memory"`
	// Path is the database file for sqlite and the directory for file.
	Path string `yaml:"path" validate:"required_unless=Backend memory"`
	// Key is the storage key the diagram collection lives under.
	Key string `yaml:"key" validate:"required"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// View holds interaction and rendering defaults.
type View struct {
	ZoomStep      float64       `yaml:"zoom_step" validate:"gt=0,lte=1"`
	PixelRatio    float64       `yaml:"pixel_ratio" validate:"gt=0"`
	FrameInterval time.Duration `yaml:"frame_interval" validate:"gt=0"`
}

// Shell configures the command shell.
type Shell struct {
	// HistoryFile keeps readline history between sessions when set.
	HistoryFile string `yaml:"history_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Backend: BackendSQLite,
			Path:    "nodeboard.db",
			Key:     "nodeboard:diagrams",
		},
		Log: Log{
			Level: "info",
		},
		View: View{
			ZoomStep:      0.2,
			PixelRatio:    1,
			FrameInterval: 16 * time.Millisecond,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// any) and the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

// loadEnvironmentVariables overlays NODEBOARD_* variables on cfg.
func loadEnvironmentVariables(cfg *Config) error {
	if val := os.Getenv(EnvStorage); val != "" {
		cfg.Storage.Backend = strings.ToLower(val)
	}
	if val := os.Getenv(EnvDB); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv(EnvLogFile); val != "" {
		cfg.Log.File = val
	}
	if val := os.Getenv(EnvZoomStep); val != "" {
		step, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvZoomStep, val, err)
		}
		cfg.View.ZoomStep = step
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its field rules.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
