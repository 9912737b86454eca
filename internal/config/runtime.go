// Package config holds keyline's runtime settings. Values start from
// defaults, are overridden by an optional YAML file and then by KEYLINE_*
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/keyline/internal/errors"
)

// Limits applied by Validate.
const (
	MaxHistoryLimit = 10000
	MaxDebounce     = 5 * time.Second
	MaxFrameRate    = 240
)

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	Editor  EditorConfig  `yaml:"editor" json:"editor"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// EditorConfig configures edit sessions.
type EditorConfig struct {
	// MaxHistory is the undo history capacity. Default: 100
	MaxHistory int `yaml:"max_history" json:"max_history"`

	// Debounce is the idle time after which a drag gesture is committed.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce" json:"debounce"`

	// FrameRate is used for new clips. Default: 30
	FrameRate float64 `yaml:"frame_rate" json:"frame_rate"`

	// DefaultLength is the last frame of new clips. Default: 120
	DefaultLength int `yaml:"default_length" json:"default_length"`
}

// StorageConfig configures the clip database.
type StorageConfig struct {
	// Path overrides the database directory. Empty uses the XDG data home.
	Path string `yaml:"path" json:"path"`

	// NoLock disables the single-process lock.
	NoLock bool `yaml:"no_lock" json:"no_lock"`
}

// LogConfig configures the session log.
type LogConfig struct {
	// File receives log records. Empty logs to stderr.
	File string `yaml:"file" json:"file"`

	// Level is one of debug, info, warn, error. Default: warn
	Level string `yaml:"level" json:"level"`

	// JSON writes records as JSON lines.
	JSON bool `yaml:"json" json:"json"`

	// MaxSize rotates File to File.old once it grows past this many bytes.
	// Default: 5 MiB
	MaxSize int64 `yaml:"max_size" json:"max_size"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Editor: EditorConfig{
			MaxHistory:    100,
			Debounce:      100 * time.Millisecond,
			FrameRate:     30,
			DefaultLength: 120,
		},
		Log: LogConfig{
			Level:   "warn",
			MaxSize: 5 << 20,
		},
	}
}

// DefaultConfigPath returns the config file location under the XDG config
// home.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "keyline", "config.yaml")
}

// Global holds the process-wide configuration. It starts from defaults and
// environment overrides until a command loads the config file.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	cfg.Validate()
	return cfg
}

// Load builds a config from defaults, the YAML file at path and the
// environment. A missing file is not an error; an empty path uses
// DefaultConfigPath.
func Load(path string) (*RuntimeConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg := DefaultRuntimeConfig()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	cfg.ReloadFromEnv()
	return cfg, nil
}

// Marshal renders c as YAML.
func (c *RuntimeConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// LoadFile merges the YAML file at path into c. Keys absent from the file
// keep their current value.
func (c *RuntimeConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithContext(err, "read config")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithContextf(err, "parse config %s", path)
	}
	return nil
}

func (c *RuntimeConfig) loadFromEnv() {
	if v := os.Getenv("KEYLINE_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Editor.MaxHistory = n
		}
	}
	if v := os.Getenv("KEYLINE_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Editor.Debounce = d
		}
	}
	if v := os.Getenv("KEYLINE_FRAME_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Editor.FrameRate = f
		}
	}
	if v := os.Getenv("KEYLINE_DEFAULT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Editor.DefaultLength = n
		}
	}
	if v := os.Getenv("KEYLINE_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("KEYLINE_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("KEYLINE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate clamps out-of-range values back into bounds. Non-positive values
// fall back to the defaults.
func (c *RuntimeConfig) Validate() {
	d := DefaultRuntimeConfig().Editor
	e := &c.Editor
	switch {
	case e.MaxHistory <= 0:
		e.MaxHistory = d.MaxHistory
	case e.MaxHistory > MaxHistoryLimit:
		e.MaxHistory = MaxHistoryLimit
	}
	switch {
	case e.Debounce <= 0:
		e.Debounce = d.Debounce
	case e.Debounce > MaxDebounce:
		e.Debounce = MaxDebounce
	}
	switch {
	case e.FrameRate <= 0:
		e.FrameRate = d.FrameRate
	case e.FrameRate > MaxFrameRate:
		e.FrameRate = MaxFrameRate
	}
	if e.DefaultLength <= 0 {
		e.DefaultLength = d.DefaultLength
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = DefaultRuntimeConfig().Log.MaxSize
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Log.Level = "warn"
	}
}

// ReloadFromEnv applies the KEYLINE_* environment overrides on top of c and
// clamps the result. Load calls it after reading the file.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
	c.Validate()
}

// Reset resets the configuration to defaults.
func (c *RuntimeConfig) Reset() {
	*c = *DefaultRuntimeConfig()
}
