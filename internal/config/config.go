// Package config holds the nvimlink configuration: how the engine process
// is launched, how the UI attaches, and how logging behaves. Configuration
// loads from TOML or YAML files with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvDebugListen overrides Engine.DebugListen when set in the environment.
const EnvDebugListen = "NVIMLINK_DEBUG_LISTEN"

// Engine configures how the Neovim engine process is launched.
type Engine struct {
	// Path is the engine executable.
	Path string `toml:"path" yaml:"path"`

	// PreScript is a Vim script sourced before the user configuration
	// (--cmd "source <path>").
	PreScript string `toml:"pre_script" yaml:"pre_script"`

	// PostScript is a script loaded after startup (-S <path>).
	PostScript string `toml:"post_script" yaml:"post_script"`

	// WorkDir changes the engine's working directory after startup.
	WorkDir string `toml:"work_dir" yaml:"work_dir"`

	// DebugListen, when set, makes the engine listen on host:port for an
	// attached debugger or a second client.
	DebugListen string `toml:"debug_listen" yaml:"debug_listen"`

	// Clean starts the engine without user configuration (--clean).
	Clean bool `toml:"clean" yaml:"clean"`

	// ConfigPath is an alternate user configuration file (-u <path>).
	ConfigPath string `toml:"config_path" yaml:"config_path"`

	// Profile, when set, is exported to the engine as NVIM_APPNAME so an
	// alternate configuration profile applies to the child only.
	Profile string `toml:"profile" yaml:"profile"`
}

// UI configures the UI attachment.
type UI struct {
	// Width is the attach width in cells. Zero means the bridge default.
	Width int `toml:"width" yaml:"width"`
}

// Log configures logging.
type Log struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// Config is the root configuration.
type Config struct {
	Engine Engine `toml:"engine" yaml:"engine"`
	UI     UI     `toml:"ui" yaml:"ui"`
	Log    Log    `toml:"log" yaml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Engine: Engine{Path: "nvim"},
		Log:    Log{Level: "info"},
	}
}

// Load reads configuration from the given path, layered over Default.
// The format is chosen by file extension: .toml, .yaml, or .yml.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return cfg, nil
}

// ApplyEnv applies environment variable overrides.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvDebugListen); addr != "" {
		c.Engine.DebugListen = addr
	}
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if c.Engine.Path == "" {
		return ErrNoEnginePath
	}
	if c.UI.Width < 0 {
		return fmt.Errorf("%w: ui width %d", ErrInvalidValue, c.UI.Width)
	}
	return nil
}

// Sentinel errors for the config package.
var (
	// ErrUnsupportedFormat is returned for unknown config file extensions.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrNoEnginePath is returned when the engine executable is unset.
	ErrNoEnginePath = errors.New("engine path not configured")

	// ErrInvalidValue is returned for out-of-range configuration values.
	ErrInvalidValue = errors.New("invalid configuration value")
)
