package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName        = "envedit"
	ConfigFileName = "config.toml"
	DefaultFile    = ".env"
	DefaultKeep    = 50
	DefaultLevel   = "warn"
)

// Environment overrides
const (
	EnvFile        = "ENVEDIT_FILE"
	EnvHistory     = "ENVEDIT_HISTORY"
	EnvHistoryPath = "ENVEDIT_HISTORY_PATH"
	EnvLogLevel    = "ENVEDIT_LOG_LEVEL"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the envedit settings
type Config struct {
	File    string        `toml:"file"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
}

// HistoryConfig controls the snapshot journal
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // May contain ${XDG_STATE_HOME} and similar
	Keep    int    `toml:"keep"` // Snapshots kept per file, 0 keeps all
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		File: DefaultFile,
		History: HistoryConfig{
			Enabled: true,
			Path:    "${XDG_STATE_HOME}/" + AppName + "/history.db",
			Keep:    DefaultKeep,
		},
		Log: LogConfig{Level: DefaultLevel},
	}
}

// DefaultPath returns the config file location under the XDG config home
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// ExpandVariables expands variables in config values.
// It supports:
// - ${XDG_CONFIG_HOME} -> xdg.ConfigHome
// - ${XDG_DATA_HOME}   -> xdg.DataHome
// - ${XDG_STATE_HOME}  -> xdg.StateHome
// - ${XDG_CACHE_HOME}  -> xdg.CacheHome
// - ${HOME}            -> os.UserHomeDir()
// Any other variable is read from the environment.
func ExpandVariables(val string) string {
	mapper := func(varName string) string {
		switch varName {
		case "XDG_CONFIG_HOME":
			return xdg.ConfigHome
		case "XDG_DATA_HOME":
			return xdg.DataHome
		case "XDG_STATE_HOME":
			return xdg.StateHome
		case "XDG_CACHE_HOME":
			return xdg.CacheHome
		case "HOME":
			home, err := os.UserHomeDir()
			if err != nil {
				return ""
			}
			return home
		}
		return os.Getenv(varName)
	}
	return os.Expand(val, mapper)
}

// Load reads the config file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	conf := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &conf); err != nil {
			return conf, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return conf, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&conf, os.LookupEnv); err != nil {
		return conf, err
	}

	if conf.History.Keep < 0 {
		return conf, fmt.Errorf("%w: history.keep must not be negative", ErrInvalidConfig)
	}
	conf.History.Path = ExpandVariables(conf.History.Path)
	return conf, nil
}

func applyEnv(conf *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFile); ok && v != "" {
		conf.File = v
	}
	if v, ok := lookup(EnvHistory); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, EnvHistory, v)
		}
		conf.History.Enabled = enabled
	}
	if v, ok := lookup(EnvHistoryPath); ok && v != "" {
		conf.History.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		conf.Log.Level = strings.ToLower(v)
	}
	return nil
}

// Save writes conf as TOML to path, creating the directory
func Save(path string, conf Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(conf)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Marshal renders conf as TOML
func Marshal(conf Config) (string, error) {
	data, err := toml.Marshal(conf)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
