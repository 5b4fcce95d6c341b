package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

// Config holds the dexcache tool configuration.
//
// The serialized fields act as a stand-in for Android system properties
// on hosts that have none: values set here shadow the corresponding
// environment keys when the policy lookup runs.
type Config struct {
	// Root overrides. Empty means "not configured"; the environment and
	// then the package defaults apply.
	SystemRoot string `json:"system_root,omitempty"`
	DataRoot   string `json:"data_root,omitempty"`
	CacheRoot  string `json:"cache_root,omitempty"`

	// Property overrides. nil means "not configured".
	DexoptDataOnly  *bool `json:"dexopt_data_only,omitempty"`
	DexoptCacheOnly *bool `json:"dexopt_cache_only,omitempty"`

	// Resolved working directory (from -C flag or os.Getwd), not serialized.
	EffectiveCwd string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics).
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".dexcache.json"

var errConfigFileNotFound = errors.New("config file not found")

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/dexcache/config.json if set, otherwise
// ~/.config/dexcache/config.json. Empty if neither can be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "dexcache", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "dexcache", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
//  1. Global user config ($XDG_CONFIG_HOME/dexcache/config.json or
//     ~/.config/dexcache/config.json)
//  2. Project config at the default location (.dexcache.json, if present)
//  3. Explicit config file via ConfigPath (if non-empty)
//
// Values left unset at every level fall through to the environment and
// then the dexcache package defaults; see [Config.Lookup].
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	var cfg Config

	globalPath := getGlobalConfigPath(input.Env)
	if globalPath != "" {
		loaded, err := loadConfigFile(globalPath, false, &cfg)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
		}
	}

	// Project config, then an explicit file on top of it.
	projectPath := filepath.Join(workDir, ConfigFileName)

	loaded, err := loadConfigFile(projectPath, false, &cfg)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	if input.ConfigPath != "" {
		explicit := input.ConfigPath
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(workDir, explicit)
		}

		if _, err := loadConfigFile(explicit, true, &cfg); err != nil {
			return Config{}, err
		}

		cfg.Sources.Project = explicit
	}

	cfg.EffectiveCwd = workDir

	return cfg, nil
}

// loadConfigFile parses a JWCC (JSON with comments and trailing commas)
// config file into cfg, overlaying only the fields the file sets.
// Returns false if the file does not exist and required is false.
func loadConfigFile(path string, required bool, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}

			return false, nil
		}

		return false, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return false, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if err := json.Unmarshal(std, cfg); err != nil {
		return false, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return true, nil
}

// Lookup returns a [dexcache.LookupFunc] that consults the config first
// and falls back to the environment snapshot. Keys absent from both stay
// absent, so the package defaults apply downstream.
func (c Config) Lookup(env map[string]string) dexcache.LookupFunc {
	return func(key string) (string, bool) {
		switch key {
		case dexcache.EnvSystemRoot:
			if c.SystemRoot != "" {
				return c.SystemRoot, true
			}
		case dexcache.EnvDataRoot:
			if c.DataRoot != "" {
				return c.DataRoot, true
			}
		case dexcache.EnvCacheRoot:
			if c.CacheRoot != "" {
				return c.CacheRoot, true
			}
		case dexcache.PropDataOnly:
			if c.DexoptDataOnly != nil {
				return boolProp(*c.DexoptDataOnly), true
			}
		case dexcache.PropCacheOnly:
			if c.DexoptCacheOnly != nil {
				return boolProp(*c.DexoptCacheOnly), true
			}
		}

		v, ok := env[key]

		return v, ok
	}
}

// boolProp renders a bool the way the property service does.
func boolProp(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// starterConfig is written by "print-config --init".
const starterConfig = `{
	// dexcache configuration (JSON with comments and trailing commas).
	// Unset values fall back to $ANDROID_ROOT/$ANDROID_DATA/$ANDROID_CACHE,
	// then to /system, /data, /cache.

	// "system_root": "/system",
	// "data_root": "/data",
	// "cache_root": "/cache",

	// Mirrors dalvik.vm.dexopt-data-only: keep system artifacts under the
	// data root.
	// "dexopt_data_only": false,

	// Mirrors dalvik.vm.dexopt-cache-only: force everything under the
	// cache root. Wins over dexopt_data_only.
	// "dexopt_cache_only": false,
}
`
