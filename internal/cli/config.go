package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Keys of config.yaml.
const (
	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyFormat   = "format"
	cfgKeyLogLevel = "log_level"
)

// envPrefix maps LARDER_BACKEND, LARDER_FORMAT, ... onto config keys.
const envPrefix = "LARDER"

// defaultConfigYAML is written to config.yaml by init.
const defaultConfigYAML = `# larder configuration

# Storage backend: files, jsonl or sqlite
backend: files

# Record encoding for the files backend: json or yaml
format: json

# Log level: debug, info, warn or error
log_level: warn

# Data directory (optional; overridden by --data-dir and LARDER_DATA_DIR)
# data_dir:
`

// loadConfig reads config.yaml from configDir. A missing file or directory
// leaves the defaults in place.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendFiles)
	v.SetDefault(cfgKeyFormat, types.FormatJSON)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeDefaultConfig creates configDir and a default config.yaml in it. An
// existing file is left alone; the return value reports whether one was
// written.
func writeDefaultConfig(configDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
