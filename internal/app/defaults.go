package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables overriding the default locations.
const (
	EnvConfigPath = "RIFFBOX_CONFIG_PATH"
	EnvHome       = "RIFFBOX_HOME"
	EnvPassphrase = "RIFFBOX_PASSPHRASE"
)

// Defaults are the locations used when no config file says otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
//   - RIFFBOX_CONFIG_PATH: config file location (default: ~/.config/riffbox.toml)
//   - RIFFBOX_HOME: base directory for collections, keys and logs (default: ~/.local/share/riffbox)
func GetDefaults() (Defaults, error) {
	configPath, err := fromEnvOrHome(EnvConfigPath, ".config", "riffbox.toml")
	if err != nil {
		return Defaults{}, err
	}

	baseDir, err := fromEnvOrHome(EnvHome, ".local", "share", "riffbox")
	if err != nil {
		return Defaults{}, err
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// fromEnvOrHome returns the value of env if set, otherwise the path formed
// by joining elem onto the user's home directory.
func fromEnvOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
