package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - OMNISORT_CONFIG_PATH: config file location (default: ~/.config/omnisort.toml)
//   - OMNISORT_HOME: base directory for omnisort data (default: ~/.local/share/omnisort)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"rules_path":  filepath.Join(baseDir, "rules.yaml"),
	}, nil
}

// getConfigPath returns the config file path, checking OMNISORT_CONFIG_PATH first,
// then falling back to the default ~/.config/omnisort.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("OMNISORT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "omnisort.toml"), nil
}

// getBaseDir returns the base directory for omnisort data, checking OMNISORT_HOME first,
// then falling back to the XDG default ~/.local/share/omnisort.
func getBaseDir() (string, error) {
	if path := os.Getenv("OMNISORT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "omnisort"), nil
}
