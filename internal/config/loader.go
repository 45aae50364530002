package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath determines the configuration file path based on command-line flags,
// environment variables, and default locations.
// Priority:
// 1. --config command-line flag
// 2. CHANGEWATCH_CONFIG_PATH environment variable
// 3. config.yaml in the current working directory
// 4. config.json in the current working directory
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" && fileExists(configFilePathFlag) {
		return configFilePathFlag
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" && fileExists(envPath) {
		return envPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, file := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(cwd, file)
		if fileExists(path) {
			return path
		}
	}
	return "" // No config file found
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
