// Package config provides configuration management for the association ledger.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Ledger LedgerConfig
	HTTP   HTTPConfig
	Debug  bool
}

// LedgerConfig represents storage and posting configuration.
type LedgerConfig struct {
	DataDir    string
	DBPath     string
	ExportsDir string
	SeedFile   string
	MirrorBank bool
}

// HTTPConfig represents the API server configuration.
type HTTPConfig struct {
	Addr string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	mirrorBank, err := parseBoolEnv("LEDGER_MIRROR_BANK", true)
	if err != nil {
		return nil, err
	}
	debug, err := parseBoolEnv("DEBUG", false)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Ledger: LedgerConfig{
			DataDir:    getEnvOrDefault("LEDGER_DATA_DIR", "./data"),
			DBPath:     os.Getenv("LEDGER_DB_PATH"),
			ExportsDir: os.Getenv("LEDGER_EXPORTS_DIR"),
			SeedFile:   os.Getenv("LEDGER_SEED_FILE"),
			MirrorBank: mirrorBank,
		},
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("LEDGER_HTTP_ADDR", ":8080"),
		},
		Debug: debug,
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "ledger":
			switch path[1] {
			case "dataDir":
				value = c.Ledger.DataDir
			case "dbPath":
				value = c.Ledger.DBPath
			case "exportsDir":
				value = c.Ledger.ExportsDir
			case "seedFile":
				value = c.Ledger.SeedFile
			}
		case "http":
			switch path[1] {
			case "addr":
				value = c.HTTP.Addr
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseBoolEnv parses a boolean from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}

	return parsed, nil
}
