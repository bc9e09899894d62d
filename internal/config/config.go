// Package config provides configuration management for utang.
// Values are layered: built-in defaults, then the YAML config file, then a
// .env file in the working directory, then environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "utang"

// Config represents the application configuration.
type Config struct {
	// DBPath is the ledger file. Defaults to $XDG_DATA_HOME/utang/utang.db.
	DBPath string `yaml:"db_path" validate:"required"`

	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	Driver string `yaml:"driver" validate:"oneof=sqlite sqlite3"`

	// Currency is the ISO 4217 code amounts are entered and shown in.
	Currency string `yaml:"currency" validate:"len=3,alpha"`

	// CheckLimit is how many transactions check shows by default.
	CheckLimit int `yaml:"check_limit" validate:"min=1,max=1000"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// MetricsFile, when set, receives Prometheus metrics after each run.
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:     filepath.Join(dataHome(), appName, appName+".db"),
		Driver:     "sqlite",
		Currency:   "IDR",
		CheckLimit: 5,
		LogLevel:   "warn",
	}
}

// DefaultPath is where the YAML config file is looked up.
func DefaultPath() string {
	return filepath.Join(configHome(), appName, "config.yaml")
}

// Load builds the configuration. path is the YAML file to read; a missing
// file at the default location is not an error, a missing file the caller
// asked for explicitly is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Try to load .env from current directory (ignore error if not found)
	_ = godotenv.Load()

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.MetricsFile = expandHome(cfg.MetricsFile)
	cfg.Currency = strings.ToUpper(cfg.Currency)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.DBPath = getEnvOrDefault("UTANG_DB_PATH", c.DBPath)
	c.Driver = getEnvOrDefault("UTANG_DRIVER", c.Driver)
	c.Currency = getEnvOrDefault("UTANG_CURRENCY", c.Currency)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.MetricsFile = getEnvOrDefault("UTANG_METRICS_FILE", c.MetricsFile)

	limit, err := parseIntEnv("UTANG_CHECK_LIMIT", c.CheckLimit)
	if err != nil {
		return err
	}
	c.CheckLimit = limit

	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
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

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "share")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
