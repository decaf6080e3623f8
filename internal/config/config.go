package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Backend endpoints
	ServerURL string `yaml:"server_url"`

	// Scheduler intervals
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`

	// Upload defaults
	DefaultModel string `yaml:"default_model"`
	Advanced     bool   `yaml:"advanced"`

	// Downloads
	DownloadDir string `yaml:"download_dir"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	LogLevelName string `yaml:"log_level"`
}

// Load reads configuration from the optional YAML file under the user
// config dir, then applies environment variable overrides.
func Load() (Config, error) {
	cfg := Config{
		ServerURL:         "http://localhost:8080",
		HeartbeatInterval: 5 * time.Second,
		RefreshInterval:   5 * time.Second,
		DefaultModel:      "",
		DownloadDir:       ".",
		LogFile:           "/tmp/pvdash.log",
		LogLevelName:      "INFO",
	}

	if path := configFilePath(); path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	// Environment overrides the file.
	cfg.ServerURL = getEnv("PVDASH_SERVER_URL", cfg.ServerURL)
	cfg.DefaultModel = getEnv("PVDASH_MODEL", cfg.DefaultModel)
	cfg.DownloadDir = getEnv("PVDASH_DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.LogFile = getEnv("PVDASH_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("PVDASH_LOG_LEVEL", cfg.LogLevelName)

	if v := os.Getenv("PVDASH_HEARTBEAT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PVDASH_HEARTBEAT_INTERVAL: %w", err)
		}
		cfg.HeartbeatInterval = d
	}
	if v := os.Getenv("PVDASH_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PVDASH_REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = d
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	return cfg, nil
}

// configFilePath returns the expected location of the YAML config file,
// or empty when the user config dir cannot be resolved.
func configFilePath() string {
	if override := os.Getenv("PVDASH_CONFIG"); override != "" {
		return override
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "pvdash", "config.yaml")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
