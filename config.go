package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SaveDirectory string `yaml:"save_directory"`
	StoragePath   string `yaml:"storage_path"`
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	Confirmations bool   `yaml:"confirmations"`
	LabelFrames   bool   `yaml:"label_frames"`
}

func defaultConfig(homeDir string) *Config {
	return &Config{
		StoragePath:   filepath.Join(homeDir, ".stampflip", "projects.db"),
		LogLevel:      "info",
		Confirmations: true,
	}
}

// loadConfig reads ~/.stampflip.yaml. A missing or unreadable file yields
// the defaults.
func loadConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	data, err := os.ReadFile(filepath.Join(homeDir, ".stampflip.yaml"))
	if err != nil {
		return defaultConfig(homeDir)
	}
	config, err := parseConfig(data, homeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stampflip: %v, using defaults\n", err)
		return defaultConfig(homeDir)
	}
	return config
}

func parseConfig(data []byte, homeDir string) (*Config, error) {
	config := defaultConfig(homeDir)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.SaveDirectory = expandPath(config.SaveDirectory, homeDir)
	config.LogPath = expandPath(config.LogPath, homeDir)
	if config.StoragePath == "" {
		config.StoragePath = defaultConfig(homeDir).StoragePath
	} else if config.StoragePath != ":memory:" {
		config.StoragePath = expandPath(config.StoragePath, homeDir)
	}
	return config, nil
}

func expandPath(value, homeDir string) string {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, "~") {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// newLogger writes text records to LogPath, or discards them when no path
// is set. The returned closer releases the log file.
func (c *Config) newLogger() (*slog.Logger, io.Closer, error) {
	if c.LogPath == "" {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	file, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})), file, nil
}
