// ABOUTME: Morning configuration: file-backed settings, retention constants,
// ABOUTME: and the shared timezone all calendar math runs in.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Retention and context windows, in days.
const (
	RawWindowDays          = 28
	BaselineWindowDays     = 60
	BriefHistoryDays       = 28
	ConversationWindowDays = 365
)

// ClaudeModel is the default model for briefs and chat.
const ClaudeModel = "claude-opus-4-5-20251101"

// TimezoneName anchors wake-date and calendar-date math. All "today"
// decisions use this zone regardless of where the process runs.
const TimezoneName = "America/New_York"

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns the home timezone, falling back to UTC when zone data is
// unavailable.
func Location() *time.Location {
	locOnce.Do(func() {
		var err error
		loc, err = time.LoadLocation(TimezoneName)
		if err != nil {
			loc = time.UTC
		}
	})
	return loc
}

// Today returns the current calendar date in the home timezone as YYYY-MM-DD.
func Today() string {
	return time.Now().In(Location()).Format("2006-01-02")
}

// Config stores morning tool configuration.
type Config struct {
	// DataDir is the root directory for data storage: metrics/, raw/,
	// briefs/, interventions/, conversations/, and baselines.json live here.
	// Supports ~ expansion. Defaults to ~/.local/share/morning.
	DataDir string `json:"data_dir,omitempty"`

	// Model overrides the default Claude model for briefs and chat.
	Model string `json:"model,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetModel returns the configured model, defaulting to ClaudeModel.
func (c *Config) GetModel() string {
	if c.Model == "" {
		return ClaudeModel
	}
	return c.Model
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "morning")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "morning", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
