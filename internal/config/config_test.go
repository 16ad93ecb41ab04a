// ABOUTME: Tests for morning configuration management.
// ABOUTME: Covers load, save, defaults, path expansion, and env parsing.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestGetModelDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetModel(); got != ClaudeModel {
		t.Errorf("GetModel() = %q, want %q", got, ClaudeModel)
	}
}

func TestGetModelExplicit(t *testing.T) {
	cfg := &Config{Model: "claude-haiku-4-5-20251001"}
	if got := cfg.GetModel(); got != "claude-haiku-4-5-20251001" {
		t.Errorf("GetModel() = %q, want override", got)
	}
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}

	got := cfg.GetDataDir()
	if got == "" {
		t.Error("GetDataDir() returned empty string")
	}
	if filepath.Base(got) != "morning" {
		t.Errorf("GetDataDir() = %q, want a morning directory", got)
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/morning-test"}
	if got := cfg.GetDataDir(); got != "/tmp/morning-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/morning-test")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/morning-data"}
	got := cfg.GetDataDir()
	want := filepath.Join(home, "morning-data")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestDataDirHonorsXDG(t *testing.T) {
	originalXDG := os.Getenv("XDG_DATA_HOME")
	os.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	defer os.Setenv("XDG_DATA_HOME", originalXDG)

	if got := DataDir(); got != "/tmp/xdg-data/morning" {
		t.Errorf("DataDir() = %q, want %q", got, "/tmp/xdg-data/morning")
	}
}

func TestExpandPathEmpty(t *testing.T) {
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q, want %q", got, "")
	}
}

func TestExpandPathAbsolute(t *testing.T) {
	if got := ExpandPath("/tmp/foo"); got != "/tmp/foo" {
		t.Errorf("ExpandPath(\"/tmp/foo\") = %q, want %q", got, "/tmp/foo")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~")
	if got != home {
		t.Errorf("ExpandPath(\"~\") = %q, want %q", got, home)
	}
}

func TestExpandPathTildeSlash(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~/data/morning")
	want := filepath.Join(home, "data/morning")
	if got != want {
		t.Errorf("ExpandPath(\"~/data/morning\") = %q, want %q", got, want)
	}
}

func TestExpandPathRelative(t *testing.T) {
	if got := ExpandPath("data/morning"); got != "data/morning" {
		t.Errorf("ExpandPath(\"data/morning\") = %q, want %q", got, "data/morning")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "morning-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	originalXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Setenv("XDG_CONFIG_HOME", originalXDG)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "morning-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	originalXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Setenv("XDG_CONFIG_HOME", originalXDG)

	cfg := &Config{
		DataDir: "/tmp/morning-data",
		Model:   "claude-haiku-4-5-20251001",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.DataDir != "/tmp/morning-data" {
		t.Errorf("DataDir mismatch: got %q, want %q", loaded.DataDir, "/tmp/morning-data")
	}
	if loaded.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("Model mismatch: got %q", loaded.Model)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "morning-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	originalXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))
	defer os.Setenv("XDG_CONFIG_HOME", originalXDG)

	cfg := &Config{DataDir: "/tmp/morning-data"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "morning")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "morning-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	originalXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Setenv("XDG_CONFIG_HOME", originalXDG)

	configDir := filepath.Join(tmpDir, "morning")
	os.MkdirAll(configDir, 0755)
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	_, err = Load()
	if err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "morning-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	originalXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Setenv("XDG_CONFIG_HOME", originalXDG)

	got := GetConfigPath()
	want := filepath.Join(tmpDir, "morning", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	cfg := &Config{}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}

func TestLocation(t *testing.T) {
	loc := Location()
	if loc == nil {
		t.Fatal("Location() returned nil")
	}

	// January in New York is UTC-5
	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).In(loc)
	if loc.String() == TimezoneName {
		if jan.Hour() != 7 {
			t.Errorf("noon UTC in January = %d:00, want 7:00", jan.Hour())
		}
	}
}

func TestToday(t *testing.T) {
	got := Today()
	if _, err := time.Parse("2006-01-02", got); err != nil {
		t.Errorf("Today() = %q, not a calendar date: %v", got, err)
	}
}

func TestLoadEnv(t *testing.T) {
	originalToken := os.Getenv("OURA_ACCESS_TOKEN")
	os.Setenv("OURA_ACCESS_TOKEN", "test-oura-token")
	defer os.Setenv("OURA_ACCESS_TOKEN", originalToken)

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() failed: %v", err)
	}
	if e.OuraToken != "test-oura-token" {
		t.Errorf("OuraToken = %q, want %q", e.OuraToken, "test-oura-token")
	}
}

func TestRequireOura(t *testing.T) {
	e := &Env{}
	if err := e.RequireOura(); err == nil {
		t.Error("RequireOura() should fail without a token")
	}

	e.OuraToken = "x"
	if err := e.RequireOura(); err != nil {
		t.Errorf("RequireOura() with token failed: %v", err)
	}
}

func TestRequireTelegram(t *testing.T) {
	e := &Env{TelegramBotToken: "bot-token"}
	if err := e.RequireTelegram(); err == nil {
		t.Error("RequireTelegram() should fail without a chat id")
	}

	e.TelegramChatID = "12345"
	if err := e.RequireTelegram(); err != nil {
		t.Errorf("RequireTelegram() with credentials failed: %v", err)
	}
}
