package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "OPENAI_MODEL", "LLM_TIMEOUT", "SESSION_TTL", "LOG_LEVEL", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBPath != "./data/language_mistakes.db" {
		t.Errorf("unexpected DB path %q", cfg.DBPath)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("unexpected LLM config %+v", cfg.LLM)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("unexpected session TTL %s", cfg.SessionTTL)
	}
	if cfg.HasAPIKey() {
		t.Error("expected no API key")
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode without FRONTEND_URL")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FRONTEND_URL", "https://tutor.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.LLM.Model != "gpt-4" || cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.HasAPIKey() {
		t.Error("expected API key")
	}
	if cfg.IsDevelopment() {
		t.Error("expected production mode for public frontend URL")
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"LLM_TIMEOUT": "0s",
		"SESSION_TTL": "-1h",
		"LOG_LEVEL":   "chatty",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadEnvFilesSkipsMissingAndKeepsProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("LINGO_TEST_KEY=from-file\nLINGO_TEST_KEPT=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LINGO_TEST_KEPT", "from-process")
	t.Cleanup(func() { os.Unsetenv("LINGO_TEST_KEY") })

	loaded, err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("LoadEnvFiles failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != path {
		t.Fatalf("unexpected loaded files %v", loaded)
	}
	if got := os.Getenv("LINGO_TEST_KEY"); got != "from-file" {
		t.Errorf("expected value from file, got %q", got)
	}
	if got := os.Getenv("LINGO_TEST_KEPT"); got != "from-process" {
		t.Errorf("expected process value to win, got %q", got)
	}
}
