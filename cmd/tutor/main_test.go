package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/lingo-tutor/internal/config"
)

func modelServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, dbPath, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		DBPath: dbPath,
		LLM: config.LLMConfig{
			APIKey:  "test-key",
			BaseURL: baseURL,
			Model:   "test-model",
			Timeout: 5 * time.Second,
		},
	}
}

func TestConverseWithoutStorage(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	srv := modelServer(t, "Yo soy estudiante||Use ser for identity||grammar")
	cfg := testConfig(t, filepath.Join(blocker, "mistakes.db"), srv.URL)

	in := strings.NewReader("Spanish\nEnglish\nBeginner\nGreetings\nYo es estudiante\nexit\n")
	var out, errOut bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := converse(context.Background(), cfg, logger, in, &out, &errOut); err != nil {
		t.Fatalf("converse failed: %v", err)
	}

	if !strings.Contains(errOut.String(), "mistakes will not be recorded") {
		t.Errorf("expected storage diagnostic, got %q", errOut.String())
	}
	for _, want := range []string{
		"Tutor: Yo soy estudiante",
		"Database error: no storage connection",
		"Error retrieving review: no storage connection",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestConverseRecordsMistakes(t *testing.T) {
	srv := modelServer(t, "Yo soy estudiante||Use ser for identity||grammar")
	cfg := testConfig(t, filepath.Join(t.TempDir(), "mistakes.db"), srv.URL)

	in := strings.NewReader("\n\n\n\nYo es estudiante\n")
	var out, errOut bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := converse(context.Background(), cfg, logger, in, &out, &errOut); err != nil {
		t.Fatalf("converse failed: %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected diagnostics %q", errOut.String())
	}
	if !strings.Contains(out.String(), "=== GRAMMAR ===") || !strings.Contains(out.String(), "Original: Yo es estudiante") {
		t.Errorf("expected review of the recorded mistake, got:\n%s", out.String())
	}
}
