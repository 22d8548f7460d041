package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatServer(t *testing.T, status int, body map[string]any, check func(req map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if check != nil {
			check(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsSystemPrompt(t *testing.T) {
	srv := chatServer(t, http.StatusOK, map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": "Bonjour!"}},
		},
	}, func(req map[string]any) {
		if req["model"] != "test-model" {
			t.Errorf("unexpected model %v", req["model"])
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 1 {
			t.Errorf("expected one message, got %d", len(msgs))
			return
		}
		msg, _ := msgs[0].(map[string]any)
		if msg["role"] != "system" || msg["content"] != "act as a tutor" {
			t.Errorf("unexpected message %v", msg)
		}
	})

	c := NewOpenAI("test-key", srv.URL, "test-model", 5*time.Second)
	got, err := c.Complete(context.Background(), "act as a tutor")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Bonjour!" {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, map[string]any{"id": "chatcmpl-2", "choices": []any{}}, nil)

	c := NewOpenAI("test-key", srv.URL, "test-model", 0)
	if _, err := c.Complete(context.Background(), "hi"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := chatServer(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{"message": "invalid api key", "type": "invalid_request_error"},
	}, nil)

	c := NewOpenAI("test-key", srv.URL, "test-model", 0)
	_, err := c.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error from provider")
	}
}
