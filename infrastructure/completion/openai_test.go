package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newChatServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProviderComplete(t *testing.T) {
	t.Parallel()

	var captured openAIChatRequest
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o",
			"choices": []any{
				map[string]any{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": `{"mode": "critical"}`},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 20, "completion_tokens": 8, "total_tokens": 28},
		})
	})

	provider := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL})
	resp, err := provider.Complete(context.Background(), Request{
		Model: "gpt-4o",
		Messages: []Message{
			{Role: "system", Content: "classify"},
			{Role: "user", Content: "an idea"},
		},
		Temperature: 0.3,
		MaxTokens:   500,
		JSONOutput:  true,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Content != `{"mode": "critical"}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 28 {
		t.Errorf("TotalTokens = %d, want 28", resp.Usage.TotalTokens)
	}

	if captured.Model != "gpt-4o" || len(captured.Messages) != 2 {
		t.Errorf("request = %+v", captured)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Error("JSONOutput should request a json_object response format")
	}
	if captured.Temperature != 0.3 || captured.MaxTokens != 500 {
		t.Errorf("sampling params = (%v, %d)", captured.Temperature, captured.MaxTokens)
	}
}

func TestOpenAIProviderErrors(t *testing.T) {
	t.Parallel()

	t.Run("http error status", func(t *testing.T) {
		t.Parallel()

		srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
		})

		provider := NewOpenAIProvider(Config{BaseURL: srv.URL})
		if _, err := provider.Complete(context.Background(), Request{}); err == nil {
			t.Error("Complete() should surface non-200 responses")
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		t.Parallel()

		srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
		})

		provider := NewOpenAIProvider(Config{BaseURL: srv.URL})
		_, err := provider.Complete(context.Background(), Request{})
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("err = %v, want ErrEmptyResponse", err)
		}
	})

	t.Run("embedded error object", func(t *testing.T) {
		t.Parallel()

		srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "bad model", "type": "invalid_request_error"},
			})
		})

		provider := NewOpenAIProvider(Config{BaseURL: srv.URL})
		if _, err := provider.Complete(context.Background(), Request{}); err == nil {
			t.Error("Complete() should surface embedded errors")
		}
	})
}

func TestOpenAIProviderDefaults(t *testing.T) {
	t.Parallel()

	var captured openAIChatRequest
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "x",
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	})

	provider := NewOpenAIProvider(Config{BaseURL: srv.URL})
	if provider.Name() != "openai" {
		t.Errorf("Name() = %s, want openai", provider.Name())
	}

	// Request without a model falls back to the configured default.
	if _, err := provider.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if captured.Model != "gpt-4o" {
		t.Errorf("Model = %s, want default gpt-4o", captured.Model)
	}
	if captured.ResponseFormat != nil {
		t.Error("ResponseFormat should be absent without JSONOutput")
	}
}
