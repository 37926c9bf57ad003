// Package completion provides the client for the external natural-language
// completion service. Every inference step and every dialogue turn goes
// through one chat completion request.
package completion

import (
	"context"
	"errors"
)

// Common errors for completion calls.
var (
	// ErrProviderNotConfigured indicates no provider was wired in.
	ErrProviderNotConfigured = errors.New("completion provider not configured")

	// ErrEmptyResponse indicates the service returned no choices.
	ErrEmptyResponse = errors.New("empty completion response")
)

// Provider defines the interface to a chat completion service.
type Provider interface {
	// Complete sends one chat completion request and returns the response.
	Complete(ctx context.Context, req Request) (Response, error)

	// Name returns the provider name for logging.
	Name() string
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Request represents a chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`

	// JSONOutput asks the service to constrain output to a JSON object.
	// Step invocations set this; dialogue turns do not.
	JSONOutput bool `json:"-"`
}

// Response represents a chat completion response.
type Response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Config contains common provider configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout int // seconds; must be finite, defaulted when zero
}
