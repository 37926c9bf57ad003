package completion

import "context"

// MockProvider is a completion provider for testing.
type MockProvider struct {
	// CompleteFunc is called when Complete is invoked.
	CompleteFunc func(ctx context.Context, req Request) (Response, error)

	// Calls records every request for inspection.
	Calls []Request
}

// NewMockProvider creates a mock provider that echoes a fixed reply.
func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{
		CompleteFunc: func(_ context.Context, req Request) (Response, error) {
			return Response{
				Model:   req.Model,
				Content: reply,
				Usage:   Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			}, nil
		},
	}
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Complete records the request and delegates to CompleteFunc.
func (p *MockProvider) Complete(ctx context.Context, req Request) (Response, error) {
	p.Calls = append(p.Calls, req)
	return p.CompleteFunc(ctx, req)
}
