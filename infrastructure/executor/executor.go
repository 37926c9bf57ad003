// Package executor runs registered inference steps against the completion
// service: one step, one request, structured JSON out.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/framing-go/domain/step"
	"github.com/felixgeelhaar/framing-go/infrastructure/completion"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
	"github.com/felixgeelhaar/framing-go/infrastructure/telemetry"
)

// Executor executes steps by rendering their instruction and input into a
// single completion request and parsing the reply as a JSON object.
//
// The executor never retries. A network error, a service error, or output
// that fails to parse all surface as step.ErrUpstream carrying the step ID.
type Executor struct {
	registry step.Registry
	provider completion.Provider
	model    string
	metrics  telemetry.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithModel overrides the model requested per invocation.
func WithModel(model string) Option {
	return func(e *Executor) { e.model = model }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an executor over a registry and a completion provider.
func New(registry step.Registry, provider completion.Provider, opts ...Option) *Executor {
	e := &Executor{
		registry: registry,
		provider: provider,
		metrics:  &telemetry.NoopMetricsProvider{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invoke executes one step. The input map is marshaled as the user message;
// the step instruction is the system message. The reply must be one JSON
// object conforming to the step's declared shape.
func (e *Executor) Invoke(ctx context.Context, stepID string, input map[string]any) (map[string]any, error) {
	def, ok := e.registry.Get(stepID)
	if !ok {
		return nil, step.NewUpstreamError(stepID, step.ErrUnknownStep)
	}
	if e.provider == nil {
		return nil, step.NewUpstreamError(stepID, completion.ErrProviderNotConfigured)
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, step.NewUpstreamError(stepID, fmt.Errorf("encode input: %w", err))
	}

	req := completion.Request{
		Model: e.model,
		Messages: []completion.Message{
			{Role: "system", Content: def.Instruction},
			{Role: "user", Content: string(payload)},
		},
		Temperature: def.Temperature,
		MaxTokens:   def.MaxTokens,
		JSONOutput:  true,
	}

	start := time.Now()
	resp, err := e.provider.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		e.metrics.RecordStepInvocation(ctx, stepID, false, elapsed)
		logging.Warn().
			Add(logging.StepID(stepID)).
			Add(logging.Duration(elapsed)).
			Add(logging.ErrorField(err)).
			Msg("step invocation failed")
		return nil, step.NewUpstreamError(stepID, err)
	}

	output, err := parseObject(resp.Content)
	if err != nil {
		e.metrics.RecordStepInvocation(ctx, stepID, false, elapsed)
		logging.Warn().
			Add(logging.StepID(stepID)).
			Add(logging.Duration(elapsed)).
			Add(logging.ErrorField(err)).
			Msg("step output unparseable")
		return nil, step.NewUpstreamError(stepID, err)
	}

	e.metrics.RecordStepInvocation(ctx, stepID, true, elapsed)
	logging.Debug().
		Add(logging.StepID(stepID)).
		Add(logging.Duration(elapsed)).
		Add(logging.Count("tokens", resp.Usage.TotalTokens)).
		Msg("step completed")
	return output, nil
}

// parseObject decodes a completion reply as a JSON object. Replies wrapped in
// markdown fences or surrounded by prose are tolerated: parsing falls back to
// the outermost brace-delimited span.
func parseObject(content string) (map[string]any, error) {
	text := strings.TrimSpace(content)
	if fenced, ok := stripFence(text); ok {
		text = fenced
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return out, nil
}

func stripFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}
	body := strings.TrimPrefix(text, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body), true
}

var _ step.Invoker = (*Executor)(nil)
