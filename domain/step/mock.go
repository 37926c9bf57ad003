package step

import "context"

// MockInvoker is a scripted invoker for testing. Outputs maps step IDs to
// canned results; unmapped IDs fall through to InvokeFunc when set, and fail
// with ErrUnknownStep otherwise.
type MockInvoker struct {
	Outputs map[string]map[string]any

	// InvokeFunc handles step IDs not present in Outputs.
	InvokeFunc func(ctx context.Context, stepID string, input map[string]any) (map[string]any, error)

	// Calls records every invocation in order.
	Calls []MockCall
}

// MockCall is one recorded invocation.
type MockCall struct {
	StepID string
	Input  map[string]any
}

// Invoke records the call and returns the scripted output.
func (m *MockInvoker) Invoke(ctx context.Context, stepID string, input map[string]any) (map[string]any, error) {
	m.Calls = append(m.Calls, MockCall{StepID: stepID, Input: input})
	if out, ok := m.Outputs[stepID]; ok {
		return out, nil
	}
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, stepID, input)
	}
	return nil, NewUpstreamError(stepID, ErrUnknownStep)
}

var _ Invoker = (*MockInvoker)(nil)
