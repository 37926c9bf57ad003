// Package step defines the inference step contract: named operations with a
// fixed instruction template and a declared input/output shape, executed
// against an external completion service.
package step

import "context"

// Definition describes one registered inference step.
type Definition struct {
	// ID is the step identifier, e.g. "tension_extractor".
	ID string

	// Instruction is the immutable natural-language instruction template
	// sent as the system message for every invocation of this step.
	Instruction string

	// Temperature is the sampling temperature for the completion request.
	Temperature float64

	// MaxTokens caps the completion output size.
	MaxTokens int

	// Required lists the input keys the step expects. The registry exposes
	// them for callers; violations are not enforced structurally and
	// surface as upstream failures when the service returns malformed
	// output.
	Required []string
}

// Registry maps step identifiers to their definitions. Pure lookup, no state.
type Registry interface {
	// Get returns the definition for a step ID.
	Get(id string) (Definition, bool)

	// IDs returns all registered step identifiers.
	IDs() []string
}

// Invoker executes a single inference step. Implementations render the
// instruction plus input into one completion request and parse the response
// as structured data. The underlying service is non-deterministic, so no
// idempotence is promised: successful calls return data conforming to the
// step's declared output shape, or fail with ErrUpstream.
//
// Invoker makes no retry attempts; retry policy belongs to the caller.
type Invoker interface {
	Invoke(ctx context.Context, stepID string, input map[string]any) (map[string]any, error)
}
