// Package registry provides the built-in step registry: the mapping from
// step identifier to instruction template and inference parameters.
package registry

import (
	"sort"
	"sync"

	"github.com/felixgeelhaar/framing-go/domain/step"
)

// Step identifiers.
const (
	StepKeywordSync         = "keyword_sync"
	StepModeClassifier      = "mode_classifier"
	StepRuleEngine          = "rule_engine"
	StepTensionExtractor    = "tension_extractor"
	StepPositionBuilder     = "position_builder"
	StepQuestionGenerator   = "question_generator"
	StepMethodAligner       = "method_aligner"
	StepMethodInferrer      = "method_inferrer"
	StepResultInferrer      = "result_inferrer"
	StepContributionClaimer = "contribution_claimer"
	StepCoherenceChecker    = "coherence_checker"
	StepAbstractGenerator   = "abstract_generator"
)

// Registry is an immutable in-memory step registry.
type Registry struct {
	steps map[string]step.Definition
	mu    sync.RWMutex
}

// New returns a registry populated with the built-in step definitions.
func New() *Registry {
	r := &Registry{steps: make(map[string]step.Definition)}
	for _, def := range builtinSteps() {
		r.steps[def.ID] = def
	}
	return r
}

// Get returns the definition for a step ID.
func (r *Registry) Get(id string) (step.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.steps[id]
	return def, ok
}

// IDs returns all registered step identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.steps))
	for id := range r.steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Register adds or replaces a step definition. Intended for tests and
// embedders that extend the chain.
func (r *Registry) Register(def step.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[def.ID] = def
}

var _ step.Registry = (*Registry)(nil)
