package registry_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/framing-go/domain/session"
	"github.com/felixgeelhaar/framing-go/domain/step"
	"github.com/felixgeelhaar/framing-go/infrastructure/registry"
)

func TestRegistryBuiltins(t *testing.T) {
	t.Parallel()

	r := registry.New()

	chain := []string{
		registry.StepKeywordSync,
		registry.StepModeClassifier,
		registry.StepRuleEngine,
		registry.StepTensionExtractor,
		registry.StepPositionBuilder,
		registry.StepQuestionGenerator,
		registry.StepMethodAligner,
		registry.StepMethodInferrer,
		registry.StepResultInferrer,
		registry.StepContributionClaimer,
		registry.StepCoherenceChecker,
		registry.StepAbstractGenerator,
	}

	for _, id := range chain {
		def, ok := r.Get(id)
		if !ok {
			t.Errorf("Get(%s) not found", id)
			continue
		}
		if def.ID != id {
			t.Errorf("def.ID = %s, want %s", def.ID, id)
		}
		if def.Instruction == "" {
			t.Errorf("%s: empty instruction", id)
		}
		if def.MaxTokens <= 0 {
			t.Errorf("%s: MaxTokens = %d, want > 0", id, def.MaxTokens)
		}
		if len(def.Required) == 0 {
			t.Errorf("%s: no required inputs declared", id)
		}
	}

	if len(r.IDs()) != len(chain) {
		t.Errorf("len(IDs()) = %d, want %d", len(r.IDs()), len(chain))
	}

	if _, ok := r.Get("nonexistent"); ok {
		t.Error("Get(nonexistent) should not find a definition")
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	r := registry.New()
	r.Register(step.Definition{ID: "custom_step", Instruction: "do it", MaxTokens: 100})

	def, ok := r.Get("custom_step")
	if !ok || def.Instruction != "do it" {
		t.Errorf("Get(custom_step) = %+v, %v", def, ok)
	}
}

func TestPhasePrompts(t *testing.T) {
	t.Parallel()

	for _, p := range session.PhaseOrder {
		prompt := registry.PhasePrompt(p)
		if prompt == "" {
			t.Errorf("PhasePrompt(%s) is empty", p)
		}
	}

	// Extraction phases instruct the service to emit the control signal.
	for _, p := range []session.Phase{
		session.PhaseTensionDiscovery,
		session.PhasePositioning,
		session.PhaseQuestionSharpening,
		session.PhaseMethodContribution,
	} {
		if !strings.Contains(registry.PhasePrompt(p), "<extract>") {
			t.Errorf("PhasePrompt(%s) missing extract instruction", p)
		}
	}

	if strings.Contains(registry.PhasePrompt(session.PhaseComplete), "<extract>") {
		t.Error("terminal phase prompt should not request extraction")
	}

	if registry.OpeningMessage == "" {
		t.Error("OpeningMessage should not be empty")
	}
}
