// Package application orchestrates the framing workflows: the one-shot
// pipeline and the guided dialogue engine.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/step"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
	"github.com/felixgeelhaar/framing-go/infrastructure/registry"
	"github.com/felixgeelhaar/framing-go/infrastructure/telemetry"
)

// ErrEmptyInput indicates a run was requested without any research idea text.
var ErrEmptyInput = errors.New("empty raw input")

// Pipeline runs the fixed ten-stage framing chain over one shared artifact.
// Stages execute strictly in order; each stage reads the fields of its
// upstream stages and writes exactly its own.
type Pipeline struct {
	invoker step.Invoker
	metrics telemetry.Metrics
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineMetrics attaches a metrics recorder.
func WithPipelineMetrics(m telemetry.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a pipeline over a step invoker.
func NewPipeline(invoker step.Invoker, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		invoker: invoker,
		metrics: &telemetry.NoopMetricsProvider{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full chain: keyword sync, mode classification, rule
// derivation, tension extraction, positioning, question generation and
// selection, method alignment, contribution claiming, coherence check, and
// abstract generation. The keyword list may be empty.
//
// The first question is auto-selected. A failing stage aborts the run with
// an error identifying the stage; the artifact built so far is returned
// alongside it.
func (p *Pipeline) Run(ctx context.Context, rawInput string, keywords []framing.Keyword) (*framing.Artifact, error) {
	if strings.TrimSpace(rawInput) == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	a := framing.NewArtifact(rawInput)

	runStages := func() error {
		if err := p.syncKeywords(ctx, a, keywords); err != nil {
			return err
		}
		if err := p.classifyMode(ctx, a); err != nil {
			return err
		}
		if err := p.deriveRules(ctx, a); err != nil {
			return err
		}
		if err := p.extractTension(ctx, a); err != nil {
			return err
		}
		if err := p.buildPosition(ctx, a); err != nil {
			return err
		}
		if err := p.generateQuestions(ctx, a, 0); err != nil {
			return err
		}
		if err := p.alignMethod(ctx, a); err != nil {
			return err
		}
		if err := p.claimContribution(ctx, a); err != nil {
			return err
		}
		if err := p.checkCoherence(ctx, a); err != nil {
			return err
		}
		return p.generateAbstract(ctx, a)
	}

	err := runStages()
	p.metrics.RecordPipelineDuration(ctx, time.Since(start), err == nil)
	if err != nil {
		return a, err
	}

	logging.Info().
		Add(logging.Duration(time.Since(start))).
		Add(logging.Str("mode", string(a.Mode))).
		Msg("pipeline run complete")
	return a, nil
}

// RerunKeywords re-executes only the keyword-sync and rule-engine stages
// against an existing artifact. New keyword signal merges additively into
// the profile (per-orientation max) and the keyword map (union). Every
// downstream conclusion is marked stale; nothing is re-computed until the
// caller asks for it.
func (p *Pipeline) RerunKeywords(ctx context.Context, a *framing.Artifact, keywords []framing.Keyword) error {
	if err := p.syncKeywords(ctx, a, keywords); err != nil {
		return err
	}
	if err := p.deriveRules(ctx, a); err != nil {
		return err
	}

	a.MarkStale(
		framing.FieldPosition,
		framing.FieldQuestions,
		framing.FieldSelectedRQ,
		framing.FieldMethod,
		framing.FieldResultType,
		framing.FieldResult,
		framing.FieldContribution,
		framing.FieldCoherence,
		framing.FieldAbstract,
	)

	logging.Info().
		Add(logging.Count("keywords", len(keywords))).
		Msg("keyword re-run complete, downstream marked stale")
	return nil
}

// RerunQuestions regenerates the research questions and re-selects by index
// (out-of-range falls back to the first). Regenerating always invalidates
// the previous selection, so both stale bits clear together.
func (p *Pipeline) RerunQuestions(ctx context.Context, a *framing.Artifact, index int) error {
	if err := p.generateQuestions(ctx, a, index); err != nil {
		return err
	}
	a.ClearStale(framing.FieldQuestions, framing.FieldSelectedRQ)
	return nil
}

// RerunAlignment re-executes method alignment and contribution claiming
// against the current selection and clears their stale bits.
func (p *Pipeline) RerunAlignment(ctx context.Context, a *framing.Artifact) error {
	if err := p.alignMethod(ctx, a); err != nil {
		return err
	}
	if err := p.claimContribution(ctx, a); err != nil {
		return err
	}
	a.ClearStale(
		framing.FieldMethod,
		framing.FieldResultType,
		framing.FieldResult,
		framing.FieldContribution,
	)
	return nil
}

// syncKeywords runs the keyword_sync stage and merges its output into the
// artifact additively.
func (p *Pipeline) syncKeywords(ctx context.Context, a *framing.Artifact, keywords []framing.Keyword) error {
	if keywords == nil {
		keywords = []framing.Keyword{}
	}

	out, err := p.invoker.Invoke(ctx, registry.StepKeywordSync, map[string]any{
		"keywords": keywords,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		KeywordMap       framing.KeywordMap             `json:"keyword_map"`
		KeywordRoles     map[string]framing.Orientation `json:"keyword_roles"`
		EpistemicProfile framing.Profile                `json:"epistemic_profile"`
	}
	if err := decodeOutput(registry.StepKeywordSync, out, &parsed); err != nil {
		return err
	}

	a.KeywordMap.Merge(parsed.KeywordMap)
	a.EpistemicProfile.Merge(parsed.EpistemicProfile)
	for term, role := range parsed.KeywordRoles {
		a.KeywordRoles[term] = role
	}
	return nil
}

// classifyMode runs the mode_classifier stage. The classifier's profile and
// keyword proposals are merged into the keyword-sync results rather than
// replacing them: tagged keywords and free-text signal reinforce each other.
func (p *Pipeline) classifyMode(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepModeClassifier, map[string]any{
		"raw_input": a.RawInput,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Mode             framing.Orientation `json:"mode"`
		EpistemicProfile framing.Profile     `json:"epistemic_profile"`
		KeywordMap       framing.KeywordMap  `json:"keyword_map"`
	}
	if err := decodeOutput(registry.StepModeClassifier, out, &parsed); err != nil {
		return err
	}

	a.EpistemicProfile.Merge(parsed.EpistemicProfile)
	a.KeywordMap.Merge(parsed.KeywordMap)

	if parsed.Mode.Valid() {
		a.Mode = parsed.Mode
	} else {
		a.Mode = a.EpistemicProfile.Dominant()
	}
	return nil
}

// deriveRules runs the rule_engine stage over the merged profile.
func (p *Pipeline) deriveRules(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepRuleEngine, map[string]any{
		"epistemic_profile": a.EpistemicProfile,
		"keyword_map":       a.KeywordMap,
		"keyword_roles":     a.KeywordRoles,
	})
	if err != nil {
		return err
	}

	var parsed framing.RuleOutput
	if err := decodeOutput(registry.StepRuleEngine, out, &parsed); err != nil {
		return err
	}
	if !parsed.DominantOrientation.Valid() {
		parsed.DominantOrientation = a.EpistemicProfile.Dominant()
	}

	a.RuleOutput = parsed
	return nil
}

// extractTension runs the tension_extractor stage.
func (p *Pipeline) extractTension(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepTensionExtractor, map[string]any{
		"raw_input":   a.RawInput,
		"keyword_map": a.KeywordMap,
	})
	if err != nil {
		return err
	}

	var parsed framing.Tension
	if err := decodeOutput(registry.StepTensionExtractor, out, &parsed); err != nil {
		return err
	}

	a.Tension = parsed
	return nil
}

// buildPosition runs the position_builder stage.
func (p *Pipeline) buildPosition(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepPositionBuilder, map[string]any{
		"mode":                 a.Mode,
		"tension":              a.Tension,
		"keyword_map":          a.KeywordMap,
		"dominant_orientation": a.RuleOutput.DominantOrientation,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		ResearchPosition string `json:"research_position"`
	}
	if err := decodeOutput(registry.StepPositionBuilder, out, &parsed); err != nil {
		return err
	}

	a.ResearchPosition = parsed.ResearchPosition
	a.ClearStale(framing.FieldPosition)
	return nil
}

// generateQuestions runs the question_generator stage and selects one
// candidate. Selection never fails: an out-of-range index falls back to the
// first candidate, an empty candidate list selects the empty string.
func (p *Pipeline) generateQuestions(ctx context.Context, a *framing.Artifact, index int) error {
	out, err := p.invoker.Invoke(ctx, registry.StepQuestionGenerator, map[string]any{
		"research_position":    a.ResearchPosition,
		"mode":                 a.Mode,
		"rq_templates":         a.RuleOutput.RQTemplates,
		"logic_pattern":        a.RuleOutput.LogicPattern,
		"dominant_orientation": a.RuleOutput.DominantOrientation,
		"keyword_map":          a.KeywordMap,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		ResearchQuestions []framing.Question `json:"research_questions"`
	}
	if err := decodeOutput(registry.StepQuestionGenerator, out, &parsed); err != nil {
		return err
	}

	a.ResearchQuestions = parsed.ResearchQuestions
	a.SelectedRQ = framing.SelectQuestion(a.ResearchQuestions, index)
	return nil
}

// alignMethod runs the method_aligner stage.
func (p *Pipeline) alignMethod(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepMethodAligner, map[string]any{
		"selected_rq":          a.SelectedRQ,
		"method_bias":          a.RuleOutput.MethodBias,
		"contribution_bias":    a.RuleOutput.ContributionBias,
		"dominant_orientation": a.RuleOutput.DominantOrientation,
		"logic_pattern":        a.RuleOutput.LogicPattern,
		"keyword_map":          a.KeywordMap,
		"tension":              a.Tension,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Method string `json:"method"`
	}
	if err := decodeOutput(registry.StepMethodAligner, out, &parsed); err != nil {
		return err
	}

	a.Method = parsed.Method
	return nil
}

// claimContribution runs the contribution_claimer stage.
func (p *Pipeline) claimContribution(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepContributionClaimer, map[string]any{
		"selected_rq":       a.SelectedRQ,
		"mode":              a.Mode,
		"tension":           a.Tension,
		"keyword_map":       a.KeywordMap,
		"contribution_bias": a.RuleOutput.ContributionBias,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		ResultType   string `json:"result_type"`
		Contribution string `json:"contribution"`
	}
	if err := decodeOutput(registry.StepContributionClaimer, out, &parsed); err != nil {
		return err
	}

	a.ResultType = parsed.ResultType
	a.Contribution = parsed.Contribution
	return nil
}

// checkCoherence runs the coherence_checker stage. It diagnoses only; no
// other artifact field changes.
func (p *Pipeline) checkCoherence(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepCoherenceChecker, map[string]any{
		"mode":         a.Mode,
		"selected_rq":  a.SelectedRQ,
		"tension":      a.Tension,
		"contribution": a.Contribution,
		"method":       a.Method,
		"keyword_map":  a.KeywordMap,
	})
	if err != nil {
		return err
	}

	var parsed framing.CoherenceNotes
	if err := decodeOutput(registry.StepCoherenceChecker, out, &parsed); err != nil {
		return err
	}

	a.CoherenceNotes = parsed
	a.ClearStale(framing.FieldCoherence)
	return nil
}

// generateAbstract runs the abstract_generator stage.
func (p *Pipeline) generateAbstract(ctx context.Context, a *framing.Artifact) error {
	out, err := p.invoker.Invoke(ctx, registry.StepAbstractGenerator, map[string]any{
		"background":         a.Tension.Background(),
		"purpose":            a.ResearchPosition,
		"method":             a.Method,
		"result":             a.ExpectedResult(),
		"contribution":       a.Contribution,
		"epistemic_profile":  a.EpistemicProfile,
		"rule_engine_output": a.RuleOutput,
		"keyword_map":        a.KeywordMap,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		AbstractEN string `json:"abstract_en"`
		AbstractZH string `json:"abstract_zh"`
	}
	if err := decodeOutput(registry.StepAbstractGenerator, out, &parsed); err != nil {
		return err
	}

	a.AbstractEN = parsed.AbstractEN
	a.AbstractZH = parsed.AbstractZH
	a.ClearStale(framing.FieldAbstract)
	return nil
}

// decodeOutput converts a step's generic output map into a typed shape. An
// output that does not fit the shape is an upstream failure of that step.
func decodeOutput(stepID string, out map[string]any, v any) error {
	data, err := json.Marshal(out)
	if err != nil {
		return step.NewUpstreamError(stepID, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return step.NewUpstreamError(stepID, err)
	}
	return nil
}
