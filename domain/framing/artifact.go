package framing

import "fmt"

// Tension captures the epistemic tension extracted from a raw research idea.
type Tension struct {
	DominantAssumption string `json:"dominant_assumption"`
	BlindSpot          string `json:"blind_spot"`
	CoreGap            string `json:"core_gap"`
}

// Background renders the tension as the single background statement used by
// the record schema and the abstract generator.
func (t Tension) Background() string {
	return fmt.Sprintf("Dominant assumption: %s Blind spot: %s Core gap: %s",
		t.DominantAssumption, t.BlindSpot, t.CoreGap)
}

// Empty reports whether no tension has been extracted yet.
func (t Tension) Empty() bool {
	return t.DominantAssumption == "" && t.BlindSpot == "" && t.CoreGap == ""
}

// RuleOutput is the derived output of the rule-engine step.
type RuleOutput struct {
	DominantOrientation Orientation `json:"dominant_orientation"`
	RQTemplates         []string    `json:"rq_templates"`
	MethodBias          []string    `json:"method_bias"`
	ContributionBias    []string    `json:"contribution_bias"`
	LogicPattern        string      `json:"logic_pattern"`
}

// Question is one generated research question candidate.
type Question struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

// SelectQuestion picks a question text from candidates by index. An index
// outside the candidate range falls back to the first candidate; an empty
// candidate list yields an empty string.
func SelectQuestion(candidates []Question, index int) string {
	if len(candidates) == 0 {
		return ""
	}
	if index < 0 || index >= len(candidates) {
		index = 0
	}
	return candidates[index].Question
}

// CoherenceNotes is the structured diagnostic of the coherence-check step.
// It never mutates other artifact fields.
type CoherenceNotes struct {
	LogicalGaps         []string `json:"logical_gaps"`
	ScopeIssues         []string `json:"scope_issues"`
	AlignmentAssessment string   `json:"alignment_assessment"`
}

// Artifact is the structured framing record accumulated across pipeline
// steps. Each field is written by exactly one step and never rewritten
// except by an explicit re-run.
type Artifact struct {
	RawInput string `json:"raw_input"`

	Mode             Orientation            `json:"mode"`
	Tension          Tension                `json:"tension"`
	EpistemicProfile Profile                `json:"epistemic_profile"`
	KeywordMap       KeywordMap             `json:"keyword_map"`
	KeywordRoles     map[string]Orientation `json:"keyword_roles"`
	RuleOutput       RuleOutput             `json:"rule_engine_output"`

	ResearchPosition  string     `json:"research_position"`
	ResearchQuestions []Question `json:"research_questions"`
	SelectedRQ        string     `json:"selected_rq"`

	Method       string `json:"method"`
	ResultType   string `json:"result_type"`
	Result       string `json:"result"`
	Contribution string `json:"contribution"`

	CoherenceNotes CoherenceNotes `json:"coherence_notes"`

	AbstractEN string `json:"abstract_en"`
	AbstractZH string `json:"abstract_zh"`

	// Stale tracks downstream fields invalidated by a partial re-run.
	// The pipeline never cascades re-computation on its own; the caller
	// decides which stale conclusions to refresh.
	Stale map[string]bool `json:"stale,omitempty"`
}

// Stale field names used by the pipeline's dirty tracking.
const (
	FieldPosition     = "research_position"
	FieldQuestions    = "research_questions"
	FieldSelectedRQ   = "selected_rq"
	FieldMethod       = "method"
	FieldResultType   = "result_type"
	FieldResult       = "result"
	FieldContribution = "contribution"
	FieldCoherence    = "coherence_notes"
	FieldAbstract     = "abstract"
)

// NewArtifact returns an artifact with all fields at their empty defaults.
func NewArtifact(rawInput string) *Artifact {
	return &Artifact{
		RawInput:         rawInput,
		EpistemicProfile: NewProfile(),
		KeywordMap:       NewKeywordMap(),
		KeywordRoles:     make(map[string]Orientation),
		RuleOutput: RuleOutput{
			RQTemplates:      []string{},
			MethodBias:       []string{},
			ContributionBias: []string{},
		},
		ResearchQuestions: []Question{},
		CoherenceNotes: CoherenceNotes{
			LogicalGaps: []string{},
			ScopeIssues: []string{},
		},
		Stale: make(map[string]bool),
	}
}

// ExpectedResult returns the inferred result text, falling back to the
// result type when no result inference has run.
func (a *Artifact) ExpectedResult() string {
	if a.Result != "" {
		return a.Result
	}
	return a.ResultType
}

// MarkStale flags the given downstream fields as stale.
func (a *Artifact) MarkStale(fields ...string) {
	if a.Stale == nil {
		a.Stale = make(map[string]bool)
	}
	for _, f := range fields {
		a.Stale[f] = true
	}
}

// ClearStale removes the stale flag for the given fields.
func (a *Artifact) ClearStale(fields ...string) {
	for _, f := range fields {
		delete(a.Stale, f)
	}
}

// IsStale reports whether a field has been invalidated by a partial re-run.
func (a *Artifact) IsStale(field string) bool {
	return a.Stale[field]
}
