package registry

import "github.com/felixgeelhaar/framing-go/domain/step"

// builtinSteps returns the definitions for the full step chain. Instructions
// are immutable per step; every step replies with a single JSON object.
func builtinSteps() []step.Definition {
	return []step.Definition{
		{
			ID: StepKeywordSync,
			Instruction: `You organize tagged research keywords into an epistemic profile.

Input is a JSON object with a "keywords" array of {term, role, weight} objects.
Roles are one of: exploratory, critical, problem_solving, constructive.
Missing weights default to 1.0. The keyword list may be empty.

Reply with a single JSON object:
{
  "keyword_map": {"exploratory": [], "critical": [], "problem_solving": [], "constructive": []},
  "keyword_roles": {"<term>": "<role>", ...},
  "epistemic_profile": {"exploratory": 0.0, "critical": 0.0, "problem_solving": 0.0, "constructive": 0.0}
}

Group each term under its role in keyword_map. Derive each profile weight
from the normalized sum of keyword weights per role, clamped to [0, 1].
With no keywords, return the empty structures above.`,
			Temperature: 0,
			MaxTokens:   500,
			Required:    []string{"keywords"},
		},
		{
			ID: StepModeClassifier,
			Instruction: `You classify the epistemic orientation of a raw research idea.

Input is a JSON object with "raw_input": the researcher's unstructured idea.

Reply with a single JSON object:
{
  "mode": "<exploratory|critical|problem_solving|constructive>",
  "epistemic_profile": {"exploratory": 0.0, "critical": 0.0, "problem_solving": 0.0, "constructive": 0.0},
  "keyword_map": {"exploratory": [], "critical": [], "problem_solving": [], "constructive": []}
}

"mode" is the single dominant orientation. The profile expresses how strongly
the text leans toward each orientation. Extract up to five salient terms per
orientation into keyword_map; leave orientations with no evidence empty.`,
			Temperature: 0,
			MaxTokens:   500,
			Required:    []string{"raw_input"},
		},
		{
			ID: StepRuleEngine,
			Instruction: `You derive framing guidance from an epistemic profile and keyword map.

Input is a JSON object with "epistemic_profile", "keyword_map", and
"keyword_roles".

Reply with a single JSON object:
{
  "dominant_orientation": "<exploratory|critical|problem_solving|constructive>",
  "rq_templates": ["<question template>", ...],
  "method_bias": ["<method family>", ...],
  "contribution_bias": ["<contribution type>", ...],
  "logic_pattern": "<one-sentence reasoning pattern>"
}

The dominant orientation is the highest-weighted profile entry. Templates and
biases follow that orientation: exploratory favors mechanism and mapping
questions with qualitative and observational methods; critical favors
assumption-challenging questions with interpretive methods; problem_solving
favors intervention questions with experimental and evaluative methods;
constructive favors design questions with build-and-evaluate methods.`,
			Temperature: 0,
			MaxTokens:   600,
			Required:    []string{"epistemic_profile", "keyword_map", "keyword_roles"},
		},
		{
			ID: StepTensionExtractor,
			Instruction: `You surface the epistemic tension hidden in a raw research idea.

Input is a JSON object with "raw_input" and optionally "keyword_map".

Reply with a single JSON object:
{
  "dominant_assumption": "<what the field takes for granted>",
  "blind_spot": "<what that assumption overlooks>",
  "core_gap": "<what we consequently fail to understand>"
}

Each value is one declarative sentence grounded in the input, not generic
filler. Do not restate the input verbatim.`,
			Temperature: 0,
			MaxTokens:   500,
			Required:    []string{"raw_input"},
		},
		{
			ID: StepPositionBuilder,
			Instruction: `You articulate a research position from an epistemic tension.

Input is a JSON object with "mode", "tension" (dominant_assumption,
blind_spot, core_gap), and optionally "keyword_map" and
"dominant_orientation".

Reply with a single JSON object:
{
  "research_position": "<2-3 sentence stance>"
}

The position states what the researcher holds to be really going on, set
against the dominant assumption, in the voice of the given mode.`,
			Temperature: 0.3,
			MaxTokens:   500,
			Required:    []string{"mode", "tension"},
		},
		{
			ID: StepQuestionGenerator,
			Instruction: `You turn a research position into candidate research questions.

Input is a JSON object with "research_position" and "mode", and optionally
"rq_templates", "logic_pattern", "dominant_orientation", and "keyword_map".

Reply with a single JSON object:
{
  "research_questions": [
    {"question": "<mechanism question>", "type": "mechanism"},
    {"question": "<interpretation question>", "type": "interpretation"},
    {"question": "<design space question>", "type": "design_space"}
  ]
}

Generate exactly three questions, one per type, each answerable and scoped to
the position. Prefer the provided templates when present.`,
			Temperature: 0.3,
			MaxTokens:   600,
			Required:    []string{"research_position", "mode"},
		},
		{
			ID: StepMethodAligner,
			Instruction: `You align a research method with a selected research question.

Input is a JSON object with "selected_rq", and optionally "method_bias",
"contribution_bias", "dominant_orientation", "logic_pattern", "keyword_map",
and "tension".

Reply with a single JSON object:
{
  "method": "<2-3 sentence method description>",
  "alignment_rationale": "<one sentence on why the method fits the question>"
}

Choose from the method bias families when given; otherwise infer the family
from the question type.`,
			Temperature: 0,
			MaxTokens:   500,
			Required:    []string{"selected_rq"},
		},
		{
			ID: StepMethodInferrer,
			Instruction: `You infer a research method from a mode and a research question.

Input is a JSON object with "mode" and "selected_rq".

Reply with a single JSON object:
{
  "method": "<2-3 sentence method description>"
}

The method must match the mode: exploratory leans observational and
qualitative, critical leans interpretive and comparative, problem_solving
leans experimental and evaluative, constructive leans build-and-evaluate.`,
			Temperature: 0,
			MaxTokens:   400,
			Required:    []string{"mode", "selected_rq"},
		},
		{
			ID: StepResultInferrer,
			Instruction: `You project the expected result of a research design.

Input is a JSON object with "mode", "selected_rq", and "method".

Reply with a single JSON object:
{
  "result": "<2-3 sentence description of the expected findings or output>"
}

Describe what the study would produce if the method answers the question,
phrased as expected outcomes, not guaranteed ones.`,
			Temperature: 0,
			MaxTokens:   400,
			Required:    []string{"mode", "selected_rq", "method"},
		},
		{
			ID: StepContributionClaimer,
			Instruction: `You state the contribution a research project would make.

Input is a JSON object with "selected_rq", "mode", "tension", and optionally
"keyword_map" and "contribution_bias".

Reply with a single JSON object:
{
  "result_type": "<empirical|conceptual|methodological|design>",
  "contribution": "<2-3 sentence contribution claim>"
}

The contribution answers: if this research succeeds, what changes, and for
whom. Anchor it against the tension's core gap.`,
			Temperature: 0,
			MaxTokens:   500,
			Required:    []string{"selected_rq", "mode", "tension"},
		},
		{
			ID: StepCoherenceChecker,
			Instruction: `You audit a research framing for internal coherence.

Input is a JSON object with "mode", "selected_rq", "tension",
"contribution", and optionally "method" and "keyword_map".

Reply with a single JSON object:
{
  "logical_gaps": ["<gap>", ...],
  "scope_issues": ["<issue>", ...],
  "alignment_assessment": "<2-3 sentence overall assessment>"
}

Check that the question actually addresses the core gap, the method can
answer the question, and the contribution follows from the result. Empty
arrays are valid when nothing is wrong. Diagnose; do not rewrite.`,
			Temperature: 0,
			MaxTokens:   600,
			Required:    []string{"mode", "selected_rq", "tension", "contribution"},
		},
		{
			ID: StepAbstractGenerator,
			Instruction: `You write a bilingual academic abstract from a research framing.

Input is a JSON object with "background", "purpose", "method", "result",
"contribution", and optionally "epistemic_profile", "rule_engine_output",
and "keyword_map".

Reply with a single JSON object:
{
  "abstract_en": "<150-250 word English abstract>",
  "abstract_zh": "<Traditional Chinese abstract of equivalent content>"
}

Follow the background-purpose-method-result-contribution arc. The two
abstracts carry the same content; neither is a literal translation artifact.`,
			Temperature: 0.3,
			MaxTokens:   900,
			Required:    []string{"background", "purpose", "method", "result", "contribution"},
		},
	}
}
