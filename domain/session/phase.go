// Package session provides the domain model for guided dialogue sessions
// and the interface for their persistence.
package session

// Phase is one stage of the guided dialogue. Phases are strictly ordered;
// a session never moves backward or skips ahead.
type Phase string

const (
	PhaseGreeting           Phase = "greeting"
	PhaseTensionDiscovery   Phase = "tension_discovery"
	PhasePositioning        Phase = "positioning"
	PhaseQuestionSharpening Phase = "question_sharpening"
	PhaseMethodContribution Phase = "method_contribution"
	PhaseComplete           Phase = "complete"
)

// PhaseOrder is the canonical phase sequence.
var PhaseOrder = []Phase{
	PhaseGreeting,
	PhaseTensionDiscovery,
	PhasePositioning,
	PhaseQuestionSharpening,
	PhaseMethodContribution,
	PhaseComplete,
}

// Index returns the position of p in the phase order, or -1 if unknown.
func (p Phase) Index() int {
	for i, phase := range PhaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// Next returns the phase following p. The terminal phase returns itself.
func (p Phase) Next() Phase {
	i := p.Index()
	if i < 0 || i >= len(PhaseOrder)-1 {
		return p
	}
	return PhaseOrder[i+1]
}

// Terminal reports whether p is the final phase; no extraction runs there.
func (p Phase) Terminal() bool {
	return p == PhaseComplete
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}
