// Package statemachine provides the statekit statechart for the guided
// dialogue phases.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// MachineConfig is the dialogue statechart configuration.
type MachineConfig = statekit.MachineConfig[*Context]

// Context carries the session through the state machine.
type Context struct {
	Session *session.Session
}

// NewContext creates a new machine context.
func NewContext(sess *session.Session) *Context {
	return &Context{Session: sess}
}

// Phase IDs as StateID type for statekit.
const (
	phaseGreeting           statekit.StateID = statekit.StateID(session.PhaseGreeting)
	phaseTensionDiscovery   statekit.StateID = statekit.StateID(session.PhaseTensionDiscovery)
	phasePositioning        statekit.StateID = statekit.StateID(session.PhasePositioning)
	phaseQuestionSharpening statekit.StateID = statekit.StateID(session.PhaseQuestionSharpening)
	phaseMethodContribution statekit.StateID = statekit.StateID(session.PhaseMethodContribution)
	phaseComplete           statekit.StateID = statekit.StateID(session.PhaseComplete)
)

// EventAdvance is the only event the chart accepts. Each phase has exactly
// one outgoing transition, so the chart itself enforces the forward-only,
// no-skip ordering.
const EventAdvance statekit.EventType = "ADVANCE"

// NewDialogueMachine creates the canonical dialogue statechart.
func NewDialogueMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("dialogue").
		WithInitial(phaseGreeting).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		WithGuard("forwardOnly", guardForwardOnly).
		State(phaseGreeting).
			On(EventAdvance).Target(phaseTensionDiscovery).Guard("forwardOnly").Do("recordTransition").
			Done().
		State(phaseTensionDiscovery).
			On(EventAdvance).Target(phasePositioning).Guard("forwardOnly").Do("recordTransition").
			Done().
		State(phasePositioning).
			On(EventAdvance).Target(phaseQuestionSharpening).Guard("forwardOnly").Do("recordTransition").
			Done().
		State(phaseQuestionSharpening).
			On(EventAdvance).Target(phaseMethodContribution).Guard("forwardOnly").Do("recordTransition").
			Done().
		State(phaseMethodContribution).
			On(EventAdvance).Target(phaseComplete).Guard("forwardOnly").Do("recordTransition").
			Done().
		State(phaseComplete).
			Final().
			Done().
		Build()
}

// PhaseFromMachine converts a machine state ID to the domain phase.
func PhaseFromMachine(stateID statekit.StateID) session.Phase {
	return session.Phase(stateID)
}
