package statemachine

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// Interpreter wraps the statekit interpreter with dialogue-specific
// functionality. One interpreter drives one session.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter for the dialogue state machine.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	// Update the context reference in the machine
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the initial phase.
func (i *Interpreter) Start() {
	i.interp.Start()
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// Phase returns the current phase.
func (i *Interpreter) Phase() session.Phase {
	return PhaseFromMachine(i.interp.State().Value)
}

// Advance moves the session to the next phase. Moving out of the terminal
// phase is refused; the chart has no transition for it.
func (i *Interpreter) Advance() error {
	if i.ctx.Session.Phase.Terminal() {
		return fmt.Errorf("phase %s is terminal", i.ctx.Session.Phase)
	}

	i.interp.Send(statekit.Event{Type: EventAdvance})

	current := i.Phase()
	if current == i.ctx.Session.Phase {
		return nil
	}
	return fmt.Errorf("phase mismatch: session %s, machine %s", i.ctx.Session.Phase, current)
}

// IsTerminal reports whether the machine reached the terminal phase.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}

// Matches checks if the current phase matches the given phase.
func (i *Interpreter) Matches(p session.Phase) bool {
	return i.interp.Matches(statekit.StateID(p))
}

// ResumeFrom restores the interpreter to a stored session's phase. Used when
// a persisted session is loaded mid-dialogue.
func (i *Interpreter) ResumeFrom(p session.Phase) error {
	if !p.Valid() {
		return fmt.Errorf("unknown phase %q", p)
	}

	snapshot := statekit.Snapshot[*Context]{
		MachineID:    "dialogue",
		CurrentState: statekit.StateID(p),
		Context:      i.ctx,
		CreatedAt:    time.Now(),
	}

	if err := i.interp.Restore(snapshot); err != nil {
		return fmt.Errorf("failed to restore phase: %w", err)
	}
	return nil
}
