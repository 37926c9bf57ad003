package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
)

// recordTransition advances the session and logs the phase change.
// In statekit, actions receive a pointer to the context. Since our context is
// *Context, actions receive **Context.
func recordTransition(ctx **Context, _ statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Session == nil {
		return
	}

	c := *ctx
	from := c.Session.Phase
	c.Session.Advance()

	logging.Info().
		Add(logging.SessionID(c.Session.ID)).
		Add(logging.FromPhase(from)).
		Add(logging.ToPhase(c.Session.Phase)).
		Msg("phase transition")
}
