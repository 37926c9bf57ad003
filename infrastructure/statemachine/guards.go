package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// guardForwardOnly rejects advancement out of an unknown or terminal phase.
// Note: In statekit, guards receive the context by value. Since our context
// is *Context, the guard receives *Context directly.
func guardForwardOnly(ctx *Context, _ statekit.Event) bool {
	if ctx == nil || ctx.Session == nil {
		return false
	}
	phase := ctx.Session.Phase
	return phase.Valid() && !phase.Terminal()
}
