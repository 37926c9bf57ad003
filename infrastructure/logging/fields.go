package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// SessionID adds a session id field.
func SessionID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("session_id", id)
	}
}

// Phase adds the current dialogue phase.
func Phase(p session.Phase) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("phase", string(p))
	}
}

// FromPhase adds a from_phase field for transitions.
func FromPhase(p session.Phase) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_phase", string(p))
	}
}

// ToPhase adds a to_phase field for transitions.
func ToPhase(p session.Phase) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_phase", string(p))
	}
}

// StepID adds a step identifier field.
func StepID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("step", id)
	}
}

// Stage adds a pipeline stage name.
func Stage(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("stage", name)
	}
}

// RecordID adds a record store id.
func RecordID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("record_id", id)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Count adds a generic count field.
func Count(name string, n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(name, n)
	}
}

// Str adds an arbitrary string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}
