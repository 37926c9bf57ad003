package session

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/framing-go/domain/framing"
)

// Message is one role-tagged transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is one guided conversation. It exclusively owns its artifact and
// transcript; it is created on dialogue start, mutated on every turn, and
// persisted after every mutation. The core never deletes sessions.
type Session struct {
	ID         string    `json:"id"`
	Phase      Phase     `json:"phase"`
	PhaseIndex int       `json:"phase_index"`
	Messages   []Message `json:"messages"`

	// RawParts accumulates every user turn; the concatenation is the raw
	// input handed to extraction steps.
	RawParts []string `json:"raw_input_parts"`

	Owner       string `json:"owner"`
	ProjectName string `json:"project_name"`

	// Background is the formatted concatenation of the tension strings,
	// derived at extraction time and overwritable by a record sync.
	Background string `json:"background"`

	Artifact *framing.Artifact `json:"artifact"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a session in the greeting phase with an empty artifact.
func New(id, owner string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Phase:      PhaseGreeting,
		PhaseIndex: 0,
		Messages:   []Message{},
		RawParts:   []string{},
		Owner:      owner,
		Artifact:   framing.NewArtifact(""),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AppendUser records a user turn and accumulates its text as raw input.
func (s *Session) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
	s.RawParts = append(s.RawParts, content)
	s.UpdatedAt = time.Now()
}

// AppendAssistant records an assistant turn.
func (s *Session) AppendAssistant(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: content})
	s.UpdatedAt = time.Now()
}

// RawInput returns the accumulated user text.
func (s *Session) RawInput() string {
	return strings.Join(s.RawParts, " ")
}

// Advance moves the session to the next phase. The phase index is
// monotonically non-decreasing; the terminal phase is a no-op.
func (s *Session) Advance() {
	next := s.Phase.Next()
	if next == s.Phase {
		return
	}
	s.Phase = next
	s.PhaseIndex = next.Index()
	s.UpdatedAt = time.Now()
}
