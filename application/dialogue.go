package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/record"
	"github.com/felixgeelhaar/framing-go/domain/session"
	"github.com/felixgeelhaar/framing-go/domain/step"
	"github.com/felixgeelhaar/framing-go/infrastructure/completion"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
	"github.com/felixgeelhaar/framing-go/infrastructure/registry"
	"github.com/felixgeelhaar/framing-go/infrastructure/signal"
	"github.com/felixgeelhaar/framing-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/framing-go/infrastructure/telemetry"
)

// ErrRecordStoreNotConfigured indicates a record operation was requested
// without a record store wired in.
var ErrRecordStoreNotConfigured = errors.New("record store not configured")

// dialogueStepID names the conversational completion call in upstream errors.
const dialogueStepID = "dialogue"

const (
	chatTemperature = 0.7
	chatMaxTokens   = 600
)

// TurnResult is the outcome of one dialogue turn.
type TurnResult struct {
	SessionID     string            `json:"session_id"`
	Reply         string            `json:"reply"`
	Phase         session.Phase     `json:"phase"`
	PhaseAdvanced bool              `json:"phase_advanced"`
	Artifact      *framing.Artifact `json:"artifact,omitempty"`
}

// Engine drives guided dialogue sessions: phase-gated conversation with
// extraction steps running between phases. Turns on one session are
// serialized; different sessions proceed concurrently.
type Engine struct {
	pipeline *Pipeline
	invoker  step.Invoker
	provider completion.Provider
	sessions session.Store
	records  record.Store
	machine  *statemachine.MachineConfig
	metrics  telemetry.Metrics
	model    string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRecordStore wires the persistent record store.
func WithRecordStore(store record.Store) EngineOption {
	return func(e *Engine) { e.records = store }
}

// WithEngineMetrics attaches a metrics recorder.
func WithEngineMetrics(m telemetry.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithChatModel overrides the model used for conversational turns.
func WithChatModel(model string) EngineOption {
	return func(e *Engine) { e.model = model }
}

// NewEngine creates a dialogue engine.
func NewEngine(invoker step.Invoker, provider completion.Provider, sessions session.Store, opts ...EngineOption) (*Engine, error) {
	machine, err := statemachine.NewDialogueMachine()
	if err != nil {
		return nil, fmt.Errorf("build dialogue machine: %w", err)
	}

	e := &Engine{
		pipeline: NewPipeline(invoker),
		invoker:  invoker,
		provider: provider,
		sessions: sessions,
		machine:  machine,
		metrics:  &telemetry.NoopMetricsProvider{},
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pipeline.metrics = e.metrics
	return e, nil
}

// lockFor returns the mutex serializing turns on one session.
func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// StartSession creates a session in the greeting phase and returns it with
// the opening message already in the transcript.
func (e *Engine) StartSession(ctx context.Context, owner string) (*session.Session, error) {
	sess := session.New(uuid.New().String(), owner)
	sess.AppendAssistant(registry.OpeningMessage)

	if err := e.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist new session: %w", err)
	}

	e.metrics.IncrementActiveSessions(ctx)
	logging.Info().
		Add(logging.SessionID(sess.ID)).
		Add(logging.Str("owner", owner)).
		Msg("session started")
	return sess, nil
}

// SendMessage processes one user turn: record the message, chat within the
// current phase, and when the reply signals readiness, run the phase's
// extraction steps and advance.
//
// The greeting phase advances unconditionally on the first user turn. The
// terminal phase still chats but never extracts or advances. A malformed
// readiness signal is logged and treated as not ready. A failed session
// store write degrades the turn but does not fail it.
func (e *Engine) SendMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.AppendUser(message)

	advanced := false
	if sess.Phase == session.PhaseGreeting {
		if err := e.advance(ctx, sess); err != nil {
			return nil, err
		}
		advanced = true
	}

	reply, ctl, err := e.chat(ctx, sess)
	if err != nil {
		e.persist(ctx, sess)
		return nil, err
	}
	sess.AppendAssistant(reply)

	if ctl != nil && ctl.Ready && !sess.Phase.Terminal() {
		if err := e.extract(ctx, sess, ctl); err != nil {
			// Reply stands; the phase just doesn't advance this turn.
			e.metrics.RecordExtractionRun(ctx, string(sess.Phase), false)
			logging.Warn().
				Add(logging.SessionID(sess.ID)).
				Add(logging.Phase(sess.Phase)).
				Add(logging.ErrorField(err)).
				Msg("extraction failed, phase not advanced")
		} else {
			e.metrics.RecordExtractionRun(ctx, string(sess.Phase), true)
			if err := e.advance(ctx, sess); err != nil {
				return nil, err
			}
			advanced = true
		}
	}

	e.persist(ctx, sess)
	e.metrics.RecordTurnDuration(ctx, time.Since(start), string(sess.Phase))

	return &TurnResult{
		SessionID:     sess.ID,
		Reply:         reply,
		Phase:         sess.Phase,
		PhaseAdvanced: advanced,
		Artifact:      sess.Artifact,
	}, nil
}

// chat runs one conversational completion within the session's phase and
// splits off the readiness signal.
func (e *Engine) chat(ctx context.Context, sess *session.Session) (string, *signal.Control, error) {
	messages := make([]completion.Message, 0, len(sess.Messages)+1)
	messages = append(messages, completion.Message{
		Role:    "system",
		Content: registry.PhasePrompt(sess.Phase),
	})
	for _, m := range sess.Messages {
		messages = append(messages, completion.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := e.provider.Complete(ctx, completion.Request{
		Model:       e.model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", nil, step.NewUpstreamError(dialogueStepID, err)
	}

	clean, ctl, err := signal.Split(resp.Content)
	if errors.Is(err, signal.ErrMalformedSignal) {
		logging.Warn().
			Add(logging.SessionID(sess.ID)).
			Add(logging.Phase(sess.Phase)).
			Msg("malformed readiness signal, treated as not ready")
		return clean, nil, nil
	}
	return clean, ctl, nil
}

// advance moves the session one phase forward through the statechart.
func (e *Engine) advance(ctx context.Context, sess *session.Session) error {
	from := sess.Phase

	interp := statemachine.NewInterpreter(e.machine, statemachine.NewContext(sess))
	interp.Start()
	defer interp.Stop()

	if err := interp.ResumeFrom(sess.Phase); err != nil {
		return err
	}
	if err := interp.Advance(); err != nil {
		return err
	}

	e.metrics.RecordPhaseTransition(ctx, string(from), string(sess.Phase), sess.ID)
	if sess.Phase.Terminal() {
		e.metrics.DecrementActiveSessions(ctx)
	}
	return nil
}

// extract runs the extraction steps bound to the session's current phase.
func (e *Engine) extract(ctx context.Context, sess *session.Session, ctl *signal.Control) error {
	a := sess.Artifact
	a.RawInput = sess.RawInput()

	switch sess.Phase {
	case session.PhaseTensionDiscovery:
		if err := e.pipeline.classifyMode(ctx, a); err != nil {
			return err
		}
		if err := e.pipeline.extractTension(ctx, a); err != nil {
			return err
		}
		sess.Background = a.Tension.Background()
		return nil

	case session.PhasePositioning:
		return e.pipeline.buildPosition(ctx, a)

	case session.PhaseQuestionSharpening:
		index := 0
		if ctl.SelectedIndex != nil {
			index = *ctl.SelectedIndex
		}
		return e.pipeline.generateQuestions(ctx, a, index)

	case session.PhaseMethodContribution:
		if err := e.inferMethod(ctx, a); err != nil {
			return err
		}
		if err := e.inferResult(ctx, a); err != nil {
			return err
		}
		if err := e.pipeline.claimContribution(ctx, a); err != nil {
			return err
		}
		sess.ProjectName = record.ProjectName(sess.RawInput())
		return nil

	default:
		return fmt.Errorf("no extraction bound to phase %s", sess.Phase)
	}
}

// inferMethod runs the dialogue-only method_inferrer step.
func (e *Engine) inferMethod(ctx context.Context, a *framing.Artifact) error {
	out, err := e.invoker.Invoke(ctx, registry.StepMethodInferrer, map[string]any{
		"mode":        a.Mode,
		"selected_rq": a.SelectedRQ,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Method string `json:"method"`
	}
	if err := decodeOutput(registry.StepMethodInferrer, out, &parsed); err != nil {
		return err
	}

	a.Method = parsed.Method
	return nil
}

// inferResult runs the dialogue-only result_inferrer step.
func (e *Engine) inferResult(ctx context.Context, a *framing.Artifact) error {
	out, err := e.invoker.Invoke(ctx, registry.StepResultInferrer, map[string]any{
		"mode":        a.Mode,
		"selected_rq": a.SelectedRQ,
		"method":      a.Method,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Result string `json:"result"`
	}
	if err := decodeOutput(registry.StepResultInferrer, out, &parsed); err != nil {
		return err
	}

	a.Result = parsed.Result
	return nil
}

// persist writes the session back best-effort. A failed write leaves the
// turn intact and is logged as a degraded event.
func (e *Engine) persist(ctx context.Context, sess *session.Session) {
	if err := e.sessions.Put(ctx, sess); err != nil {
		e.metrics.RecordDegradedWrite(ctx, sess.ID)
		logging.Warn().
			Add(logging.SessionID(sess.ID)).
			Add(logging.ErrorField(err)).
			Msg("session store write failed, turn degraded")
	}
}

// LogicCheck runs the coherence checker over the session's artifact.
func (e *Engine) LogicCheck(ctx context.Context, sessionID string) (framing.CoherenceNotes, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return framing.CoherenceNotes{}, err
	}

	if err := e.pipeline.checkCoherence(ctx, sess.Artifact); err != nil {
		return framing.CoherenceNotes{}, err
	}

	e.persist(ctx, sess)
	return sess.Artifact.CoherenceNotes, nil
}

// GenerateAbstract runs the abstract generator over the session's artifact
// and returns the bilingual pair.
func (e *Engine) GenerateAbstract(ctx context.Context, sessionID string) (en, zh string, err error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	if err := e.pipeline.generateAbstract(ctx, sess.Artifact); err != nil {
		return "", "", err
	}

	e.persist(ctx, sess)
	return sess.Artifact.AbstractEN, sess.Artifact.AbstractZH, nil
}

// UpdateProfile merges a supplied epistemic profile and keyword map into the
// session's artifact (max per orientation, union of terms) and re-derives the
// rule output. Downstream conclusions are marked stale, never recomputed
// silently.
func (e *Engine) UpdateProfile(ctx context.Context, sessionID string, profile framing.Profile, keywordMap framing.KeywordMap) (*framing.Artifact, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	a := sess.Artifact
	a.EpistemicProfile.Merge(profile)
	a.KeywordMap.Merge(keywordMap)

	if err := e.pipeline.deriveRules(ctx, a); err != nil {
		return nil, err
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

	e.persist(ctx, sess)
	return a, nil
}

// SaveRecord maps the session's framing onto the ten-field record schema and
// writes it to the record store.
func (e *Engine) SaveRecord(ctx context.Context, sessionID string) (record.SaveResult, error) {
	if e.records == nil {
		return record.SaveResult{}, ErrRecordStoreNotConfigured
	}

	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return record.SaveResult{}, err
	}

	rec := record.FromArtifact(sess.Artifact, sess.Owner)
	if rec.ProjectName == "" {
		rec.ProjectName = sess.ProjectName
	}
	if sess.Background != "" {
		rec.Background = sess.Background
	}

	result, err := e.records.Save(ctx, rec)
	e.metrics.RecordRecordSave(ctx, err == nil)
	if err != nil {
		return record.SaveResult{}, err
	}

	logging.Info().
		Add(logging.SessionID(sess.ID)).
		Add(logging.RecordID(result.RecordID)).
		Msg("record saved")
	return result, nil
}

// SyncRecord loads a stored record and overwrites the session's framing
// fields with it. The transcript and phase are untouched.
func (e *Engine) SyncRecord(ctx context.Context, sessionID, recordID string) (record.Record, error) {
	if e.records == nil {
		return record.Record{}, ErrRecordStoreNotConfigured
	}

	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return record.Record{}, err
	}

	rec, err := e.records.Load(ctx, recordID)
	if err != nil {
		return record.Record{}, err
	}

	sess.ProjectName = rec.ProjectName
	sess.Background = rec.Background

	a := sess.Artifact
	if framing.Orientation(rec.ResearchType).Valid() {
		a.Mode = framing.Orientation(rec.ResearchType)
	}
	a.ResearchPosition = rec.Purpose
	a.SelectedRQ = rec.RQ
	a.Method = rec.Method
	a.Result = rec.Result
	a.Contribution = rec.Contribution

	e.persist(ctx, sess)

	logging.Info().
		Add(logging.SessionID(sess.ID)).
		Add(logging.RecordID(recordID)).
		Msg("session synced from record")
	return rec, nil
}

// GetSession returns a session by id.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return e.sessions.Get(ctx, sessionID)
}
