package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/framing-go/application"
	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/record"
	"github.com/felixgeelhaar/framing-go/domain/session"
	"github.com/felixgeelhaar/framing-go/infrastructure/completion"
	"github.com/felixgeelhaar/framing-go/infrastructure/storage/memory"
)

// queueProvider replies with the given strings in order, repeating the last
// one when the queue runs out.
func queueProvider(replies ...string) *completion.MockProvider {
	i := 0
	return &completion.MockProvider{
		CompleteFunc: func(_ context.Context, req completion.Request) (completion.Response, error) {
			reply := replies[len(replies)-1]
			if i < len(replies) {
				reply = replies[i]
				i++
			}
			return completion.Response{Model: req.Model, Content: reply}, nil
		},
	}
}

// failingSessionStore wraps the in-memory store and fails writes on demand.
type failingSessionStore struct {
	*memory.SessionStore
	failPut bool
}

func (s *failingSessionStore) Put(ctx context.Context, sess *session.Session) error {
	if s.failPut {
		return errors.New("store unavailable")
	}
	return s.SessionStore.Put(ctx, sess)
}

func newTestEngine(t *testing.T, provider completion.Provider, opts ...application.EngineOption) (*application.Engine, *memory.SessionStore) {
	t.Helper()

	store := memory.NewSessionStore()
	engine, err := application.NewEngine(scriptedInvoker(), provider, store, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine, store
}

func TestEngineStartSession(t *testing.T) {
	t.Parallel()

	engine, store := newTestEngine(t, queueProvider("hi"))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "alex")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if sess.Phase != session.PhaseGreeting {
		t.Errorf("Phase = %s, want greeting", sess.Phase)
	}
	if len(sess.Messages) != 1 || sess.Messages[0].Role != session.RoleAssistant {
		t.Fatalf("Messages = %+v, want one assistant opening", sess.Messages)
	}
	if sess.Messages[0].Content == "" {
		t.Error("opening message should not be empty")
	}

	// The session is persisted before the caller sees it.
	stored, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.ID != sess.ID {
		t.Errorf("stored ID = %s, want %s", stored.ID, sess.ID)
	}
}

func TestEngineStartSessionFailsOnStoreError(t *testing.T) {
	t.Parallel()

	store := &failingSessionStore{SessionStore: memory.NewSessionStore(), failPut: true}
	engine, err := application.NewEngine(scriptedInvoker(), queueProvider("hi"), store)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if _, err := engine.StartSession(context.Background(), ""); err == nil {
		t.Error("StartSession() should fail when the session cannot be persisted")
	}
}

func TestEngineGreetingAdvancesOnFirstTurn(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider("What feels off about the mainstream view?"))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	result, err := engine.SendMessage(ctx, sess.ID, "I keep thinking about urban farming.")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if result.Phase != session.PhaseTensionDiscovery {
		t.Errorf("Phase = %s, want tension_discovery", result.Phase)
	}
	if !result.PhaseAdvanced {
		t.Error("first turn should advance out of greeting")
	}
	if result.Reply != "What feels off about the mainstream view?" {
		t.Errorf("Reply = %q", result.Reply)
	}
}

func TestEngineStaysInPhaseWithoutReadySignal(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider(
		"Tell me more.",
		"And what gets overlooked?",
		`Keep going. <extract>{"phase": "tension", "ready": false}</extract>`,
	))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if _, err := engine.SendMessage(ctx, sess.ID, "urban farming"); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"everyone calls it a hobby", "still thinking"} {
		result, err := engine.SendMessage(ctx, sess.ID, msg)
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if result.Phase != session.PhaseTensionDiscovery {
			t.Errorf("Phase = %s, want tension_discovery to hold", result.Phase)
		}
		if result.PhaseAdvanced {
			t.Error("phase should not advance without a ready signal")
		}
	}
}

func TestEngineReadySignalExtractsAndAdvances(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider(
		"What feels off?",
		`Got it, I see the tension now. <extract>{"phase": "tension", "ready": true}</extract>`,
	))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := engine.SendMessage(ctx, sess.ID, "urban farming is dismissed as a hobby"); err != nil {
		t.Fatal(err)
	}

	result, err := engine.SendMessage(ctx, sess.ID, "planners never count it as food supply")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if result.Phase != session.PhasePositioning {
		t.Errorf("Phase = %s, want positioning", result.Phase)
	}
	if !result.PhaseAdvanced {
		t.Error("ready signal should advance the phase")
	}
	if strings.Contains(result.Reply, "<extract>") {
		t.Errorf("Reply = %q, signal block should be stripped", result.Reply)
	}

	// Tension extraction ran against the accumulated raw input.
	if result.Artifact.Tension.Empty() {
		t.Error("tension should be extracted on advance")
	}
	if result.Artifact.Mode != framing.OrientationCritical {
		t.Errorf("Mode = %s, want critical", result.Artifact.Mode)
	}

	stored, err := engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Background == "" {
		t.Error("session background should be derived from the tension")
	}
	if !strings.Contains(stored.Artifact.RawInput, "planners never count it") {
		t.Errorf("RawInput = %q, want accumulated user turns", stored.Artifact.RawInput)
	}
}

func TestEngineMalformedSignalDoesNotAdvance(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider(
		"What feels off?",
		`Almost there. <extract>{ready: yes}</extract>`,
	))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := engine.SendMessage(ctx, sess.ID, "first turn"); err != nil {
		t.Fatal(err)
	}

	result, err := engine.SendMessage(ctx, sess.ID, "second turn")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if result.Phase != session.PhaseTensionDiscovery {
		t.Errorf("Phase = %s, want tension_discovery", result.Phase)
	}
	if result.PhaseAdvanced {
		t.Error("malformed signal must be treated as not ready")
	}
	if result.Reply != "Almost there." {
		t.Errorf("Reply = %q, want block stripped", result.Reply)
	}
}

func TestEngineExtractionFailureKeepsReply(t *testing.T) {
	t.Parallel()

	store := memory.NewSessionStore()
	invoker := scriptedInvoker()
	// Break the tension extractor so the phase extraction fails.
	delete(invoker.Outputs, "tension_extractor")

	provider := queueProvider(
		"What feels off?",
		`Ready. <extract>{"phase": "tension", "ready": true}</extract>`,
	)
	engine, err := application.NewEngine(invoker, provider, store)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := engine.SendMessage(ctx, sess.ID, "first"); err != nil {
		t.Fatal(err)
	}

	result, err := engine.SendMessage(ctx, sess.ID, "second")
	if err != nil {
		t.Fatalf("SendMessage() error = %v, extraction failure must not fail the turn", err)
	}
	if result.Phase != session.PhaseTensionDiscovery {
		t.Errorf("Phase = %s, want tension_discovery to hold", result.Phase)
	}
	if result.PhaseAdvanced {
		t.Error("phase must not advance when extraction fails")
	}
	if result.Reply != "Ready." {
		t.Errorf("Reply = %q, reply should stand", result.Reply)
	}
}

func TestEngineDegradedPersistDoesNotFailTurn(t *testing.T) {
	t.Parallel()

	store := &failingSessionStore{SessionStore: memory.NewSessionStore()}
	engine, err := application.NewEngine(scriptedInvoker(), queueProvider("noted"), store)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	store.failPut = true
	result, err := engine.SendMessage(ctx, sess.ID, "an idea")
	if err != nil {
		t.Fatalf("SendMessage() error = %v, degraded write must not fail the turn", err)
	}
	if result.Reply != "noted" {
		t.Errorf("Reply = %q", result.Reply)
	}
}

func TestEngineSelectedIndexFlowsIntoQuestionSelection(t *testing.T) {
	t.Parallel()

	engine, store := newTestEngine(t, queueProvider(
		`Which resonates? <extract>{"phase": "question", "ready": true, "selected_index": 1}</extract>`,
	))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// Park the persisted session in the question-sharpening phase.
	stored, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	stored.Advance()
	stored.Advance()
	stored.Advance()
	stored.Artifact.ResearchPosition = "farming is infrastructure"
	stored.Artifact.Mode = framing.OrientationCritical
	if err := store.Put(ctx, stored); err != nil {
		t.Fatal(err)
	}

	result, err := engine.SendMessage(ctx, sess.ID, "the second one")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if result.Phase != session.PhaseMethodContribution {
		t.Errorf("Phase = %s, want method_contribution", result.Phase)
	}
	if result.Artifact.SelectedRQ != "Why do planners read farms as hobbies?" {
		t.Errorf("SelectedRQ = %q, want second candidate", result.Artifact.SelectedRQ)
	}
}

func TestEngineMethodContributionCompletes(t *testing.T) {
	t.Parallel()

	engine, store := newTestEngine(t, queueProvider(
		`Wonderful. <extract>{"phase": "method_contribution", "ready": true}</extract>`,
		"Congratulations, the framing is complete.",
	))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	stored, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	for stored.Phase != session.PhaseMethodContribution {
		stored.Advance()
	}
	stored.Artifact.Mode = framing.OrientationCritical
	stored.Artifact.SelectedRQ = "Why do planners read farms as hobbies?"
	if err := store.Put(ctx, stored); err != nil {
		t.Fatal(err)
	}

	result, err := engine.SendMessage(ctx, sess.ID, "I would compare district programs")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if result.Phase != session.PhaseComplete {
		t.Errorf("Phase = %s, want complete", result.Phase)
	}
	if result.Artifact.Method == "" {
		t.Error("method should be inferred")
	}
	if result.Artifact.Result == "" {
		t.Error("result should be inferred")
	}
	if result.Artifact.Contribution == "" {
		t.Error("contribution should be claimed")
	}

	after, err := engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.ProjectName == "" {
		t.Error("project name should be derived on completion")
	}

	// The terminal phase still chats but never advances again.
	final, err := engine.SendMessage(ctx, sess.ID, "thanks!")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if final.Phase != session.PhaseComplete || final.PhaseAdvanced {
		t.Errorf("terminal turn = phase %s advanced %v, want complete/false",
			final.Phase, final.PhaseAdvanced)
	}
}

func TestEngineSendMessageUnknownSession(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider("hi"))
	_, err := engine.SendMessage(context.Background(), "no-such-session", "hello")
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestEngineLogicCheckAndAbstract(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider("hi"))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	notes, err := engine.LogicCheck(ctx, sess.ID)
	if err != nil {
		t.Fatalf("LogicCheck() error = %v", err)
	}
	if notes.AlignmentAssessment == "" {
		t.Error("LogicCheck() should return an assessment")
	}

	en, zh, err := engine.GenerateAbstract(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GenerateAbstract() error = %v", err)
	}
	if en == "" || zh == "" {
		t.Errorf("abstracts = (%q, %q), want both populated", en, zh)
	}

	// Both persist onto the session artifact.
	stored, err := engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Artifact.AbstractEN != en {
		t.Error("abstract should persist onto the session artifact")
	}
	if stored.Artifact.CoherenceNotes.AlignmentAssessment != notes.AlignmentAssessment {
		t.Error("coherence notes should persist onto the session artifact")
	}
}

func TestEngineUpdateProfile(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, queueProvider("hi"))
	ctx := context.Background()

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	artifact, err := engine.UpdateProfile(ctx, sess.ID,
		framing.Profile{framing.OrientationConstructive: 0.8},
		framing.KeywordMap{framing.OrientationConstructive: {"prototype"}})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if artifact.EpistemicProfile[framing.OrientationConstructive] != 0.8 {
		t.Errorf("constructive weight = %v, want 0.8",
			artifact.EpistemicProfile[framing.OrientationConstructive])
	}
	if artifact.RuleOutput.DominantOrientation == "" {
		t.Error("rule output should be re-derived")
	}
	if !artifact.IsStale(framing.FieldPosition) || !artifact.IsStale(framing.FieldAbstract) {
		t.Error("downstream conclusions should be marked stale")
	}
}

func TestEngineSaveRecord(t *testing.T) {
	t.Parallel()

	t.Run("without a store", func(t *testing.T) {
		t.Parallel()

		engine, _ := newTestEngine(t, queueProvider("hi"))
		ctx := context.Background()
		sess, err := engine.StartSession(ctx, "")
		if err != nil {
			t.Fatal(err)
		}

		_, err = engine.SaveRecord(ctx, sess.ID)
		if !errors.Is(err, application.ErrRecordStoreNotConfigured) {
			t.Errorf("err = %v, want ErrRecordStoreNotConfigured", err)
		}
	})

	t.Run("maps session framing onto the schema", func(t *testing.T) {
		t.Parallel()

		records := memory.NewRecordStore()
		engine, store := newTestEngine(t, queueProvider("hi"),
			application.WithRecordStore(records))
		ctx := context.Background()

		sess, err := engine.StartSession(ctx, "alex")
		if err != nil {
			t.Fatal(err)
		}

		stored, err := store.Get(ctx, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		stored.ProjectName = "Urban farming as infrastructure"
		stored.Background = "Dominant assumption: farming is a hobby."
		stored.Artifact.Mode = framing.OrientationCritical
		stored.Artifact.ResearchPosition = "farming is infrastructure"
		stored.Artifact.SelectedRQ = "Why is it dismissed?"
		stored.Artifact.Method = "case study"
		stored.Artifact.Result = "a governance typology"
		stored.Artifact.Contribution = "reframes policy"
		if err := store.Put(ctx, stored); err != nil {
			t.Fatal(err)
		}

		result, err := engine.SaveRecord(ctx, sess.ID)
		if err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}

		rec, err := records.Load(ctx, result.RecordID)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if rec.ProjectName != "Urban farming as infrastructure" {
			t.Errorf("ProjectName = %q, want session fallback", rec.ProjectName)
		}
		if rec.Owner != "alex" {
			t.Errorf("Owner = %q, want alex", rec.Owner)
		}
		if rec.Background != "Dominant assumption: farming is a hobby." {
			t.Errorf("Background = %q, want session background", rec.Background)
		}
		if rec.ResearchType != "critical" || rec.RQ != "Why is it dismissed?" {
			t.Errorf("record = %+v", rec)
		}
		if rec.Result != "a governance typology" {
			t.Errorf("Result = %q", rec.Result)
		}
	})
}

func TestEngineSyncRecord(t *testing.T) {
	t.Parallel()

	records := memory.NewRecordStore()
	engine, _ := newTestEngine(t, queueProvider("hi"),
		application.WithRecordStore(records))
	ctx := context.Background()

	saved, err := records.Save(ctx, record.Record{
		ProjectName:  "Night markets",
		ResearchType: "exploratory",
		Background:   "Dominant assumption: markets are leftovers.",
		Purpose:      "markets organize urban life",
		RQ:           "How do markets structure neighborhoods?",
		Method:       "ethnography",
		Result:       "a typology",
		Contribution: "reframes informal commerce",
	})
	if err != nil {
		t.Fatal(err)
	}

	sess, err := engine.StartSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	sess.AppendUser("unrelated chatter")

	rec, err := engine.SyncRecord(ctx, sess.ID, saved.RecordID)
	if err != nil {
		t.Fatalf("SyncRecord() error = %v", err)
	}
	if rec.ProjectName != "Night markets" {
		t.Errorf("ProjectName = %q", rec.ProjectName)
	}

	stored, err := engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ProjectName != "Night markets" || stored.Background != "Dominant assumption: markets are leftovers." {
		t.Errorf("session fields = (%q, %q)", stored.ProjectName, stored.Background)
	}
	a := stored.Artifact
	if a.Mode != framing.OrientationExploratory {
		t.Errorf("Mode = %s, want exploratory", a.Mode)
	}
	if a.ResearchPosition != "markets organize urban life" || a.SelectedRQ != "How do markets structure neighborhoods?" {
		t.Errorf("artifact = %+v", a)
	}
	// Phase and transcript are untouched.
	if stored.Phase != session.PhaseGreeting {
		t.Errorf("Phase = %s, want greeting untouched", stored.Phase)
	}

	t.Run("unknown record", func(t *testing.T) {
		t.Parallel()

		_, err := engine.SyncRecord(ctx, sess.ID, "missing")
		if !errors.Is(err, record.ErrRecordNotFound) {
			t.Errorf("err = %v, want ErrRecordNotFound", err)
		}
	})
}
