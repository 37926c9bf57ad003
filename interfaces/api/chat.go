package api

import (
	"net/http"

	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/session"
)

type startRequest struct {
	Owner string `json:"owner"`
}

type startResponse struct {
	SessionID string        `json:"session_id"`
	Phase     session.Phase `json:"phase"`
	Message   string        `json:"message"`
}

// handleChatStart opens a new dialogue session.
func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req startRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := s.engine.StartSession(r.Context(), req.Owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	opening := ""
	if len(sess.Messages) > 0 {
		opening = sess.Messages[0].Content
	}

	writeJSON(w, http.StatusOK, startResponse{
		SessionID: sess.ID,
		Phase:     sess.Phase,
		Message:   opening,
	})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChatMessage processes one dialogue turn.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "empty message")
		return
	}

	result, err := s.engine.SendMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// handleLogicCheck runs the coherence checker for a session.
func (s *Server) handleLogicCheck(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	notes, err := s.engine.LogicCheck(r.Context(), req.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

type abstractResponse struct {
	AbstractEN string `json:"abstract_en"`
	AbstractZH string `json:"abstract_zh"`
}

// handleAbstract generates the bilingual abstract for a session.
func (s *Server) handleAbstract(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	en, zh, err := s.engine.GenerateAbstract(r.Context(), req.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, abstractResponse{AbstractEN: en, AbstractZH: zh})
}

type profileRequest struct {
	SessionID        string             `json:"session_id"`
	EpistemicProfile framing.Profile    `json:"epistemic_profile"`
	KeywordMap       framing.KeywordMap `json:"keyword_map"`
}

// handleProfile merges a supplied profile into a session's artifact.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	artifact, err := s.engine.UpdateProfile(r.Context(), req.SessionID, req.EpistemicProfile, req.KeywordMap)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artifact)
}

// handleSave writes a session's framing to the record store.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.engine.SaveRecord(r.Context(), req.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type syncRequest struct {
	SessionID string `json:"session_id"`
	RecordID  string `json:"record_id"`
}

// handleSync overwrites a session's framing from a stored record.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := s.engine.SyncRecord(r.Context(), req.SessionID, req.RecordID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
