package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/felixgeelhaar/framing-go/application"
	"github.com/felixgeelhaar/framing-go/domain/record"
	"github.com/felixgeelhaar/framing-go/domain/session"
	"github.com/felixgeelhaar/framing-go/domain/step"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Add(logging.ErrorField(err)).Msg("encode response failed")
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP status codes: empty input is
// a bad request, unknown sessions and records are not found, and upstream
// step failures are a bad gateway naming the failing step.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, record.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, record.ErrInvalidRecordID):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, step.ErrUpstream):
		var upstream *step.UpstreamError
		resp := errorResponse{Error: err.Error()}
		if errors.As(err, &upstream) {
			resp.Step = upstream.StepID
		}
		writeJSON(w, http.StatusBadGateway, resp)

	case errors.Is(err, application.ErrRecordStoreNotConfigured):
		writeError(w, http.StatusNotImplemented, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// requirePost rejects anything but POST.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}
