package api

import (
	"net/http"

	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/record"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
)

// runRequest is the body of POST /api/run and /api/record-run.
type runRequest struct {
	RawInput string            `json:"raw_input"`
	Keywords []framing.Keyword `json:"keywords"`

	// Owner and Save apply to record-run only.
	Owner string `json:"owner"`
	Save  bool   `json:"save"`

	// UseKeywordStore pulls keywords from the keyword database in addition
	// to any supplied inline.
	UseKeywordStore bool `json:"use_keyword_store"`
}

// recordRunResponse is the body of POST /api/record-run.
type recordRunResponse struct {
	Record     record.Record      `json:"record"`
	Artifact   *framing.Artifact  `json:"artifact"`
	SaveResult *record.SaveResult `json:"save_result,omitempty"`
}

// handleRun executes the one-shot pipeline and returns the artifact.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req runRequest
	if !decodeBody(w, r, &req) {
		return
	}

	keywords, err := s.gatherKeywords(r, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	artifact, err := s.pipeline.Run(r.Context(), req.RawInput, keywords)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artifact)
}

// handleRecordRun executes the pipeline, maps the artifact onto the record
// schema, and optionally writes it to the record store.
func (s *Server) handleRecordRun(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req runRequest
	if !decodeBody(w, r, &req) {
		return
	}

	keywords, err := s.gatherKeywords(r, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	artifact, err := s.pipeline.Run(r.Context(), req.RawInput, keywords)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rec := record.FromArtifact(artifact, req.Owner)
	resp := recordRunResponse{Record: rec, Artifact: artifact}

	if req.Save {
		if s.records == nil {
			writeError(w, http.StatusNotImplemented, "record store not configured")
			return
		}
		result, err := s.records.Save(r.Context(), rec)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp.SaveResult = &result
		logging.Info().Add(logging.RecordID(result.RecordID)).Msg("record-run saved")
	}

	writeJSON(w, http.StatusOK, resp)
}

// gatherKeywords combines inline keywords with the keyword database when
// requested.
func (s *Server) gatherKeywords(r *http.Request, req runRequest) ([]framing.Keyword, error) {
	keywords := req.Keywords

	if req.UseKeywordStore && s.keywords != nil {
		fetched, err := s.keywords.FetchKeywords(r.Context())
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, fetched...)
	}

	return keywords, nil
}
