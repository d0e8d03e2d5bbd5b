package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"brevity/internal/core"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Status     int      `json:"status"`
	Message    string   `json:"message"`
	Stage      string   `json:"stage,omitempty"`
	Source     string   `json:"source,omitempty"`
	Strategies []string `json:"strategies,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "disabled"}

	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.log.Warn("Health check failed", "error", err)
			checks["database"] = "error"
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
			return
		}
		checks["database"] = "ok"
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, detail *errorDetail) {
	body := errorBody{Error: errorDetail{Status: status, Message: message}}
	if detail != nil {
		body.Error.Stage = detail.Stage
		body.Error.Source = detail.Source
		body.Error.Strategies = detail.Strategies
	}
	respondJSON(w, status, body)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message, nil)
}

// respondPipelineError maps a pipeline failure to its status code and keeps
// the failing stage and tried strategies in the body.
func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	detail := &errorDetail{}

	var stage *core.StageError
	if errors.As(err, &stage) {
		detail.Stage = stage.Stage
		detail.Source = string(stage.Source)
	}
	var acq *core.AcquisitionError
	if errors.As(err, &acq) {
		detail.Strategies = acq.Strategies()
	}

	writeError(w, core.HTTPStatus(err), err.Error(), detail)
}
