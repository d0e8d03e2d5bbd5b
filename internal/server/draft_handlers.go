package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"brevity/internal/drafts"
)

// DraftRequest is the body of the standalone draft endpoints.
type DraftRequest struct {
	Analysis string `json:"analysis"`
	Title    string `json:"title"`
}

func (s *Server) handleEmailDraft(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeDraftRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"email_draft": drafts.GenerateEmailDraft(req.Analysis, req.Title),
	})
}

func (s *Server) handleSocialShare(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeDraftRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"social_share": drafts.GenerateSocialShare(req.Analysis, req.Title),
	})
}

func (s *Server) decodeDraftRequest(w http.ResponseWriter, r *http.Request) (DraftRequest, bool) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Analysis) == "" {
		s.respondError(w, http.StatusBadRequest, "analysis is required")
		return req, false
	}
	return req, true
}
