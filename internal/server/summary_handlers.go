package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"brevity/internal/core"
	"brevity/internal/persistence"
	"brevity/internal/render"
)

// SummaryRequest is the body of POST /api/summaries.
type SummaryRequest struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	Title   string `json:"title"`
}

// SummaryListResponse is returned by GET /api/summaries.
type SummaryListResponse struct {
	Summaries []core.AnalysisResult `json:"summaries"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
}

func (s *Server) handleCreateSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.summarizer.SummarizeContent(r.Context(), core.ContentReference{
		URL:        req.URL,
		RawContent: req.Content,
		Title:      req.Title,
	})
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	user := userID(r)
	if err := s.summaries.Create(r.Context(), user, result); err != nil {
		s.log.Error("Failed to store summary", "error", err, "summary_id", result.ID)
		s.respondError(w, http.StatusInternalServerError, "failed to store summary")
		return
	}
	s.recorder.SummaryCreated(user, result)

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	opts := persistence.ListOptions{Limit: limit, Offset: offset}.Normalized()
	summaries, err := s.summaries.ListByUser(r.Context(), userID(r), opts)
	if err != nil {
		s.log.Error("Failed to list summaries", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	if summaries == nil {
		summaries = []core.AnalysisResult{}
	}

	respondJSON(w, http.StatusOK, SummaryListResponse{Summaries: summaries, Limit: opts.Limit, Offset: opts.Offset})
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadSummary(w, r)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", render.FormatJSON:
		respondJSON(w, http.StatusOK, result)
	case render.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(render.Markdown(result)))
	case render.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(render.HTML(result)))
	default:
		s.respondError(w, http.StatusBadRequest, "unsupported format: "+format)
	}
}

func (s *Server) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	err := s.summaries.Delete(r.Context(), userID(r), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "summary not found")
	case err != nil:
		s.log.Error("Failed to delete summary", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to delete summary")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.summaries.UsageStats(r.Context(), userID(r))
	if err != nil {
		s.log.Error("Failed to load usage stats", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load usage stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) loadSummary(w http.ResponseWriter, r *http.Request) (*core.AnalysisResult, bool) {
	result, err := s.summaries.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "summary not found")
		return nil, false
	case err != nil:
		s.log.Error("Failed to get summary", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get summary")
		return nil, false
	}
	return result, true
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
