package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/raphaelgruber/mailbrief/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes a JSON request body, rejecting unparseable payloads.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: content")
		return
	}

	result, err := s.analysis.Analyze(r.Context(), UserID(r.Context()), req.Title, req.Content)
	if err != nil {
		s.logger.Error("analyze failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"threadId":   models.MustRecordIDString(result.Thread.ID),
		"analysisId": models.MustRecordIDString(result.Analysis.ID),
		"analysis":   result.Analysis,
		"todos":      result.Todos,
		"events":     result.Events,
		"degraded":   result.Degraded,
	})
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnalysisID   string `json:"analysisId"`
		EmailContent string `json:"emailContent"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AnalysisID == "" || req.EmailContent == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: analysisId, emailContent")
		return
	}

	out, err := s.research.Identify(r.Context(), UserID(r.Context()), req.AnalysisID, req.EmailContent)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		s.logger.Error("identify failed", "analysis", req.AnalysisID, "error", err)
		writeError(w, http.StatusInternalServerError, "identify failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleProcess always answers 200 with {success, result}: workflow failures
// surface as the standard failure brief, not as HTTP errors.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req service.ProcessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AnalysisID == "" || req.TopicID == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: analysisId, topicId")
		return
	}

	out, err := s.research.Process(r.Context(), UserID(r.Context()), req)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		s.logger.Error("process failed", "topic", req.TopicID, "error", err)
		writeError(w, http.StatusInternalServerError, "process failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleThreadResearch returns the research summary for a thread's latest
// analysis, or null when the thread was never analyzed.
func (s *Server) handleThreadResearch(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	summary, err := s.research.ThreadSummary(r.Context(), UserID(r.Context()), threadID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		s.logger.Error("thread research lookup failed", "thread", threadID, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todos.List(r.Context(), UserID(r.Context()))
	if err != nil {
		s.logger.Error("list todos failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in models.TodoInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Description == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: description")
		return
	}

	todo, err := s.todos.Create(r.Context(), UserID(r.Context()), in)
	if err != nil {
		s.logger.Error("create todo failed", "error", err)
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handlePatchTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	todo, err := s.todos.SetCompleted(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.Completed)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		s.logger.Error("patch todo failed", "error", err)
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("delete todo failed", "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var from, to *string
	if v := r.URL.Query().Get("from"); v != "" {
		from = &v
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to = &v
	}

	events, err := s.events.List(r.Context(), UserID(r.Context()), from, to)
	if err != nil {
		s.logger.Error("list events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Title == "" || in.StartTime.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing required fields: title, start_time")
		return
	}
	if in.EndTime.IsZero() {
		in.EndTime = in.StartTime
	}

	ev, err := s.events.Create(r.Context(), UserID(r.Context()), in)
	if err != nil {
		s.logger.Error("create event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handlePatchEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decodeBody(w, r, &in) {
		return
	}

	ev, err := s.events.Update(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.Error("patch event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.events.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("delete event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleStats combines per-user record counts with process-wide LLM usage.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.QueryStats(r.Context(), UserID(r.Context()))
	if err != nil {
		s.logger.Error("stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"usage":   s.metrics.Snapshot(),
	})
}
