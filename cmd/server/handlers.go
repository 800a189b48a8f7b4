package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/readnest/readnest-server/internal/catalog"
	"github.com/readnest/readnest-server/internal/learner"
	"github.com/readnest/readnest-server/internal/match"
	"github.com/readnest/readnest-server/internal/platform/cache"
	"github.com/readnest/readnest-server/internal/platform/database"
	"github.com/readnest/readnest-server/internal/speech"
)

// app carries the wired dependencies the handlers need.
type app struct {
	engine   *match.Engine
	learners learner.Store
	lessons  catalog.Store
	speech   *speech.Router
	budget   speech.BudgetChecker
	db       *database.DB
	cache    *cache.Cache
}

// newMux creates the HTTP router.
func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.HandleFunc("GET /api/v1/learners/{id}/matches", a.handleMatches)
	mux.HandleFunc("GET /api/v1/learners/{id}/quick-recs", a.handleQuickRecs)
	mux.HandleFunc("POST /api/v1/learners/{id}/progress", a.handleRecordProgress)
	mux.HandleFunc("POST /api/v1/speech", a.handleSpeech)
	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if a.cache != nil {
		if err := a.cache.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// handleMatches serves the ranked lesson matches for a learner.
func (a *app) handleMatches(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	q := r.URL.Query()

	opts := match.Options{
		Limit:            queryInt(q.Get("limit"), 0),
		IncludeCompleted: q.Get("include_completed") == "true",
		Subject:          q.Get("subject"),
		MinScore:         queryInt(q.Get("min_score"), 0),
	}

	matches, err := a.engine.MatchLessons(r.Context(), learnerID, opts)
	if err != nil {
		if errors.Is(err, learner.ErrNotFound) {
			writeError(w, http.StatusNotFound, "learner not found")
			return
		}
		slog.Error("matching failed", "learner_id", learnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if matches == nil {
		matches = []match.ScoredLesson{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// handleQuickRecs serves the unscored "more like this" list. An unknown
// learner or lesson yields an empty list, never an error status.
func (a *app) handleQuickRecs(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	lessonID := r.URL.Query().Get("lesson_id")
	limit := queryInt(r.URL.Query().Get("limit"), 5)

	recs, err := a.engine.QuickRecommendations(r.Context(), learnerID, lessonID, limit)
	if err != nil {
		slog.Error("quick recommendations failed", "learner_id", learnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []catalog.Lesson{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

type progressRequest struct {
	LessonID string   `json:"lesson_id"`
	Score    *float64 `json:"score,omitempty"`
}

// handleRecordProgress records a completed lesson for a learner.
func (a *app) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LessonID == "" {
		writeError(w, http.StatusBadRequest, "lesson_id is required")
		return
	}

	if _, err := a.learners.GetProfile(r.Context(), learnerID); err != nil {
		if errors.Is(err, learner.ErrNotFound) {
			writeError(w, http.StatusNotFound, "learner not found")
			return
		}
		slog.Error("profile lookup failed", "learner_id", learnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	lesson, err := a.lessons.GetLesson(r.Context(), req.LessonID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lesson not found")
			return
		}
		slog.Error("lesson lookup failed", "lesson_id", req.LessonID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rec := learner.ProgressRecord{
		LearnerID:   learnerID,
		LessonID:    lesson.ID,
		Subject:     lesson.Subject,
		Difficulty:  lesson.Difficulty,
		Score:       req.Score,
		CompletedAt: time.Now(),
	}
	if err := a.learners.RecordProgress(r.Context(), rec); err != nil {
		slog.Error("recording progress failed", "learner_id", learnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

type speechRequest struct {
	LearnerID string  `json:"learner_id"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}

// handleSpeech synthesizes text and returns the audio.
func (a *app) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if !a.speech.HasProvider() {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
		return
	}

	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if req.LearnerID != "" {
		ok, err := a.budget.Check(req.LearnerID)
		if err != nil {
			slog.Error("budget check failed", "learner_id", req.LearnerID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			writeError(w, http.StatusTooManyRequests, "daily speech budget exhausted")
			return
		}
	}

	result, err := a.speech.Synthesize(r.Context(), speech.SynthesisRequest{
		Text:  req.Text,
		Voice: req.Voice,
		Speed: req.Speed,
	})
	if err != nil {
		slog.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	if req.LearnerID != "" {
		if err := a.budget.Record(req.LearnerID, len(req.Text)); err != nil {
			slog.Warn("budget record failed", "learner_id", req.LearnerID, "error", err)
		}
	}

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("X-Speech-Provider", result.Provider)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Audio)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return fallback
}
