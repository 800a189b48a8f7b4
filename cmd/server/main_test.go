package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/readnest/readnest-server/internal/catalog"
	"github.com/readnest/readnest-server/internal/learner"
	"github.com/readnest/readnest-server/internal/match"
	"github.com/readnest/readnest-server/internal/speech"
)

// newTestApp wires an app on in-memory stores with a seeded learner and
// catalog, plus a mock speech provider.
func newTestApp(t *testing.T) *app {
	t.Helper()
	ctx := t.Context()

	learners := learner.NewMemoryStore()
	lessons := catalog.NewMemoryStore()

	age := 7
	style := catalog.StyleVisual
	if err := learners.UpsertProfile(ctx, learner.Profile{
		ID:        "kid-1",
		Name:      "Maya",
		Age:       &age,
		Style:     &style,
		Interests: []string{"dinosaurs"},
	}); err != nil {
		t.Fatalf("seeding learner: %v", err)
	}

	five, nine := 5, 9
	seed := []catalog.Lesson{
		{
			ID: "dino-reading", Title: "Dinosaur Reading", Subject: "phonics",
			Difficulty: catalog.DifficultyBeginner, AgeMin: &five, AgeMax: &nine,
			Styles: []catalog.LearningStyle{catalog.StyleVisual},
			Tags:   []string{"dinosaurs"}, Published: true,
		},
		{
			ID: "letter-sounds", Title: "Letter Sounds", Subject: "phonics",
			Difficulty: catalog.DifficultyBeginner, AgeMin: &five, AgeMax: &nine,
			Published: true,
		},
	}
	for _, l := range seed {
		if err := lessons.UpsertLesson(ctx, l); err != nil {
			t.Fatalf("seeding lesson %s: %v", l.ID, err)
		}
	}

	router := speech.NewRouter()
	router.Register("mock", speech.NewMockProvider([]byte("audio-bytes")))

	return &app{
		engine:   match.NewEngine(learners, lessons),
		learners: learners,
		lessons:  lessons,
		speech:   router,
		budget:   speech.NewInMemoryBudget(100),
	}
}

func TestHealthEndpoints(t *testing.T) {
	mux := newMux(newTestApp(t))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200 without backends",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMatchesEndpoint(t *testing.T) {
	mux := newMux(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/learners/kid-1/matches", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Matches []match.ScoredLesson `json:"matches"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(resp.Matches))
	}
	if resp.Matches[0].ID != "dino-reading" {
		t.Errorf("top match = %s, want dino-reading", resp.Matches[0].ID)
	}
	if resp.Matches[0].MatchScore < resp.Matches[1].MatchScore {
		t.Error("matches are not sorted by score descending")
	}
}

func TestMatchesEndpoint_QueryParams(t *testing.T) {
	mux := newMux(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/learners/kid-1/matches?limit=1&min_score=1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Matches []match.ScoredLesson `json:"matches"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Errorf("got %d matches with limit=1, want 1", len(resp.Matches))
	}
}

func TestMatchesEndpoint_UnknownLearner(t *testing.T) {
	mux := newMux(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/learners/nobody/matches", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestQuickRecsEndpoint_AlwaysOK(t *testing.T) {
	mux := newMux(newTestApp(t))

	tests := []struct {
		name string
		path string
	}{
		{"known ids", "/api/v1/learners/kid-1/quick-recs?lesson_id=dino-reading"},
		{"unknown learner", "/api/v1/learners/nobody/quick-recs?lesson_id=dino-reading"},
		{"unknown lesson", "/api/v1/learners/kid-1/quick-recs?lesson_id=nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var resp struct {
				Recommendations []catalog.Lesson `json:"recommendations"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Recommendations == nil {
				t.Error("recommendations is null, want array")
			}
		})
	}
}

func TestProgressEndpoint(t *testing.T) {
	a := newTestApp(t)
	mux := newMux(a)

	body := `{"lesson_id": "dino-reading", "score": 92}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/learners/kid-1/progress", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	records, err := a.learners.CompletedProgress(t.Context(), "kid-1")
	if err != nil {
		t.Fatalf("CompletedProgress() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec0 := records[0]
	if rec0.LessonID != "dino-reading" || rec0.Subject != "phonics" {
		t.Errorf("record = %+v, want lesson fields copied from the catalog", rec0)
	}
	if rec0.Difficulty != catalog.DifficultyBeginner {
		t.Errorf("Difficulty = %v, want beginner", rec0.Difficulty)
	}
	if rec0.Score == nil || *rec0.Score != 92 {
		t.Errorf("Score = %v, want 92", rec0.Score)
	}
}

func TestProgressEndpoint_Errors(t *testing.T) {
	mux := newMux(newTestApp(t))

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"missing lesson_id", "/api/v1/learners/kid-1/progress", `{}`, http.StatusBadRequest},
		{"bad json", "/api/v1/learners/kid-1/progress", `{`, http.StatusBadRequest},
		{"unknown learner", "/api/v1/learners/nobody/progress", `{"lesson_id": "dino-reading"}`, http.StatusNotFound},
		{"unknown lesson", "/api/v1/learners/kid-1/progress", `{"lesson_id": "nothing"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSpeechEndpoint(t *testing.T) {
	mux := newMux(newTestApp(t))

	body := `{"learner_id": "kid-1", "text": "The cat sat"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", got)
	}
	if got := rec.Header().Get("X-Speech-Provider"); got != "mock" {
		t.Errorf("X-Speech-Provider = %q, want mock", got)
	}
	if rec.Body.String() != "audio-bytes" {
		t.Errorf("body = %q, want synthesized audio", rec.Body.String())
	}
}

func TestSpeechEndpoint_EmptyText(t *testing.T) {
	mux := newMux(newTestApp(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech", strings.NewReader(`{"text": ""}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSpeechEndpoint_NoProvider(t *testing.T) {
	a := newTestApp(t)
	a.speech = speech.NewRouter()
	mux := newMux(a)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech", strings.NewReader(`{"text": "hi"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestSpeechEndpoint_BudgetExhausted(t *testing.T) {
	a := newTestApp(t)
	if err := a.budget.Record("kid-1", 100); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	mux := newMux(a)

	body := `{"learner_id": "kid-1", "text": "more words"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}
