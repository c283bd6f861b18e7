package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ashureev/alphabet-lab/internal/domain"
	"github.com/ashureev/alphabet-lab/internal/policy"
	"github.com/ashureev/alphabet-lab/internal/store"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	engine := policy.NewEngine(repo, nil)
	handler := NewAlphabetHandler(engine, repo)

	r := chi.NewRouter()
	handler.RegisterHealth(r)
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNextEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/alphabet/next", domain.NextRequest{
		CurrentLetter: "C",
		MasteryLevel:  domain.MasteryPracticing,
		MasteryMap:    domain.NewMasteryMap(),
		RecentHistory: []domain.Letter{"A", "B"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.NextResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.StateKey != "C:1" {
		t.Errorf("Expected state key C:1, got %q", resp.StateKey)
	}
	if !resp.Target.Letter.Valid() {
		t.Errorf("Expected a valid target letter, got %q", resp.Target.Letter)
	}
	found := false
	for _, a := range policy.Actions {
		if resp.Action == a {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected a policy action, got %q", resp.Action)
	}
}

func TestNextEndpointRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/alphabet/next", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestNextEndpointRejectsInvalidLetter(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/alphabet/next", domain.NextRequest{
		CurrentLetter: "AB",
		MasteryMap:    domain.NewMasteryMap(),
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/alphabet/feedback", domain.FeedbackRequest{
		StateKey:  "A:0",
		Action:    "practice_current",
		Reward:    1,
		NextState: domain.NextState{Letter: "A", MasteryLevel: domain.MasteryPracticing},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp["ok"] {
		t.Errorf("Expected ok=true, got %v", resp)
	}
}

func TestFeedbackEndpointRejectsMissingStateKey(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/alphabet/feedback", domain.FeedbackRequest{
		Action:    "practice_current",
		Reward:    1,
		NextState: domain.NextState{Letter: "A"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Apply one feedback so the stats are non-trivial.
	postJSON(t, router, "/alphabet/feedback", domain.FeedbackRequest{
		StateKey:  "A:0",
		Action:    "practice_current",
		Reward:    1,
		NextState: domain.NextState{Letter: "A", MasteryLevel: domain.MasteryPracticing},
	})

	req := httptest.NewRequest(http.MethodGet, "/alphabet/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		QStates  int64              `json:"q_states"`
		Attempts store.AttemptStats `json:"attempts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.QStates != 1 {
		t.Errorf("Expected 1 q state, got %d", resp.QStates)
	}
	if resp.Attempts.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", resp.Attempts.Attempts)
	}
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["ok"] != true {
		t.Errorf("Expected ok=true, got %v", resp["ok"])
	}
	if resp["service"] != "alphabet-lab" {
		t.Errorf("Expected service alphabet-lab, got %v", resp["service"])
	}
}

func TestJSONHelper(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}
