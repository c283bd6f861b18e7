package policyclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashureev/alphabet-lab/internal/domain"
)

func TestNextDecodesResponse(t *testing.T) {
	var gotPath, gotContentType string
	var gotReq domain.NextRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(domain.NextResponse{
			Action:   "move_next",
			Target:   domain.Target{Letter: "D"},
			StateKey: "C:1",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	resp, err := client.Next(context.Background(), domain.NextRequest{
		CurrentLetter: "C",
		MasteryLevel:  domain.MasteryPracticing,
		MasteryMap:    domain.NewMasteryMap(),
		RecentHistory: []domain.Letter{"A", "B", "C"},
	})
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if gotPath != "/alphabet/next" {
		t.Errorf("Expected path /alphabet/next, got %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if gotReq.CurrentLetter != "C" {
		t.Errorf("Expected current letter C in request, got %q", gotReq.CurrentLetter)
	}
	if len(gotReq.RecentHistory) != 3 {
		t.Errorf("Expected 3 history entries in request, got %d", len(gotReq.RecentHistory))
	}
	if resp.Action != "move_next" {
		t.Errorf("Expected action move_next, got %q", resp.Action)
	}
	if resp.Target.Letter != "D" {
		t.Errorf("Expected target D, got %q", resp.Target.Letter)
	}
	if resp.StateKey != "C:1" {
		t.Errorf("Expected state key C:1, got %q", resp.StateKey)
	}
}

func TestNextReportsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	if _, err := client.Next(context.Background(), domain.NextRequest{CurrentLetter: "A"}); err == nil {
		t.Fatal("Expected error on 500 response, got nil")
	}
}

func TestNextReportsConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(srv.URL, nil)
	if _, err := client.Next(context.Background(), domain.NextRequest{CurrentLetter: "A"}); err == nil {
		t.Fatal("Expected error when server is unreachable, got nil")
	}
}

func TestFeedbackSendsRequest(t *testing.T) {
	var gotPath string
	var gotReq domain.FeedbackRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	err := client.Feedback(context.Background(), domain.FeedbackRequest{
		StateKey:  "A:0",
		Action:    "practice_current",
		Reward:    1,
		NextState: domain.NextState{Letter: "A", MasteryLevel: domain.MasteryPracticing},
	})
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}

	if gotPath != "/alphabet/feedback" {
		t.Errorf("Expected path /alphabet/feedback, got %q", gotPath)
	}
	if gotReq.StateKey != "A:0" {
		t.Errorf("Expected state key A:0 in request, got %q", gotReq.StateKey)
	}
	if gotReq.Reward != 1 {
		t.Errorf("Expected reward 1 in request, got %v", gotReq.Reward)
	}
}

func TestFeedbackReportsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	if err := client.Feedback(context.Background(), domain.FeedbackRequest{StateKey: "A:0"}); err == nil {
		t.Fatal("Expected error on 400 response, got nil")
	}
}

func TestNewFallsBackToDefaultBaseURL(t *testing.T) {
	client := New("", nil)
	if client.baseURL != DefaultConfig().BaseURL {
		t.Errorf("Expected default base URL, got %q", client.baseURL)
	}
}
