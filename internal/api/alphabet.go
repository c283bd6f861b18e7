package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
	"github.com/ashureev/alphabet-lab/internal/policy"
	"github.com/ashureev/alphabet-lab/internal/store"
	"github.com/go-chi/chi/v5"
)

// statsWindow bounds the attempt aggregate returned by GET /alphabet/stats.
const statsWindow = 24 * time.Hour

// AlphabetHandler handles the /alphabet endpoints.
type AlphabetHandler struct {
	engine *policy.Engine
	repo   store.Repository
}

// NewAlphabetHandler creates a new alphabet handler.
func NewAlphabetHandler(engine *policy.Engine, repo store.Repository) *AlphabetHandler {
	return &AlphabetHandler{engine: engine, repo: repo}
}

// RegisterRoutes registers the alphabet routes.
func (h *AlphabetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/alphabet", func(r chi.Router) {
		r.Post("/next", h.Next)
		r.Post("/feedback", h.Feedback)
		r.Get("/stats", h.Stats)
	})
}

// RegisterHealth registers the root health route.
func (h *AlphabetHandler) RegisterHealth(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"service": "alphabet-lab",
		})
	})
}

// Next returns the recommended next letter/action for a session snapshot.
func (h *AlphabetHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req domain.NextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.engine.Next(r.Context(), req)
	if err != nil {
		if errors.Is(err, policy.ErrInvalidRequest) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Failed to compute recommendation", "error", err, "letter", req.CurrentLetter)
		Error(w, http.StatusInternalServerError, "failed to compute recommendation")
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Feedback applies the Q-learning update for a completed attempt.
func (h *AlphabetHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req domain.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.Feedback(r.Context(), req); err != nil {
		if errors.Is(err, policy.ErrInvalidRequest) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Failed to apply feedback", "error", err, "state_key", req.StateKey)
		Error(w, http.StatusInternalServerError, "failed to apply feedback")
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Stats returns Q-table size and a recent attempt aggregate.
func (h *AlphabetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	states, err := h.repo.CountQStates(ctx)
	if err != nil {
		slog.Error("Failed to count q states", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	attempts, err := h.repo.AttemptStats(ctx, time.Now().Add(-statsWindow))
	if err != nil {
		slog.Error("Failed to load attempt stats", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"q_states": states,
		"attempts": attempts,
	})
}
