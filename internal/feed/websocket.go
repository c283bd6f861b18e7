package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ashureev/alphabet-lab/internal/policy"
	"github.com/ashureev/alphabet-lab/internal/scorer"
	"github.com/ashureev/alphabet-lab/internal/session"
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// eventBuffer bounds the per-session event queue; the controller drops
// events rather than block when a client reads slowly.
const eventBuffer = 16

// WebSocketHandler serves live practice sessions.
type WebSocketHandler struct {
	engine        *policy.Engine
	reg           *Registry
	accuracy      float64
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler. The engine serves
// recommendations and feedback in-process; accuracy configures the stub
// scorer driving attempts.
func NewWebSocketHandler(engine *policy.Engine, reg *Registry, accuracy float64, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		engine:        engine,
		reg:           reg,
		accuracy:      accuracy,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// clientMessage is the inbound WebSocket message structure.
type clientMessage struct {
	Type string `json:"type"`
}

// errorFrame is pushed to the client for non-fatal session errors.
type errorFrame struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("WebSocket close error", "error", closeErr)
		}
	}()

	sessionID := uuid.NewString()
	h.reg.Register(sessionID, ws)
	defer h.reg.Unregister(sessionID, ws)

	stub, err := scorer.NewStub(h.accuracy, nil)
	if err != nil {
		slog.Error("Failed to create scorer", "error", err, "session_id", sessionID)
		return
	}

	ctx := r.Context()
	events := make(chan session.Event, eventBuffer)
	ctrl := session.New(h.engine, h.engine, stub, slog.Default())
	ctrl.SetEvents(events)

	// Forward controller snapshots to the client.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if err := h.writeJSON(ctx, ws, ev); err != nil {
				slog.Debug("WebSocket write error", "error", err, "session_id", sessionID)
				return
			}
		}
	}()

	if err := ctrl.Start(ctx); err != nil {
		slog.Warn("Initial recommendation failed", "error", err, "session_id", sessionID)
	}

	h.readLoop(ctx, ws, ctrl, sessionID)

	close(events)
	<-done
}

// readLoop processes client messages until the connection drops.
func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, ctrl *session.Controller, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			slog.Debug("WebSocket read ended", "error", err, "session_id", sessionID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("Ignoring malformed client message", "session_id", sessionID)
			continue
		}

		switch msg.Type {
		case "attempt":
			if err := ctrl.RunAttempt(ctx); err != nil {
				h.surfaceError(ctx, ws, err, sessionID)
			}
		case "next":
			if err := ctrl.RequestNext(ctx); err != nil {
				h.surfaceError(ctx, ws, err, sessionID)
			}
		default:
			slog.Debug("Unknown client message type", "type", msg.Type, "session_id", sessionID)
		}
	}
}

// surfaceError reports a non-fatal session error to the client. The
// session itself always continues.
func (h *WebSocketHandler) surfaceError(ctx context.Context, ws *websocket.Conn, err error, sessionID string) {
	switch {
	case errors.Is(err, session.ErrScoringFailure):
		slog.Error("Scoring failed", "error", err, "session_id", sessionID)
	case errors.Is(err, session.ErrRecommendationUnavailable):
		slog.Warn("Recommendation unavailable", "error", err, "session_id", sessionID)
	default:
		slog.Error("Session error", "error", err, "session_id", sessionID)
	}

	frame := errorFrame{Kind: "error", Error: err.Error()}
	if writeErr := h.writeJSON(ctx, ws, frame); writeErr != nil {
		slog.Debug("Failed to surface session error", "error", writeErr, "session_id", sessionID)
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

// checkOrigin validates the request origin against the allowed frontend.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no origin.
		return true
	}
	if h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	allowed, err := url.Parse(h.allowedOrigin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, allowed.Host)
}
