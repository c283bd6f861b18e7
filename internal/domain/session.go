package domain

import (
	"fmt"
	"time"
)

// SessionState is the controller-owned triple of the current letter, its
// mastery level, and the opaque state key issued by the policy service.
// The state key is pass-through only: stored from the last recommendation
// response and forwarded verbatim on the next feedback call.
type SessionState struct {
	Letter   Letter
	Mastery  MasteryLevel
	StateKey string
}

// EncodeStateKey builds the letter:level state encoding the policy service
// uses. The session controller only calls this once, to seed the key before
// the first recommendation response arrives.
func EncodeStateKey(l Letter, m MasteryLevel) string {
	return fmt.Sprintf("%s:%d", l, int(m))
}

// AttemptOutcome is the scorer's judgment of a single practice attempt.
// Reward convention: +1 correct, -1 incorrect. Zero is reserved for
// partial-credit scorers and is not produced by the reference stub.
type AttemptOutcome struct {
	Correct bool
	Reward  float64
}

// NextRequest is the body of POST /alphabet/next.
type NextRequest struct {
	CurrentLetter Letter       `json:"current_letter"`
	MasteryLevel  MasteryLevel `json:"mastery_level"`
	MasteryMap    MasteryMap   `json:"mastery_map"`
	RecentHistory []Letter     `json:"recent_history"`
}

// Target is the concrete letter (and optional review list) a
// recommendation resolves to.
type Target struct {
	Letter Letter   `json:"letter"`
	List   []Letter `json:"list,omitempty"`
}

// NextResponse is the body of the POST /alphabet/next response.
type NextResponse struct {
	Action   string `json:"action"`
	Target   Target `json:"target"`
	StateKey string `json:"state_key"`
}

// NextState identifies the post-attempt state reported with feedback.
type NextState struct {
	Letter       Letter       `json:"letter"`
	MasteryLevel MasteryLevel `json:"mastery_level"`
}

// FeedbackRequest is the body of POST /alphabet/feedback. No response body
// is consumed.
type FeedbackRequest struct {
	StateKey  string    `json:"state_key"`
	Action    string    `json:"action"`
	Reward    float64   `json:"reward"`
	NextState NextState `json:"next_state"`
}

// AttemptRecord is a persisted row of the server-side attempt log.
type AttemptRecord struct {
	StateKey    string
	Action      string
	Reward      float64
	NextLetter  Letter
	NextMastery MasteryLevel
	CreatedAt   time.Time
}
