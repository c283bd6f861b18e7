package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/alphabet-lab/internal/domain"
)

// defaultAction is reported with feedback until the first recommendation
// response names an action.
const defaultAction = "practice_current"

// phase is the controller's position in the attempt cycle.
type phase int

const (
	phaseIdle phase = iota
	phaseAwaitingRecommendation
	phaseAwaitingAttemptAndFeedback
)

// Controller owns the session state and serializes the attempt cycle.
// All mutation goes through RequestNext and RunAttempt; a call made while
// another cycle is in flight is a no-op, so there is never concurrent
// mutation of the mastery map, history, or session state.
type Controller struct {
	rec    RecommendationClient
	fb     FeedbackClient
	scorer Scorer
	logger *slog.Logger
	events chan<- Event

	mu         sync.Mutex
	phase      phase
	state      domain.SessionState
	mastery    domain.MasteryMap
	history    domain.RecentHistory
	lastAction string
}

// New creates a controller for a fresh session: current letter A, every
// letter unseen, and a locally seeded state key covering the window before
// the first recommendation response arrives.
func New(rec RecommendationClient, fb FeedbackClient, scorer Scorer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		rec:    rec,
		fb:     fb,
		scorer: scorer,
		logger: logger,
		state: domain.SessionState{
			Letter:   domain.FirstLetter,
			Mastery:  domain.MasteryUnseen,
			StateKey: domain.EncodeStateKey(domain.FirstLetter, domain.MasteryUnseen),
		},
		mastery:    domain.NewMasteryMap(),
		lastAction: defaultAction,
	}
}

// SetEvents attaches a channel that receives a snapshot after every state
// mutation. Sends never block; an event is dropped if the receiver falls
// behind. Must be called before the session starts.
func (c *Controller) SetEvents(ch chan<- Event) {
	c.events = ch
}

// Start issues the initial recommendation request for a fresh session.
func (c *Controller) Start(ctx context.Context) error {
	return c.RequestNext(ctx)
}

// RequestNext sends the current session snapshot to the policy service and
// applies the response: the returned state key is stored, and the current
// letter moves to the recommended target when one is present. A call made
// while another cycle is outstanding is a no-op. On failure or a malformed
// response the current letter and state key are kept unchanged and
// ErrRecommendationUnavailable is returned; the session continues.
func (c *Controller) RequestNext(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != phaseIdle {
		c.mu.Unlock()
		c.logger.Debug("recommendation request already outstanding, ignoring")
		return nil
	}
	c.phase = phaseAwaitingRecommendation
	req := c.snapshotLocked()
	c.mu.Unlock()

	resp, err := c.rec.Next(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = phaseIdle

	if err != nil {
		c.advanceIfMastered()
		return fmt.Errorf("%w: %v", ErrRecommendationUnavailable, err)
	}
	if resp.Target.Letter == "" && resp.StateKey == "" {
		c.advanceIfMastered()
		return fmt.Errorf("%w: response missing target letter and state key", ErrRecommendationUnavailable)
	}

	if resp.StateKey != "" {
		c.state.StateKey = resp.StateKey
	}
	if resp.Action != "" {
		c.lastAction = resp.Action
	}
	if resp.Target.Letter.Valid() {
		c.state.Letter = resp.Target.Letter
		c.state.Mastery = c.mastery[resp.Target.Letter]
	}
	c.advanceIfMastered()

	c.emitLocked(Event{Kind: EventRecommendation, Action: c.lastAction})
	return nil
}

// RunAttempt executes one full attempt cycle for the current letter:
// score the attempt, apply the mastery update, record history, send
// feedback, and chain into the next recommendation request. A scoring
// failure aborts the cycle with no state mutation and no feedback sent.
// A feedback delivery failure is logged as a warning and does not block
// progression.
func (c *Controller) RunAttempt(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != phaseIdle {
		c.mu.Unlock()
		c.logger.Debug("attempt rejected, cycle already in progress")
		return nil
	}
	c.phase = phaseAwaitingAttemptAndFeedback
	letter := c.state.Letter
	c.mu.Unlock()

	outcome, err := c.scorer.Score(ctx, letter)
	if err != nil {
		c.mu.Lock()
		c.phase = phaseIdle
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrScoringFailure, err)
	}

	c.mu.Lock()
	next := c.mastery[letter]
	if outcome.Correct {
		next = next.Advance()
	}
	c.mastery[letter] = next
	c.state.Mastery = next
	c.history.Append(letter)

	fbReq := domain.FeedbackRequest{
		StateKey: c.state.StateKey,
		Action:   c.lastAction,
		Reward:   outcome.Reward,
		NextState: domain.NextState{
			Letter:       letter,
			MasteryLevel: next,
		},
	}
	correct := outcome.Correct
	c.emitLocked(Event{Kind: EventAttempt, Action: c.lastAction, Correct: &correct, Reward: outcome.Reward})
	c.mu.Unlock()

	// Fire-and-forget: delivery is attempted once, not retried or queued.
	if err := c.fb.Feedback(ctx, fbReq); err != nil {
		c.logger.Warn("feedback delivery failed", "error", err, "state_key", fbReq.StateKey)
	}

	c.mu.Lock()
	c.advanceIfMastered()
	c.phase = phaseIdle
	c.mu.Unlock()

	return c.RequestNext(ctx)
}

// State returns the current session triple.
func (c *Controller) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mastery returns a copy of the mastery map.
func (c *Controller) Mastery() domain.MasteryMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mastery.Clone()
}

// History returns a copy of the stored recent history, oldest first.
func (c *Controller) History() []domain.Letter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Recent(len(c.history))
}

// snapshotLocked builds the recommendation request from current state.
// Only the most recent HistorySendLimit letters are sent.
func (c *Controller) snapshotLocked() domain.NextRequest {
	return domain.NextRequest{
		CurrentLetter: c.state.Letter,
		MasteryLevel:  c.state.Mastery,
		MasteryMap:    c.mastery.Clone(),
		RecentHistory: c.history.Recent(domain.HistorySendLimit),
	}
}

// advanceIfMastered is the guardrail hook, run synchronously at the end of
// every state-mutating operation: while the current letter is mastered, the
// session advances to its alphabetic successor so the learner always makes
// forward progress regardless of policy behavior. The last letter clamps in
// place. Runs before the next recommendation request is issued, so the
// policy service always sees an up-to-date current letter.
func (c *Controller) advanceIfMastered() {
	moved := false
	for c.mastery[c.state.Letter] == domain.MasteryMastered && !c.state.Letter.IsLast() {
		c.state.Letter = c.state.Letter.Next()
		moved = true
	}
	if moved {
		c.state.Mastery = c.mastery[c.state.Letter]
		c.logger.Debug("guardrail advanced past mastered letter", "letter", c.state.Letter)
	}
}

// emitLocked pushes a snapshot to the attached feed channel, if any.
func (c *Controller) emitLocked(ev Event) {
	if c.events == nil {
		return
	}
	ev.Letter = c.state.Letter
	ev.MasteryLevel = c.state.Mastery
	ev.MasteryMap = c.mastery.Clone()
	ev.RecentHistory = c.history.Recent(len(c.history))
	select {
	case c.events <- ev:
	default:
		c.logger.Debug("session event dropped, feed busy")
	}
}
