// Package policy implements the Q-learning recommendation policy behind
// the /alphabet endpoints. State keys encode (letter, mastery level);
// action values live in the store so learning survives restarts.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
	"github.com/ashureev/alphabet-lab/internal/store"
)

// ErrInvalidRequest reports a request that fails domain validation, as
// opposed to a storage failure.
var ErrInvalidRequest = errors.New("invalid request")

// Actions the policy chooses between for every recommendation.
const (
	ActionPracticeCurrent = "practice_current"
	ActionMoveNext        = "move_next"
	ActionJumpTrouble     = "jump_trouble"
	ActionReviewRecent    = "review_recent"
)

// Actions lists all policy actions in a fixed order, used for uniform
// exploration and deterministic argmax tie-breaking.
var Actions = []string{
	ActionPracticeCurrent,
	ActionMoveNext,
	ActionJumpTrouble,
	ActionReviewRecent,
}

// reviewListMax is how many distinct recent letters a review covers.
const reviewListMax = 3

// Params holds the Q-learning hyperparameters.
type Params struct {
	Alpha   float64 // learning rate
	Gamma   float64 // discount
	Epsilon float64 // exploration probability
}

// DefaultParams returns the reference hyperparameters.
func DefaultParams() Params {
	return Params{Alpha: 0.5, Gamma: 0.9, Epsilon: 0.15}
}

// Engine serves recommendations and applies feedback updates.
type Engine struct {
	repo   store.Repository
	params Params
	logger *slog.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewEngine creates an engine with default hyperparameters and a
// time-seeded random source.
func NewEngine(repo store.Repository, logger *slog.Logger) *Engine {
	return NewEngineWithParams(repo, logger, DefaultParams(), nil)
}

// NewEngineWithParams creates an engine with explicit hyperparameters.
// A nil rng gets a time-seeded source; tests pass a fixed seed.
func NewEngineWithParams(repo store.Repository, logger *slog.Logger, params Params, rng *rand.Rand) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>32))
	}
	return &Engine{repo: repo, params: params, logger: logger, rng: rng}
}

// Next chooses an action for the session snapshot epsilon-greedily and
// resolves it to a concrete target letter (plus a review list when the
// action is review_recent). The returned state key correlates this
// recommendation with its subsequent feedback call.
func (e *Engine) Next(ctx context.Context, req domain.NextRequest) (domain.NextResponse, error) {
	if !req.CurrentLetter.Valid() {
		return domain.NextResponse{}, fmt.Errorf("%w: current letter %q", ErrInvalidRequest, req.CurrentLetter)
	}
	if !req.MasteryLevel.Valid() {
		return domain.NextResponse{}, fmt.Errorf("%w: mastery level %d", ErrInvalidRequest, req.MasteryLevel)
	}

	stateKey := domain.EncodeStateKey(req.CurrentLetter, req.MasteryLevel)
	values, err := e.repo.QValues(ctx, stateKey)
	if err != nil {
		return domain.NextResponse{}, fmt.Errorf("load q values: %w", err)
	}

	action := e.chooseAction(values)
	target := e.resolveTarget(action, req.CurrentLetter, req.MasteryMap, req.RecentHistory)

	e.logger.Debug("recommendation computed", "state_key", stateKey, "action", action, "target", target.Letter)

	return domain.NextResponse{Action: action, Target: target, StateKey: stateKey}, nil
}

// Feedback applies one Q-learning update for a completed attempt:
// q(s,a) += alpha * (reward + gamma * max_a' q(s',a') - q(s,a)).
// The attempt is also appended to the attempt log; a logging failure is a
// warning, not an error, so a reporting hiccup never loses the Q update.
func (e *Engine) Feedback(ctx context.Context, req domain.FeedbackRequest) error {
	if req.StateKey == "" {
		return fmt.Errorf("%w: missing state key", ErrInvalidRequest)
	}
	if req.Action == "" {
		return fmt.Errorf("%w: missing action", ErrInvalidRequest)
	}
	if !req.NextState.Letter.Valid() || !req.NextState.MasteryLevel.Valid() {
		return fmt.Errorf("%w: next state %q:%d", ErrInvalidRequest, req.NextState.Letter, req.NextState.MasteryLevel)
	}

	values, err := e.repo.QValues(ctx, req.StateKey)
	if err != nil {
		return fmt.Errorf("load q values: %w", err)
	}

	nextKey := domain.EncodeStateKey(req.NextState.Letter, req.NextState.MasteryLevel)
	nextValues, err := e.repo.QValues(ctx, nextKey)
	if err != nil {
		return fmt.Errorf("load next q values: %w", err)
	}

	oldQ := values[req.Action]
	// Max over the next state's recorded values; 0 only when the state
	// has none. A negative-only value set must yield its negative max.
	nextMax := 0.0
	first := true
	for _, v := range nextValues {
		if first || v > nextMax {
			nextMax = v
			first = false
		}
	}
	newQ := oldQ + e.params.Alpha*(req.Reward+e.params.Gamma*nextMax-oldQ)

	if err := e.repo.UpsertQValue(ctx, req.StateKey, req.Action, newQ); err != nil {
		return fmt.Errorf("store q value: %w", err)
	}

	if err := e.repo.RecordAttempt(ctx, &domain.AttemptRecord{
		StateKey:    req.StateKey,
		Action:      req.Action,
		Reward:      req.Reward,
		NextLetter:  req.NextState.Letter,
		NextMastery: req.NextState.MasteryLevel,
	}); err != nil {
		e.logger.Warn("failed to record attempt", "error", err, "state_key", req.StateKey)
	}

	return nil
}

// chooseAction is epsilon-greedy over the known action values. States with
// no recorded values explore uniformly.
func (e *Engine) chooseAction(values map[string]float64) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(values) == 0 || e.rng.Float64() < e.params.Epsilon {
		return Actions[e.rng.IntN(len(Actions))]
	}

	best := ""
	bestQ := 0.0
	for _, action := range Actions {
		q, ok := values[action]
		if !ok {
			continue
		}
		if best == "" || q > bestQ {
			best = action
			bestQ = q
		}
	}
	if best == "" {
		return Actions[e.rng.IntN(len(Actions))]
	}
	return best
}

// resolveTarget turns an abstract action into a concrete recommendation
// payload.
func (e *Engine) resolveTarget(action string, letter domain.Letter, mastery domain.MasteryMap, recent []domain.Letter) domain.Target {
	switch action {
	case ActionMoveNext:
		return domain.Target{Letter: letter.Next()}
	case ActionJumpTrouble:
		if len(mastery) == 0 {
			return domain.Target{Letter: letter}
		}
		if trouble := e.pickTroubleLetter(mastery); trouble != "" {
			return domain.Target{Letter: trouble}
		}
		return domain.Target{Letter: letter}
	case ActionReviewRecent:
		list := distinctRecent(recent, reviewListMax)
		if len(list) == 0 {
			return domain.Target{Letter: letter, List: []domain.Letter{letter}}
		}
		return domain.Target{Letter: list[len(list)-1], List: list}
	default: // practice_current
		return domain.Target{Letter: letter}
	}
}

// pickTroubleLetter chooses a random unseen letter, falling back to
// practicing letters, then to none. Only letters present in the map are
// candidates; a partial map does not turn its absent letters into trouble.
func (e *Engine) pickTroubleLetter(mastery domain.MasteryMap) domain.Letter {
	var unseen, practicing []domain.Letter
	for _, l := range domain.Alphabet() {
		lvl, ok := mastery[l]
		if !ok {
			continue
		}
		switch lvl {
		case domain.MasteryUnseen:
			unseen = append(unseen, l)
		case domain.MasteryPracticing:
			practicing = append(practicing, l)
		}
	}

	candidates := unseen
	if len(candidates) == 0 {
		candidates = practicing
	}
	if len(candidates) == 0 {
		return ""
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return candidates[e.rng.IntN(len(candidates))]
}

// distinctRecent returns up to max distinct letters from the history,
// most recent first.
func distinctRecent(recent []domain.Letter, max int) []domain.Letter {
	var seen []domain.Letter
	for i := len(recent) - 1; i >= 0 && len(seen) < max; i-- {
		l := recent[i]
		duplicate := false
		for _, s := range seen {
			if s == l {
				duplicate = true
				break
			}
		}
		if !duplicate {
			seen = append(seen, l)
		}
	}
	return seen
}
