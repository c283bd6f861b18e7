// Package session implements the adaptive practice session state machine.
//
// A Controller owns all mutable session state (current letter, mastery map,
// recent history, pass-through state key) and drives the attempt cycle:
// score an attempt, apply the mastery update, report feedback to the policy
// service, and fetch the next recommendation. Network transports live behind
// the narrow client interfaces below so the state machine is testable with
// deterministic fakes.
package session

import (
	"context"
	"errors"

	"github.com/ashureev/alphabet-lab/internal/domain"
)

// RecommendationClient requests the next recommended letter/action from the
// policy service.
type RecommendationClient interface {
	Next(ctx context.Context, req domain.NextRequest) (domain.NextResponse, error)
}

// FeedbackClient reports the outcome of one attempt cycle to the policy
// service. No response payload is consumed.
type FeedbackClient interface {
	Feedback(ctx context.Context, req domain.FeedbackRequest) error
}

// Scorer produces the correctness judgment and reward for one practice
// attempt of a letter. The scoring method itself (a recognition model, a
// human judge) is outside the controller's concern.
type Scorer interface {
	Score(ctx context.Context, letter domain.Letter) (domain.AttemptOutcome, error)
}

var (
	// ErrRecommendationUnavailable reports a failed or malformed
	// recommendation response. The session keeps its current letter and
	// state key and continues.
	ErrRecommendationUnavailable = errors.New("recommendation unavailable")

	// ErrScoringFailure reports that the scorer could not judge an
	// attempt. The cycle is aborted with no state mutation and no
	// feedback sent.
	ErrScoringFailure = errors.New("scoring failure")
)
