// Package scorer provides attempt scorers for the session controller.
// The reference stub stands in for a real recognition model: it judges an
// attempt correct with a fixed probability and maps the judgment to the
// +1/-1 reward convention. Zero (partial credit) is reserved for richer
// scorers and never produced here.
package scorer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
	"github.com/ashureev/alphabet-lab/internal/session"
)

var _ session.Scorer = (*Stub)(nil)

// DefaultAccuracy is the stub's default probability of a correct attempt.
const DefaultAccuracy = 0.7

// Stub is a probabilistic reference scorer.
type Stub struct {
	accuracy float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStub creates a stub scoring correct with the given probability.
// A nil rng gets a time-seeded source; tests pass a fixed seed.
func NewStub(accuracy float64, rng *rand.Rand) (*Stub, error) {
	if accuracy < 0 || accuracy > 1 {
		return nil, fmt.Errorf("accuracy must be within [0, 1], got %v", accuracy)
	}
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>32))
	}
	return &Stub{accuracy: accuracy, rng: rng}, nil
}

// Score judges one attempt of a letter.
func (s *Stub) Score(_ context.Context, letter domain.Letter) (domain.AttemptOutcome, error) {
	if !letter.Valid() {
		return domain.AttemptOutcome{}, fmt.Errorf("invalid letter %q", letter)
	}

	s.mu.Lock()
	correct := s.rng.Float64() < s.accuracy
	s.mu.Unlock()

	reward := -1.0
	if correct {
		reward = 1.0
	}
	return domain.AttemptOutcome{Correct: correct, Reward: reward}, nil
}
