package session

import "github.com/ashureev/alphabet-lab/internal/domain"

// EventKind labels what produced a session event.
type EventKind string

const (
	// EventRecommendation is emitted after a recommendation response is
	// applied.
	EventRecommendation EventKind = "recommendation"
	// EventAttempt is emitted after an attempt's mastery update.
	EventAttempt EventKind = "attempt"
)

// Event is a post-mutation snapshot pushed to an attached feed channel.
type Event struct {
	Kind          EventKind           `json:"kind"`
	Letter        domain.Letter       `json:"letter"`
	MasteryLevel  domain.MasteryLevel `json:"mastery_level"`
	MasteryMap    domain.MasteryMap   `json:"mastery_map"`
	RecentHistory []domain.Letter     `json:"recent_history"`
	Action        string              `json:"action,omitempty"`
	Correct       *bool               `json:"correct,omitempty"`
	Reward        float64             `json:"reward,omitempty"`
}
