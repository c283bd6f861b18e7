package domain

import "fmt"

// MasteryLevel is the per-letter proficiency ordinal.
type MasteryLevel int

const (
	// MasteryUnseen means the letter has never been practiced correctly.
	MasteryUnseen MasteryLevel = 0
	// MasteryPracticing means at least one correct attempt.
	MasteryPracticing MasteryLevel = 1
	// MasteryMastered is the maximum level; the guardrail advances past
	// letters at this level.
	MasteryMastered MasteryLevel = 2
)

// Advance returns the level after a correct attempt, clamped at mastered.
// Incorrect attempts never demote a level, so there is no inverse.
func (m MasteryLevel) Advance() MasteryLevel {
	if m >= MasteryMastered {
		return MasteryMastered
	}
	return m + 1
}

// Valid reports whether m is within the 0..2 ordinal range.
func (m MasteryLevel) Valid() bool {
	return m >= MasteryUnseen && m <= MasteryMastered
}

func (m MasteryLevel) String() string {
	switch m {
	case MasteryUnseen:
		return "unseen"
	case MasteryPracticing:
		return "practicing"
	case MasteryMastered:
		return "mastered"
	}
	return fmt.Sprintf("mastery(%d)", int(m))
}

// MasteryMap tracks the current level of every letter. It always holds an
// entry for all 26 letters.
type MasteryMap map[Letter]MasteryLevel

// NewMasteryMap returns a map with every letter initialized to unseen.
func NewMasteryMap() MasteryMap {
	m := make(MasteryMap, AlphabetSize)
	for _, l := range Alphabet() {
		m[l] = MasteryUnseen
	}
	return m
}

// Clone returns an independent copy, used for request snapshots so callers
// never observe mid-cycle mutation.
func (m MasteryMap) Clone() MasteryMap {
	out := make(MasteryMap, len(m))
	for l, lvl := range m {
		out[l] = lvl
	}
	return out
}
