// Package domain contains core domain types for the alphabet lab.
package domain

// Letter is one symbol of the fixed practice alphabet.
type Letter string

const (
	// FirstLetter is where every new session starts.
	FirstLetter Letter = "A"
	// LastLetter is the terminal letter; advancement clamps here.
	LastLetter Letter = "Z"
)

// AlphabetSize is the number of letters in the practice alphabet.
const AlphabetSize = 26

// Alphabet returns all letters in iteration order, A through Z.
func Alphabet() []Letter {
	letters := make([]Letter, 0, AlphabetSize)
	for c := byte('A'); c <= byte('Z'); c++ {
		letters = append(letters, Letter(c))
	}
	return letters
}

// Valid reports whether l is a member of the practice alphabet.
func (l Letter) Valid() bool {
	return len(l) == 1 && l[0] >= 'A' && l[0] <= 'Z'
}

// Next returns the alphabetic successor. The last letter has no
// successor and returns itself (no wraparound).
func (l Letter) Next() Letter {
	if !l.Valid() || l == LastLetter {
		return l
	}
	return Letter(l[0] + 1)
}

// IsLast reports whether l is the final letter of the alphabet.
func (l Letter) IsLast() bool {
	return l == LastLetter
}
