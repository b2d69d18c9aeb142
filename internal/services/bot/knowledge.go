package bot

import (
	"slices"

	"github.com/mcoot/wordlegame-go/internal/model"
)

// Knowledge is what the AI has learned about the current secret this round
type Knowledge struct {
	// Confirmed maps a position to the letter known to be there
	Confirmed map[int]rune
	// Present holds letters known to be in the secret at an unknown position
	Present map[rune]struct{}
	// Excluded holds letters known not to be in the secret
	Excluded map[rune]struct{}
	// Guessed is the ordered history of guesses this round
	Guessed []string
}

// NewKnowledge returns empty knowledge
func NewKnowledge() *Knowledge {
	return &Knowledge{
		Confirmed: make(map[int]rune),
		Present:   make(map[rune]struct{}),
		Excluded:  make(map[rune]struct{}),
	}
}

// Learn records the feedback for one guess.
//
// Correct and Present tiles are applied before Absent ones, so a doubled
// guess letter that is Absent in one position but Present or Correct in
// another is never excluded.
func (k *Knowledge) Learn(guess string, tiles []model.TileState) {
	letters := []rune(guess)
	k.Guessed = append(k.Guessed, guess)

	for i, tile := range tiles {
		switch tile {
		case model.TileCorrect:
			k.Confirmed[i] = letters[i]
			delete(k.Present, letters[i])
		case model.TilePresent:
			if !k.isConfirmed(letters[i]) {
				k.Present[letters[i]] = struct{}{}
			}
		}
	}

	for i, tile := range tiles {
		if tile != model.TileAbsent {
			continue
		}
		if !k.isConfirmed(letters[i]) && !k.isPresent(letters[i]) {
			k.Excluded[letters[i]] = struct{}{}
		}
	}

	for r := range k.Excluded {
		if k.isConfirmed(r) || k.isPresent(r) {
			delete(k.Excluded, r)
		}
	}
}

// Consistent reports whether candidate could still be the secret given the
// accumulated constraints and the exact tile pattern of the latest guess.
func (k *Knowledge) Consistent(candidate, guess string, tiles []model.TileState) bool {
	c := []rune(candidate)
	g := []rune(guess)
	if len(c) != len(g) || len(g) != len(tiles) {
		return false
	}

	for pos, r := range k.Confirmed {
		if pos >= len(c) || c[pos] != r {
			return false
		}
	}
	for r := range k.Present {
		if !slices.Contains(c, r) {
			return false
		}
	}
	for r := range k.Excluded {
		if slices.Contains(c, r) {
			return false
		}
	}

	for i, tile := range tiles {
		switch tile {
		case model.TileCorrect:
			if c[i] != g[i] {
				return false
			}
		case model.TilePresent:
			if c[i] == g[i] || !slices.Contains(c, g[i]) {
				return false
			}
		case model.TileAbsent:
			if c[i] == g[i] {
				return false
			}
			if !k.isConfirmed(g[i]) && !k.isPresent(g[i]) && slices.Contains(c, g[i]) {
				return false
			}
		}
	}
	return true
}

// HasGuessed reports whether word was already guessed this round
func (k *Knowledge) HasGuessed(word string) bool {
	return slices.Contains(k.Guessed, word)
}

func (k *Knowledge) isConfirmed(r rune) bool {
	for _, c := range k.Confirmed {
		if c == r {
			return true
		}
	}
	return false
}

func (k *Knowledge) isPresent(r rune) bool {
	_, ok := k.Present[r]
	return ok
}
