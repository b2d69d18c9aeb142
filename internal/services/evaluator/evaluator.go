// Package evaluator scores a guess against a secret word.
package evaluator

import (
	"fmt"

	"github.com/mcoot/wordlegame-go/internal/model"
)

// Evaluate compares guess against secret letter by letter.
//
// Exact matches are marked first. Remaining secret letters form a multiset
// that is consumed left to right by misplaced guess letters, so a repeated
// guess letter is only credited as often as it occurs in the secret.
// Comparison is by rune, so accented letters and Ñ count as one position.
func Evaluate(secret, guess string) ([]model.TileState, error) {
	s := []rune(secret)
	g := []rune(guess)
	if len(s) != len(g) {
		return nil, fmt.Errorf("%w: secret has %d letters, guess has %d", model.ErrLengthMismatch, len(s), len(g))
	}

	tiles := make([]model.TileState, len(g))
	remaining := make(map[rune]int, len(s))

	for i := range g {
		if g[i] == s[i] {
			tiles[i] = model.TileCorrect
			continue
		}
		remaining[s[i]]++
	}

	for i := range g {
		if tiles[i] == model.TileCorrect {
			continue
		}
		if remaining[g[i]] > 0 {
			tiles[i] = model.TilePresent
			remaining[g[i]]--
		} else {
			tiles[i] = model.TileAbsent
		}
	}

	return tiles, nil
}

// MustEvaluate is Evaluate for callers that have already checked lengths
func MustEvaluate(secret, guess string) []model.TileState {
	tiles, err := Evaluate(secret, guess)
	if err != nil {
		panic(err)
	}
	return tiles
}
