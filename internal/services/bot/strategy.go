package bot

import (
	"github.com/samber/lo"

	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/model"
)

// smallPoolSize is the candidate count at or below which NORMAL guesses at random
const smallPoolSize = 5

// Hard mode scoring weights
const (
	confirmedBonus = 100.0
	presentBonus   = 50.0
	diversityBonus = 5.0
)

// View is the state a strategy may look at when choosing a guess
type View struct {
	// Dictionary is every word of the round's length
	Dictionary []string
	// Candidates is the narrowed pool with this round's guesses removed
	Candidates []string
	// Knowledge is the accumulated feedback this round
	Knowledge *Knowledge
}

// Strategy defines how the AI picks its next guess
type Strategy interface {
	// Choose returns the next guess, or "" if it has nothing to offer
	Choose(view View) string
	// Narrows reports whether feedback should shrink the candidate pool
	Narrows() bool
}

// StrategyFor returns the strategy for an AI skill tier. MIXTA plays like NORMAL.
func StrategyFor(difficulty model.Difficulty, rnd random.Random) Strategy {
	switch difficulty {
	case model.DifficultyEasy:
		return NewRandomStrategy(rnd)
	case model.DifficultyHard:
		return NewInformedStrategy(rnd)
	default:
		return NewFrequencyStrategy(rnd)
	}
}

// RandomStrategy guesses any dictionary word it has not tried this round
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) Choose(view View) string {
	available := lo.Filter(view.Dictionary, func(w string, _ int) bool {
		return !view.Knowledge.HasGuessed(w)
	})
	if len(available) == 0 {
		return pick(s.random, view.Dictionary)
	}
	return pick(s.random, available)
}

func (s *RandomStrategy) Narrows() bool { return false }

// FrequencyStrategy prefers candidates made of common Spanish letters
type FrequencyStrategy struct {
	random random.Random
}

// NewFrequencyStrategy creates a new FrequencyStrategy
func NewFrequencyStrategy(rnd random.Random) *FrequencyStrategy {
	return &FrequencyStrategy{random: rnd}
}

func (s *FrequencyStrategy) Choose(view View) string {
	if len(view.Candidates) == 0 {
		return pick(s.random, view.Dictionary)
	}
	if len(view.Candidates) <= smallPoolSize {
		return pick(s.random, view.Candidates)
	}
	return best(view.Candidates, frequencyScore)
}

func (s *FrequencyStrategy) Narrows() bool { return true }

// InformedStrategy scores candidates by how well they use what is already known
type InformedStrategy struct {
	random random.Random
}

// NewInformedStrategy creates a new InformedStrategy
func NewInformedStrategy(rnd random.Random) *InformedStrategy {
	return &InformedStrategy{random: rnd}
}

func (s *InformedStrategy) Choose(view View) string {
	switch len(view.Candidates) {
	case 0:
		return pick(s.random, view.Dictionary)
	case 1:
		return view.Candidates[0]
	}

	k := view.Knowledge
	return best(view.Candidates, func(word string) float64 {
		letters := []rune(word)
		var score float64
		for pos, r := range k.Confirmed {
			if pos < len(letters) && letters[pos] == r {
				score += confirmedBonus
			}
		}
		for r := range k.Present {
			if lo.Contains(letters, r) {
				score += presentBonus
			}
		}
		score += float64(uniqueLetters(word)) * diversityBonus
		return score + frequencyScore(word)
	})
}

func (s *InformedStrategy) Narrows() bool { return true }

func pick(rnd random.Random, words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[rnd.Intn(len(words))]
}

// best returns the highest scoring word; ties go to the earliest word
func best(words []string, score func(string) float64) string {
	top := words[0]
	topScore := score(top)
	for _, w := range words[1:] {
		if sc := score(w); sc > topScore {
			top, topScore = w, sc
		}
	}
	return top
}
