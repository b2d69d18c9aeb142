// Package bot implements the PVE opponent: a player that narrows a pool of
// candidate words using the feedback from its own guesses.
package bot

import (
	"github.com/samber/lo"

	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/evaluator"
)

// Player is an AI opponent for one session. It is not safe for concurrent use.
type Player struct {
	dictionary []string
	strategy   Strategy

	candidates []string
	knowledge  *Knowledge
}

// New creates a Player for a dictionary of same-length words and a skill tier
func New(dictionary []string, difficulty model.Difficulty, rnd random.Random) *Player {
	return NewWithStrategy(dictionary, StrategyFor(difficulty, rnd))
}

// NewWithStrategy creates a Player with an explicit strategy
func NewWithStrategy(dictionary []string, strategy Strategy) *Player {
	p := &Player{
		dictionary: lo.Uniq(dictionary),
		strategy:   strategy,
	}
	p.Reset()
	return p
}

// NextGuess picks the next word to play
func (p *Player) NextGuess() string {
	return p.strategy.Choose(View{
		Dictionary: p.dictionary,
		Candidates: lo.Filter(p.candidates, func(w string, _ int) bool {
			return !p.knowledge.HasGuessed(w)
		}),
		Knowledge: p.knowledge,
	})
}

// Update learns from the feedback for guess against secret and, for the
// narrowing tiers, drops every candidate the feedback rules out.
func (p *Player) Update(guess, secret string) error {
	tiles, err := evaluator.Evaluate(secret, guess)
	if err != nil {
		return err
	}
	p.Observe(guess, tiles)
	return nil
}

// Observe learns from tiles already evaluated for guess
func (p *Player) Observe(guess string, tiles []model.TileState) {
	p.knowledge.Learn(guess, tiles)

	if p.strategy.Narrows() {
		p.candidates = lo.Filter(p.candidates, func(w string, _ int) bool {
			return w != guess && p.knowledge.Consistent(w, guess, tiles)
		})
	}
}

// Reset restores the full dictionary and forgets everything learned
func (p *Player) Reset() {
	p.candidates = make([]string, len(p.dictionary))
	copy(p.candidates, p.dictionary)
	p.knowledge = NewKnowledge()
}

// CandidateCount is the size of the remaining candidate pool
func (p *Player) CandidateCount() int {
	return len(p.candidates)
}

// Guessed returns this round's guesses in order
func (p *Player) Guessed() []string {
	out := make([]string, len(p.knowledge.Guessed))
	copy(out, p.knowledge.Guessed)
	return out
}

// Candidates returns a copy of the remaining candidate pool
func (p *Player) Candidates() []string {
	out := make([]string, len(p.candidates))
	copy(out, p.candidates)
	return out
}
