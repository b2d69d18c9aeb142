// Package session runs a single-connection PVE or SOLO series: one secret per
// round, a player track, an optional AI track and best-of-N scoring.
package session

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/bot"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/services/evaluator"
)

const (
	// minTimedAIDelay is the floor for AI thinking time when a guess timer is set
	minTimedAIDelay = 300 * time.Millisecond
	// timedAIDelayShare is the per-mille of the guess timer the AI spends thinking
	timedAIDelayShare = 700
)

// Config holds the rules a session is started with
type Config struct {
	ID           string
	Mode         model.GameMode
	SeriesLength int
	WordLength   int
	MaxAttempts  int
	Difficulty   model.Difficulty
	PlayerName   string
	TimerSeconds int
}

// Session is owned by one connection and is not safe for concurrent use
type Session struct {
	cfg    Config
	words  dictionary.Source
	ai     *bot.Player
	logger *slog.Logger

	round      int
	playerWins int
	aiWins     int

	secret         string
	playerAttempts int
	aiAttempts     int
	playerGuesses  []string
	aiGuesses      []string
	playerWon      bool
	aiWon          bool
	scored         *model.RoundResult
}

// New creates a session and starts its first round
func New(cfg Config, words dictionary.Source, rnd random.Random, logger *slog.Logger) (*Session, error) {
	if cfg.ID == "" {
		cfg.ID = rnd.NewID()
	}
	s := &Session{
		cfg:    cfg,
		words:  words,
		logger: logger.With(slog.String("component", "session"), slog.String("game_id", cfg.ID)),
	}

	if cfg.Mode == model.ModePVE {
		dict := words.Words(cfg.WordLength, model.DifficultyMixed)
		if len(dict) == 0 {
			return nil, fmt.Errorf("%w: no %d letter words for the AI", model.ErrNoWords, cfg.WordLength)
		}
		s.ai = bot.New(dict, cfg.Difficulty, rnd)
	}

	if err := s.StartNewRound(); err != nil {
		return nil, err
	}
	return s, nil
}

// StartNewRound draws a new secret and clears both sides' round state
func (s *Session) StartNewRound() error {
	secret, err := s.words.RandomWord(s.cfg.WordLength, s.cfg.Difficulty)
	if err != nil {
		return err
	}

	s.round++
	s.secret = dictionary.Normalize(secret)
	s.playerAttempts = 0
	s.aiAttempts = 0
	s.playerGuesses = nil
	s.aiGuesses = nil
	s.playerWon = false
	s.aiWon = false
	s.scored = nil
	if s.ai != nil {
		s.ai.Reset()
	}

	s.logger.Debug("round started",
		slog.Int("round", s.round),
		slog.Int("series_length", s.cfg.SeriesLength),
		slog.String("secret", s.secret))
	return nil
}

// ProcessGuess applies the player's guess. Rule violations come back as an
// invalid outcome and do not use up an attempt.
func (s *Session) ProcessGuess(word string) model.GuessOutcome {
	if s.playerWon {
		return model.Rejected(s.playerAttempts, true, "already won this round")
	}
	if s.playerAttempts >= s.cfg.MaxAttempts {
		return model.Rejected(s.playerAttempts, false, "no attempts left")
	}

	guess := dictionary.Normalize(word)
	if n := utf8.RuneCountInString(s.secret); utf8.RuneCountInString(guess) != n {
		return model.Rejected(s.playerAttempts, false, fmt.Sprintf("word must have %d letters", n))
	}
	if !s.words.IsValid(guess) {
		return model.Rejected(s.playerAttempts, false, "not a valid word")
	}

	tiles := evaluator.MustEvaluate(s.secret, guess)
	s.playerAttempts++
	s.playerGuesses = append(s.playerGuesses, guess)
	s.playerWon = model.AllCorrect(tiles)

	outcome := model.GuessOutcome{
		Valid:        true,
		Tiles:        tiles,
		Won:          s.playerWon,
		AttemptsUsed: s.playerAttempts,
	}
	if s.playerWon {
		outcome.Message = "solved"
	}
	return outcome
}

// ProcessAITurn plays one AI guess. It reports false when there is no AI or
// the AI has already won or run out of attempts.
func (s *Session) ProcessAITurn() (model.AIMove, bool) {
	if s.ai == nil || s.aiWon || s.aiAttempts >= s.cfg.MaxAttempts {
		return model.AIMove{}, false
	}

	guess := s.ai.NextGuess()
	tiles, err := evaluator.Evaluate(s.secret, guess)
	if err != nil {
		s.logger.Error("ai produced an unplayable guess", slog.String("guess", guess), slog.String("error", err.Error()))
		return model.AIMove{}, false
	}

	s.aiAttempts++
	s.aiGuesses = append(s.aiGuesses, guess)
	s.aiWon = model.AllCorrect(tiles)
	s.ai.Observe(guess, tiles)

	s.logger.Debug("ai guessed",
		slog.String("guess", guess),
		slog.Int("attempt", s.aiAttempts),
		slog.Bool("won", s.aiWon),
		slog.Int("candidates", s.ai.CandidateCount()))

	return model.AIMove{Word: guess, Tiles: tiles, Won: s.aiWon, Attempts: s.aiAttempts}, true
}

// PlayerDone reports whether the player can no longer guess this round
func (s *Session) PlayerDone() bool {
	return s.playerWon || s.playerAttempts >= s.cfg.MaxAttempts
}

func (s *Session) aiDone() bool {
	return s.ai == nil || s.aiWon || s.aiAttempts >= s.cfg.MaxAttempts
}

// IsRoundOver is true once either side has won or both sides are out of
// attempts. A SOLO session has no AI side, which counts as out of attempts.
func (s *Session) IsRoundOver() bool {
	return s.playerWon || s.aiWon || (s.PlayerDone() && s.aiDone())
}

// RoundWinner resolves the round and credits the winner. Repeated calls in the
// same round return the first result without crediting again.
func (s *Session) RoundWinner() model.RoundResult {
	if s.scored != nil {
		return *s.scored
	}

	var winner model.Winner
	switch {
	case s.playerWon && !s.aiWon:
		winner = model.WinnerPlayer
	case s.aiWon && !s.playerWon:
		winner = model.WinnerAI
	case s.playerWon && s.aiWon && s.playerAttempts < s.aiAttempts:
		winner = model.WinnerPlayer
	case s.playerWon && s.aiWon && s.aiAttempts < s.playerAttempts:
		winner = model.WinnerAI
	default:
		winner = model.WinnerDraw
	}

	switch winner {
	case model.WinnerPlayer:
		s.playerWins++
	case model.WinnerAI:
		s.aiWins++
	}

	s.scored = &model.RoundResult{
		Winner:         winner,
		PlayerAttempts: s.playerAttempts,
		AIAttempts:     s.aiAttempts,
		Solution:       s.secret,
	}
	s.logger.Info("round finished",
		slog.Int("round", s.round),
		slog.String("winner", string(winner)),
		slog.Int("player_attempts", s.playerAttempts),
		slog.Int("ai_attempts", s.aiAttempts))
	return *s.scored
}

// IsGameOver is true once a side holds a majority of the series or every
// round has been played
func (s *Session) IsGameOver() bool {
	needed := s.cfg.SeriesLength/2 + 1
	return s.playerWins >= needed || s.aiWins >= needed || s.round >= s.cfg.SeriesLength
}

// GameWinner compares round wins; equal tallies are a draw
func (s *Session) GameWinner() model.SeriesResult {
	winner := model.WinnerDraw
	switch {
	case s.playerWins > s.aiWins:
		winner = model.WinnerPlayer
	case s.aiWins > s.playerWins:
		winner = model.WinnerAI
	}
	return model.SeriesResult{
		Winner:       winner,
		PlayerRounds: s.playerWins,
		AIRounds:     s.aiWins,
		TotalRounds:  s.round,
	}
}

// Stats returns the figures recorded against the player when the series ends
func (s *Session) Stats() model.SessionStats {
	return model.SessionStats{
		CurrentRound:        s.round,
		TotalRounds:         s.cfg.SeriesLength,
		PlayerRoundsWon:     s.playerWins,
		AIRoundsWon:         s.aiWins,
		PlayerAttempts:      s.playerAttempts,
		AIAttempts:          s.aiAttempts,
		PlayerWordsGuessed:  len(s.playerGuesses),
		TotalWordsAttempted: s.round,
	}
}

// AIDelay is how long the AI "thinks" before a move. With a guess timer it
// uses 70% of the timer, never less than 300ms; otherwise it uses fallback.
func (s *Session) AIDelay(fallback time.Duration) time.Duration {
	if s.cfg.TimerSeconds <= 0 {
		return fallback
	}
	d := time.Duration(s.cfg.TimerSeconds) * timedAIDelayShare * time.Millisecond
	return max(d, minTimedAIDelay)
}

// ID returns the game id
func (s *Session) ID() string { return s.cfg.ID }

// Config returns the rules the session was started with
func (s *Session) Config() Config { return s.cfg }

// Round returns the 1-based index of the current round
func (s *Session) Round() int { return s.round }

// Secret returns the current round's secret
func (s *Session) Secret() string { return s.secret }
