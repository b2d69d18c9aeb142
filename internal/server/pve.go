package server

import (
	"context"
	"log/slog"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/session"
)

func (h *handler) handleStartGame(req protocol.StartGame) error {
	h.name = playerName(req.PlayerName)

	sess, err := session.New(session.Config{
		ID:           h.srv.random.NewID(),
		Mode:         model.ParseGameMode(req.Mode),
		SeriesLength: req.Rounds,
		WordLength:   req.WordLength,
		MaxAttempts:  req.MaxAttempts,
		Difficulty:   model.ParseDifficulty(req.Difficulty),
		PlayerName:   h.name,
		TimerSeconds: req.TimerSeconds,
	}, h.srv.words, h.srv.random, h.logger)
	if err != nil {
		return err
	}
	h.session = sess

	cfg := sess.Config()
	h.logger.Info("game started",
		slog.String("game_id", sess.ID()),
		slog.String("mode", string(cfg.Mode)),
		slog.String("difficulty", string(cfg.Difficulty)),
		slog.Int("rounds", cfg.SeriesLength))

	h.client.SendMessage(protocol.TypeGameStarted, protocol.GameStarted{
		GameID:      sess.ID(),
		WordLength:  cfg.WordLength,
		MaxAttempts: cfg.MaxAttempts,
		Rounds:      cfg.SeriesLength,
	})
	return nil
}

func (h *handler) handleGuess(ctx context.Context, req protocol.Guess) error {
	word := dictionary.Normalize(req.Word)
	sess := h.session
	if sess == nil {
		h.client.SendMessage(protocol.TypeGuessResult,
			protocol.NewGuessResult(word, model.Rejected(0, false, "no active game")))
		return nil
	}

	outcome := sess.ProcessGuess(word)
	h.client.SendMessage(protocol.TypeGuessResult, protocol.NewGuessResult(word, outcome))

	if sess.IsRoundOver() {
		h.finishRound(ctx, sess)
		return nil
	}
	if !outcome.Valid || sess.Config().Mode != model.ModePVE {
		return nil
	}

	// The AI answers each valid guess with one move, and plays on alone once
	// the player is out of attempts
	for {
		if !h.sleep(ctx, sess.AIDelay(h.srv.cfg.AIDelay)) {
			return nil
		}
		move, ok := sess.ProcessAITurn()
		if !ok {
			return nil
		}
		h.client.SendMessage(protocol.TypeAIMove, protocol.AIMove{
			Word:          move.Word,
			AttemptNumber: move.Attempts,
			Result:        move.Tiles,
		})

		if sess.IsRoundOver() {
			h.finishRound(ctx, sess)
			return nil
		}
		if !sess.PlayerDone() {
			return nil
		}
	}
}

// finishRound announces the round, then either ends the series or moves on
// to the next round
func (h *handler) finishRound(ctx context.Context, sess *session.Session) {
	result := sess.RoundWinner()
	h.client.SendMessage(protocol.TypeRoundWinner, protocol.RoundWinner{
		Winner:   result.Winner,
		Attempts: result.PlayerAttempts,
		Solution: result.Solution,
	})

	if sess.IsGameOver() {
		series := sess.GameWinner()
		stats := sess.Stats()
		h.recordResult(ctx, h.name, records.Result{
			Won:          series.Winner == model.WinnerPlayer,
			Attempts:     stats.PlayerAttempts,
			WordsGuessed: stats.PlayerWordsGuessed,
			TotalWords:   stats.TotalWordsAttempted,
		})
		h.client.SendMessage(protocol.TypeGameWinner, protocol.GameWinner{
			Winner:       series.Winner,
			PlayerRounds: series.PlayerRounds,
			AIRounds:     series.AIRounds,
		})
		h.logger.Info("game finished",
			slog.String("game_id", sess.ID()),
			slog.String("winner", string(series.Winner)))
		h.session = nil
		return
	}

	if !h.sleep(ctx, h.srv.cfg.NextRoundDelay) {
		return
	}
	if err := sess.StartNewRound(); err != nil {
		h.logger.Error("failed to start round", slog.String("error", err.Error()))
		h.client.SendError(err.Error())
		h.session = nil
	}
}
