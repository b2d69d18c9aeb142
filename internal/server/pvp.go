package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/room"
)

// leaveFinishedRoom drops the player from a room whose series is over so
// they can create or join another. A room still in play is an error.
func (h *handler) leaveFinishedRoom() error {
	r, ok := h.srv.registry.RoomFor(h.client.id)
	if !ok {
		return nil
	}
	if r.Started() && !r.Finished() {
		return model.ErrAlreadyInRoom
	}
	h.leaveRoom()
	return nil
}

func (h *handler) handleCreateRoom(req protocol.CreateRoom) error {
	if err := h.leaveFinishedRoom(); err != nil {
		return err
	}
	h.name = playerName(req.PlayerName)

	cfg := model.RoomConfig{
		WordLength:   req.WordLength,
		MaxAttempts:  req.MaxAttempts,
		SeriesLength: req.Rounds,
		Difficulty:   model.ParseDifficulty(req.Difficulty),
	}
	r, err := h.srv.registry.CreateRoom(cfg, h.client.id, h.name)
	if err != nil {
		return err
	}

	h.client.SendMessage(protocol.TypeRoomCreated, protocol.RoomCreated{
		RoomID:      string(r.ID()),
		WordLength:  cfg.WordLength,
		MaxAttempts: cfg.MaxAttempts,
		Rounds:      cfg.SeriesLength,
		Difficulty:  cfg.Difficulty,
	})
	return nil
}

func (h *handler) handleListRooms() error {
	summaries := h.srv.registry.ListAvailable()
	rooms := make([]protocol.RoomInfo, 0, len(summaries))
	for _, s := range summaries {
		rooms = append(rooms, protocol.NewRoomInfo(s))
	}
	h.client.SendMessage(protocol.TypeRoomList, protocol.RoomList{Rooms: rooms})
	return nil
}

func (h *handler) handleJoinRoom(req protocol.JoinRoom) error {
	if err := h.leaveFinishedRoom(); err != nil {
		return err
	}
	h.name = playerName(req.PlayerName)

	r, seat, err := h.srv.registry.JoinRoom(model.RoomID(req.RoomID), h.client.id, h.name)
	if err != nil {
		return fmt.Errorf("could not join room: %w", err)
	}

	opponentName := protocol.WaitingOpponent
	opponent, hasOpponent := r.Opponent(h.client.id)
	if hasOpponent {
		opponentName = opponent.Name
	}

	cfg := r.Config()
	h.client.SendMessage(protocol.TypeRoomJoined, protocol.RoomJoined{
		RoomID:       string(r.ID()),
		OpponentName: opponentName,
		IsPlayer1:    seat == model.Seat1,
		WordLength:   cfg.WordLength,
		MaxAttempts:  cfg.MaxAttempts,
		Rounds:       cfg.SeriesLength,
		Difficulty:   cfg.Difficulty,
	})

	if hasOpponent && r.Started() {
		h.logger.Info("room started",
			slog.String("room_id", string(r.ID())),
			slog.String("opponent", opponent.Name))
		h.client.SendMessage(protocol.TypeGameStartedPVP, protocol.GameStartedPVP{
			RoomID:       string(r.ID()),
			OpponentName: opponent.Name,
		})
		h.srv.directory.Send(opponent.ID, protocol.TypeGameStartedPVP, protocol.GameStartedPVP{
			RoomID:       string(r.ID()),
			OpponentName: h.name,
		})
	}
	return nil
}

func (h *handler) handleGuessPVP(ctx context.Context, req protocol.Guess) error {
	word := dictionary.Normalize(req.Word)
	r, ok := h.srv.registry.RoomFor(h.client.id)
	if !ok {
		h.client.SendMessage(protocol.TypeGuessResult,
			protocol.NewGuessResult(word, model.Rejected(0, false, "not in a room")))
		return nil
	}

	outcome, roundOver, err := r.ProcessGuess(h.client.id, word)
	if errors.Is(err, model.ErrNotInRoom) {
		h.client.SendMessage(protocol.TypeGuessResult,
			protocol.NewGuessResult(word, model.Rejected(0, false, "not in a room")))
		return nil
	}
	if err != nil {
		return err
	}

	h.client.SendMessage(protocol.TypeGuessResult, protocol.NewGuessResult(word, outcome))

	if outcome.Valid {
		if opponent, ok := r.Opponent(h.client.id); ok {
			progress := r.OpponentProgress(opponent.ID)
			h.srv.directory.Send(opponent.ID, protocol.TypeOpponentProgress, protocol.OpponentProgress{
				Attempts: progress.Attempts,
				Won:      progress.Won,
			})
		}
	}

	if roundOver {
		h.finishRoomRound(ctx, r)
	}
	return nil
}

// finishRoomRound is run by whichever connection's guess ended the round
func (h *handler) finishRoomRound(ctx context.Context, r *room.Room) {
	if !h.sleep(ctx, h.srv.cfg.RoundResultDelay) || r.Abandoned() {
		return
	}

	result := r.RoundWinner()
	h.eachSeat(r, func(seat model.Seat, o room.Occupant) {
		h.srv.directory.Send(o.ID, protocol.TypeRoundWinnerPVP, protocol.RoundWinnerPVP{
			Winner:          result.Winner,
			Player1Attempts: result.Player1Attempts,
			Player2Attempts: result.Player2Attempts,
			Solution:        result.Solution,
			YouWon:          result.Winner == seat.Winner(),
		})
	})

	if !h.sleep(ctx, h.srv.cfg.NextRoundDelay) || r.Abandoned() {
		return
	}

	if r.IsGameOver() {
		r.FinishSeries()
		series := r.GameWinner()
		for i, o := range r.Roster() {
			seat := model.Seat(i + 1)
			h.recordResult(ctx, o.Name, records.Result{Won: series.Winner == seat.Winner()})
		}
		h.eachSeat(r, func(seat model.Seat, o room.Occupant) {
			h.srv.directory.Send(o.ID, protocol.TypeGameWinnerPVP, newGameWinnerPVP(series, series.Winner == seat.Winner()))
		})
		h.logger.Info("room series finished",
			slog.String("room_id", string(r.ID())),
			slog.String("winner", string(series.Winner)))
		return
	}

	if err := r.NextRound(); err != nil && !errors.Is(err, model.ErrNoActiveGame) {
		h.logger.Error("failed to start room round",
			slog.String("room_id", string(r.ID())),
			slog.String("error", err.Error()))
		h.eachSeat(r, func(_ model.Seat, o room.Occupant) {
			h.srv.directory.Send(o.ID, protocol.TypeError, protocol.Error{Message: err.Error()})
		})
	}
}

func (h *handler) eachSeat(r *room.Room, fn func(seat model.Seat, o room.Occupant)) {
	for _, seat := range []model.Seat{model.Seat1, model.Seat2} {
		if o, ok := r.Occupant(seat); ok {
			fn(seat, o)
		}
	}
}

// leaveRoom runs the departure sequence shared by LEAVE_ROOM, DISCONNECT and
// a dropped socket
func (h *handler) leaveRoom() {
	r, dep, ok := h.srv.registry.RemovePlayer(h.client.id)
	if !ok {
		return
	}
	h.logger.Info("player left room",
		slog.String("room_id", string(r.ID())),
		slog.Bool("abandoned", dep.Abandoned != nil))

	if dep.Remaining == nil {
		return
	}
	if dep.Abandoned != nil {
		h.srv.directory.Send(dep.Remaining.ID, protocol.TypeGameWinnerPVP, newGameWinnerPVP(*dep.Abandoned, true))
		return
	}
	h.srv.directory.Send(dep.Remaining.ID, protocol.TypeOpponentDisconnected, protocol.OpponentDisconnected{
		PlayerName: dep.Name,
	})
}

func newGameWinnerPVP(s model.RoomSeriesResult, youWon bool) protocol.GameWinnerPVP {
	return protocol.GameWinnerPVP{
		Winner:        s.Winner,
		Player1Rounds: s.Player1Rounds,
		Player2Rounds: s.Player2Rounds,
		Player1Name:   s.Player1Name,
		Player2Name:   s.Player2Name,
		YouWon:        youWon,
	}
}
