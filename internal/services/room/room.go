package room

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/services/evaluator"
)

// Occupant is a player sitting in a room
type Occupant struct {
	ID   model.PlayerID
	Name string
}

// Departure describes what happened when a player left a room
type Departure struct {
	Seat      model.Seat
	Name      string
	Remaining *Occupant
	// Abandoned is set when the departure ended a series in progress; the
	// remaining occupant takes the whole series
	Abandoned *model.RoomSeriesResult
}

// Room is a two-seat PVP room. Both occupants' connections call into it, so
// every method takes the room lock.
type Room struct {
	mu sync.Mutex

	id        model.RoomID
	cfg       model.RoomConfig
	words     dictionary.Source
	logger    *slog.Logger
	createdAt time.Time

	seats    [2]*Occupant
	roster   [2]Occupant
	started  bool
	finished bool

	round    int
	secret   string
	attempts [2]int
	guesses  [2][]string
	won      [2]bool
	wins     [2]int

	roundClaimed bool
	scored       *model.RoomRoundResult
	abandoned    *model.RoomSeriesResult
}

func newRoom(id model.RoomID, cfg model.RoomConfig, words dictionary.Source, createdAt time.Time, logger *slog.Logger) *Room {
	return &Room{
		id:        id,
		cfg:       cfg,
		words:     words,
		createdAt: createdAt,
		logger:    logger.With(slog.String("room_id", string(id))),
	}
}

func index(seat model.Seat) int { return int(seat) - 1 }

// seatOf must be called with the lock held
func (r *Room) seatOf(id model.PlayerID) model.Seat {
	for i, o := range r.seats {
		if o != nil && o.ID == id {
			return model.Seat(i + 1)
		}
	}
	return model.SeatNone
}

// AddPlayer seats a player in the first free seat. Filling the second seat
// starts the series.
func (r *Room) AddPlayer(id model.PlayerID, name string) (model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return model.SeatNone, model.ErrRoomStarted
	}
	if r.seatOf(id) != model.SeatNone {
		return model.SeatNone, model.ErrAlreadyInRoom
	}

	for i := range r.seats {
		if r.seats[i] != nil {
			continue
		}
		r.seats[i] = &Occupant{ID: id, Name: name}
		seat := model.Seat(i + 1)
		if r.seats[0] != nil && r.seats[1] != nil {
			if err := r.startLocked(); err != nil {
				r.seats[i] = nil
				return model.SeatNone, err
			}
		}
		return seat, nil
	}
	return model.SeatNone, model.ErrRoomFull
}

func (r *Room) startLocked() error {
	if err := r.nextRoundLocked(); err != nil {
		return err
	}
	r.started = true
	r.roster = [2]Occupant{*r.seats[0], *r.seats[1]}
	r.logger.Info("room started",
		slog.String("player1", r.seats[0].Name),
		slog.String("player2", r.seats[1].Name))
	return nil
}

// RemovePlayer clears the player's seat. Leaving a series in progress hands
// the series to whoever is still seated.
func (r *Room) RemovePlayer(id model.PlayerID) (Departure, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(id)
	if seat == model.SeatNone {
		return Departure{}, false
	}

	dep := Departure{Seat: seat, Name: r.seats[index(seat)].Name}
	if other := r.seats[index(seat.Other())]; other != nil {
		remaining := *other
		dep.Remaining = &remaining

		if r.started && !r.finished && !r.decidedLocked() {
			result := r.seriesLocked()
			result.Winner = seat.Other().Winner()
			r.abandoned = &result
			r.finished = true
			dep.Abandoned = &result
			r.logger.Info("series abandoned",
				slog.String("leaver", dep.Name),
				slog.String("winner", string(result.Winner)))
		}
	}

	r.seats[index(seat)] = nil
	return dep, true
}

// ProcessGuess applies a guess from the player's seat. roundOver is true for
// exactly one guess per round: the one that finished it.
func (r *Room) ProcessGuess(id model.PlayerID, word string) (outcome model.GuessOutcome, roundOver bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(id)
	if seat == model.SeatNone {
		return model.GuessOutcome{}, false, model.ErrNotInRoom
	}
	i := index(seat)

	if !r.started || r.finished {
		return model.Rejected(r.attempts[i], r.won[i], "game is not in progress"), false, nil
	}
	if r.roundClaimed {
		return model.Rejected(r.attempts[i], r.won[i], "round is over"), false, nil
	}

	guess := dictionary.Normalize(word)
	if n := utf8.RuneCountInString(r.secret); utf8.RuneCountInString(guess) != n {
		return model.Rejected(r.attempts[i], r.won[i], fmt.Sprintf("word must have %d letters", n)), false, nil
	}
	if !r.words.IsValid(guess) {
		return model.Rejected(r.attempts[i], r.won[i], "not a valid word"), false, nil
	}
	if r.won[i] {
		return model.Rejected(r.attempts[i], true, "already won this round"), false, nil
	}
	if r.attempts[i] >= r.cfg.MaxAttempts {
		return model.Rejected(r.attempts[i], false, "no attempts left"), false, nil
	}

	tiles := evaluator.MustEvaluate(r.secret, guess)
	r.attempts[i]++
	r.guesses[i] = append(r.guesses[i], guess)
	r.won[i] = model.AllCorrect(tiles)

	outcome = model.GuessOutcome{
		Valid:        true,
		Tiles:        tiles,
		Won:          r.won[i],
		AttemptsUsed: r.attempts[i],
	}
	if r.won[i] {
		outcome.Message = "solved"
	}

	if r.roundOverLocked() {
		r.roundClaimed = true
		roundOver = true
	}
	return outcome, roundOver, nil
}

func (r *Room) roundOverLocked() bool {
	exhausted := r.attempts[0] >= r.cfg.MaxAttempts && r.attempts[1] >= r.cfg.MaxAttempts
	return r.won[0] || r.won[1] || exhausted
}

// OpponentProgress reports the other seat's attempts and win flag for this round
func (r *Room) OpponentProgress(id model.PlayerID) model.OpponentProgress {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(id)
	if seat == model.SeatNone {
		return model.OpponentProgress{}
	}
	other := index(seat.Other())
	return model.OpponentProgress{Attempts: r.attempts[other], Won: r.won[other]}
}

// RoundWinner resolves the current round and credits the winner once.
// Repeated calls in the same round return the first result.
func (r *Room) RoundWinner() model.RoomRoundResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scored != nil {
		return *r.scored
	}

	winner := model.WinnerDraw
	switch {
	case r.won[0] && !r.won[1]:
		winner = model.WinnerPlayer1
	case r.won[1] && !r.won[0]:
		winner = model.WinnerPlayer2
	case r.won[0] && r.won[1] && r.attempts[0] < r.attempts[1]:
		winner = model.WinnerPlayer1
	case r.won[0] && r.won[1] && r.attempts[1] < r.attempts[0]:
		winner = model.WinnerPlayer2
	}

	switch winner {
	case model.WinnerPlayer1:
		r.wins[0]++
	case model.WinnerPlayer2:
		r.wins[1]++
	}

	r.scored = &model.RoomRoundResult{
		Winner:          winner,
		Player1Attempts: r.attempts[0],
		Player2Attempts: r.attempts[1],
		Solution:        r.secret,
	}
	r.logger.Info("round finished",
		slog.Int("round", r.round),
		slog.String("winner", string(winner)),
		slog.Int("player1_attempts", r.attempts[0]),
		slog.Int("player2_attempts", r.attempts[1]))
	return *r.scored
}

// IsGameOver is true once the series has been decided or abandoned
func (r *Room) IsGameOver() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished || r.gameOverLocked()
}

func (r *Room) gameOverLocked() bool {
	needed := r.cfg.SeriesLength/2 + 1
	return r.wins[0] >= needed || r.wins[1] >= needed || r.round >= r.cfg.SeriesLength
}

// Finished is true once the series is decided or over. Unlike IsGameOver it
// stays false while the final round is still being played.
func (r *Room) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished || r.decidedLocked()
}

// decidedLocked is gameOverLocked without counting a final round that is
// still being played
func (r *Room) decidedLocked() bool {
	needed := r.cfg.SeriesLength/2 + 1
	if r.wins[0] >= needed || r.wins[1] >= needed {
		return true
	}
	return r.round >= r.cfg.SeriesLength && r.scored != nil
}

// GameWinner returns the series result. An abandoned series always goes to
// the player who stayed.
func (r *Room) GameWinner() model.RoomSeriesResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.abandoned != nil {
		return *r.abandoned
	}
	return r.seriesLocked()
}

func (r *Room) seriesLocked() model.RoomSeriesResult {
	winner := model.WinnerDraw
	switch {
	case r.wins[0] > r.wins[1]:
		winner = model.WinnerPlayer1
	case r.wins[1] > r.wins[0]:
		winner = model.WinnerPlayer2
	}
	return model.RoomSeriesResult{
		Winner:        winner,
		Player1Rounds: r.wins[0],
		Player2Rounds: r.wins[1],
		Player1Name:   r.roster[0].Name,
		Player2Name:   r.roster[1].Name,
	}
}

// Roster returns both players as seated when the series started, including
// one who has since left
func (r *Room) Roster() [2]Occupant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster
}

// Abandoned reports whether a player walked out of a series in progress
func (r *Room) Abandoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abandoned != nil
}

// FinishSeries marks a decided series as over so no more guesses are taken
func (r *Room) FinishSeries() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
}

// NextRound draws a new secret and clears both seats' round state
func (r *Room) NextRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return model.ErrNoActiveGame
	}
	return r.nextRoundLocked()
}

func (r *Room) nextRoundLocked() error {
	secret, err := r.words.RandomWord(r.cfg.WordLength, r.cfg.Difficulty)
	if err != nil {
		return err
	}

	r.round++
	r.secret = dictionary.Normalize(secret)
	r.attempts = [2]int{}
	r.guesses = [2][]string{}
	r.won = [2]bool{}
	r.roundClaimed = false
	r.scored = nil

	r.logger.Debug("round started",
		slog.Int("round", r.round),
		slog.String("secret", r.secret))
	return nil
}

// ID returns the room id
func (r *Room) ID() model.RoomID { return r.id }

// Config returns the room rules
func (r *Room) Config() model.RoomConfig { return r.cfg }

// CreatedAt returns when the room was created
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// Seat returns the seat a player occupies
func (r *Room) Seat(id model.PlayerID) model.Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatOf(id)
}

// Occupant returns whoever sits in seat
func (r *Room) Occupant(seat model.Seat) (Occupant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seat == model.SeatNone {
		return Occupant{}, false
	}
	if o := r.seats[index(seat)]; o != nil {
		return *o, true
	}
	return Occupant{}, false
}

// Opponent returns the occupant facing the given player
func (r *Room) Opponent(id model.PlayerID) (Occupant, bool) {
	r.mu.Lock()
	seat := r.seatOf(id)
	r.mu.Unlock()

	if seat == model.SeatNone {
		return Occupant{}, false
	}
	return r.Occupant(seat.Other())
}

// PlayerCount returns how many seats are taken
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked()
}

func (r *Room) countLocked() int {
	n := 0
	for _, o := range r.seats {
		if o != nil {
			n++
		}
	}
	return n
}

// IsFull reports whether both seats are taken
func (r *Room) IsFull() bool { return r.PlayerCount() == 2 }

// IsEmpty reports whether both seats are free
func (r *Room) IsEmpty() bool { return r.PlayerCount() == 0 }

// Started reports whether the series has begun
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Round returns the 1-based index of the current round, 0 before the start
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// Secret returns the current round's secret
func (r *Room) Secret() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.secret
}

// Summary returns the listing view of the room
func (r *Room) Summary() model.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	creator := "Unknown"
	if r.seats[0] != nil {
		creator = r.seats[0].Name
	}
	return model.RoomSummary{
		ID:          r.id,
		Config:      r.cfg,
		PlayerCount: r.countLocked(),
		CreatorName: creator,
	}
}

// available reports whether the room can be listed for joining
func (r *Room) available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.started && r.countLocked() < 2
}
