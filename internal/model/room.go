package model

// RoomID identifies a PVP room
type RoomID string

// PlayerID identifies a connected client. Ids are assigned by the server in
// accept order and are never reused within a process.
type PlayerID int64

// RoomConfig holds the rules a room was created with
type RoomConfig struct {
	WordLength   int        `json:"wordLength"`
	MaxAttempts  int        `json:"maxAttempts"`
	SeriesLength int        `json:"rounds"`
	Difficulty   Difficulty `json:"difficulty"`
}

// RoomSummary is the public listing view of a room waiting for a second player
type RoomSummary struct {
	ID          RoomID     `json:"roomId"`
	Config      RoomConfig `json:"config"`
	PlayerCount int        `json:"playerCount"`
	CreatorName string     `json:"creatorName"`
}

// Seat is one of the two positions in a room
type Seat int

const (
	SeatNone Seat = iota
	Seat1
	Seat2
)

// Winner returns the winner label for this seat
func (s Seat) Winner() Winner {
	switch s {
	case Seat1:
		return WinnerPlayer1
	case Seat2:
		return WinnerPlayer2
	default:
		return WinnerDraw
	}
}

// Other returns the opposing seat
func (s Seat) Other() Seat {
	switch s {
	case Seat1:
		return Seat2
	case Seat2:
		return Seat1
	default:
		return SeatNone
	}
}

// OpponentProgress is what a player may learn about the other seat
type OpponentProgress struct {
	Attempts int
	Won      bool
}

// RoomRoundResult summarizes a finished PVP round
type RoomRoundResult struct {
	Winner          Winner
	Player1Attempts int
	Player2Attempts int
	Solution        string
}

// RoomSeriesResult summarizes a PVP series
type RoomSeriesResult struct {
	Winner        Winner
	Player1Rounds int
	Player2Rounds int
	Player1Name   string
	Player2Name   string
}
