package model

// Winner labels a round or series result
type Winner string

const (
	WinnerPlayer  Winner = "PLAYER"
	WinnerAI      Winner = "AI"
	WinnerPlayer1 Winner = "PLAYER1"
	WinnerPlayer2 Winner = "PLAYER2"
	WinnerDraw    Winner = "DRAW"
)

// GuessOutcome is the result of processing one guess
type GuessOutcome struct {
	Valid        bool
	Tiles        []TileState
	Won          bool
	AttemptsUsed int
	Message      string
}

// Rejected builds an invalid outcome carrying a reason
func Rejected(attempts int, won bool, message string) GuessOutcome {
	return GuessOutcome{
		Valid:        false,
		Tiles:        []TileState{},
		Won:          won,
		AttemptsUsed: attempts,
		Message:      message,
	}
}

// AIMove is one guess played by the AI opponent
type AIMove struct {
	Word     string
	Tiles    []TileState
	Won      bool
	Attempts int
}

// RoundResult summarizes a finished PVE/SOLO round
type RoundResult struct {
	Winner         Winner
	PlayerAttempts int
	AIAttempts     int
	Solution       string
}

// SeriesResult summarizes a PVE/SOLO series
type SeriesResult struct {
	Winner       Winner
	PlayerRounds int
	AIRounds     int
	TotalRounds  int
}

// SessionStats is a snapshot of a session used for records
type SessionStats struct {
	CurrentRound        int
	TotalRounds         int
	PlayerRoundsWon     int
	AIRoundsWon         int
	PlayerAttempts      int
	AIAttempts          int
	PlayerWordsGuessed  int
	TotalWordsAttempted int
}
