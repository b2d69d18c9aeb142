package protocol

import (
	"github.com/mcoot/wordlegame-go/internal/model"
)

// MessageType tags an envelope
type MessageType string

// Client to server
const (
	TypeStartGame   MessageType = "START_GAME"
	TypeGuess       MessageType = "GUESS"
	TypeSyncRecords MessageType = "SYNC_RECORDS"
	TypeDisconnect  MessageType = "DISCONNECT"
	TypeCreateRoom  MessageType = "CREATE_ROOM"
	TypeListRooms   MessageType = "LIST_ROOMS"
	TypeJoinRoom    MessageType = "JOIN_ROOM"
	TypeGuessPVP    MessageType = "GUESS_PVP"
	TypeLeaveRoom   MessageType = "LEAVE_ROOM"
)

// Server to client
const (
	TypeGameStarted          MessageType = "GAME_STARTED"
	TypeGuessResult          MessageType = "GUESS_RESULT"
	TypeAIMove               MessageType = "AI_MOVE"
	TypeRoundWinner          MessageType = "ROUND_WINNER"
	TypeGameWinner           MessageType = "GAME_WINNER"
	TypeRoomCreated          MessageType = "ROOM_CREATED"
	TypeRoomList             MessageType = "ROOM_LIST"
	TypeRoomJoined           MessageType = "ROOM_JOINED"
	TypeGameStartedPVP       MessageType = "GAME_STARTED_PVP"
	TypeOpponentProgress     MessageType = "OPPONENT_PROGRESS"
	TypeRoundWinnerPVP       MessageType = "ROUND_WINNER_PVP"
	TypeGameWinnerPVP        MessageType = "GAME_WINNER_PVP"
	TypeOpponentDisconnected MessageType = "OPPONENT_DISCONNECTED"
	TypeRecordsData          MessageType = "RECORDS_DATA"
	TypeError                MessageType = "ERROR"
)

// WaitingOpponent is the opponent name sent while a room has one occupant
const WaitingOpponent = "waiting"

// Requests

type StartGame struct {
	Mode         string `json:"mode"`
	Rounds       int    `json:"rounds" validate:"oneof=1 3 5 7"`
	WordLength   int    `json:"wordLength" validate:"min=4,max=7"`
	MaxAttempts  int    `json:"maxAttempts" validate:"min=1,max=10"`
	Difficulty   string `json:"difficulty"`
	PlayerName   string `json:"playerName" validate:"max=32"`
	TimerSeconds int    `json:"timerSeconds" validate:"min=0,max=600"`
}

type Guess struct {
	Word          string `json:"word" validate:"required,max=16"`
	AttemptNumber int    `json:"attemptNumber"`
}

type CreateRoom struct {
	WordLength  int    `json:"wordLength" validate:"min=4,max=7"`
	MaxAttempts int    `json:"maxAttempts" validate:"min=1,max=10"`
	Rounds      int    `json:"rounds" validate:"oneof=1 3 5 7"`
	Difficulty  string `json:"difficulty"`
	PlayerName  string `json:"playerName" validate:"max=32"`
}

type JoinRoom struct {
	RoomID     string `json:"roomId" validate:"required"`
	PlayerName string `json:"playerName" validate:"max=32"`
}

// Responses

type GameStarted struct {
	GameID      string `json:"gameId"`
	WordLength  int    `json:"wordLength"`
	MaxAttempts int    `json:"maxAttempts"`
	Rounds      int    `json:"rounds"`
}

type GuessResult struct {
	Word    string            `json:"word"`
	Result  []model.TileState `json:"result"`
	IsValid bool              `json:"isValid"`
	Message string            `json:"message,omitempty"`
}

type AIMove struct {
	Word          string            `json:"word"`
	AttemptNumber int               `json:"attemptNumber"`
	Result        []model.TileState `json:"result"`
}

type RoundWinner struct {
	Winner   model.Winner `json:"winner"`
	Attempts int          `json:"attempts"`
	Solution string       `json:"solution"`
}

type GameWinner struct {
	Winner       model.Winner `json:"winner"`
	PlayerRounds int          `json:"playerRounds"`
	AIRounds     int          `json:"aiRounds"`
}

type RoomInfo struct {
	RoomID      string           `json:"roomId"`
	WordLength  int              `json:"wordLength"`
	MaxAttempts int              `json:"maxAttempts"`
	Rounds      int              `json:"rounds"`
	Difficulty  model.Difficulty `json:"difficulty"`
	PlayerCount int              `json:"playerCount"`
	CreatorName string           `json:"creatorName"`
}

type RoomCreated struct {
	RoomID      string           `json:"roomId"`
	WordLength  int              `json:"wordLength"`
	MaxAttempts int              `json:"maxAttempts"`
	Rounds      int              `json:"rounds"`
	Difficulty  model.Difficulty `json:"difficulty"`
}

type RoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

type RoomJoined struct {
	RoomID       string           `json:"roomId"`
	OpponentName string           `json:"opponentName"`
	IsPlayer1    bool             `json:"isPlayer1"`
	WordLength   int              `json:"wordLength"`
	MaxAttempts  int              `json:"maxAttempts"`
	Rounds       int              `json:"rounds"`
	Difficulty   model.Difficulty `json:"difficulty"`
}

type GameStartedPVP struct {
	RoomID       string `json:"roomId"`
	OpponentName string `json:"opponentName"`
}

type OpponentProgress struct {
	Attempts int  `json:"attempts"`
	Won      bool `json:"won"`
}

type RoundWinnerPVP struct {
	Winner          model.Winner `json:"winner"`
	Player1Attempts int          `json:"player1Attempts"`
	Player2Attempts int          `json:"player2Attempts"`
	Solution        string       `json:"solution"`
	YouWon          bool         `json:"youWon"`
}

type GameWinnerPVP struct {
	Winner        model.Winner `json:"winner"`
	Player1Rounds int          `json:"player1Rounds"`
	Player2Rounds int          `json:"player2Rounds"`
	Player1Name   string       `json:"player1Name"`
	Player2Name   string       `json:"player2Name"`
	YouWon        bool         `json:"youWon"`
}

type OpponentDisconnected struct {
	PlayerName string `json:"playerName"`
}

type RecordsData struct {
	Records model.Records `json:"records"`
}

type Error struct {
	Message string `json:"message"`
}

// NewRoomInfo flattens a room summary for the wire
func NewRoomInfo(s model.RoomSummary) RoomInfo {
	return RoomInfo{
		RoomID:      string(s.ID),
		WordLength:  s.Config.WordLength,
		MaxAttempts: s.Config.MaxAttempts,
		Rounds:      s.Config.SeriesLength,
		Difficulty:  s.Config.Difficulty,
		PlayerCount: s.PlayerCount,
		CreatorName: s.CreatorName,
	}
}

// NewGuessResult builds the wire view of a guess outcome
func NewGuessResult(word string, o model.GuessOutcome) GuessResult {
	tiles := o.Tiles
	if tiles == nil {
		tiles = []model.TileState{}
	}
	return GuessResult{Word: word, Result: tiles, IsValid: o.Valid, Message: o.Message}
}
