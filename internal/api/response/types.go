package response

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/auth"
)

// Health is the body of GET /api/health
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// Token is the response for the token endpoint
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenFromAuth converts an auth.Token
func TokenFromAuth(t auth.Token) Token {
	return Token{Token: t.Value, ExpiresAt: t.ExpiresAt.UTC()}
}

// Room is an open room waiting for a second player
type Room struct {
	ID          string `json:"id"`
	WordLength  int    `json:"word_length"`
	MaxAttempts int    `json:"max_attempts"`
	Rounds      int    `json:"rounds"`
	Difficulty  string `json:"difficulty"`
	PlayerCount int    `json:"player_count"`
	CreatorName string `json:"creator_name"`
}

// RoomFromSummary converts model.RoomSummary
func RoomFromSummary(s model.RoomSummary) Room {
	return Room{
		ID:          string(s.ID),
		WordLength:  s.Config.WordLength,
		MaxAttempts: s.Config.MaxAttempts,
		Rounds:      s.Config.SeriesLength,
		Difficulty:  string(s.Config.Difficulty),
		PlayerCount: s.PlayerCount,
		CreatorName: s.CreatorName,
	}
}

// RoomList is the body of GET /api/rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// RoomListFromSummaries converts a slice of summaries
func RoomListFromSummaries(summaries []model.RoomSummary) RoomList {
	return RoomList{Rooms: lo.Map(summaries, func(s model.RoomSummary, _ int) Room {
		return RoomFromSummary(s)
	})}
}

// PlayerRecord is one player's stats with derived rates
type PlayerRecord struct {
	Name                 string      `json:"name"`
	GamesWon             int         `json:"games_won"`
	GamesLost            int         `json:"games_lost"`
	TotalGames           int         `json:"total_games"`
	CurrentStreak        int         `json:"current_streak"`
	MaxStreak            int         `json:"max_streak"`
	AverageAttempts      float64     `json:"average_attempts"`
	AttemptsDistribution map[int]int `json:"attempts_distribution"`
	WordsGuessed         int         `json:"words_guessed"`
	TotalWords           int         `json:"total_words"`
	WinRate              float64     `json:"win_rate"`
	GuessRate            float64     `json:"guess_rate"`
}

// PlayerRecordFromStats converts model.PlayerStats
func PlayerRecordFromStats(name string, s model.PlayerStats) PlayerRecord {
	return PlayerRecord{
		Name:                 name,
		GamesWon:             s.GamesWon,
		GamesLost:            s.GamesLost,
		TotalGames:           s.TotalGames,
		CurrentStreak:        s.CurrentStreak,
		MaxStreak:            s.MaxStreak,
		AverageAttempts:      s.AverageAttempts,
		AttemptsDistribution: s.AttemptsDistribution,
		WordsGuessed:         s.WordsGuessed,
		TotalWords:           s.TotalWords,
		WinRate:              s.WinRate(),
		GuessRate:            s.GuessRate(),
	}
}

// Records is the body of GET /api/records, ordered by player name
type Records struct {
	Players []PlayerRecord `json:"players"`
}

// RecordsFromModel converts model.Records
func RecordsFromModel(r model.Records) Records {
	names := lo.Keys(r.Players)
	sort.Strings(names)
	return Records{Players: lo.Map(names, func(name string, _ int) PlayerRecord {
		return PlayerRecordFromStats(name, r.Players[name])
	})}
}
