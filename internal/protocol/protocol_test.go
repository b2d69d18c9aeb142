package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
)

type ProtocolSuite struct {
	suite.Suite
}

func TestProtocolSuite(t *testing.T) {
	suite.Run(t, new(ProtocolSuite))
}

func (s *ProtocolSuite) TestEnvelopeLineCarriesPayloadAsString() {
	env, err := protocol.NewEnvelope(protocol.TypeGuess, protocol.Guess{Word: "CASAS", AttemptNumber: 1})
	s.Require().NoError(err)

	line, err := protocol.MarshalLine(env)
	s.Require().NoError(err)
	s.Equal(`{"type":"GUESS","payload":"{\"word\":\"CASAS\",\"attemptNumber\":1}"}`+"\n", string(line))
}

func (s *ProtocolSuite) TestParseAndDecode() {
	line := []byte(`{"type":"START_GAME","payload":"{\"mode\":\"PVE\",\"rounds\":3,\"wordLength\":5,\"maxAttempts\":6,\"difficulty\":\"HARD\",\"playerName\":\"Ana\"}"}`)

	env, err := protocol.ParseLine(line)
	s.Require().NoError(err)
	s.Equal(protocol.TypeStartGame, env.Type)

	var req protocol.StartGame
	s.Require().NoError(protocol.Decode(env, &req))
	s.Equal("PVE", req.Mode)
	s.Equal(3, req.Rounds)
	s.Equal(5, req.WordLength)
	s.Equal(6, req.MaxAttempts)
	s.Equal("HARD", req.Difficulty)
	s.Equal("Ana", req.PlayerName)
	s.Equal(0, req.TimerSeconds)
}

func (s *ProtocolSuite) TestParseLineRejectsGarbage() {
	for _, line := range []string{"", "   ", "not json", `{"payload":"{}"}`} {
		_, err := protocol.ParseLine([]byte(line))
		s.ErrorIs(err, model.ErrInvalidPayload, "line %q", line)
	}
}

func (s *ProtocolSuite) TestDecodeRejectsBadPayload() {
	env := protocol.Envelope{Type: protocol.TypeGuess, Payload: "{broken"}

	var req protocol.Guess
	s.ErrorIs(protocol.Decode(env, &req), model.ErrInvalidPayload)
}

func (s *ProtocolSuite) TestDecodeValidatesFields() {
	env, err := protocol.NewEnvelope(protocol.TypeCreateRoom, protocol.CreateRoom{
		WordLength: 9, MaxAttempts: 6, Rounds: 3,
	})
	s.Require().NoError(err)

	var req protocol.CreateRoom
	err = protocol.Decode(env, &req)
	s.ErrorIs(err, model.ErrInvalidPayload)
	s.Contains(err.Error(), "wordLength")
}

func (s *ProtocolSuite) TestSeriesLengthMustBeOdd() {
	for _, rounds := range []int{0, 2, 4, 9} {
		env, err := protocol.NewEnvelope(protocol.TypeStartGame, protocol.StartGame{
			Mode: "PVE", Rounds: rounds, WordLength: 5, MaxAttempts: 6,
		})
		s.Require().NoError(err)

		var req protocol.StartGame
		err = protocol.Decode(env, &req)
		s.ErrorIs(err, model.ErrInvalidPayload, "rounds %d", rounds)
		s.Contains(err.Error(), "rounds")
	}

	for _, rounds := range []int{1, 3, 5, 7} {
		env, err := protocol.NewEnvelope(protocol.TypeCreateRoom, protocol.CreateRoom{
			WordLength: 5, MaxAttempts: 6, Rounds: rounds,
		})
		s.Require().NoError(err)

		var req protocol.CreateRoom
		s.NoError(protocol.Decode(env, &req), "rounds %d", rounds)
	}
}

func (s *ProtocolSuite) TestEmptyPayloadDecodesAsEmptyObject() {
	env := protocol.Envelope{Type: protocol.TypeJoinRoom}

	var req protocol.JoinRoom
	err := protocol.Decode(env, &req)
	s.ErrorIs(err, model.ErrInvalidPayload)
	s.Contains(err.Error(), "roomId is required")
}

func (s *ProtocolSuite) TestTilesSerializeAsNames() {
	result := protocol.NewGuessResult("CASAS", model.GuessOutcome{
		Valid: true,
		Tiles: []model.TileState{model.TileCorrect, model.TilePresent, model.TileAbsent, model.TileAbsent, model.TileEmpty},
	})
	env, err := protocol.NewEnvelope(protocol.TypeGuessResult, result)
	s.Require().NoError(err)

	s.Equal(`{"word":"CASAS","result":["CORRECT","PRESENT","ABSENT","ABSENT","EMPTY"],"isValid":true}`, env.Payload)
}

func (s *ProtocolSuite) TestRejectedGuessHasEmptyResult() {
	result := protocol.NewGuessResult("CASA", model.GuessOutcome{Message: "word must have 5 letters"})
	env, err := protocol.NewEnvelope(protocol.TypeGuessResult, result)
	s.Require().NoError(err)

	s.Equal(`{"word":"CASA","result":[],"isValid":false,"message":"word must have 5 letters"}`, env.Payload)
}

func (s *ProtocolSuite) TestRoomInfoFlattensConfig() {
	info := protocol.NewRoomInfo(model.RoomSummary{
		ID:          "room-1",
		Config:      model.RoomConfig{WordLength: 5, MaxAttempts: 6, SeriesLength: 3, Difficulty: model.DifficultyEasy},
		PlayerCount: 1,
		CreatorName: "Ana",
	})

	s.Equal(protocol.RoomInfo{
		RoomID: "room-1", WordLength: 5, MaxAttempts: 6, Rounds: 3,
		Difficulty: model.DifficultyEasy, PlayerCount: 1, CreatorName: "Ana",
	}, info)
}
