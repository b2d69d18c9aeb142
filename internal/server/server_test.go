package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordlegame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
	"github.com/mcoot/wordlegame-go/internal/server"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/room"
	"github.com/mcoot/wordlegame-go/internal/storage/memory"
	"github.com/mcoot/wordlegame-go/internal/testutil"
)

const readTimeout = 2 * time.Second

// lineClient is a raw protocol client for one TCP connection
type lineClient struct {
	t       *testing.T
	conn    net.Conn
	scanner *bufio.Scanner
}

func dial(t *testing.T, addr string) *lineClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &lineClient{t: t, conn: conn, scanner: bufio.NewScanner(conn)}
}

func (c *lineClient) send(t protocol.MessageType, body any) {
	c.t.Helper()
	env, err := protocol.NewEnvelope(t, body)
	require.NoError(c.t, err)
	line, err := protocol.MarshalLine(env)
	require.NoError(c.t, err)
	_, err = c.conn.Write(line)
	require.NoError(c.t, err)
}

func (c *lineClient) sendRaw(line string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(c.t, err)
}

func (c *lineClient) read() protocol.Envelope {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	require.True(c.t, c.scanner.Scan(), "expected a message: %v", c.scanner.Err())
	env, err := protocol.ParseLine(c.scanner.Bytes())
	require.NoError(c.t, err)
	return env
}

// expect reads the next message, checks its type and decodes the payload
func (c *lineClient) expect(t protocol.MessageType, out any) {
	c.t.Helper()
	env := c.read()
	require.Equal(c.t, t, env.Type, "payload: %s", env.Payload)
	if out != nil {
		require.NoError(c.t, json.Unmarshal([]byte(env.Payload), out))
	}
}

// closed reports whether the server closed the connection
func (c *lineClient) closed() bool {
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	return !c.scanner.Scan()
}

type ServerSuite struct {
	suite.Suite
	words    *testutil.StubWords
	random   *mocks.MockRandom
	records  *records.Service
	srv      *server.Server
	addr     string
	served   chan error
	cfg      server.Config
	shutdown bool
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.words = testutil.NewStubWords([]string{"PERRO"}, "CASAS")
	s.cfg = server.DefaultConfig()
	s.cfg.CleanupInterval = 0
	s.shutdown = false
	s.start()
}

func (s *ServerSuite) start() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.records = records.New(memory.New(), logger)

	s.srv = server.New(s.cfg, server.Dependencies{
		Words:    s.words,
		Registry: room.NewRegistry(s.words, clk, s.random, logger),
		Records:  s.records,
		Clock:    clk,
		Random:   s.random,
		Logger:   logger,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.addr = ln.Addr().String()
	s.served = make(chan error, 1)
	go func() { s.served <- s.srv.Serve(ln) }()
}

func (s *ServerSuite) TearDownTest() {
	if s.shutdown {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(s.srv.Shutdown(ctx))
}

func (s *ServerSuite) restart(cfg server.Config) {
	s.TearDownTest()
	s.cfg = cfg
	s.start()
}

func (s *ServerSuite) startGame(c *lineClient, difficulty string, rounds int) protocol.GameStarted {
	c.send(protocol.TypeStartGame, protocol.StartGame{
		Mode:        "PVE",
		Rounds:      rounds,
		WordLength:  5,
		MaxAttempts: 6,
		Difficulty:  difficulty,
		PlayerName:  "Ana",
	})
	var started protocol.GameStarted
	c.expect(protocol.TypeGameStarted, &started)
	return started
}

func (s *ServerSuite) TestPlayerWinsSeriesAndRecordsIt() {
	c := dial(s.T(), s.addr)
	started := s.startGame(c, "EASY", 1)
	s.NotEmpty(started.GameID)
	s.Equal(5, started.WordLength)
	s.Equal(6, started.MaxAttempts)
	s.Equal(1, started.Rounds)

	c.send(protocol.TypeGuess, protocol.Guess{Word: "perro", AttemptNumber: 1})

	var result protocol.GuessResult
	c.expect(protocol.TypeGuessResult, &result)
	s.True(result.IsValid)
	s.Equal("PERRO", result.Word)
	s.Equal([]model.TileState{model.TileCorrect, model.TileCorrect, model.TileCorrect, model.TileCorrect, model.TileCorrect}, result.Result)

	var round protocol.RoundWinner
	c.expect(protocol.TypeRoundWinner, &round)
	s.Equal(model.WinnerPlayer, round.Winner)
	s.Equal(1, round.Attempts)
	s.Equal("PERRO", round.Solution)

	var game protocol.GameWinner
	c.expect(protocol.TypeGameWinner, &game)
	s.Equal(model.WinnerPlayer, game.Winner)
	s.Equal(1, game.PlayerRounds)
	s.Equal(0, game.AIRounds)

	c.send(protocol.TypeSyncRecords, struct{}{})
	var data protocol.RecordsData
	c.expect(protocol.TypeRecordsData, &data)
	s.Require().Contains(data.Records.Players, "Ana")
	stats := data.Records.Players["Ana"]
	s.Equal(1, stats.GamesWon)
	s.Equal(1, stats.TotalGames)
	s.Equal(1, stats.WordsGuessed)
	s.Equal(1, stats.AttemptsDistribution[1])
}

func (s *ServerSuite) TestAIAnswersAValidGuess() {
	// The AI dictionary is [PERRO CASAS] and Intn defaults to 0
	c := dial(s.T(), s.addr)
	s.startGame(c, "EASY", 1)

	c.send(protocol.TypeGuess, protocol.Guess{Word: "CASAS"})

	var result protocol.GuessResult
	c.expect(protocol.TypeGuessResult, &result)
	s.True(result.IsValid)

	var move protocol.AIMove
	c.expect(protocol.TypeAIMove, &move)
	s.Equal("PERRO", move.Word)
	s.Equal(1, move.AttemptNumber)

	var round protocol.RoundWinner
	c.expect(protocol.TypeRoundWinner, &round)
	s.Equal(model.WinnerAI, round.Winner)
	s.Equal(1, round.Attempts)

	var game protocol.GameWinner
	c.expect(protocol.TypeGameWinner, &game)
	s.Equal(model.WinnerAI, game.Winner)
	s.Equal(1, game.AIRounds)

	stats, err := s.records.Get(context.Background(), "Ana")
	s.Require().NoError(err)
	s.Equal(1, stats.GamesLost)
	s.Equal(0, stats.CurrentStreak)
}

func (s *ServerSuite) TestInvalidGuessGetsNoAIMove() {
	c := dial(s.T(), s.addr)
	s.startGame(c, "EASY", 1)

	c.send(protocol.TypeGuess, protocol.Guess{Word: "ZZZZZ"})
	var result protocol.GuessResult
	c.expect(protocol.TypeGuessResult, &result)
	s.False(result.IsValid)
	s.Equal("not a valid word", result.Message)
	s.Empty(result.Result)

	c.send(protocol.TypeGuess, protocol.Guess{Word: "CASA"})
	c.expect(protocol.TypeGuessResult, &result)
	s.False(result.IsValid)
	s.Contains(result.Message, "5 letters")
}

func (s *ServerSuite) TestGuessWithoutGame() {
	c := dial(s.T(), s.addr)

	c.send(protocol.TypeGuess, protocol.Guess{Word: "PERRO"})
	var result protocol.GuessResult
	c.expect(protocol.TypeGuessResult, &result)
	s.False(result.IsValid)
	s.Equal("no active game", result.Message)
}

func (s *ServerSuite) TestMalformedMessagesKeepConnectionOpen() {
	c := dial(s.T(), s.addr)

	c.sendRaw("this is not json")
	var errMsg protocol.Error
	c.expect(protocol.TypeError, &errMsg)
	s.Contains(errMsg.Message, "invalid payload")

	c.sendRaw(`{"type":"DANCE","payload":"{}"}`)
	c.expect(protocol.TypeError, &errMsg)
	s.Contains(errMsg.Message, "unknown message type")

	c.send(protocol.TypeStartGame, protocol.StartGame{Rounds: 1, WordLength: 2, MaxAttempts: 6})
	c.expect(protocol.TypeError, &errMsg)
	s.Contains(errMsg.Message, "wordLength")

	c.send(protocol.TypeListRooms, struct{}{})
	var list protocol.RoomList
	c.expect(protocol.TypeRoomList, &list)
	s.Empty(list.Rooms)
}

func (s *ServerSuite) TestDisconnectClosesConnection() {
	c := dial(s.T(), s.addr)
	c.send(protocol.TypeDisconnect, struct{}{})
	s.True(c.closed())
}

// pvpPair creates a room for Ana and has Bea join it
func (s *ServerSuite) pvpPair(rounds int) (ana, bea *lineClient, roomID string) {
	ana = dial(s.T(), s.addr)
	bea = dial(s.T(), s.addr)

	ana.send(protocol.TypeCreateRoom, protocol.CreateRoom{
		WordLength: 5, MaxAttempts: 6, Rounds: rounds, Difficulty: "NORMAL", PlayerName: "Ana",
	})
	var created protocol.RoomCreated
	ana.expect(protocol.TypeRoomCreated, &created)
	s.Require().NotEmpty(created.RoomID)
	s.Equal(rounds, created.Rounds)

	bea.send(protocol.TypeListRooms, struct{}{})
	var list protocol.RoomList
	bea.expect(protocol.TypeRoomList, &list)
	s.Require().Len(list.Rooms, 1)
	s.Equal(created.RoomID, list.Rooms[0].RoomID)
	s.Equal("Ana", list.Rooms[0].CreatorName)
	s.Equal(1, list.Rooms[0].PlayerCount)

	bea.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: created.RoomID, PlayerName: "Bea"})
	var joined protocol.RoomJoined
	bea.expect(protocol.TypeRoomJoined, &joined)
	s.Equal("Ana", joined.OpponentName)
	s.False(joined.IsPlayer1)

	var startedB, startedA protocol.GameStartedPVP
	bea.expect(protocol.TypeGameStartedPVP, &startedB)
	s.Equal("Ana", startedB.OpponentName)
	ana.expect(protocol.TypeGameStartedPVP, &startedA)
	s.Equal("Bea", startedA.OpponentName)
	s.Equal(created.RoomID, startedA.RoomID)

	return ana, bea, created.RoomID
}

func (s *ServerSuite) TestPVPSeriesToTheEnd() {
	ana, bea, _ := s.pvpPair(1)

	bea.send(protocol.TypeGuessPVP, protocol.Guess{Word: "CASAS"})
	var result protocol.GuessResult
	bea.expect(protocol.TypeGuessResult, &result)
	s.True(result.IsValid)

	var progress protocol.OpponentProgress
	ana.expect(protocol.TypeOpponentProgress, &progress)
	s.Equal(1, progress.Attempts)
	s.False(progress.Won)

	ana.send(protocol.TypeGuessPVP, protocol.Guess{Word: "PERRO"})
	ana.expect(protocol.TypeGuessResult, &result)
	s.True(result.IsValid)

	bea.expect(protocol.TypeOpponentProgress, &progress)
	s.True(progress.Won)

	var roundA, roundB protocol.RoundWinnerPVP
	ana.expect(protocol.TypeRoundWinnerPVP, &roundA)
	bea.expect(protocol.TypeRoundWinnerPVP, &roundB)
	s.Equal(model.WinnerPlayer1, roundA.Winner)
	s.True(roundA.YouWon)
	s.False(roundB.YouWon)
	s.Equal(1, roundB.Player1Attempts)
	s.Equal(1, roundB.Player2Attempts)
	s.Equal("PERRO", roundB.Solution)

	var gameA, gameB protocol.GameWinnerPVP
	ana.expect(protocol.TypeGameWinnerPVP, &gameA)
	bea.expect(protocol.TypeGameWinnerPVP, &gameB)
	s.Equal(model.WinnerPlayer1, gameB.Winner)
	s.True(gameA.YouWon)
	s.False(gameB.YouWon)
	s.Equal(1, gameB.Player1Rounds)
	s.Equal("Ana", gameB.Player1Name)
	s.Equal("Bea", gameB.Player2Name)

	// Leaving a finished room is not abandonment
	ana.send(protocol.TypeLeaveRoom, struct{}{})
	var gone protocol.OpponentDisconnected
	bea.expect(protocol.TypeOpponentDisconnected, &gone)
	s.Equal("Ana", gone.PlayerName)

	all, err := s.records.All(context.Background())
	s.Require().NoError(err)
	s.Equal(1, all.Players["Ana"].GamesWon)
	s.Equal(1, all.Players["Bea"].GamesLost)
}

func (s *ServerSuite) TestLeavingMidSeriesHandsOpponentTheWin() {
	ana, bea, _ := s.pvpPair(3)

	ana.send(protocol.TypeLeaveRoom, struct{}{})

	var game protocol.GameWinnerPVP
	bea.expect(protocol.TypeGameWinnerPVP, &game)
	s.Equal(model.WinnerPlayer2, game.Winner)
	s.True(game.YouWon)

	_, err := s.records.Get(context.Background(), "Bea")
	s.ErrorIs(err, model.ErrStatsNotFound)
}

func (s *ServerSuite) TestDroppedSocketHandsOpponentTheWin() {
	ana, bea, _ := s.pvpPair(3)

	s.Require().NoError(ana.conn.Close())

	var game protocol.GameWinnerPVP
	bea.expect(protocol.TypeGameWinnerPVP, &game)
	s.Equal(model.WinnerPlayer2, game.Winner)
	s.True(game.YouWon)
}

func (s *ServerSuite) TestCreateRoomDuringFinalRoundIsRejected() {
	ana, bea, _ := s.pvpPair(1)

	bea.send(protocol.TypeCreateRoom, protocol.CreateRoom{
		WordLength: 5, MaxAttempts: 6, Rounds: 1, Difficulty: "NORMAL", PlayerName: "Bea",
	})
	var errMsg protocol.Error
	bea.expect(protocol.TypeError, &errMsg)
	s.Contains(errMsg.Message, model.ErrAlreadyInRoom.Error())

	// Ana's series carries on with no winner declared
	ana.send(protocol.TypeListRooms, struct{}{})
	ana.expect(protocol.TypeRoomList, nil)

	bea.send(protocol.TypeGuessPVP, protocol.Guess{Word: "CASAS"})
	var result protocol.GuessResult
	bea.expect(protocol.TypeGuessResult, &result)
	s.True(result.IsValid)
}

func (s *ServerSuite) TestLoserLeavingAfterFinalRoundIsStillRecorded() {
	ana, bea, _ := s.pvpPair(1)

	ana.send(protocol.TypeGuessPVP, protocol.Guess{Word: "PERRO"})
	ana.expect(protocol.TypeGuessResult, nil)

	bea.expect(protocol.TypeOpponentProgress, nil)
	var round protocol.RoundWinnerPVP
	bea.expect(protocol.TypeRoundWinnerPVP, &round)
	s.False(round.YouWon)
	bea.send(protocol.TypeLeaveRoom, struct{}{})

	s.Eventually(func() bool {
		stats, err := s.records.Get(context.Background(), "Bea")
		return err == nil && stats.GamesLost == 1
	}, readTimeout, 10*time.Millisecond)
	s.Eventually(func() bool {
		stats, err := s.records.Get(context.Background(), "Ana")
		return err == nil && stats.GamesWon == 1
	}, readTimeout, 10*time.Millisecond)
}

func (s *ServerSuite) TestRepliesAreFlushedBeforeClose() {
	c := dial(s.T(), s.addr)
	for i := 0; i < 5; i++ {
		c.send(protocol.TypeListRooms, struct{}{})
	}
	s.Require().NoError(c.conn.(*net.TCPConn).CloseWrite())

	for i := 0; i < 5; i++ {
		c.expect(protocol.TypeRoomList, nil)
	}
	s.True(c.closed())
}

func (s *ServerSuite) TestGuessBeforeDisconnectIsAnswered() {
	c := dial(s.T(), s.addr)
	s.startGame(c, "NORMAL", 1)

	c.send(protocol.TypeGuess, protocol.Guess{Word: "ZZZZZ", AttemptNumber: 1})
	c.send(protocol.TypeDisconnect, struct{}{})

	var result protocol.GuessResult
	c.expect(protocol.TypeGuessResult, &result)
	s.False(result.IsValid)
	s.True(c.closed())
}

func (s *ServerSuite) TestJoinUnknownRoom() {
	c := dial(s.T(), s.addr)
	c.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "nope", PlayerName: "Bea"})

	var errMsg protocol.Error
	c.expect(protocol.TypeError, &errMsg)
	s.Contains(errMsg.Message, model.ErrRoomNotFound.Error())
}

func (s *ServerSuite) TestJoinFullRoom() {
	_, _, roomID := s.pvpPair(3)

	carl := dial(s.T(), s.addr)
	carl.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: roomID, PlayerName: "Carl"})

	var errMsg protocol.Error
	carl.expect(protocol.TypeError, &errMsg)
	s.True(strings.Contains(errMsg.Message, "full") || strings.Contains(errMsg.Message, "started"),
		"unexpected error %q", errMsg.Message)
}

func (s *ServerSuite) TestGuessPVPOutsideRoom() {
	c := dial(s.T(), s.addr)
	c.send(protocol.TypeGuessPVP, protocol.Guess{Word: "PERRO"})

	var result protocol.GuessResult
	c.expect(protocol.TypeGuessResult, &result)
	s.False(result.IsValid)
	s.Equal("not in a room", result.Message)
}

func (s *ServerSuite) TestConnectionCap() {
	cfg := s.cfg
	cfg.MaxClients = 1
	s.restart(cfg)

	first := dial(s.T(), s.addr)
	first.send(protocol.TypeListRooms, struct{}{})
	first.expect(protocol.TypeRoomList, nil)
	s.Equal(1, s.srv.ConnectionCount())

	second := dial(s.T(), s.addr)
	s.True(second.closed())

	// The first connection is unaffected
	first.send(protocol.TypeListRooms, struct{}{})
	first.expect(protocol.TypeRoomList, nil)
}

func (s *ServerSuite) TestIdleConnectionIsClosed() {
	cfg := s.cfg
	cfg.IdleTimeout = 50 * time.Millisecond
	s.restart(cfg)

	c := dial(s.T(), s.addr)
	c.send(protocol.TypeListRooms, struct{}{})
	c.expect(protocol.TypeRoomList, nil)

	s.True(c.closed())
	s.Eventually(func() bool { return s.srv.ConnectionCount() == 0 }, readTimeout, 10*time.Millisecond)
}

func (s *ServerSuite) TestShutdownClosesConnections() {
	c := dial(s.T(), s.addr)
	c.send(protocol.TypeListRooms, struct{}{})
	c.expect(protocol.TypeRoomList, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.srv.Shutdown(ctx))
	s.shutdown = true

	s.True(c.closed())
	select {
	case err := <-s.served:
		s.NoError(err)
	case <-time.After(readTimeout):
		s.Fail("Serve did not return after Shutdown")
	}
	s.Equal(0, s.srv.ConnectionCount())
}

func (s *ServerSuite) TestWebsocketTransport() {
	httpSrv := httptest.NewServer(http.HandlerFunc(s.srv.ServeWebsocket))
	defer httpSrv.Close()

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer ws.Close()

	env, err := protocol.NewEnvelope(protocol.TypeStartGame, protocol.StartGame{
		Mode: "SOLO", Rounds: 1, WordLength: 5, MaxAttempts: 6, PlayerName: "Ana",
	})
	s.Require().NoError(err)
	s.Require().NoError(ws.WriteJSON(env))

	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(readTimeout)))
	var reply protocol.Envelope
	s.Require().NoError(ws.ReadJSON(&reply))
	s.Equal(protocol.TypeGameStarted, reply.Type)

	var started protocol.GameStarted
	s.Require().NoError(protocol.Decode(reply, &started))
	s.Equal(1, started.Rounds)
}
