package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordlegame-go/internal/api/response"
	"github.com/mcoot/wordlegame-go/internal/factory"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
)

const adminPassword = "hunter22"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	gameAddr   string
	tokenFile  string
}

func newCLIRunner(t *testing.T, ts *testServer) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "wordlectl")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wordlectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  ts.url,
		gameAddr:   ts.gameAddr,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runWithInput("", args...)
}

func (r *cliRunner) runWithInput(stdin string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--addr", r.gameAddr,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "WORDLECTL_TOKEN=")
	cmd.Stdin = strings.NewReader(stdin)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the full application on loopback ports
type testServer struct {
	app      *factory.App
	url      string
	gameAddr string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := factory.TestConfig()
	cfg.Auth.JWTSecret = "e2e-secret"
	cfg.Auth.AdminPasswordHash = string(hash)
	cfg.Game.AIDelay = 10 * time.Millisecond
	cfg.Game.RoundResultDelay = 10 * time.Millisecond
	cfg.Game.NextRoundDelay = 10 * time.Millisecond

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(cfg, logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		if err := app.GameServer.Serve(ln); err != nil {
			t.Logf("game server error: %v", err)
		}
	}()

	httpServer := httptest.NewServer(app.Router)

	t.Cleanup(func() {
		httpServer.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(ctx)
	})

	return &testServer{app: app, url: httpServer.URL, gameAddr: ln.Addr().String()}
}

// player is a raw protocol client
type player struct {
	t       *testing.T
	conn    net.Conn
	scanner *bufio.Scanner
}

func connect(t *testing.T, addr string) *player {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &player{t: t, conn: conn, scanner: bufio.NewScanner(conn)}
}

func (p *player) send(mt protocol.MessageType, body any) {
	p.t.Helper()
	env, err := protocol.NewEnvelope(mt, body)
	require.NoError(p.t, err)
	line, err := protocol.MarshalLine(env)
	require.NoError(p.t, err)
	_, err = p.conn.Write(line)
	require.NoError(p.t, err)
}

// waitFor skips messages until one of type mt arrives
func (p *player) waitFor(mt protocol.MessageType, out any) {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	for p.scanner.Scan() {
		env, err := protocol.ParseLine(p.scanner.Bytes())
		require.NoError(p.t, err)
		if env.Type != mt {
			continue
		}
		if out != nil {
			require.NoError(p.t, json.Unmarshal([]byte(env.Payload), out))
		}
		return
	}
	p.t.Fatalf("connection ended waiting for %s: %v", mt, p.scanner.Err())
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp response.Health
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RoomsListsWaitingRoom(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts)

	alice := connect(t, ts.gameAddr)
	alice.send(protocol.TypeCreateRoom, protocol.CreateRoom{
		WordLength: 5, MaxAttempts: 6, Rounds: 3, Difficulty: "NORMAL", PlayerName: "Alice",
	})
	var created protocol.RoomCreated
	alice.waitFor(protocol.TypeRoomCreated, &created)

	output, err := cli.run("rooms")
	require.NoError(t, err, "output: %s", output)

	var rooms response.RoomList
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, created.RoomID, rooms.Rooms[0].ID)
	assert.Equal(t, "Alice", rooms.Rooms[0].CreatorName)
}

func TestCLI_PlayAgainstAI(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts)

	words := ts.app.Words.Words(5, model.DifficultyNormal)
	require.NotEmpty(t, words)

	output, err := cli.runWithInput(strings.ToLower(words[0])+"\n",
		"play", "--name", "Carol", "--difficulty", "EASY", "--rounds", "1", "--attempts", "1")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "Round 1 of 1")
	assert.Contains(t, output, "Series over")

	require.NoError(t, cli.runLogin(t))
	output, err = cli.run("records", "Carol")
	require.NoError(t, err, "output: %s", output)

	var record response.PlayerRecord
	require.NoError(t, json.Unmarshal([]byte(output), &record))
	assert.Equal(t, 1, record.TotalGames)
	assert.Equal(t, 1, record.TotalWords)
}

func TestCLI_FullPVPFlow(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts)

	words := ts.app.Words.Words(5, model.DifficultyNormal)
	require.NotEmpty(t, words)

	alice := connect(t, ts.gameAddr)
	bob := connect(t, ts.gameAddr)

	alice.send(protocol.TypeCreateRoom, protocol.CreateRoom{
		WordLength: 5, MaxAttempts: 1, Rounds: 1, Difficulty: "NORMAL", PlayerName: "Alice",
	})
	var created protocol.RoomCreated
	alice.waitFor(protocol.TypeRoomCreated, &created)

	bob.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: created.RoomID, PlayerName: "Bob"})
	var joined protocol.RoomJoined
	bob.waitFor(protocol.TypeRoomJoined, &joined)
	assert.Equal(t, "Alice", joined.OpponentName)
	assert.False(t, joined.IsPlayer1)

	var started protocol.GameStartedPVP
	alice.waitFor(protocol.TypeGameStartedPVP, &started)
	assert.Equal(t, "Bob", started.OpponentName)
	bob.waitFor(protocol.TypeGameStartedPVP, nil)

	// One attempt each ends the single round whatever the secret is
	alice.send(protocol.TypeGuessPVP, protocol.Guess{Word: words[0], AttemptNumber: 1})
	bob.waitFor(protocol.TypeOpponentProgress, nil)
	bob.send(protocol.TypeGuessPVP, protocol.Guess{Word: words[0], AttemptNumber: 1})

	var aliceResult, bobResult protocol.GameWinnerPVP
	alice.waitFor(protocol.TypeGameWinnerPVP, &aliceResult)
	bob.waitFor(protocol.TypeGameWinnerPVP, &bobResult)
	assert.Equal(t, aliceResult.Winner, bobResult.Winner)
	assert.Equal(t, "Alice", aliceResult.Player1Name)
	assert.Equal(t, "Bob", aliceResult.Player2Name)

	require.NoError(t, cli.runLogin(t))
	output, err := cli.run("records")
	require.NoError(t, err, "output: %s", output)

	var records response.Records
	require.NoError(t, json.Unmarshal([]byte(output), &records))
	require.Len(t, records.Players, 2)
	assert.Equal(t, "Alice", records.Players[0].Name)
	assert.Equal(t, "Bob", records.Players[1].Name)
	for _, p := range records.Players {
		assert.Equal(t, 1, p.TotalGames)
	}

	output, err = cli.run("records", "reset")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("records")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &records))
	assert.Empty(t, records.Players)
}

func TestCLI_RecordsRejectBadToken(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts)

	output, err := cli.run("login", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")

	output, err = cli.run("--token", "not-a-token", "records")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func (r *cliRunner) runLogin(t *testing.T) error {
	t.Helper()
	output, err := r.run("login", "--password", adminPassword)
	if err != nil {
		t.Logf("login output: %s", output)
	}
	return err
}
