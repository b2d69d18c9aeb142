package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
)

const dialTimeout = 5 * time.Second

type playOptions struct {
	name        string
	difficulty  string
	rounds      int
	wordLength  int
	maxAttempts int
	solo        bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a series against the AI",
		Long: `Connect to the game port and play a series in the terminal.

Type a word and press enter to guess. Tiles show as [A] for a letter in
the right place, (A) for a letter elsewhere in the word and a lower case
letter for one that is absent. Type /quit to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gc, err := dialGame(cfg.GameAddr)
			if err != nil {
				return err
			}
			defer func() { _ = gc.Close() }()

			return play(ctx, gc, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Player name shown in records")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", string(model.DifficultyNormal), "EASY, NORMAL, HARD or MIXTA")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 3, "Rounds in the series")
	cmd.Flags().IntVar(&opts.wordLength, "length", 5, "Word length")
	cmd.Flags().IntVar(&opts.maxAttempts, "attempts", 6, "Attempts per round")
	cmd.Flags().BoolVar(&opts.solo, "solo", false, "Play without the AI opponent")

	return cmd
}

// gameConn speaks the line protocol over one TCP connection
type gameConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func dialGame(addr string) (*gameConn, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to game server: %w", err)
	}
	return newGameConn(conn), nil
}

func newGameConn(conn net.Conn) *gameConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), protocol.MaxLineBytes)
	return &gameConn{conn: conn, scanner: scanner}
}

func (g *gameConn) Send(t protocol.MessageType, body any) error {
	env, err := protocol.NewEnvelope(t, body)
	if err != nil {
		return err
	}
	line, err := protocol.MarshalLine(env)
	if err != nil {
		return err
	}
	_, err = g.conn.Write(line)
	return err
}

// Next blocks for the next message. It returns io.EOF when the server hangs up.
func (g *gameConn) Next() (protocol.Envelope, error) {
	if !g.scanner.Scan() {
		if err := g.scanner.Err(); err != nil {
			return protocol.Envelope{}, err
		}
		return protocol.Envelope{}, io.EOF
	}
	return protocol.ParseLine(g.scanner.Bytes())
}

func (g *gameConn) Close() error {
	return g.conn.Close()
}

func play(ctx context.Context, gc *gameConn, opts playOptions, in io.Reader, out io.Writer) error {
	mode := model.ModePVE
	if opts.solo {
		mode = model.ModeSolo
	}
	err := gc.Send(protocol.TypeStartGame, protocol.StartGame{
		Mode:        string(mode),
		Rounds:      opts.rounds,
		WordLength:  opts.wordLength,
		MaxAttempts: opts.maxAttempts,
		Difficulty:  opts.difficulty,
		PlayerName:  opts.name,
	})
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	finished := make(chan error, 1)
	go func() {
		finished <- readGame(gc, out)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	attempt := 0
	for {
		select {
		case err := <-finished:
			return err
		case <-ctx.Done():
			_ = gc.Send(protocol.TypeDisconnect, struct{}{})
			return nil
		case line, ok := <-lines:
			if !ok {
				// Input closed: let the server finish the series
				return <-finished
			}
			word := strings.TrimSpace(line)
			switch {
			case word == "":
				continue
			case word == "/quit":
				_ = gc.Send(protocol.TypeDisconnect, struct{}{})
				return nil
			}
			attempt++
			if err := gc.Send(protocol.TypeGuess, protocol.Guess{Word: word, AttemptNumber: attempt}); err != nil {
				return fmt.Errorf("send guess: %w", err)
			}
		}
	}
}

// readGame prints server messages until the series ends or the connection drops
func readGame(gc *gameConn, out io.Writer) error {
	round := 0
	for {
		env, err := gc.Next()
		if err == io.EOF {
			fmt.Fprintln(out, "Disconnected")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read from server: %w", err)
		}

		switch env.Type {
		case protocol.TypeGameStarted:
			var msg protocol.GameStarted
			if err := protocol.Decode(env, &msg); err != nil {
				return err
			}
			round++
			fmt.Fprintf(out, "Round %d of %d: %d letters, %d attempts\n", round, msg.Rounds, msg.WordLength, msg.MaxAttempts)

		case protocol.TypeGuessResult:
			var msg protocol.GuessResult
			if err := protocol.Decode(env, &msg); err != nil {
				return err
			}
			if !msg.IsValid {
				fmt.Fprintf(out, "  %s\n", msg.Message)
				continue
			}
			fmt.Fprintf(out, "  %s\n", renderTiles(msg.Word, msg.Result))

		case protocol.TypeAIMove:
			var msg protocol.AIMove
			if err := protocol.Decode(env, &msg); err != nil {
				return err
			}
			fmt.Fprintf(out, "  AI #%d %s\n", msg.AttemptNumber, renderHidden(msg.Result))

		case protocol.TypeRoundWinner:
			var msg protocol.RoundWinner
			if err := protocol.Decode(env, &msg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Round over: %s (word was %s)\n", describeWinner(msg.Winner), msg.Solution)

		case protocol.TypeGameWinner:
			var msg protocol.GameWinner
			if err := protocol.Decode(env, &msg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Series over: %s, %d to %d\n", describeWinner(msg.Winner), msg.PlayerRounds, msg.AIRounds)
			return nil

		case protocol.TypeError:
			var msg protocol.Error
			if err := protocol.Decode(env, &msg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Error: %s\n", msg.Message)
		}
	}
}

func renderTiles(word string, tiles []model.TileState) string {
	letters := []rune(word)
	var b strings.Builder
	for i, t := range tiles {
		letter := "?"
		if i < len(letters) {
			letter = string(letters[i])
		}
		switch t {
		case model.TileCorrect:
			b.WriteString("[" + strings.ToUpper(letter) + "]")
		case model.TilePresent:
			b.WriteString("(" + strings.ToUpper(letter) + ")")
		default:
			b.WriteString(" " + strings.ToLower(letter) + " ")
		}
	}
	return b.String()
}

// renderHidden shows the AI's tiles without its letters
func renderHidden(tiles []model.TileState) string {
	var b strings.Builder
	for _, t := range tiles {
		switch t {
		case model.TileCorrect:
			b.WriteString("[#]")
		case model.TilePresent:
			b.WriteString("(+)")
		default:
			b.WriteString(" . ")
		}
	}
	return b.String()
}

func describeWinner(w model.Winner) string {
	switch w {
	case model.WinnerPlayer:
		return "you win"
	case model.WinnerAI:
		return "AI wins"
	case model.WinnerDraw:
		return "draw"
	default:
		return string(w)
	}
}
