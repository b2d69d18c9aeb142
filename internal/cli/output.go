package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcoot/wordlegame-go/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		fmt.Fprintf(o.w, "Connections: %d\n", v.Connections)
		fmt.Fprintf(o.w, "Rooms: %d\n", v.Rooms)
	case response.Token:
		fmt.Fprintf(o.w, "Logged in, token expires %s\n", v.ExpiresAt.Local().Format("2006-01-02 15:04"))
	case response.RoomList:
		o.printRooms(v)
	case response.Records:
		o.printRecords(v)
	case response.PlayerRecord:
		o.printPlayerRecord(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printRooms(l response.RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No open rooms")
		return
	}
	fmt.Fprintf(o.w, "Open rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "  %s  %s  %d letters, %d attempts, %d rounds, %s  (%d/2)\n",
			r.ID, r.CreatorName, r.WordLength, r.MaxAttempts, r.Rounds, r.Difficulty, r.PlayerCount)
	}
}

func (o *Output) printRecords(r response.Records) {
	if len(r.Players) == 0 {
		fmt.Fprintln(o.w, "No records")
		return
	}
	fmt.Fprintf(o.w, "%-20s %6s %6s %6s %7s %7s\n", "PLAYER", "WON", "LOST", "STREAK", "WIN%", "AVG")
	for _, p := range r.Players {
		fmt.Fprintf(o.w, "%-20s %6d %6d %6d %6.1f%% %7.2f\n",
			p.Name, p.GamesWon, p.GamesLost, p.CurrentStreak, p.WinRate*100, p.AverageAttempts)
	}
}

func (o *Output) printPlayerRecord(p response.PlayerRecord) {
	fmt.Fprintf(o.w, "Player: %s\n", p.Name)
	fmt.Fprintf(o.w, "Games: %d won, %d lost (%.1f%%)\n", p.GamesWon, p.GamesLost, p.WinRate*100)
	fmt.Fprintf(o.w, "Streak: %d (best %d)\n", p.CurrentStreak, p.MaxStreak)
	fmt.Fprintf(o.w, "Words: %d of %d guessed (%.1f%%)\n", p.WordsGuessed, p.TotalWords, p.GuessRate*100)
	fmt.Fprintf(o.w, "Average attempts: %.2f\n", p.AverageAttempts)

	if len(p.AttemptsDistribution) == 0 {
		return
	}
	attempts := make([]int, 0, len(p.AttemptsDistribution))
	for n := range p.AttemptsDistribution {
		attempts = append(attempts, n)
	}
	sort.Ints(attempts)
	fmt.Fprintln(o.w, "Distribution:")
	for _, n := range attempts {
		count := p.AttemptsDistribution[n]
		fmt.Fprintf(o.w, "  %2d | %s %d\n", n, strings.Repeat("#", count), count)
	}
}
