package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/session"
)

// defaultPlayerName is used when a client does not send a name
const defaultPlayerName = "Player"

// errDisconnect ends the read loop after a DISCONNECT request
var errDisconnect = errors.New("client requested disconnect")

// handler owns one connection's state. Only its own goroutine touches
// session; rooms are shared and reached through the registry.
type handler struct {
	srv     *Server
	client  *Client
	conn    Conn
	logger  *slog.Logger
	session *session.Session
	name    string
}

// run reads and dispatches messages until the connection ends
func (h *handler) run(ctx context.Context) {
	defer h.cleanup()

	for {
		if h.srv.cfg.IdleTimeout > 0 {
			_ = h.conn.SetReadDeadline(time.Now().Add(h.srv.cfg.IdleTimeout))
		}

		env, err := h.conn.ReadEnvelope()
		if err != nil {
			if isProtocolError(err) {
				h.logger.Debug("bad message", slog.String("error", err.Error()))
				h.client.SendError(err.Error())
				continue
			}
			if ctx.Err() == nil && !errors.Is(err, model.ErrConnectionClosed) {
				h.logger.Debug("read failed", slog.String("error", err.Error()))
			}
			return
		}

		if err := h.dispatch(ctx, env); err != nil {
			if errors.Is(err, errDisconnect) {
				return
			}
			h.logger.Debug("request failed",
				slog.String("type", string(env.Type)),
				slog.String("error", err.Error()))
			h.client.SendError(err.Error())
		}
	}
}

func (h *handler) dispatch(ctx context.Context, env protocol.Envelope) error {
	switch env.Type {
	case protocol.TypeStartGame:
		var req protocol.StartGame
		if err := protocol.Decode(env, &req); err != nil {
			return err
		}
		return h.handleStartGame(req)
	case protocol.TypeGuess:
		var req protocol.Guess
		if err := protocol.Decode(env, &req); err != nil {
			return err
		}
		return h.handleGuess(ctx, req)
	case protocol.TypeSyncRecords:
		return h.handleSyncRecords(ctx)
	case protocol.TypeDisconnect:
		return errDisconnect
	case protocol.TypeCreateRoom:
		var req protocol.CreateRoom
		if err := protocol.Decode(env, &req); err != nil {
			return err
		}
		return h.handleCreateRoom(req)
	case protocol.TypeListRooms:
		return h.handleListRooms()
	case protocol.TypeJoinRoom:
		var req protocol.JoinRoom
		if err := protocol.Decode(env, &req); err != nil {
			return err
		}
		return h.handleJoinRoom(req)
	case protocol.TypeGuessPVP:
		var req protocol.Guess
		if err := protocol.Decode(env, &req); err != nil {
			return err
		}
		return h.handleGuessPVP(ctx, req)
	case protocol.TypeLeaveRoom:
		h.leaveRoom()
		return nil
	default:
		return fmt.Errorf("%w: %s", model.ErrUnknownMessage, env.Type)
	}
}

func (h *handler) handleSyncRecords(ctx context.Context) error {
	all, err := h.srv.records.All(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	h.client.SendMessage(protocol.TypeRecordsData, protocol.RecordsData{Records: all})
	return nil
}

// sleep pauses for d using the server clock. It reports false if the
// connection is shutting down.
func (h *handler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	return h.srv.clock.Sleep(ctx, d)
}

func (h *handler) recordResult(ctx context.Context, name string, r records.Result) {
	if _, err := h.srv.records.RecordResult(ctx, name, r); err != nil {
		h.logger.Error("failed to update records",
			slog.String("player", name),
			slog.String("error", err.Error()))
	}
}

func (h *handler) cleanup() {
	if r := recover(); r != nil {
		h.logger.Error("connection handler panicked", slog.Any("panic", r))
	}

	h.leaveRoom()
	h.session = nil
	h.srv.directory.Unregister(h.client)
	h.client.Flush(writeWait)
	h.client.Close()

	h.logger.Info("client disconnected",
		slog.Duration("connection_duration", h.srv.clock.Now().Sub(h.client.connectedAt)))
}

func playerName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return defaultPlayerName
	}
	return name
}
