// Package server runs the game protocol over TCP and websocket connections.
// Each connection gets one handler goroutine for reads and one writer
// goroutine for its send queue.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordlegame-go/internal/dependencies/clock"
	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/room"
)

// Config holds the game server settings
type Config struct {
	// MaxClients caps TCP and websocket connections together
	MaxClients int

	// IdleTimeout is the read deadline for each message. Zero disables it.
	IdleTimeout time.Duration

	AIDelay          time.Duration
	RoundResultDelay time.Duration
	NextRoundDelay   time.Duration

	// CleanupInterval is how often empty rooms are swept. Zero disables it.
	CleanupInterval time.Duration
}

// DefaultConfig returns the server defaults
func DefaultConfig() Config {
	return Config{
		MaxClients:       10,
		IdleTimeout:      300 * time.Second,
		AIDelay:          500 * time.Millisecond,
		RoundResultDelay: time.Second,
		NextRoundDelay:   2 * time.Second,
		CleanupInterval:  time.Minute,
	}
}

// Dependencies are the services a Server hands to its connections
type Dependencies struct {
	Words    dictionary.Source
	Registry *room.Registry
	Records  *records.Service
	Clock    clock.Clock
	Random   random.Random
	Logger   *slog.Logger
}

// Server accepts connections and runs a handler for each
type Server struct {
	cfg       Config
	words     dictionary.Source
	registry  *room.Registry
	records   *records.Service
	directory *Directory
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	nextID atomic.Int64
	active atomic.Int64
	wg     sync.WaitGroup

	mu        sync.Mutex
	closing   bool
	listeners map[net.Listener]struct{}
}

// New creates a Server and starts its room cleanup loop
func New(cfg Config, deps Dependencies) *Server {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultConfig().MaxClients
	}
	logger := deps.Logger.With(slog.String("component", "server"))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		words:     deps.Words,
		registry:  deps.Registry,
		records:   deps.Records,
		directory: NewDirectory(deps.Logger),
		clock:     deps.Clock,
		random:    deps.Random,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[net.Listener]struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go s.cleanupLoop()
	}
	return s
}

// ListenAndServe listens on addr and serves until Shutdown
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. It returns nil after
// Shutdown and an error if the listener itself fails.
func (s *Server) Serve(ln net.Listener) error {
	if !s.trackListener(ln) {
		_ = ln.Close()
		return nil
	}
	defer s.untrackListener(ln)

	s.logger.Info("game server listening", slog.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timed out", slog.String("error", err.Error()))
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		go func() {
			_ = s.ServeConn(NewLineConn(conn))
		}()
	}
}

// ServeWebsocket upgrades an HTTP request and serves the game protocol over
// text frames
func (s *Server) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	_ = s.ServeConn(NewWebsocketConn(ws))
}

// ServeConn runs the protocol on conn until it closes. Connections over the
// cap, or arriving after Shutdown, are closed at once with ErrServerFull.
func (s *Server) ServeConn(conn Conn) error {
	if !s.acquire() {
		s.logger.Warn("connection rejected - server full",
			slog.String("remote_addr", conn.RemoteAddr()),
			slog.Int("max_clients", s.cfg.MaxClients))
		_ = conn.Close()
		return model.ErrServerFull
	}
	defer s.release()

	id := model.PlayerID(s.nextID.Add(1))
	logger := s.logger.With(
		slog.Int64("client_id", int64(id)),
		slog.String("remote_addr", conn.RemoteAddr()))

	client := newClient(id, conn, s.clock.Now(), logger)
	s.directory.Register(client)
	if s.ctx.Err() != nil {
		s.directory.Unregister(client)
		client.Close()
		return model.ErrServerFull
	}

	logger.Info("client connected", slog.Int64("active_clients", s.active.Load()))

	h := &handler{
		srv:    s,
		client: client,
		conn:   conn,
		logger: logger,
		name:   defaultPlayerName,
	}
	h.run(s.ctx)
	return nil
}

// Shutdown stops accepting, closes every connection, and waits for handlers
// to finish or ctx to expire
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	listeners := make([]net.Listener, 0, len(s.listeners))
	for ln := range s.listeners {
		listeners = append(listeners, ln)
	}
	s.mu.Unlock()

	s.logger.Info("shutting down game server")
	s.cancel()
	for _, ln := range listeners {
		_ = ln.Close()
	}
	s.directory.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}

	removed := s.registry.Cleanup()
	s.logger.Info("game server stopped", slog.Int("rooms_removed", removed))
	return nil
}

// ConnectionCount returns the number of live connections
func (s *Server) ConnectionCount() int {
	return int(s.active.Load())
}

// RoomCount returns the number of open rooms
func (s *Server) RoomCount() int {
	return s.registry.Count()
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing || s.active.Load() >= int64(s.cfg.MaxClients) {
		return false
	}
	s.active.Add(1)
	s.wg.Add(1)
	return true
}

func (s *Server) release() {
	s.active.Add(-1)
	s.wg.Done()
}

func (s *Server) trackListener(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.listeners[ln] = struct{}{}
	return true
}

func (s *Server) untrackListener(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, ln)
}

func (s *Server) cleanupLoop() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.registry.Cleanup(); removed > 0 {
				s.logger.Debug("removed empty rooms", slog.Int("count", removed))
			}
		case <-s.ctx.Done():
			return
		}
	}
}
