package server

import (
	"log/slog"
	"sync"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
)

// Directory maps player ids to live clients so one connection can push to
// another
type Directory struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	logger  *slog.Logger
}

// NewDirectory creates an empty Directory
func NewDirectory(logger *slog.Logger) *Directory {
	return &Directory{
		clients: make(map[model.PlayerID]*Client),
		logger:  logger.With(slog.String("component", "directory")),
	}
}

// Register adds a client
func (d *Directory) Register(c *Client) {
	d.mu.Lock()
	d.clients[c.id] = c
	count := len(d.clients)
	d.mu.Unlock()

	d.logger.Debug("client registered",
		slog.Int64("client_id", int64(c.id)),
		slog.Int("total_clients", count))
}

// Unregister removes a client if it is still the one registered under its id
func (d *Directory) Unregister(c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if current, ok := d.clients[c.id]; ok && current == c {
		delete(d.clients, c.id)
	}
}

// Get returns the client for a player id
func (d *Directory) Get(id model.PlayerID) (*Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.clients[id]
	return c, ok
}

// Send pushes a message to a player. Unknown or closed players are logged
// and skipped.
func (d *Directory) Send(id model.PlayerID, t protocol.MessageType, body any) bool {
	c, ok := d.Get(id)
	if !ok {
		d.logger.Debug("push dropped - no such client",
			slog.Int64("client_id", int64(id)),
			slog.String("type", string(t)))
		return false
	}
	if !c.SendMessage(t, body) {
		d.logger.Debug("push dropped - client closed",
			slog.Int64("client_id", int64(id)),
			slog.String("type", string(t)))
		return false
	}
	return true
}

// Count returns the number of registered clients
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.clients)
}

// CloseAll closes every registered client
func (d *Directory) CloseAll() {
	d.mu.RLock()
	clients := make([]*Client, 0, len(d.clients))
	for _, c := range d.clients {
		clients = append(clients, c)
	}
	d.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}
}
