package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is the write side of a connection. Every outbound message, whether a
// reply or a push from another connection, goes through its send queue and a
// single writer goroutine, so lines never interleave.
type Client struct {
	id     model.PlayerID
	conn   Conn
	send   chan protocol.Envelope
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger

	// pending counts messages queued or mid-write
	pending atomic.Int64

	connectedAt time.Time
}

func newClient(id model.PlayerID, conn Conn, connectedAt time.Time, logger *slog.Logger) *Client {
	c := &Client{
		id:          id,
		conn:        conn,
		send:        make(chan protocol.Envelope, sendBufferSize),
		done:        make(chan struct{}),
		logger:      logger,
		connectedAt: connectedAt,
	}
	go c.writePump()
	return c
}

// ID returns the connection's player id
func (c *Client) ID() model.PlayerID { return c.id }

// Send queues a message. It reports false, without blocking, when the client
// is closed or its queue is full.
func (c *Client) Send(env protocol.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	c.pending.Add(1)
	select {
	case c.send <- env:
		return true
	case <-c.done:
		c.pending.Add(-1)
		return false
	default:
		c.pending.Add(-1)
		c.logger.Warn("message dropped - client buffer full", slog.String("type", string(env.Type)))
		return false
	}
}

// SendMessage encodes body and queues it
func (c *Client) SendMessage(t protocol.MessageType, body any) bool {
	env, err := protocol.NewEnvelope(t, body)
	if err != nil {
		c.logger.Error("failed to encode message", slog.String("type", string(t)), slog.String("error", err.Error()))
		return false
	}
	return c.Send(env)
}

// SendError queues an ERROR message
func (c *Client) SendError(message string) bool {
	return c.SendMessage(protocol.TypeError, protocol.Error{Message: message})
}

func (c *Client) writePump() {
	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteEnvelope(env)
			c.pending.Add(-1)
			if err != nil {
				c.logger.Debug("write failed", slog.String("error", err.Error()))
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Flush waits until every queued message, including one the writer has
// already taken off the queue, is written or the timeout passes
func (c *Client) Flush(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for c.pending.Load() > 0 && time.Now().Before(deadline) {
		select {
		case <-c.done:
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Close stops the writer and closes the connection. It is safe to call more
// than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Done is closed once the client is closed
func (c *Client) Done() <-chan struct{} { return c.done }
