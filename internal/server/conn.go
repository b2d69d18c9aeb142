package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/protocol"
)

// Conn is one client connection carrying envelopes, whatever the transport
type Conn interface {
	// ReadEnvelope blocks for the next message. A malformed message returns an
	// error wrapping model.ErrInvalidPayload and leaves the connection usable.
	ReadEnvelope() (protocol.Envelope, error)
	WriteEnvelope(env protocol.Envelope) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// lineConn speaks newline-delimited envelopes over a stream socket
type lineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// NewLineConn wraps a stream connection such as TCP
func NewLineConn(conn net.Conn) Conn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), protocol.MaxLineBytes)
	return &lineConn{conn: conn, scanner: scanner}
}

func (c *lineConn) ReadEnvelope() (protocol.Envelope, error) {
	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return protocol.ParseLine(line)
	}
	if err := c.scanner.Err(); err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.Envelope{}, model.ErrConnectionClosed
}

func (c *lineConn) WriteEnvelope(env protocol.Envelope) error {
	line, err := protocol.MarshalLine(env)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(line)
	return err
}

func (c *lineConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *lineConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *lineConn) RemoteAddr() string                 { return c.conn.RemoteAddr().String() }
func (c *lineConn) Close() error                       { return c.conn.Close() }

// wsConn carries one envelope per websocket text frame
type wsConn struct {
	conn *websocket.Conn
}

// NewWebsocketConn wraps an upgraded websocket connection
func NewWebsocketConn(conn *websocket.Conn) Conn {
	conn.SetReadLimit(protocol.MaxLineBytes)
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadEnvelope() (protocol.Envelope, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return protocol.Envelope{}, model.ErrConnectionClosed
			}
			return protocol.Envelope{}, err
		}
		if msgType != websocket.TextMessage {
			return protocol.Envelope{}, fmt.Errorf("%w: binary frames are not supported", model.ErrInvalidPayload)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		return protocol.ParseLine(data)
	}
}

func (c *wsConn) WriteEnvelope(env protocol.Envelope) error {
	line, err := protocol.MarshalLine(env)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(line, "\n"))
}

func (c *wsConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *wsConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *wsConn) RemoteAddr() string                 { return c.conn.RemoteAddr().String() }

func (c *wsConn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// isProtocolError reports whether err is a bad message rather than a broken connection
func isProtocolError(err error) bool {
	return errors.Is(err, model.ErrInvalidPayload)
}
