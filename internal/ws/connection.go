package ws

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection is one live client socket. Clients only listen; the read pump
// exists to service control frames and to notice the peer going away.
type Connection struct {
	connectionID string
	ws           *websocket.Conn
	send         chan []byte
	closed       chan struct{}
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func(connectionID string)
}

// NewConnection wraps an upgraded websocket.
func NewConnection(connectionID string, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Connection {
	return &Connection{
		connectionID: connectionID,
		ws:           ws,
		send:         make(chan []byte, 16),
		closed:       make(chan struct{}),
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// ConnectionID returns the socket connection identifier.
func (c *Connection) ConnectionID() string {
	return c.connectionID
}

// Start launches the pumps and blocks until the peer disconnects.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.cleanup()
	c.ws.SetReadLimit(4 * 1024)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Info("live connection closed",
				zap.String("connection_id", c.connectionID), zap.Error(err))
			return
		}
		// Inbound payloads from listeners are ignored.
	}
}

func (c *Connection) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			_ = c.write(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// Enqueue queues a message for delivery. It fails instead of blocking when
// the peer is gone or cannot keep up.
func (c *Connection) Enqueue(msg []byte) error {
	select {
	case <-c.closed:
		return errors.New("ws: connection closed")
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("dropping live update, buffer full",
			zap.String("connection_id", c.connectionID))
		return errors.New("ws: send buffer full")
	}
}

// Ping sends a keepalive ping.
func (c *Connection) Ping() error {
	return c.write(websocket.PingMessage, []byte("ping"))
}

func (c *Connection) write(messageType int, data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *Connection) cleanup() {
	close(c.closed)
	_ = c.ws.Close()
	if c.onClose != nil {
		c.onClose(c.connectionID)
	}
}
