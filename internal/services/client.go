package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/damione1/pokersync/internal/config"
	"github.com/damione1/pokersync/internal/models"
)

// Conn is the subset of *websocket.Conn the client uses. Tests substitute a
// recording implementation.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Close(status websocket.StatusCode, reason string) error
	Ping(ctx context.Context) error
}

// MessageHandler processes decoded traffic for a connection. The coordinator
// implements it.
type MessageHandler interface {
	HandleMessage(c *Client, data []byte)
	HandleDisconnect(c *Client)
}

// Client represents a single WebSocket connection with its own send
// goroutine. A client starts unbound; the first join-room event binds it to
// a (room, participant) pair used to route its eventual disconnect.
type Client struct {
	conn    Conn
	send    chan []byte
	hub     *Hub
	handler MessageHandler
	connID  string

	// Current room binding, set by the coordinator on join
	bindMu sync.Mutex
	roomID string
	bound  bool

	// Rate limiting
	messageCount int
	rateLimitMu  sync.Mutex
	lastReset    time.Time

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	closeMu sync.Mutex
}

// NewClient creates a new client instance
func NewClient(conn Conn, hub *Hub, handler MessageHandler, connID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:      conn,
		send:      make(chan []byte, config.ClientSendBufferSize),
		hub:       hub,
		handler:   handler,
		connID:    connID,
		lastReset: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ConnectionID returns the transport-level identity of this connection.
func (c *Client) ConnectionID() string {
	return c.connID
}

// Bind records the room this connection currently belongs to.
func (c *Client) Bind(roomID string) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.roomID = roomID
	c.bound = true
}

// Binding returns the bound room, if any.
func (c *Client) Binding() (string, bool) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	return c.roomID, c.bound
}

// Run starts the write pump and blocks in the read pump until the
// connection drops.
func (c *Client) Run() {
	c.hub.metrics.IncrementConnections()
	defer c.hub.metrics.DecrementConnections()

	go c.writePump()
	c.readPump()
}

// writePump handles outgoing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Channel closed, connection is closing
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()

			if err != nil {
				log.Printf("❌ Write error (conn=%s): %v", c.connID, err)
				c.hub.metrics.IncrementBroadcastErrors()
				return
			}
			c.hub.metrics.IncrementMessagesSent()

		case <-ticker.C:
			// Send ping to keep connection alive
			pingCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()

			if err != nil {
				log.Printf("❌ Ping error (conn=%s): %v", c.connID, err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump handles incoming messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.handler.HandleDisconnect(c)
		c.Close()
	}()

	for {
		readCtx, cancel := context.WithTimeout(c.ctx, config.PongTimeout)
		_, message, err := c.conn.Read(readCtx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.hub.metrics.IncrementConnectionErrors()
			}
			return
		}

		if !c.checkRateLimit() {
			log.Printf("⚠️ Rate limit exceeded (conn=%s)", c.connID)
			c.hub.metrics.IncrementRateLimitViolations()

			c.hub.SendToClient(c, &models.WSMessage{
				Type: models.MsgTypeError,
				Payload: models.ErrorPayload{
					Message: "Rate limit exceeded. Please slow down.",
				},
			})
			continue
		}

		c.hub.metrics.IncrementMessagesReceived()
		c.handler.HandleMessage(c, message)
	}
}

// checkRateLimit verifies the client hasn't exceeded message rate limits
func (c *Client) checkRateLimit() bool {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	now := time.Now()
	if now.Sub(c.lastReset) > config.RateLimitWindow {
		c.messageCount = 0
		c.lastReset = now
	}

	c.messageCount++
	return c.messageCount <= config.MaxMessagesPerSecond
}

// Send queues a message for sending to the client
func (c *Client) Send(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		// Channel full, client is too slow
		log.Printf("⚠️ Send buffer full, closing slow client (conn=%s)", c.connID)
		c.hub.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// Close cleanly shuts down the client connection
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.send)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}
