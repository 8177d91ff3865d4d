package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	"github.com/gorilla/websocket"
)

// reconnectDelay is the pause between failed connection attempts
const reconnectDelay = 2 * time.Second

// FeedClient subscribes to a report feed and dispatches every message to
// the handler registered for its type.
type FeedClient struct {
	address     string
	conn        *websocket.Conn
	isConnected bool
	mutex       sync.Mutex
	logger      port.Logger
	handlers    map[model.MessageType]func(*model.Message) error
}

// NewFeedClient creates a new FeedClient for a ws:// address. A bare
// host:port is completed with the ws scheme and ReportFeedPath.
func NewFeedClient(address string, logger port.Logger) (*FeedClient, error) {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		u, err = url.Parse("ws://" + address)
		if err != nil {
			return nil, fmt.Errorf("invalid feed address %q: %w", address, err)
		}
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("invalid feed address %q: unsupported scheme %s", address, u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = ReportFeedPath
	}

	return &FeedClient{
		address:  u.String(),
		logger:   logger,
		handlers: make(map[model.MessageType]func(*model.Message) error),
	}, nil
}

// Address returns the websocket URL the client dials
func (c *FeedClient) Address() string {
	return c.address
}

// RegisterHandler registers a message handler for the given message type
func (c *FeedClient) RegisterHandler(msgType model.MessageType, handler func(*model.Message) error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.handlers[msgType] = handler
}

// Connect dials the feed
func (c *FeedClient) Connect(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.isConnected {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.address, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to report feed: %w", err)
	}

	c.conn = conn
	c.isConnected = true
	c.logger.Info("Connected to report feed: %s", c.address)
	return nil
}

// Close closes the client connection
func (c *FeedClient) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.isConnected {
		return
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.isConnected = false
}

// IsConnected returns whether the client is connected to the feed
func (c *FeedClient) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isConnected
}

// Run reads and dispatches messages until ctx is cancelled, reconnecting
// whenever the feed goes away.
func (c *FeedClient) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	for {
		if err := c.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("%v; retrying in %s", err, reconnectDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
			}
			continue
		}

		c.readPump()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Info("Report feed connection lost, reconnecting...")
	}
}

// readPump reads messages until the connection fails
func (c *FeedClient) readPump() {
	defer c.Close()

	c.mutex.Lock()
	conn := c.conn
	c.mutex.Unlock()
	if conn == nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("Failed to read message: %v", err)
			}
			return
		}

		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Error("Failed to parse message: %v", err)
			continue
		}

		c.mutex.Lock()
		handler, exists := c.handlers[msg.Type]
		c.mutex.Unlock()

		if exists {
			if err := handler(&msg); err != nil {
				c.logger.Error("Error handling message %s: %v", msg.Type, err)
			}
		} else {
			c.logger.Debug("No handler for message type: %s", msg.Type)
		}
	}
}
