package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	"github.com/gorilla/websocket"
)

// ReportFeedPath is where the report feed is mounted
const ReportFeedPath = "/reports"

// ReportFeed streams verification reports to websocket subscribers
type ReportFeed struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       port.Logger
	mutex        sync.Mutex
	clients      map[*websocket.Conn]struct{}
	closed       bool
}

// NewReportFeed creates a new ReportFeed instance
func NewReportFeed(writeTimeout time.Duration, logger port.Logger) *ReportFeed {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &ReportFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		logger:       logger,
		clients:      make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns an http.Handler serving the feed at ReportFeedPath
func (f *ReportFeed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ReportFeedPath, f)
	return mux
}

// ServeHTTP upgrades the request and registers the subscriber
func (f *ReportFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("Report feed upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}

	f.mutex.Lock()
	if f.closed {
		f.mutex.Unlock()
		conn.Close()
		return
	}
	f.clients[conn] = struct{}{}
	f.mutex.Unlock()

	f.logger.Info("Report feed subscriber connected: %s", r.RemoteAddr)
	go f.readPump(conn)
}

// readPump discards inbound frames and unregisters the subscriber on close
func (f *ReportFeed) readPump(conn *websocket.Conn) {
	defer f.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.logger.Debug("Report feed subscriber %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
	}
}

func (f *ReportFeed) remove(conn *websocket.Conn) {
	f.mutex.Lock()
	_, ok := f.clients[conn]
	delete(f.clients, conn)
	f.mutex.Unlock()

	if ok {
		conn.Close()
		f.logger.Debug("Report feed subscriber disconnected: %s", conn.RemoteAddr())
	}
}

// Subscribers returns the number of connected subscribers
func (f *ReportFeed) Subscribers() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.clients)
}

// Publish sends msg to every subscriber. Subscribers that cannot keep up
// within the write timeout are dropped.
func (f *ReportFeed) Publish(msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}

	f.mutex.Lock()
	var dropped []*websocket.Conn
	for conn := range f.clients {
		conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.logger.Warn("Dropping report feed subscriber %s: %v", conn.RemoteAddr(), err)
			dropped = append(dropped, conn)
		}
	}
	f.mutex.Unlock()

	for _, conn := range dropped {
		f.remove(conn)
	}
	return nil
}

// Close disconnects every subscriber
func (f *ReportFeed) Close() {
	f.mutex.Lock()
	f.closed = true
	clients := f.clients
	f.clients = make(map[*websocket.Conn]struct{})
	f.mutex.Unlock()

	for conn := range clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

// Ensure ReportFeed implements port.ReportPublisher
var _ port.ReportPublisher = (*ReportFeed)(nil)
