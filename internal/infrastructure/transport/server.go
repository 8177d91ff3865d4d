package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	"golang.org/x/net/netutil"
)

// shutdownGrace bounds how long Serve waits for open connections on shutdown
const shutdownGrace = 5 * time.Second

// Server is the HTTP/1.x runtime the file handlers are mounted on
type Server struct {
	config   model.ServerConfig
	logger   port.Logger
	server   *http.Server
	listener net.Listener
	mutex    sync.Mutex
}

// NewServer creates a new Server instance
func NewServer(config model.ServerConfig, handler http.Handler, logger port.Logger) *Server {
	return &Server{
		config: config,
		logger: logger,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			ErrorLog:          log.New(&logWriter{logger: logger}, "", 0),
		},
	}
}

// Listen binds the listening socket. It is called by Serve when needed and
// may be called earlier to learn the bound address.
func (s *Server) Listen() (net.Addr, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listener != nil {
		return s.listener.Addr(), nil
	}

	lc := net.ListenConfig{Control: controlSocket}
	ln, err := lc.Listen(context.Background(), "tcp", s.config.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	if s.config.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.config.MaxConnections)
	}

	s.listener = ln
	return ln.Addr(), nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.mutex.Lock()
	ln := s.listener
	s.mutex.Unlock()

	s.logger.Info("Listening on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down %s", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.server.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

// logWriter feeds net/http's internal log lines into port.Logger
type logWriter struct {
	logger port.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.logger.Warn("http: %s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
