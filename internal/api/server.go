package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/hass-agent/internal/connector"
	"github.com/nerrad567/hass-agent/internal/entity"
	"github.com/nerrad567/hass-agent/internal/infrastructure/config"
	"github.com/nerrad567/hass-agent/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// EntityLister lists the entity ledger. *entity.SQLiteRepository implements it.
type EntityLister interface {
	List(ctx context.Context) ([]entity.Entity, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	Logger *logging.Logger

	// Entities is optional. Without it /entities returns an empty list.
	Entities EntityLister

	Version string
}

// Server is the HTTP status API server.
//
// It is created with New, observes the connector through Observer and
// serves HTTP once Start is called.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	entities  EntityLister
	version   string
	clientID  string
	topicBase string

	status *StatusTracker
	hub    *Hub

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		entities: deps.Entities,
		version:  deps.Version,
		status:   NewStatusTracker(),
		hub:      NewHub(deps.Logger),
	}, nil
}

// SetConnectorInfo sets the client id and topic base reported by /status.
// Call it before Start.
func (s *Server) SetConnectorInfo(clientID, topicBase string) {
	s.clientID = clientID
	s.topicBase = topicBase
}

// Observer returns the connector observer feeding the status counters and
// the WebSocket stream.
func (s *Server) Observer() connector.Observer {
	return connector.Observers{s.status, s.hub}
}

// Status returns the server's status tracker.
func (s *Server) Status() *StatusTracker {
	return s.status
}

// Handler returns the router. Start serves the same handler.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listen address and serves in a background goroutine until
// Close is called. Port 0 picks a free port; see Addr.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.logger.Info("API server starting", "address", listener.Addr().String())
	go func(srv *http.Server) {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}(s.server)

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	srv, cancel := s.server, s.cancel
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer done()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
