package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/homecast/internal/executor"
	"github.com/nerrad567/homecast/internal/infrastructure/config"
	"github.com/nerrad567/homecast/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// State is the server lifecycle state.
type State int

// Server states.
const (
	StateStopped State = iota
	StateStarting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Deps holds the dependencies for the control server.
type Deps struct {
	Config    config.APIConfig
	Stream    config.StreamConfig
	Metrics   config.MetricsConfig
	URLScheme string
	Logger    *logging.Logger
	Executor  *executor.Executor
	// Groups enables the /groups management routes when set.
	Groups  GroupStore
	Version string
}

// Server is the HTTP control server.
//
// Thread Safety:
//   - Start and Close are serialised by mu.
//   - The characteristic index and last-published cache are guarded by pubMu.
//   - Handlers read the snapshot through the Executor, which swaps it atomically.
type Server struct {
	cfg        config.APIConfig
	streamCfg  config.StreamConfig
	metricsCfg config.MetricsConfig
	scheme     string
	logger     *logging.Logger
	executor   *executor.Executor
	groups     GroupStore
	version    string
	hub        *Hub
	metrics    *metrics

	pubMu         sync.Mutex
	index         *CharacteristicIndex
	lastPublished map[string]string

	mu       sync.Mutex
	state    State
	server   *http.Server
	listener net.Listener
	started  time.Time
}

// New creates a control server. Logger and Executor are required.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("api: logger is required")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("api: executor is required")
	}

	stream := streamSettings(deps.Stream)
	hub := NewHub(stream.SendBuffer, deps.Logger)
	return &Server{
		cfg:           deps.Config,
		streamCfg:     stream,
		metricsCfg:    deps.Metrics,
		scheme:        deps.URLScheme,
		logger:        deps.Logger,
		executor:      deps.Executor,
		groups:        deps.Groups,
		version:       deps.Version,
		hub:           hub,
		metrics:       newMetrics(hub),
		index:         BuildIndex(nil),
		lastPublished: make(map[string]string),
	}, nil
}

// Start binds the listener and begins serving in a background goroutine.
// Calling Start on a running server is a no-op.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return nil
	}
	s.state = StateStarting

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.state = StateStopped
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.hub.Open()
	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}
	s.server = srv
	s.listener = ln
	s.started = time.Now()

	tls := s.cfg.TLS
	go func() {
		var serveErr error
		if tls.Enabled {
			serveErr = srv.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			serveErr = srv.Serve(ln)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", serveErr)
		}
	}()

	s.state = StateRunning
	s.logger.Info("control server started", "address", ln.Addr().String(), "tls", tls.Enabled)
	return nil
}

// Close closes every stream connection, then shuts the server down,
// letting in-flight commands finish. Closing a stopped server is a no-op.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil
	}
	srv := s.server
	s.server = nil
	s.listener = nil
	s.state = StateStopped
	s.hub.CloseAll()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	s.logger.Info("control server stopped")
	return nil
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound listener address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the router without binding a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// HealthCheck reports whether the server is running.
func (s *Server) HealthCheck(_ context.Context) error {
	if st := s.State(); st != StateRunning {
		return fmt.Errorf("api: server %s", st)
	}
	return nil
}

// uptime returns the time since Start, or zero when stopped.
func (s *Server) uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return 0
	}
	return time.Since(s.started)
}
