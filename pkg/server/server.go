package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisheknishant138/scope/pkg/storage"
	"github.com/abhisheknishant138/scope/pkg/telemetry"
)

// Config configures a Server.
type Config struct {
	// Store receives the persisted view state of every session, each under
	// its own key prefix. Nil disables persistence.
	Store storage.Store

	// Recorder receives navigation metrics. Default: telemetry.Nop.
	Recorder telemetry.Recorder

	// Tracer traces state changes. Default: the global "scope" tracer.
	Tracer trace.Tracer

	// Gatherer is served on /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Logger is the server logger. Default: slog.Default().
	Logger *slog.Logger

	// HistoryCapacity bounds each session's history.
	HistoryCapacity int

	// ResumeWindow is how long a disconnected session stays resumable.
	// Zero or negative values, like those of the fields below, select the
	// default.
	ResumeWindow time.Duration

	// HandshakeTimeout bounds the wait for the hello message.
	HandshakeTimeout time.Duration

	// ReadTimeout closes connections idle for longer.
	ReadTimeout time.Duration

	// MaxMessageSize limits incoming WebSocket messages and request bodies.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Default: same-origin only.
	CheckOrigin func(*http.Request) bool
}

// DefaultConfig returns a Config with the default timeouts and limits.
func DefaultConfig() *Config {
	return &Config{
		HistoryCapacity:  100,
		ResumeWindow:     5 * time.Minute,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      5 * time.Minute,
		MaxMessageSize:   1 << 20,
	}
}

// Server serves the HTTP API and the live sessions.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a Server. A nil config means DefaultConfig; zero fields take
// their default.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		c := *config
		config = &c
		defaults := DefaultConfig()
		if config.HistoryCapacity <= 0 {
			config.HistoryCapacity = defaults.HistoryCapacity
		}
		if config.ResumeWindow <= 0 {
			config.ResumeWindow = defaults.ResumeWindow
		}
		if config.HandshakeTimeout <= 0 {
			config.HandshakeTimeout = defaults.HandshakeTimeout
		}
		if config.ReadTimeout <= 0 {
			config.ReadTimeout = defaults.ReadTimeout
		}
		if config.MaxMessageSize <= 0 {
			config.MaxMessageSize = defaults.MaxMessageSize
		}
	}
	if config.Recorder == nil {
		config.Recorder = telemetry.Nop{}
	}
	if config.Tracer == nil {
		config.Tracer = telemetry.Tracer("")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:   logger.With("component", "server"),
		sessions: make(map[string]*session),
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/url-state", s.handleEncode)
		r.Get("/url-state/{state}", s.handleDecode)
	})
	r.Get("/state/{state}", s.handleDecode)
	r.Get("/ws", s.handleWebSocket)

	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// minSweepInterval bounds how often sweepLoop wakes for short resume windows.
const minSweepInterval = time.Second

// sweepInterval is half the resume window, but never below minSweepInterval.
func (s *Server) sweepInterval() time.Duration {
	return max(s.config.ResumeWindow/2, minSweepInterval)
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				s.logger.Debug("expired sessions", "count", n)
			}
		}
	}
}

// sweep drops detached sessions idle for longer than the resume window.
func (s *Server) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.expired(now, s.config.ResumeWindow) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// SessionCount returns the number of known sessions, attached or not.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
