// Package api provides the HTTP surface of the timetable service.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// Assistant answers free-form chat messages. Intent parsing and LLM calls
// live behind it; the server only transports messages.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Server routes the editor and chat endpoints to the engine.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	handler *TimetableHandler
	health  *observability.HealthRegistry
	metrics observability.Metrics
	limiter *rateLimiter
	cfg     ServerConfig
}

// ServerConfig sets the listener and the per-client chat limit. Location is
// the zone "today" and weekday checks are computed in. Forwarding headers are
// honoured only on connections from TrustedProxies.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration // bounds the drain in Run
	ChatRatePerMin  int
	CORSOrigin      string
	TrustedProxies  []netip.Prefix
	Location        *time.Location
}

// DefaultServerConfig mirrors the HTTP_ADDR and CHAT_RATE_PER_MIN defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            "0.0.0.0:5000",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ChatRatePerMin:  20,
		CORSOrigin:      "*",
		Location:        time.Local,
	}
}

// NewServer wires the routes. The listener is only opened by Run.
func NewServer(cfg ServerConfig, engine *application.Engine, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultServerConfig().ShutdownTimeout
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		handler: NewTimetableHandler(engine, cfg.Location, logger),
		health:  observability.NewHealthRegistry(),
		metrics: observability.NoopMetrics{},
		limiter: newRateLimiter(cfg.ChatRatePerMin),
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.Handle("POST /chat", s.rateLimit(http.HandlerFunc(s.handler.Chat)))
	s.mux.HandleFunc("POST /update_slot", s.handler.UpdateSlot)

	s.mux.HandleFunc("GET /timetable", s.handler.Show)
	s.mux.HandleFunc("GET /timetable.ics", s.handler.ExportICS)
	s.mux.HandleFunc("POST /slots", s.handler.AddSlots)
	s.mux.HandleFunc("POST /slots/conflicts", s.handler.CheckConflicts)
	s.mux.HandleFunc("POST /slots/remove", s.handler.RemoveSlots)
}

// Handler is the mux behind the request-context and CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.requestContext(s.cors(s.mux))
}

// handleHealth answers 503 only when a component is unhealthy; a degraded
// broker still serves 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Run serves until ctx ends, then drains in-flight requests for at most
// cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("timetable API listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("draining timetable API", "timeout", s.cfg.ShutdownTimeout)
	return s.server.Shutdown(shutdownCtx)
}
