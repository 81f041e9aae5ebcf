package api

import "github.com/felixgeelhaar/timetable/pkg/observability"

// Option sets an optional server collaborator.
type Option func(*Server)

// WithAssistant enables POST /chat. Without it the route answers 503.
func WithAssistant(a Assistant) Option {
	return func(s *Server) { s.handler.assistant = a }
}

// WithHealth sets the registry behind GET /health.
func WithHealth(h *observability.HealthRegistry) Option {
	return func(s *Server) {
		if h != nil {
			s.health = h
		}
	}
}

// WithMetrics records request and rate-limit counters.
func WithMetrics(m observability.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}
