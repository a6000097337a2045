package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter creates the HTTP router with all routes and middleware.
// Static routes take precedence over the /{action}/* command pattern.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	// Queries
	r.Route("/list", func(r chi.Router) {
		r.Get("/rooms", s.handleListRooms)
		r.Get("/devices", s.handleListDevices)
		r.Get("/devices/*", s.handleListDevices)
		r.Get("/scenes", s.handleListScenes)
		r.Get("/groups", s.handleListGroups)
	})
	r.Get("/info/*", s.handleInfo)

	// Group management
	if s.groups != nil {
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)
			r.Get("/{id}", s.handleGetGroup)
			r.Put("/{id}", s.handleUpdateGroup)
			r.Delete("/{id}", s.handleDeleteGroup)
			r.Put("/{id}/members", s.handleSetGroupMembers)
		})
	}

	// Text and URL-scheme commands
	r.Get("/command", s.handleTextCommand)
	r.Get("/open", s.handleOpenURL)

	// Change streams
	r.Get("/events", s.handleEvents)
	r.Get("/ws", s.handleWebSocket)

	if s.metricsCfg.Enabled {
		path := s.metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{Registry: s.metrics.registry}))
	}

	// Path commands: /{action}/{target...} and /{action}/{value}/{target...}
	r.Get("/{action}", s.handlePathCommand)
	r.Get("/{action}/*", s.handlePathCommand)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}
