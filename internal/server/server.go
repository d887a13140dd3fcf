// Package server is the browser-facing transport: a REST API over the sync
// coordinator, a server-sent event stream carrying view requests, and the
// embedded map frontend.
package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/waymark/internal/app"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	coord  *app.Coordinator
	hub    *ViewHub
	zoom   int
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured. The hub must be the
// same one injected into the coordinator as its view.
func New(coord *app.Coordinator, hub *ViewHub, zoom int, log *slog.Logger) *Server {
	s := &Server{
		coord:  coord,
		hub:    hub,
		zoom:   zoom,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Post("/api/v1/workouts", s.handleSubmitWorkout)
	s.router.Post("/api/v1/workouts/{id}/select", s.handleSelectWorkout)
	s.router.Post("/api/v1/map/click", s.handleMapClick)
	s.router.Get("/api/v1/events", s.handleEvents)
	s.router.Get("/api/v1/config", s.handleConfig)

	// Editing and deletion are not part of the feature set; refuse rather
	// than silently accept.
	s.router.Delete("/api/v1/workouts/{id}", s.handleNotAllowed)
	s.router.Put("/api/v1/workouts/{id}", s.handleNotAllowed)
}

// SetFrontend mounts the embedded map frontend filesystem. Unmatched routes
// serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
