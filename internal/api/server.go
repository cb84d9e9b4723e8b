// Package api exposes the dashboard over HTTP/JSON.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-logr/logr"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/progress"
	"ethicalpulse/dashboard/internal/query"
	"ethicalpulse/dashboard/internal/remediation"
	"ethicalpulse/dashboard/internal/terminal"
)

type Deps struct {
	Vulnerabilities *query.Vulnerabilities
	Scans           *query.Scans
	Projects        *query.Projects
	Remediation     *remediation.Service
	Terminals       *terminal.Manager
	Progress        *progress.Simulator
	Notifications   *notify.Center
	Clock           ext.Clock
	Log             logr.Logger
}

type Server struct {
	Deps
	log logr.Logger
}

func New(deps Deps) *Server {
	return &Server{Deps: deps, log: deps.Log.WithName("api")}
}

// Router mounts every route of the dashboard API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.dashboard)
		r.Get("/notifications", s.notifications)

		r.Route("/vulnerabilities", func(r chi.Router) {
			r.Get("/", s.listVulnerabilities)
			r.Post("/", s.createVulnerability)
			r.Get("/{id}", s.getVulnerability)
			r.Patch("/{id}", s.updateVulnerability)
			r.Post("/{id}/resolve", s.resolveVulnerability)
		})

		r.Route("/scans", func(r chi.Router) {
			r.Get("/", s.listScans)
			r.Post("/", s.createScan)
			r.Get("/{id}", s.getScan)
			r.Patch("/{id}", s.updateScan)
			r.Post("/{id}/start", s.startScan)
			r.Post("/{id}/complete", s.completeScan)
			r.Get("/{id}/progress", s.scanProgress)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.listProjects)
			r.Post("/", s.createProject)
			r.Get("/{id}", s.getProject)
		})

		r.Route("/remediations", func(r chi.Router) {
			r.Get("/", s.listRemediations)
			r.Get("/catalogue", s.remediationCatalogue)
			r.Post("/apply", s.applyRemediation)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", s.listTools)
			r.Get("/{tool}/command", s.toolCommand)
		})

		r.Route("/terminals", func(r chi.Router) {
			r.Post("/", s.openTerminal)
			r.Get("/{id}", s.terminalSnapshot)
			r.Post("/{id}/run", s.runTerminal)
			r.Delete("/{id}/output", s.clearTerminal)
		})

		r.Get("/results", s.listResults)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.V(1).Info("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
			"requestID", middleware.GetReqID(r.Context()))
	})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
