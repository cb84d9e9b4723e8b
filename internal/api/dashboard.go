package api

import (
	"net/http"

	"github.com/go-chi/render"

	"ethicalpulse/dashboard/internal/report"
)

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	vulns, err := s.Vulnerabilities.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	scans, err := s.Scans.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, report.Summarize(vulns, scans, s.Clock.Now()))
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Notifications.Recent())
}
