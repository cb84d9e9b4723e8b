package api

import (
	"net/http"

	"github.com/go-chi/render"

	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/remediation"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.Projects.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.Projects.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, p)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if err := decode(r, &in); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	created, err := s.Projects.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err, notify.ProjectCreated)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (s *Server) listRemediations(w http.ResponseWriter, r *http.Request) {
	list, err := s.Remediation.History(r.Context())
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) remediationCatalogue(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, remediation.Catalogue)
}

func (s *Server) applyRemediation(w http.ResponseWriter, r *http.Request) {
	var req remediation.Request
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	rem, err := s.Remediation.Apply(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, notify.RemediationApplied)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, rem)
}
