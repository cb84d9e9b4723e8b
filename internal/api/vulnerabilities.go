package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/security"
)

// pathID reads and validates the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := security.ValidateID(id); err != nil {
		badRequest(w, r, err.Error())
		return "", false
	}
	return id, true
}

func (s *Server) listVulnerabilities(w http.ResponseWriter, r *http.Request) {
	var (
		list     []model.Vulnerability
		err      error
		severity model.Severity
	)
	query := r.URL.Query()
	if raw := query.Get("severity"); raw != "" {
		if severity, err = model.ParseSeverity(raw); err != nil {
			s.respondError(w, r, err, "")
			return
		}
	}
	switch raw := query.Get("status"); {
	case raw != "":
		status, perr := model.ParseVulnerabilityStatus(raw)
		if perr != nil {
			s.respondError(w, r, perr, "")
			return
		}
		list, err = s.Vulnerabilities.ListByStatus(r.Context(), status)
	case severity != "":
		list, err = s.Vulnerabilities.ListBySeverity(r.Context(), severity)
	default:
		list, err = s.Vulnerabilities.List(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	if severity != "" {
		list = filterSeverity(list, severity)
	}
	render.JSON(w, r, list)
}

func filterSeverity(list []model.Vulnerability, severity model.Severity) []model.Vulnerability {
	out := list[:0]
	for _, v := range list {
		if v.Severity == severity {
			out = append(out, v)
		}
	}
	return out
}

func (s *Server) getVulnerability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := s.Vulnerabilities.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, v)
}

func (s *Server) createVulnerability(w http.ResponseWriter, r *http.Request) {
	var in model.VulnerabilityInput
	if err := decode(r, &in); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	created, err := s.Vulnerabilities.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err, notify.VulnerabilityCreated)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (s *Server) updateVulnerability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch model.VulnerabilityPatch
	if err := decode(r, &patch); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	updated, err := s.Vulnerabilities.Update(r.Context(), id, patch)
	if err != nil {
		s.respondError(w, r, err, notify.VulnerabilityUpdated)
		return
	}
	render.JSON(w, r, updated)
}

func (s *Server) resolveVulnerability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decode(r, &body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, r, "invalid json")
		return
	}
	resolved, err := s.Vulnerabilities.Resolve(r.Context(), id, body.Notes)
	if err != nil {
		s.respondError(w, r, err, notify.VulnerabilityUpdated)
		return
	}
	render.JSON(w, r, resolved)
}
