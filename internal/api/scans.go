package api

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/progress"
)

type progressResponse struct {
	ScanID   string           `json:"scan_id"`
	Status   model.ScanStatus `json:"status"`
	Progress int              `json:"progress"`
	Tracking bool             `json:"tracking"`
}

func (s *Server) listScans(w http.ResponseWriter, r *http.Request) {
	var (
		list []model.Scan
		err  error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := model.ParseScanStatus(raw)
		if perr != nil {
			s.respondError(w, r, perr, "")
			return
		}
		list, err = s.Scans.ListByStatus(r.Context(), status)
	} else {
		list, err = s.Scans.List(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	scan, err := s.Scans.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, scan)
}

func (s *Server) createScan(w http.ResponseWriter, r *http.Request) {
	var in model.ScanInput
	if err := decode(r, &in); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	created, err := s.Scans.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err, notify.ScanCreated)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (s *Server) updateScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch model.ScanPatch
	if err := decode(r, &patch); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	updated, err := s.Scans.Update(r.Context(), id, patch)
	if err != nil {
		s.respondError(w, r, err, notify.ScanUpdated)
		return
	}
	render.JSON(w, r, updated)
}

// startScan moves the scan to in_progress and hands it to the progress
// simulator, which completes it once the ceiling is reached.
func (s *Server) startScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if s.Progress.Tracking(id) {
		s.respondError(w, r, progress.ErrAlreadyTracking, notify.ScanStarted)
		return
	}
	started, err := s.Scans.Start(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, notify.ScanStarted)
		return
	}
	if err := s.Progress.Track(context.WithoutCancel(r.Context()), id); err != nil {
		s.respondError(w, r, err, notify.ScanStarted)
		return
	}
	render.JSON(w, r, started)
}

func (s *Server) completeScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var findings model.FindingsSummary
	if err := decode(r, &findings); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	s.Progress.Stop(id)
	completed, err := s.Scans.Complete(r.Context(), id, findings)
	if err != nil {
		s.respondError(w, r, err, notify.ScanCompleted)
		return
	}
	render.JSON(w, r, completed)
}

func (s *Server) scanProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	scan, err := s.Scans.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	resp := progressResponse{ScanID: id, Status: scan.Status, Tracking: s.Progress.Tracking(id)}
	resp.Progress, _ = s.Progress.Progress(id)
	if scan.Status == model.ScanCompleted {
		resp.Progress = 100
	}
	render.JSON(w, r, resp)
}
