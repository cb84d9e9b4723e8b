package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ethicalpulse/dashboard/internal/scanners"
)

type commandResponse struct {
	Tool    string `json:"tool"`
	Option  string `json:"option,omitempty"`
	Command string `json:"command"`
}

type openTerminalRequest struct {
	Tool         string `json:"tool"`
	ProjectID    string `json:"project_id,omitempty"`
	TargetDomain string `json:"target_domain,omitempty"`
	TargetIP     string `json:"target_ip,omitempty"`
}

type runRequest struct {
	Command string `json:"command"`
	// Wait blocks the request until the transcript is complete.
	Wait bool `json:"wait,omitempty"`
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		render.JSON(w, r, scanners.Tools)
		return
	}
	render.JSON(w, r, scanners.ByCategory(scanners.Category(category)))
}

func (s *Server) toolCommand(w http.ResponseWriter, r *http.Request) {
	tool, ok := scanners.Lookup(chi.URLParam(r, "tool"))
	if !ok {
		s.respondError(w, r, scanners.ErrUnknownTool, "")
		return
	}
	q := r.URL.Query()
	option := q.Get("option")
	if option == "" {
		option = scanners.DefaultOption(tool.ID)
	}
	target := scanners.Target{Domain: q.Get("domain"), IP: q.Get("ip")}
	render.JSON(w, r, commandResponse{
		Tool:    tool.ID,
		Option:  option,
		Command: scanners.Command(tool.ID, option, target),
	})
}

// openTerminal creates a session. When a project is given its target fills
// any domain or IP the request leaves empty.
func (s *Server) openTerminal(w http.ResponseWriter, r *http.Request) {
	var req openTerminalRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	if req.ProjectID != "" {
		p, err := s.Projects.Get(r.Context(), req.ProjectID)
		if err != nil {
			s.respondError(w, r, err, "")
			return
		}
		if req.TargetDomain == "" {
			req.TargetDomain = p.Domain()
		}
		if req.TargetIP == "" {
			req.TargetIP = p.IP()
		}
	}
	snap, err := s.Terminals.Open(req.Tool, req.TargetDomain, req.TargetIP, req.ProjectID)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, snap)
}

func (s *Server) terminalSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := s.Terminals.Snapshot(id)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.JSON(w, r, snap)
}

func (s *Server) runTerminal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req runRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	if req.Wait {
		if _, err := s.Terminals.Run(r.Context(), id, req.Command); err != nil {
			s.respondError(w, r, err, "")
			return
		}
		s.terminalSnapshot(w, r)
		return
	}
	if err := s.Terminals.Execute(id, req.Command); err != nil {
		s.respondError(w, r, err, "")
		return
	}
	snap, err := s.Terminals.Snapshot(id)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, snap)
}

func (s *Server) clearTerminal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Terminals.Clear(id); err != nil {
		s.respondError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Terminals.Results())
}
