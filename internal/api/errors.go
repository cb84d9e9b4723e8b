package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/progress"
	"ethicalpulse/dashboard/internal/remediation"
	"ethicalpulse/dashboard/internal/scanners"
	"ethicalpulse/dashboard/internal/security"
	"ethicalpulse/dashboard/internal/sequencer"
	"ethicalpulse/dashboard/internal/store"
	"ethicalpulse/dashboard/internal/terminal"
)

const genericFailure = "Une erreur inattendue est survenue."

type errorResponse struct {
	Error  string                `json:"error"`
	Fields []security.FieldError `json:"fields,omitempty"`
}

func statusOf(err error) int {
	var fields security.ValidationErrors
	switch {
	case errors.As(err, &fields):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, terminal.ErrSessionNotFound),
		errors.Is(err, scanners.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, sequencer.ErrBusy),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, progress.ErrAlreadyTracking):
		return http.StatusConflict
	case errors.Is(err, remediation.ErrProjectRequired),
		errors.Is(err, remediation.ErrUnknownType),
		errors.Is(err, sequencer.ErrEmptyCommand),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidSeverity),
		errors.Is(err, model.ErrTimeOrder),
		errors.Is(err, model.ErrIncompleteTransition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err with its status. Internal failures only expose the
// localized failure message of code, or a generic one when code is empty.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, code notify.Code) {
	status := statusOf(err)
	body := errorResponse{Error: err.Error()}
	var fields security.ValidationErrors
	if errors.As(err, &fields) {
		body.Fields = fields
	}
	if status == http.StatusInternalServerError {
		s.log.Error(err, "Request failed", "method", r.Method, "path", r.URL.Path)
		body.Error = genericFailure
		if code != "" {
			body.Error = notify.Lookup(code.Failed()).Description
		}
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: message})
}
