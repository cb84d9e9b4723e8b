// Package remediation applies simulated remediations to a project and
// resolves the vulnerability they address.
package remediation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/store"
)

var (
	ErrProjectRequired = errors.New("a project must be specified for the remediation")
	ErrUnknownType     = errors.New("unknown remediation type")
)

const (
	resultToolName    = "Remédiation"
	resultDetails     = "Résultat de la remédiation"
	resultFindingType = "Remédiation"
)

type Request struct {
	ProjectID       string  `json:"project_id"`
	VulnerabilityID *string `json:"vulnerability_id,omitempty"`
	Type            string  `json:"remediation_type"`
	Method          string  `json:"method"`
	Target          string  `json:"target,omitempty"`
}

type Vulnerabilities interface {
	Get(ctx context.Context, id string) (model.Vulnerability, error)
	Resolve(ctx context.Context, id string, notes string) (model.Vulnerability, error)
}

type Projects interface {
	Get(ctx context.Context, id string) (model.Project, error)
}

// Recorder receives the tool result of every applied remediation.
type Recorder interface {
	Record(result model.ToolResult)
}

type Service struct {
	projects        Projects
	vulnerabilities Vulnerabilities
	store           store.RemediationStore
	results         Recorder
	notifier        notify.Notifier
	clock           ext.Clock
	ids             ext.IDGenerator
	log             logr.Logger
}

func NewService(projects Projects, vulnerabilities Vulnerabilities, s store.RemediationStore, results Recorder,
	notifier notify.Notifier, clock ext.Clock, ids ext.IDGenerator, log logr.Logger) *Service {
	return &Service{
		projects:        projects,
		vulnerabilities: vulnerabilities,
		store:           s,
		results:         results,
		notifier:        notifier,
		clock:           clock,
		ids:             ids,
		log:             log.WithName("remediation"),
	}
}

// Apply records a successful remediation for the project. When the request
// names a vulnerability, that vulnerability is resolved with the method.
func (s *Service) Apply(ctx context.Context, req Request) (model.Remediation, error) {
	rem, err := s.apply(ctx, req)
	if err != nil {
		s.log.Error(err, "Applying remediation", "type", req.Type, "project", req.ProjectID)
		s.notifier.Notify(notify.RemediationApplied.Failed())
		return model.Remediation{}, err
	}
	s.notifier.Notify(notify.RemediationApplied)
	return rem, nil
}

func (s *Service) apply(ctx context.Context, req Request) (model.Remediation, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return model.Remediation{}, ErrProjectRequired
	}
	kind, ok := Lookup(req.Type)
	if !ok {
		return model.Remediation{}, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = kind.Options[0]
	}

	project, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return model.Remediation{}, fmt.Errorf("project %s: %w", req.ProjectID, err)
	}
	var vulnerabilityID *string
	if req.VulnerabilityID != nil && *req.VulnerabilityID != "" {
		v, err := s.vulnerabilities.Get(ctx, *req.VulnerabilityID)
		if err != nil {
			return model.Remediation{}, fmt.Errorf("vulnerability %s: %w", *req.VulnerabilityID, err)
		}
		if !v.Status.CanTransitionTo(model.VulnerabilityResolved) {
			return model.Remediation{}, fmt.Errorf("vulnerability %s is %s: %w", v.ID, v.Status, model.ErrInvalidTransition)
		}
		vulnerabilityID = &v.ID
	}

	target := req.Target
	if target == "" {
		target = project.Domain()
	}
	now := s.clock.Now()
	rem, err := s.store.InsertRemediation(ctx, model.Remediation{
		ID:              s.ids.GenerateID(),
		VulnerabilityID: vulnerabilityID,
		ProjectID:       project.ID,
		Name:            fmt.Sprintf("Remédiation %s - %s", kind.ID, method),
		RemediationType: kind.ID,
		Method:          method,
		Target:          target,
		Status:          model.RemediationSuccess,
		Output:          Output(kind.ID),
		ExecutedAt:      now,
		CompletedAt:     &now,
	})
	if err != nil {
		return model.Remediation{}, err
	}

	if vulnerabilityID != nil {
		if _, err := s.vulnerabilities.Resolve(ctx, *vulnerabilityID, "Résolu avec "+method); err != nil {
			return model.Remediation{}, err
		}
	}

	info := model.ResultSeverityInfo
	s.results.Record(model.ToolResult{
		ID:          s.ids.GenerateID(),
		Timestamp:   now,
		ToolName:    resultToolName,
		Command:     fmt.Sprintf("%s pour %s", method, kind.ID),
		Target:      project.Domain(),
		FindingType: resultFindingType,
		Severity:    &info,
		Details:     resultDetails,
		RawOutput:   rem.Output,
	})
	return rem, nil
}

// History lists applied remediations, newest first.
func (s *Service) History(ctx context.Context) ([]model.Remediation, error) {
	return s.store.ListRemediations(ctx)
}
