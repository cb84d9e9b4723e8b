package query

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/security"
	"ethicalpulse/dashboard/internal/store"
)

const (
	VulnerabilitiesKey = "vulnerabilities"
	ScansKey           = "scans"
	ProjectsKey        = "projects"
)

func statusKey(kind string, status string) string {
	return kind + "?status=" + status
}

func severityKey(kind string, severity string) string {
	return kind + "?severity=" + severity
}

// mutation publishes the outcome of a store write. Successful writes
// invalidate every cached list of the entity kind.
type mutation struct {
	cache    *Cache
	notifier notify.Notifier
	log      logr.Logger
	kind     string
}

func (m mutation) settle(code notify.Code, err error, args ...interface{}) error {
	if err != nil {
		m.log.Error(err, "Mutation failed", "code", code)
		m.notifier.Notify(code.Failed())
		return err
	}
	m.cache.Invalidate(m.kind)
	m.notifier.Notify(code, args...)
	return nil
}

type Vulnerabilities struct {
	store store.VulnerabilityStore
	clock ext.Clock
	mutation
}

func NewVulnerabilities(s store.VulnerabilityStore, cache *Cache, notifier notify.Notifier, clock ext.Clock, log logr.Logger) *Vulnerabilities {
	return &Vulnerabilities{
		store: s,
		clock: clock,
		mutation: mutation{
			cache:    cache,
			notifier: notifier,
			log:      log.WithName("vulnerabilities"),
			kind:     VulnerabilitiesKey,
		},
	}
}

func (v *Vulnerabilities) List(ctx context.Context) ([]model.Vulnerability, error) {
	return fetchList(ctx, v.cache, VulnerabilitiesKey, v.store.ListVulnerabilities)
}

func (v *Vulnerabilities) ListByStatus(ctx context.Context, status model.VulnerabilityStatus) ([]model.Vulnerability, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	return fetchList(ctx, v.cache, statusKey(VulnerabilitiesKey, string(status)), func(ctx context.Context) ([]model.Vulnerability, error) {
		return v.store.ListVulnerabilitiesByStatus(ctx, status)
	})
}

func (v *Vulnerabilities) ListBySeverity(ctx context.Context, severity model.Severity) ([]model.Vulnerability, error) {
	if !severity.Valid() {
		return nil, model.ErrInvalidSeverity
	}
	return fetchList(ctx, v.cache, severityKey(VulnerabilitiesKey, string(severity)), func(ctx context.Context) ([]model.Vulnerability, error) {
		return v.store.ListVulnerabilitiesBySeverity(ctx, severity)
	})
}

func (v *Vulnerabilities) Loading() bool {
	return v.cache.Loading(VulnerabilitiesKey)
}

func (v *Vulnerabilities) Get(ctx context.Context, id string) (model.Vulnerability, error) {
	return v.store.GetVulnerability(ctx, id)
}

func (v *Vulnerabilities) Create(ctx context.Context, in model.VulnerabilityInput) (model.Vulnerability, error) {
	if err := security.ValidateVulnerabilityInput(in); err != nil {
		return model.Vulnerability{}, err
	}
	created, err := v.store.InsertVulnerability(ctx, in)
	return created, v.settle(notify.VulnerabilityCreated, err)
}

func (v *Vulnerabilities) Update(ctx context.Context, id string, patch model.VulnerabilityPatch) (model.Vulnerability, error) {
	if err := security.ValidateVulnerabilityPatch(patch); err != nil {
		return model.Vulnerability{}, err
	}
	updated, err := v.store.UpdateVulnerability(ctx, id, patch)
	return updated, v.settle(notify.VulnerabilityUpdated, err)
}

// Resolve marks the vulnerability resolved now, or at its discovery time
// when the clock reads earlier.
func (v *Vulnerabilities) Resolve(ctx context.Context, id string, notes string) (model.Vulnerability, error) {
	current, err := v.store.GetVulnerability(ctx, id)
	if err != nil {
		return model.Vulnerability{}, v.settle(notify.VulnerabilityUpdated, fmt.Errorf("resolving vulnerability %s: %w", id, err))
	}
	updated, err := v.store.UpdateVulnerability(ctx, id, model.ResolvePatch(current.DiscoveredAt, v.clock.Now(), notes))
	return updated, v.settle(notify.VulnerabilityUpdated, err)
}

type Scans struct {
	store store.ScanStore
	clock ext.Clock
	mutation
}

func NewScans(s store.ScanStore, cache *Cache, notifier notify.Notifier, clock ext.Clock, log logr.Logger) *Scans {
	return &Scans{
		store: s,
		clock: clock,
		mutation: mutation{
			cache:    cache,
			notifier: notifier,
			log:      log.WithName("scans"),
			kind:     ScansKey,
		},
	}
}

func (s *Scans) List(ctx context.Context) ([]model.Scan, error) {
	return fetchList(ctx, s.cache, ScansKey, s.store.ListScans)
}

func (s *Scans) ListByStatus(ctx context.Context, status model.ScanStatus) ([]model.Scan, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	return fetchList(ctx, s.cache, statusKey(ScansKey, string(status)), func(ctx context.Context) ([]model.Scan, error) {
		return s.store.ListScansByStatus(ctx, status)
	})
}

func (s *Scans) Loading() bool {
	return s.cache.Loading(ScansKey)
}

func (s *Scans) Get(ctx context.Context, id string) (model.Scan, error) {
	return s.store.GetScan(ctx, id)
}

func (s *Scans) Create(ctx context.Context, in model.ScanInput) (model.Scan, error) {
	if err := security.ValidateScanInput(in); err != nil {
		return model.Scan{}, err
	}
	created, err := s.store.InsertScan(ctx, in)
	return created, s.settle(notify.ScanCreated, err)
}

func (s *Scans) Update(ctx context.Context, id string, patch model.ScanPatch) (model.Scan, error) {
	if patch.FindingsSummary != nil {
		if err := security.ValidateFindings(*patch.FindingsSummary); err != nil {
			return model.Scan{}, err
		}
	}
	updated, err := s.store.UpdateScan(ctx, id, patch)
	return updated, s.settle(notify.ScanUpdated, err)
}

func (s *Scans) Start(ctx context.Context, id string) (model.Scan, error) {
	started, err := s.store.StartScan(ctx, id, s.clock.Now())
	return started, s.settle(notify.ScanStarted, err)
}

// Complete implements progress.Completer.
func (s *Scans) Complete(ctx context.Context, id string, findings model.FindingsSummary) (model.Scan, error) {
	if err := security.ValidateFindings(findings); err != nil {
		return model.Scan{}, err
	}
	completed, err := s.store.CompleteScan(ctx, id, s.clock.Now(), findings)
	return completed, s.settle(notify.ScanCompleted, err)
}

type Projects struct {
	store store.ProjectStore
	mutation
}

func NewProjects(s store.ProjectStore, cache *Cache, notifier notify.Notifier, log logr.Logger) *Projects {
	return &Projects{
		store: s,
		mutation: mutation{
			cache:    cache,
			notifier: notifier,
			log:      log.WithName("projects"),
			kind:     ProjectsKey,
		},
	}
}

func (p *Projects) List(ctx context.Context) ([]model.Project, error) {
	return fetchList(ctx, p.cache, ProjectsKey, p.store.ListProjects)
}

func (p *Projects) Get(ctx context.Context, id string) (model.Project, error) {
	return p.store.GetProject(ctx, id)
}

func (p *Projects) Create(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	if err := security.ValidateProjectInput(in); err != nil {
		return model.Project{}, err
	}
	created, err := p.store.InsertProject(ctx, in)
	return created, p.settle(notify.ProjectCreated, err, in.Name)
}
