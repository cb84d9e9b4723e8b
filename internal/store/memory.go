package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
)

// Memory keeps each collection in an insertion-ordered map. It is the
// default backend and the one used by tests.
type Memory struct {
	clock ext.Clock
	ids   ext.IDGenerator

	mu              sync.RWMutex
	vulnerabilities *linkedhashmap.Map
	scans           *linkedhashmap.Map
	projects        *linkedhashmap.Map
	remediations    *linkedhashmap.Map
}

func NewMemory(clock ext.Clock, ids ext.IDGenerator) *Memory {
	return &Memory{
		clock:           clock,
		ids:             ids,
		vulnerabilities: linkedhashmap.New(),
		scans:           linkedhashmap.New(),
		projects:        linkedhashmap.New(),
		remediations:    linkedhashmap.New(),
	}
}

func (m *Memory) Close() error {
	return nil
}

// newestFirst copies the map values, most recently inserted first, then
// stable-sorts them by descending timestamp.
func newestFirst[T any](values []interface{}, at func(T) time.Time, keep func(T) bool) []T {
	out := make([]T, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i].(T)
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return at(out[i]).After(at(out[j]))
	})
	return out
}

func vulnerabilityCreated(v model.Vulnerability) time.Time { return v.CreatedAt }
func scanCreated(s model.Scan) time.Time                   { return s.CreatedAt }
func projectCreated(p model.Project) time.Time             { return p.CreatedAt }
func remediationExecuted(r model.Remediation) time.Time    { return r.ExecutedAt }

func (m *Memory) ListVulnerabilities(_ context.Context) ([]model.Vulnerability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst[model.Vulnerability](m.vulnerabilities.Values(), vulnerabilityCreated, nil), nil
}

func (m *Memory) ListVulnerabilitiesByStatus(_ context.Context, status model.VulnerabilityStatus) ([]model.Vulnerability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.vulnerabilities.Values(), vulnerabilityCreated, func(v model.Vulnerability) bool {
		return v.Status == status
	}), nil
}

func (m *Memory) ListVulnerabilitiesBySeverity(_ context.Context, severity model.Severity) ([]model.Vulnerability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.vulnerabilities.Values(), vulnerabilityCreated, func(v model.Vulnerability) bool {
		return v.Severity == severity
	}), nil
}

func (m *Memory) GetVulnerability(_ context.Context, id string) (model.Vulnerability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vulnerabilities.Get(id)
	if !ok {
		return model.Vulnerability{}, ErrNotFound
	}
	return v.(model.Vulnerability), nil
}

func (m *Memory) InsertVulnerability(_ context.Context, in model.VulnerabilityInput) (model.Vulnerability, error) {
	v, err := model.NewVulnerability(m.ids.GenerateID(), in, m.clock.Now())
	if err != nil {
		return model.Vulnerability{}, err
	}
	m.mu.Lock()
	m.vulnerabilities.Put(v.ID, v)
	m.mu.Unlock()
	return v, nil
}

func (m *Memory) UpdateVulnerability(_ context.Context, id string, patch model.VulnerabilityPatch) (model.Vulnerability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found, ok := m.vulnerabilities.Get(id)
	if !ok {
		return model.Vulnerability{}, ErrNotFound
	}
	v := found.(model.Vulnerability)
	if err := patch.Apply(&v, m.clock.Now()); err != nil {
		return model.Vulnerability{}, err
	}
	m.vulnerabilities.Put(id, v)
	return v, nil
}

func (m *Memory) ListScans(_ context.Context) ([]model.Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst[model.Scan](m.scans.Values(), scanCreated, nil), nil
}

func (m *Memory) ListScansByStatus(_ context.Context, status model.ScanStatus) ([]model.Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.scans.Values(), scanCreated, func(s model.Scan) bool {
		return s.Status == status
	}), nil
}

func (m *Memory) GetScan(_ context.Context, id string) (model.Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scans.Get(id)
	if !ok {
		return model.Scan{}, ErrNotFound
	}
	return s.(model.Scan), nil
}

func (m *Memory) InsertScan(_ context.Context, in model.ScanInput) (model.Scan, error) {
	s, err := model.NewScan(m.ids.GenerateID(), in, m.clock.Now())
	if err != nil {
		return model.Scan{}, err
	}
	m.mu.Lock()
	m.scans.Put(s.ID, s)
	m.mu.Unlock()
	return s, nil
}

func (m *Memory) UpdateScan(_ context.Context, id string, patch model.ScanPatch) (model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateScanLocked(id, func(model.Scan) model.ScanPatch { return patch })
}

func (m *Memory) StartScan(_ context.Context, id string, at time.Time) (model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateScanLocked(id, func(model.Scan) model.ScanPatch { return model.StartPatch(at) })
}

func (m *Memory) CompleteScan(_ context.Context, id string, at time.Time, findings model.FindingsSummary) (model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateScanLocked(id, func(s model.Scan) model.ScanPatch {
		return model.CompletePatch(s.StartTime, at, findings)
	})
}

func (m *Memory) updateScanLocked(id string, patchFor func(model.Scan) model.ScanPatch) (model.Scan, error) {
	found, ok := m.scans.Get(id)
	if !ok {
		return model.Scan{}, ErrNotFound
	}
	s := found.(model.Scan)
	if err := patchFor(s).Apply(&s); err != nil {
		return model.Scan{}, err
	}
	m.scans.Put(id, s)
	return s, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst[model.Project](m.projects.Values(), projectCreated, nil), nil
}

func (m *Memory) GetProject(_ context.Context, id string) (model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects.Get(id)
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p.(model.Project), nil
}

func (m *Memory) InsertProject(_ context.Context, in model.ProjectInput) (model.Project, error) {
	p := model.NewProject(m.ids.GenerateID(), in, m.clock.Now())
	m.mu.Lock()
	m.projects.Put(p.ID, p)
	m.mu.Unlock()
	return p, nil
}

func (m *Memory) ListRemediations(_ context.Context) ([]model.Remediation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst[model.Remediation](m.remediations.Values(), remediationExecuted, nil), nil
}

func (m *Memory) InsertRemediation(_ context.Context, r model.Remediation) (model.Remediation, error) {
	if r.ID == "" {
		r.ID = m.ids.GenerateID()
	}
	if r.ExecutedAt.IsZero() {
		r.ExecutedAt = m.clock.Now()
	}
	m.mu.Lock()
	m.remediations.Put(r.ID, r)
	m.mu.Unlock()
	return r, nil
}

func (m *Memory) ImportVulnerability(_ context.Context, v model.Vulnerability) error {
	m.mu.Lock()
	m.vulnerabilities.Put(v.ID, v)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ImportScan(_ context.Context, s model.Scan) error {
	m.mu.Lock()
	m.scans.Put(s.ID, s)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ImportProject(_ context.Context, p model.Project) error {
	m.mu.Lock()
	m.projects.Put(p.ID, p)
	m.mu.Unlock()
	return nil
}
