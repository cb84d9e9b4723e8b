package query_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/query"
	"ethicalpulse/dashboard/internal/security"
	"ethicalpulse/dashboard/internal/store"
)

type recorder struct {
	mu    sync.Mutex
	codes []notify.Code
}

func (r *recorder) Notify(code notify.Code, _ ...interface{}) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
}

// countingStore counts list and insert round trips and can be told to fail.
type countingStore struct {
	*store.Memory
	lists   int
	inserts int
	fail    error
}

func (s *countingStore) ListVulnerabilities(ctx context.Context) ([]model.Vulnerability, error) {
	s.lists++
	return s.Memory.ListVulnerabilities(ctx)
}

func (s *countingStore) InsertVulnerability(ctx context.Context, in model.VulnerabilityInput) (model.Vulnerability, error) {
	s.inserts++
	if s.fail != nil {
		return model.Vulnerability{}, s.fail
	}
	return s.Memory.InsertVulnerability(ctx, in)
}

func (s *countingStore) ListScans(ctx context.Context) ([]model.Scan, error) {
	s.lists++
	return s.Memory.ListScans(ctx)
}

type fixture struct {
	clock    *ext.ManualClock
	store    *countingStore
	notified *recorder
	vulns    *query.Vulnerabilities
	scans    *query.Scans
	projects *query.Projects
}

func newFixture() fixture {
	clock := ext.NewManualClock(start)
	s := &countingStore{Memory: store.NewMemory(clock, ext.NewSequentialIDGenerator())}
	cache := query.NewCache(0, clock)
	rec := &recorder{}
	return fixture{
		clock:    clock,
		store:    s,
		notified: rec,
		vulns:    query.NewVulnerabilities(s, cache, rec, clock, logr.Discard()),
		scans:    query.NewScans(s, cache, rec, clock, logr.Discard()),
		projects: query.NewProjects(s, cache, rec, logr.Discard()),
	}
}

func TestVulnerabilities_CreateInvalidatesAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	list, err := f.vulns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.vulns.Create(ctx, model.VulnerabilityInput{Name: "Injection SQL", Severity: model.SeverityCritical})
	require.NoError(t, err)

	list, err = f.vulns.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.VulnerabilityOpen, list[0].Status)
	assert.Equal(t, 2, f.store.lists)
	assert.Equal(t, []notify.Code{notify.VulnerabilityCreated}, f.notified.codes)
}

// TestVulnerabilities_CreateWithoutNameSkipsStore ensures validation runs before any round trip
func TestVulnerabilities_CreateWithoutNameSkipsStore(t *testing.T) {
	f := newFixture()

	_, err := f.vulns.Create(context.Background(), model.VulnerabilityInput{Severity: model.SeverityLow})
	require.Error(t, err)
	assert.True(t, security.IsValidation(err))
	assert.Zero(t, f.store.inserts)
	assert.Empty(t, f.notified.codes)
}

func TestVulnerabilities_CreateFailureNotifies(t *testing.T) {
	f := newFixture()
	f.store.fail = errors.New("connection refused")
	ctx := context.Background()

	_, _ = f.vulns.List(ctx)
	_, err := f.vulns.Create(ctx, model.VulnerabilityInput{Name: "XSS", Severity: model.SeverityHigh})
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, []notify.Code{notify.VulnerabilityCreated.Failed()}, f.notified.codes)

	_, _ = f.vulns.List(ctx)
	assert.Equal(t, 1, f.store.lists, "a failed mutation must not invalidate")
}

func TestVulnerabilities_Resolve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	discovered := start.Add(time.Hour)

	v, err := f.vulns.Create(ctx, model.VulnerabilityInput{Name: "CSRF", Severity: model.SeverityMedium, DiscoveredAt: &discovered})
	require.NoError(t, err)

	resolved, err := f.vulns.Resolve(ctx, v.ID, "Résolu avec Patch")
	require.NoError(t, err)
	assert.Equal(t, model.VulnerabilityResolved, resolved.Status)
	assert.Equal(t, discovered, *resolved.ResolvedAt, "resolution cannot precede discovery")

	open, err := f.vulns.ListByStatus(ctx, model.VulnerabilityOpen)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = f.vulns.Resolve(ctx, "00000000-0000-0000-0000-999999999999", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, notify.VulnerabilityUpdated.Failed(), f.notified.codes[len(f.notified.codes)-1])
}

func TestScans_Lifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	scan, err := f.scans.Create(ctx, model.ScanInput{Name: "Audit", TargetURL: "https://example.com", ScanType: "Full Scan"})
	require.NoError(t, err)

	scheduled, err := f.scans.ListByStatus(ctx, model.ScanScheduled)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)

	f.clock.Advance(time.Minute)
	_, err = f.scans.Start(ctx, scan.ID)
	require.NoError(t, err)

	scheduled, err = f.scans.ListByStatus(ctx, model.ScanScheduled)
	require.NoError(t, err)
	assert.Empty(t, scheduled)

	_, err = f.scans.Complete(ctx, scan.ID, model.FindingsSummary{High: -1})
	assert.True(t, security.IsValidation(err))

	f.clock.Advance(time.Minute)
	done, err := f.scans.Complete(ctx, scan.ID, model.FindingsSummary{Critical: 1, Low: 2})
	require.NoError(t, err)
	assert.Equal(t, model.ScanCompleted, done.Status)
	assert.Equal(t, 3, done.FindingsSummary.Total())

	_, err = f.scans.Start(ctx, scan.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	assert.Equal(t, []notify.Code{
		notify.ScanCreated, notify.ScanStarted, notify.ScanCompleted, notify.ScanStarted.Failed(),
	}, f.notified.codes)
}

func TestProjects_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.projects.Create(ctx, model.ProjectInput{})
	assert.True(t, security.IsValidation(err))

	domain := "exemple.com"
	p, err := f.projects.Create(ctx, model.ProjectInput{Name: "Site Web Corporate", TargetDomain: &domain})
	require.NoError(t, err)

	list, err := f.projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, []notify.Code{notify.ProjectCreated}, f.notified.codes)
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := f.vulns.ListByStatus(context.Background(), "wontfix")
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestListBySeverity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	high, err := f.vulns.Create(ctx, model.VulnerabilityInput{Name: "XSS", Severity: model.SeverityHigh})
	require.NoError(t, err)
	_, err = f.vulns.Create(ctx, model.VulnerabilityInput{Name: "Banner", Severity: model.SeverityLow})
	require.NoError(t, err)

	list, err := f.vulns.ListBySeverity(ctx, model.SeverityHigh)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, high.ID, list[0].ID)

	_, err = f.vulns.Create(ctx, model.VulnerabilityInput{Name: "CSRF", Severity: model.SeverityHigh})
	require.NoError(t, err)
	list, err = f.vulns.ListBySeverity(ctx, model.SeverityHigh)
	require.NoError(t, err)
	assert.Len(t, list, 2, "a create invalidates the filtered list")

	_, err = f.vulns.ListBySeverity(ctx, "info")
	assert.ErrorIs(t, err, model.ErrInvalidSeverity)
}

// TestListReturnsPrivateCopy ensures editing a returned list leaves the cached one untouched
func TestListReturnsPrivateCopy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.vulns.Create(ctx, model.VulnerabilityInput{Name: "XSS", Severity: model.SeverityHigh})
	require.NoError(t, err)

	first, err := f.vulns.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].Name = "changed"

	again, err := f.vulns.List(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "XSS", again[0].Name)
	assert.Equal(t, 1, f.store.lists, "second read is served from the cache")
}
