package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicalpulse/dashboard/internal/app"
	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/seed"
)

func testConfig() config.Config {
	return config.Config{
		Server:        config.Server{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Store:         config.Store{Driver: "memory"},
		Progress:      config.Progress{Interval: time.Second, Step: 5, Ceiling: 100},
		Seed:          config.Seed{Enabled: true},
		Notifications: config.Notifications{Capacity: 10},
	}
}

func newApp(t *testing.T, cfg config.Config, opts ...app.Option) *app.App {
	clock := ext.NewManualClock(time.Date(2025, 4, 17, 8, 0, 0, 0, time.UTC))
	opts = append([]app.Option{app.WithClock(clock), app.WithIDGenerator(ext.NewSequentialIDGenerator())}, opts...)
	a, err := app.New(context.Background(), cfg, logr.Discard(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// TestNewSeedsStore ensures the embedded fixtures are loaded when seeding is enabled.
func TestNewSeedsStore(t *testing.T) {
	a := newApp(t, testConfig())

	vulns, err := a.Vulnerabilities.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, vulns, 5)

	projects, err := a.Projects.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 2)
	assert.Nil(t, a.Scheduler)
}

// TestNewWithoutSeed ensures a disabled seed leaves the store empty.
func TestNewWithoutSeed(t *testing.T) {
	cfg := testConfig()
	cfg.Seed.Enabled = false
	a := newApp(t, cfg)

	scans, err := a.Scans.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scans)
}

// TestNewRejectsBadSettings ensures wiring errors surface from New.
func TestNewRejectsBadSettings(t *testing.T) {
	t.Run("Should reject an unknown store driver", func(t *testing.T) {
		cfg := testConfig()
		cfg.Store.Driver = "mongo"
		_, err := app.New(context.Background(), cfg, logr.Discard())
		assert.Error(t, err)
	})

	t.Run("Should reject a broken cron expression", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scheduler.Cron = "not a cron"
		_, err := app.New(context.Background(), cfg, logr.Discard())
		assert.Error(t, err)
	})

	t.Run("Should surface seed failures", func(t *testing.T) {
		broken := seed.ProviderFunc(func() (seed.Fixtures, error) {
			return seed.Fixtures{Scans: []seed.Scan{{Name: "x", Status: "paused"}}}, nil
		})
		_, err := app.New(context.Background(), testConfig(), logr.Discard(), app.WithSeed(broken))
		assert.Error(t, err)
	})
}

// TestHandlerServesSeededData ensures the router is wired to the seeded services.
func TestHandlerServesSeededData(t *testing.T) {
	a := newApp(t, testConfig())

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans?status=scheduled", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Scan de vulnérabilités Web")
}

// TestServeStopsOnCancel ensures Serve returns once its context is cancelled.
func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.Cron = "0 3 * * *"
	a := newApp(t, cfg)
	require.NotNil(t, a.Scheduler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
