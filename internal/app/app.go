// Package app wires configuration, storage and services into a runnable
// dashboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"ethicalpulse/dashboard/internal/api"
	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/notify"
	"ethicalpulse/dashboard/internal/progress"
	"ethicalpulse/dashboard/internal/query"
	"ethicalpulse/dashboard/internal/remediation"
	"ethicalpulse/dashboard/internal/scheduler"
	"ethicalpulse/dashboard/internal/seed"
	"ethicalpulse/dashboard/internal/sequencer"
	"ethicalpulse/dashboard/internal/store"
	"ethicalpulse/dashboard/internal/terminal"
)

type App struct {
	Config          config.Config
	Store           store.Store
	Notifications   *notify.Center
	Vulnerabilities *query.Vulnerabilities
	Scans           *query.Scans
	Projects        *query.Projects
	Remediation     *remediation.Service
	Terminals       *terminal.Manager
	Progress        *progress.Simulator
	Scheduler       *scheduler.Scheduler

	clock ext.Clock
	log   logr.Logger
}

type options struct {
	clock      ext.Clock
	ids        ext.IDGenerator
	seqOpts    []sequencer.Option
	seedSource seed.Provider
}

type Option func(*options)

func WithClock(clock ext.Clock) Option {
	return func(o *options) { o.clock = clock }
}

func WithIDGenerator(ids ext.IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// WithSequencerOptions is applied to every terminal sequencer.
func WithSequencerOptions(opts ...sequencer.Option) Option {
	return func(o *options) { o.seqOpts = append(o.seqOpts, opts...) }
}

func WithSeed(p seed.Provider) Option {
	return func(o *options) { o.seedSource = p }
}

// New opens the configured store, applies seed data when enabled and builds
// every service on top of it.
func New(ctx context.Context, cfg config.Config, log logr.Logger, opts ...Option) (*App, error) {
	o := options{
		clock: ext.NewSystemClock(),
		ids:   ext.NewUUIDGenerator(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seedSource == nil {
		o.seedSource = seed.Embedded()
		if cfg.Seed.File != "" {
			o.seedSource = seed.File(cfg.Seed.File)
		}
	}

	s, err := store.Open(cfg.Store, o.clock, o.ids)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if cfg.Seed.Enabled {
		if _, err := seed.Apply(ctx, o.seedSource, s, o.clock, o.ids, log); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("seeding store: %w", err)
		}
	}

	a := &App{
		Config: cfg,
		Store:  s,
		clock:  o.clock,
		log:    log,
	}
	cache := query.NewCache(cfg.Cache.TTL, o.clock)
	a.Notifications = notify.NewCenter(cfg.Notifications.Capacity, o.clock, log)
	a.Vulnerabilities = query.NewVulnerabilities(s, cache, a.Notifications, o.clock, log)
	a.Scans = query.NewScans(s, cache, a.Notifications, o.clock, log)
	a.Projects = query.NewProjects(s, cache, a.Notifications, log)

	results := &terminal.Results{}
	a.Terminals = terminal.NewManager(cfg.Sequencer, results, o.clock, o.ids, log, o.seqOpts...)
	a.Remediation = remediation.NewService(a.Projects, a.Vulnerabilities, s, results, a.Notifications, o.clock, o.ids, log)
	a.Progress = progress.NewSimulator(cfg.Progress, a.Scans, log)

	if cfg.Scheduler.Cron != "" {
		a.Scheduler, err = scheduler.New(cfg.Scheduler.Cron, a.Scans, a.Progress, o.clock, log)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) Handler() http.Handler {
	return api.New(api.Deps{
		Vulnerabilities: a.Vulnerabilities,
		Scans:           a.Scans,
		Projects:        a.Projects,
		Remediation:     a.Remediation,
		Terminals:       a.Terminals,
		Progress:        a.Progress,
		Notifications:   a.Notifications,
		Clock:           a.clock,
		Log:             a.log,
	}).Router()
}

// Serve runs the HTTP server, and the scheduler when configured, until ctx
// is cancelled. In-flight requests get the configured shutdown timeout.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config.Server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("Dashboard listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if a.Scheduler != nil {
		g.Go(func() error {
			if err := a.Scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		a.log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	a.Progress.StopAll()
	a.Progress.Wait()
	return err
}

func (a *App) Close() error {
	return a.Store.Close()
}

func (a *App) Clock() ext.Clock {
	return a.clock
}
