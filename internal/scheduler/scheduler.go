// Package scheduler starts scheduled scans on a cron expression and hands
// them to the progress simulator.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorhill/cronexpr"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
)

type Scans interface {
	ListByStatus(ctx context.Context, status model.ScanStatus) ([]model.Scan, error)
	Start(ctx context.Context, id string) (model.Scan, error)
}

type Tracker interface {
	Track(ctx context.Context, scanID string) error
}

type Scheduler struct {
	expr    *cronexpr.Expression
	scans   Scans
	tracker Tracker
	clock   ext.Clock
	log     logr.Logger
}

func New(cron string, scans Scans, tracker Tracker, clock ext.Clock, log logr.Logger) (*Scheduler, error) {
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return nil, fmt.Errorf("parsing cron expression %q: %w", cron, err)
	}
	return &Scheduler{
		expr:    expr,
		scans:   scans,
		tracker: tracker,
		clock:   clock,
		log:     log.WithName("scheduler"),
	}, nil
}

// Next returns the next activation after the current time.
func (s *Scheduler) Next() time.Time {
	return s.expr.Next(s.clock.Now())
}

// Run fires Tick at every activation until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.Next()
		if next.IsZero() {
			s.log.Info("Cron expression has no future activation")
			return nil
		}
		timer := time.NewTimer(next.Sub(s.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if _, err := s.Tick(ctx); err != nil {
			s.log.Error(err, "Starting scheduled scans")
		}
	}
}

// Tick starts every scheduled scan and returns how many were started. A
// scan that fails to start does not stop the others.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	scheduled, err := s.scans.ListByStatus(ctx, model.ScanScheduled)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, scan := range scheduled {
		if _, err := s.scans.Start(ctx, scan.ID); err != nil {
			s.log.Error(err, "Starting scan", "scan", scan.ID)
			continue
		}
		if err := s.tracker.Track(ctx, scan.ID); err != nil {
			s.log.Error(err, "Tracking scan progress", "scan", scan.ID)
		}
		started++
	}
	if started > 0 {
		s.log.Info("Started scheduled scans", "count", started)
	}
	return started, nil
}
