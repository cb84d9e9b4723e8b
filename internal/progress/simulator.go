// Package progress simulates the advance of in-progress scans. Each tracked
// scan gets its own ticker; when its progress reaches the ceiling the scan
// is completed with random findings.
package progress

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/model"
)

var ErrAlreadyTracking = errors.New("scan progress is already tracked")

// Completer issues the completion mutation of a scan.
type Completer interface {
	Complete(ctx context.Context, id string, findings model.FindingsSummary) (model.Scan, error)
}

// RandomFindings draws critical in [0,3), high in [0,5), medium in [0,8)
// and low in [0,10).
func RandomFindings() model.FindingsSummary {
	return model.FindingsSummary{
		Critical: rand.Intn(3),
		High:     rand.Intn(5),
		Medium:   rand.Intn(8),
		Low:      rand.Intn(10),
	}
}

type Option func(*Simulator)

func WithFindings(fn func() model.FindingsSummary) Option {
	return func(s *Simulator) { s.findings = fn }
}

type Simulator struct {
	cfg       config.Progress
	completer Completer
	findings  func() model.FindingsSummary
	log       logr.Logger

	mu       sync.Mutex
	progress map[string]int
	cancels  map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func NewSimulator(cfg config.Progress, completer Completer, log logr.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:       cfg,
		completer: completer,
		findings:  RandomFindings,
		log:       log.WithName("progress"),
		progress:  make(map[string]int),
		cancels:   make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track starts the progress timer of scanID at zero. The timer stops when
// ctx is done, when Stop is called, or once the scan is completed.
func (s *Simulator) Track(ctx context.Context, scanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cancels[scanID]; ok {
		return ErrAlreadyTracking
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancels[scanID] = cancel
	s.progress[scanID] = 0

	s.wg.Add(1)
	go s.run(ctx, scanID)
	return nil
}

func (s *Simulator) run(ctx context.Context, scanID string) {
	defer s.wg.Done()
	defer s.untrack(scanID)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.advance(scanID) < s.cfg.Ceiling {
			continue
		}
		findings := s.findings()
		if _, err := s.completer.Complete(ctx, scanID, findings); err != nil {
			s.log.Error(err, "Completing scan", "scan", scanID)
			return
		}
		s.log.V(1).Info("Scan completed", "scan", scanID, "findings", findings.Total())
		return
	}
}

func (s *Simulator) advance(scanID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.progress[scanID] + s.cfg.Step
	if next > s.cfg.Ceiling {
		next = s.cfg.Ceiling
	}
	s.progress[scanID] = next
	return next
}

func (s *Simulator) untrack(scanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[scanID]; ok {
		cancel()
		delete(s.cancels, scanID)
	}
}

// Progress returns the last value of scanID and whether it was ever
// tracked.
func (s *Simulator) Progress(scanID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.progress[scanID]
	return v, ok
}

func (s *Simulator) Tracking(scanID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cancels[scanID]
	return ok
}

// Stop cancels the timer of scanID. It reports whether one was running.
func (s *Simulator) Stop(scanID string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[scanID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (s *Simulator) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Wait blocks until every timer has exited.
func (s *Simulator) Wait() {
	s.wg.Wait()
}
