// Package sequencer plays the simulated terminal transcript of a security
// tool. Text is revealed one rune at a time with a short random pause, and
// a completion callback reports the summary line.
package sequencer

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

var (
	ErrBusy         = errors.New("a command is already running")
	ErrEmptyCommand = errors.New("command is empty")
)

type Invocation struct {
	Tool         string `json:"tool"`
	TargetDomain string `json:"target_domain,omitempty"`
	TargetIP     string `json:"target_ip,omitempty"`
	Command      string `json:"command"`
}

// Result is reported once per accepted invocation. Output holds the summary
// line of a completed run and is empty when the run was cancelled.
type Result struct {
	Invocation
	Kind      Kind   `json:"kind"`
	Output    string `json:"output"`
	Cancelled bool   `json:"cancelled"`
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Option func(*Sequencer)

func WithSleep(fn SleepFunc) Option {
	return func(s *Sequencer) { s.sleep = fn }
}

// WithMirror copies every revealed rune to w.
func WithMirror(w io.Writer) Option {
	return func(s *Sequencer) { s.mirror = w }
}

func WithLogger(log logr.Logger) Option {
	return func(s *Sequencer) { s.log = log }
}

// Sequencer owns one transcript. Only one run plays at a time.
type Sequencer struct {
	maxDelay time.Duration
	sleep    SleepFunc
	mirror   io.Writer
	log      logr.Logger

	mu         sync.Mutex
	transcript strings.Builder
	busy       bool
	cancel     context.CancelFunc
	runCtx     context.Context
}

// New returns a sequencer that waits up to maxDelay after each rune.
func New(maxDelay time.Duration, opts ...Option) *Sequencer {
	s := &Sequencer{
		maxDelay: maxDelay,
		sleep:    sleepContext,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plays inv and blocks until it completes or is cancelled through ctx
// or Clear. onDone, when set, is called exactly once before the sequencer
// accepts another run.
func (s *Sequencer) Run(ctx context.Context, inv Invocation, onDone func(Result)) (Result, error) {
	runCtx, err := s.acquire(ctx, inv)
	if err != nil {
		return Result{}, err
	}
	return s.play(runCtx, inv, onDone), nil
}

// Start plays inv in the background. It fails fast with ErrBusy or
// ErrEmptyCommand.
func (s *Sequencer) Start(ctx context.Context, inv Invocation, onDone func(Result)) error {
	runCtx, err := s.acquire(ctx, inv)
	if err != nil {
		return err
	}
	go s.play(runCtx, inv, onDone)
	return nil
}

func (s *Sequencer) acquire(ctx context.Context, inv Invocation) (context.Context, error) {
	if strings.TrimSpace(inv.Command) == "" {
		return nil, ErrEmptyCommand
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.cancel = cancel
	s.runCtx = runCtx
	s.transcript.Reset()
	return runCtx, nil
}

func (s *Sequencer) play(ctx context.Context, inv Invocation, onDone func(Result)) Result {
	kind := KindOf(inv)
	res := Result{Invocation: inv, Kind: kind}
	s.log.V(1).Info("Running command", "tool", inv.Tool, "kind", kind, "command", inv.Command)

	if err := s.reveal(ctx, script(inv.Command, kind)); err != nil {
		res.Cancelled = true
		s.log.V(1).Info("Command cancelled", "command", inv.Command)
	} else {
		res.Output = kind.Summary()
	}

	if onDone != nil {
		onDone(res)
	}
	s.release(ctx)
	return res
}

func (s *Sequencer) reveal(ctx context.Context, blocks []string) error {
	for _, block := range blocks {
		for _, r := range block {
			if err := s.append(ctx, r); err != nil {
				return err
			}
			if err := s.sleep(ctx, s.delay()); err != nil {
				return err
			}
		}
	}
	return nil
}

// append adds r to the transcript unless the run was cancelled. The check
// and the write happen under one lock so Clear never races with a write.
func (s *Sequencer) append(ctx context.Context, r rune) error {
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.transcript.WriteRune(r)
	s.mu.Unlock()

	if s.mirror != nil {
		_, _ = io.WriteString(s.mirror, string(r))
	}
	return nil
}

func (s *Sequencer) delay() time.Duration {
	if s.maxDelay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(s.maxDelay)))
}

func (s *Sequencer) release(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx == ctx {
		s.cancel()
		s.busy = false
		s.cancel = nil
		s.runCtx = nil
	}
}

// Clear cancels any running command and empties the transcript.
func (s *Sequencer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.transcript.Reset()
}

func (s *Sequencer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Sequencer) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.String()
}
