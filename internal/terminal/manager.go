// Package terminal manages simulated tool terminals. Each session owns its
// own sequencer so runs in different sessions never share a transcript.
package terminal

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/scanners"
	"ethicalpulse/dashboard/internal/security"
	"ethicalpulse/dashboard/internal/sequencer"
)

var ErrSessionNotFound = errors.New("terminal session not found")

const resultDetails = "Résultat de l'exécution de la commande"

var findingTypes = map[sequencer.Kind]string{
	sequencer.KindNetworkScan:  "Port Ouvert",
	sequencer.KindSQLInjection: "Injection SQL",
}

const defaultFindingType = "Vulnérabilité"

type Session struct {
	ID             string `json:"id"`
	Tool           string `json:"tool"`
	ToolName       string `json:"tool_name"`
	ProjectID      string `json:"project_id,omitempty"`
	TargetDomain   string `json:"target_domain,omitempty"`
	TargetIP       string `json:"target_ip,omitempty"`
	DefaultOption  string `json:"default_option,omitempty"`
	DefaultCommand string `json:"default_command"`
}

type Snapshot struct {
	Session
	Transcript string            `json:"transcript"`
	Busy       bool              `json:"busy"`
	Last       *sequencer.Result `json:"last,omitempty"`
}

type session struct {
	Session
	seq *sequencer.Sequencer

	mu   sync.Mutex
	last *sequencer.Result
}

type Manager struct {
	clock   ext.Clock
	ids     ext.IDGenerator
	log     logr.Logger
	cfg     config.Sequencer
	opts    []sequencer.Option
	results *Results

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewManager returns a manager whose sequencers are built with cfg and
// opts. Completed runs are recorded into results.
func NewManager(cfg config.Sequencer, results *Results, clock ext.Clock, ids ext.IDGenerator, log logr.Logger, opts ...sequencer.Option) *Manager {
	return &Manager{
		clock:    clock,
		ids:      ids,
		log:      log.WithName("terminal"),
		cfg:      cfg,
		opts:     opts,
		results:  results,
		sessions: make(map[string]*session),
	}
}

// Open creates a session for tool against the given target.
func (m *Manager) Open(tool, domain, ip, projectID string) (Snapshot, error) {
	t, ok := scanners.Lookup(tool)
	if !ok {
		return Snapshot{}, scanners.ErrUnknownTool
	}
	if err := security.ValidateTarget(domain, ip); err != nil {
		return Snapshot{}, err
	}
	target := scanners.Target{Domain: domain, IP: ip}
	s := &session{
		Session: Session{
			ID:             m.ids.GenerateID(),
			Tool:           t.ID,
			ToolName:       t.Name,
			ProjectID:      projectID,
			TargetDomain:   domain,
			TargetIP:       ip,
			DefaultOption:  scanners.DefaultOption(t.ID),
			DefaultCommand: scanners.DefaultCommand(t.ID, target),
		},
		seq: sequencer.New(m.cfg.MaxCharDelay, append([]sequencer.Option{sequencer.WithLogger(m.log)}, m.opts...)...),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.V(1).Info("Terminal opened", "id", s.ID, "tool", t.ID)
	return s.snapshot(), nil
}

func (m *Manager) get(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) invocation(s *session, command string) sequencer.Invocation {
	if strings.TrimSpace(command) == "" {
		command = s.DefaultCommand
	}
	return sequencer.Invocation{
		Tool:         s.Tool,
		TargetDomain: s.TargetDomain,
		TargetIP:     s.TargetIP,
		Command:      command,
	}
}

// Execute starts command in the background. An empty command runs the
// session's default command.
func (m *Manager) Execute(id, command string) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	return s.seq.Start(context.Background(), m.invocation(s, command), m.completed(s))
}

// Run plays command and waits for it to finish.
func (m *Manager) Run(ctx context.Context, id, command string) (sequencer.Result, error) {
	s, err := m.get(id)
	if err != nil {
		return sequencer.Result{}, err
	}
	return s.seq.Run(ctx, m.invocation(s, command), m.completed(s))
}

func (m *Manager) completed(s *session) func(sequencer.Result) {
	return func(res sequencer.Result) {
		s.mu.Lock()
		s.last = &res
		s.mu.Unlock()
		if res.Cancelled {
			return
		}
		m.results.Record(m.toolResult(s, res))
	}
}

func (m *Manager) toolResult(s *session, res sequencer.Result) model.ToolResult {
	findingType, ok := findingTypes[KindOfTool(s.Tool)]
	if !ok {
		findingType = defaultFindingType
	}
	severity := model.ResultSeverity(model.SeverityMedium)
	if rand.Float64() > 0.5 {
		severity = model.ResultSeverity(model.SeverityHigh)
	}
	return model.ToolResult{
		ID:          m.ids.GenerateID(),
		Timestamp:   m.clock.Now(),
		ToolName:    s.ToolName,
		Command:     res.Command,
		Target:      resultTarget(s.TargetDomain, res.Command),
		FindingType: findingType,
		Severity:    &severity,
		Details:     resultDetails,
		RawOutput:   res.Output,
	}
}

// KindOfTool maps the selected tool to its narrative kind.
func KindOfTool(tool string) sequencer.Kind {
	return sequencer.KindOf(sequencer.Invocation{Tool: tool})
}

// resultTarget is the project domain, or the second word of command.
func resultTarget(domain, command string) string {
	if domain != "" {
		return domain
	}
	fields := strings.Split(command, " ")
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (m *Manager) Snapshot(id string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Clear cancels the running command of the session and empties its
// transcript.
func (m *Manager) Clear(id string) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.seq.Clear()
	return nil
}

func (m *Manager) Results() []model.ToolResult {
	return m.results.List()
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	return Snapshot{
		Session:    s.Session,
		Transcript: s.seq.Transcript(),
		Busy:       s.seq.Busy(),
		Last:       last,
	}
}
