// Package seed loads demonstration records into an empty store. Fixture
// timestamps are ages resolved against the clock when they are applied.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/store"
)

//go:embed fixtures.yaml
var embedded []byte

type Vulnerability struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Severity        string         `yaml:"severity"`
	Status          string         `yaml:"status"`
	TargetURL       string         `yaml:"target_url"`
	CVEID           string         `yaml:"cve_id"`
	DiscoveredAgo   time.Duration  `yaml:"discovered_ago"`
	ResolvedAgo     *time.Duration `yaml:"resolved_ago"`
	ResolutionNotes string         `yaml:"resolution_notes"`
}

type Scan struct {
	Name       string                 `yaml:"name"`
	Status     string                 `yaml:"status"`
	TargetURL  string                 `yaml:"target_url"`
	ScanType   string                 `yaml:"scan_type"`
	CreatedAgo time.Duration          `yaml:"created_ago"`
	StartedAgo *time.Duration         `yaml:"started_ago"`
	EndedAgo   *time.Duration         `yaml:"ended_ago"`
	Findings   *model.FindingsSummary `yaml:"findings"`
}

type Project struct {
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	TargetDomain string        `yaml:"target_domain"`
	TargetIP     string        `yaml:"target_ip"`
	TargetType   string        `yaml:"target_type"`
	Scope        string        `yaml:"scope"`
	Technologies []string      `yaml:"technologies"`
	CreatedAgo   time.Duration `yaml:"created_ago"`
}

type Fixtures struct {
	Vulnerabilities []Vulnerability `yaml:"vulnerabilities"`
	Scans           []Scan          `yaml:"scans"`
	Projects        []Project       `yaml:"projects"`
}

type Provider interface {
	Load() (Fixtures, error)
}

type ProviderFunc func() (Fixtures, error)

func (f ProviderFunc) Load() (Fixtures, error) {
	return f()
}

func Parse(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parsing fixtures: %w", err)
	}
	return f, nil
}

// Embedded returns the fixtures shipped with the binary.
func Embedded() Provider {
	return ProviderFunc(func() (Fixtures, error) {
		return Parse(embedded)
	})
}

func File(path string) Provider {
	return ProviderFunc(func() (Fixtures, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Fixtures{}, err
		}
		return Parse(data)
	})
}

type Result struct {
	Vulnerabilities int
	Scans           int
	Projects        int
}

// Apply imports the fixtures of each collection that is still empty.
// Collections that already hold records are left alone.
func Apply(ctx context.Context, p Provider, s store.Store, clock ext.Clock, ids ext.IDGenerator, log logr.Logger) (Result, error) {
	var res Result
	f, err := p.Load()
	if err != nil {
		return res, err
	}
	now := clock.Now()

	existingVulns, err := s.ListVulnerabilities(ctx)
	if err != nil {
		return res, err
	}
	if len(existingVulns) == 0 {
		for _, fv := range f.Vulnerabilities {
			v, err := fv.record(ids.GenerateID(), now)
			if err != nil {
				return res, fmt.Errorf("vulnerability %q: %w", fv.Name, err)
			}
			if err := s.ImportVulnerability(ctx, v); err != nil {
				return res, err
			}
			res.Vulnerabilities++
		}
	}

	existingScans, err := s.ListScans(ctx)
	if err != nil {
		return res, err
	}
	if len(existingScans) == 0 {
		for _, fs := range f.Scans {
			scan, err := fs.record(ids.GenerateID(), now)
			if err != nil {
				return res, fmt.Errorf("scan %q: %w", fs.Name, err)
			}
			if err := s.ImportScan(ctx, scan); err != nil {
				return res, err
			}
			res.Scans++
		}
	}

	existingProjects, err := s.ListProjects(ctx)
	if err != nil {
		return res, err
	}
	if len(existingProjects) == 0 {
		for _, fp := range f.Projects {
			if err := s.ImportProject(ctx, fp.record(ids.GenerateID(), now)); err != nil {
				return res, err
			}
			res.Projects++
		}
	}

	log.WithName("seed").Info("Seed data applied", "vulnerabilities", res.Vulnerabilities, "scans", res.Scans, "projects", res.Projects)
	return res, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ago(now time.Time, d *time.Duration) *time.Time {
	if d == nil {
		return nil
	}
	t := now.Add(-*d)
	return &t
}

func (fv Vulnerability) record(id string, now time.Time) (model.Vulnerability, error) {
	severity, err := model.ParseSeverity(fv.Severity)
	if err != nil {
		return model.Vulnerability{}, err
	}
	discovered := now.Add(-fv.DiscoveredAgo)
	v, err := model.NewVulnerability(id, model.VulnerabilityInput{
		Name:            fv.Name,
		Description:     optional(fv.Description),
		Severity:        severity,
		Status:          fv.Status,
		TargetURL:       optional(fv.TargetURL),
		DiscoveredAt:    &discovered,
		ResolvedAt:      ago(now, fv.ResolvedAgo),
		ResolutionNotes: optional(fv.ResolutionNotes),
		CVEID:           optional(fv.CVEID),
	}, discovered)
	return v, err
}

func (fs Scan) record(id string, now time.Time) (model.Scan, error) {
	scan, err := model.NewScan(id, model.ScanInput{
		Name:      fs.Name,
		TargetURL: fs.TargetURL,
		ScanType:  fs.ScanType,
		Status:    fs.Status,
	}, now.Add(-fs.CreatedAgo))
	if err != nil {
		return model.Scan{}, err
	}
	if fs.Findings != nil {
		if err := fs.Findings.Validate(); err != nil {
			return model.Scan{}, err
		}
	}
	scan.StartTime = ago(now, fs.StartedAgo)
	scan.EndTime = ago(now, fs.EndedAgo)
	scan.FindingsSummary = fs.Findings
	return scan, nil
}

func (fp Project) record(id string, now time.Time) model.Project {
	var targetType *model.TargetType
	if fp.TargetType != "" {
		t := model.TargetType(fp.TargetType)
		targetType = &t
	}
	return model.NewProject(id, model.ProjectInput{
		Name:         fp.Name,
		Description:  optional(fp.Description),
		TargetDomain: optional(fp.TargetDomain),
		TargetIP:     optional(fp.TargetIP),
		TargetType:   targetType,
		Scope:        optional(fp.Scope),
		Technologies: fp.Technologies,
	}, now.Add(-fp.CreatedAgo))
}
