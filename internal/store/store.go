// Package store is the entity store client. It exposes one round-trip
// operation per query or mutation over four collections: vulnerabilities,
// security_scans, projects and remediations. Lists are ordered newest first.
// There is no retry and no idempotency key; inserting twice creates two
// records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
)

var ErrNotFound = errors.New("record not found")

type VulnerabilityStore interface {
	ListVulnerabilities(ctx context.Context) ([]model.Vulnerability, error)
	ListVulnerabilitiesByStatus(ctx context.Context, status model.VulnerabilityStatus) ([]model.Vulnerability, error)
	ListVulnerabilitiesBySeverity(ctx context.Context, severity model.Severity) ([]model.Vulnerability, error)
	GetVulnerability(ctx context.Context, id string) (model.Vulnerability, error)
	InsertVulnerability(ctx context.Context, in model.VulnerabilityInput) (model.Vulnerability, error)
	UpdateVulnerability(ctx context.Context, id string, patch model.VulnerabilityPatch) (model.Vulnerability, error)
}

type ScanStore interface {
	ListScans(ctx context.Context) ([]model.Scan, error)
	ListScansByStatus(ctx context.Context, status model.ScanStatus) ([]model.Scan, error)
	GetScan(ctx context.Context, id string) (model.Scan, error)
	InsertScan(ctx context.Context, in model.ScanInput) (model.Scan, error)
	UpdateScan(ctx context.Context, id string, patch model.ScanPatch) (model.Scan, error)
	StartScan(ctx context.Context, id string, at time.Time) (model.Scan, error)
	CompleteScan(ctx context.Context, id string, at time.Time, findings model.FindingsSummary) (model.Scan, error)
}

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	InsertProject(ctx context.Context, in model.ProjectInput) (model.Project, error)
}

type RemediationStore interface {
	ListRemediations(ctx context.Context) ([]model.Remediation, error)
	InsertRemediation(ctx context.Context, r model.Remediation) (model.Remediation, error)
}

// Importer writes complete records with their own ids and timestamps.
// Seed data is loaded through it.
type Importer interface {
	ImportVulnerability(ctx context.Context, v model.Vulnerability) error
	ImportScan(ctx context.Context, s model.Scan) error
	ImportProject(ctx context.Context, p model.Project) error
}

type Store interface {
	VulnerabilityStore
	ScanStore
	ProjectStore
	RemediationStore
	Importer
	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(cfg config.Store, clock ext.Clock, ids ext.IDGenerator) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(clock, ids), nil
	case "sqlite", "postgres":
		return NewSQL(cfg.Driver, cfg.DSN, clock, ids)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
