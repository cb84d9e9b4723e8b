// Package report aggregates vulnerabilities and scans into the figures the
// dashboard shows, and renders them as text tables.
package report

import (
	"time"

	"ethicalpulse/dashboard/internal/model"
)

const (
	recentWindow = 30 * 24 * time.Hour
	topOpenLimit = 5
)

type Summary struct {
	GeneratedAt        time.Time                         `json:"generated_at"`
	Vulnerabilities    int                               `json:"vulnerabilities"`
	BySeverity         map[model.Severity]int            `json:"by_severity"`
	ByStatus           map[model.VulnerabilityStatus]int `json:"by_status"`
	Open               int                               `json:"open"`
	Resolved           int                               `json:"resolved"`
	ResolvedLast30Days int                               `json:"resolved_last_30_days"`
	Scans              int                               `json:"scans"`
	ScansByStatus      map[model.ScanStatus]int          `json:"scans_by_status"`
	Findings           model.FindingsSummary             `json:"findings"`
	TopOpen            []model.Vulnerability             `json:"top_open"`
}

// Summarize computes the dashboard figures at now. Open counts open and
// in-progress vulnerabilities; findings sum the completed scans only.
func Summarize(vulnerabilities []model.Vulnerability, scans []model.Scan, now time.Time) Summary {
	s := Summary{
		GeneratedAt:     now,
		Vulnerabilities: len(vulnerabilities),
		BySeverity:      make(map[model.Severity]int, len(model.Severities)),
		ByStatus:        make(map[model.VulnerabilityStatus]int),
		Scans:           len(scans),
		ScansByStatus:   make(map[model.ScanStatus]int),
		TopOpen:         []model.Vulnerability{},
	}
	for _, sev := range model.Severities {
		s.BySeverity[sev] = 0
	}

	var open []model.Vulnerability
	for _, v := range vulnerabilities {
		s.BySeverity[v.Severity]++
		s.ByStatus[v.Status]++
		switch v.Status {
		case model.VulnerabilityOpen, model.VulnerabilityInProgress:
			s.Open++
			open = append(open, v)
		case model.VulnerabilityResolved:
			s.Resolved++
		}
		if v.ResolvedAt != nil && !v.ResolvedAt.After(now) && now.Sub(*v.ResolvedAt) <= recentWindow {
			s.ResolvedLast30Days++
		}
	}

	for _, scan := range scans {
		s.ScansByStatus[scan.Status]++
		if scan.Status != model.ScanCompleted || scan.FindingsSummary == nil {
			continue
		}
		s.Findings.Critical += scan.FindingsSummary.Critical
		s.Findings.High += scan.FindingsSummary.High
		s.Findings.Medium += scan.FindingsSummary.Medium
		s.Findings.Low += scan.FindingsSummary.Low
	}

	SortBySeverity(open)
	if len(open) > topOpenLimit {
		open = open[:topOpenLimit]
	}
	s.TopOpen = append(s.TopOpen, open...)
	return s
}
