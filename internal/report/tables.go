package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/scanners"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func WriteVulnerabilities(out io.Writer, vulnerabilities []model.Vulnerability) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Severity", "Status", "CVE", "Discovered"})
	for _, v := range vulnerabilities {
		cve := "-"
		if v.CVEID != nil {
			cve = *v.CVEID
		}
		table.Append([]string{v.ID, v.Name, string(v.Severity), string(v.Status), cve, formatTime(&v.DiscoveredAt)})
	}
	table.Render()
}

func WriteScans(out io.Writer, scans []model.Scan) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Type", "Status", "Target", "Started", "Ended", "Findings"})
	for _, s := range scans {
		findings := "-"
		if s.FindingsSummary != nil {
			f := s.FindingsSummary
			findings = fmt.Sprintf("C:%d H:%d M:%d L:%d", f.Critical, f.High, f.Medium, f.Low)
		}
		table.Append([]string{s.ID, s.Name, s.ScanType, string(s.Status), s.TargetURL, formatTime(s.StartTime), formatTime(s.EndTime), findings})
	}
	table.Render()
}

func WriteSummary(out io.Writer, s Summary) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Value"})
	rows := [][]string{
		{"Vulnerabilities", strconv.Itoa(s.Vulnerabilities)},
	}
	for _, sev := range model.Severities {
		rows = append(rows, []string{"  " + string(sev), strconv.Itoa(s.BySeverity[sev])})
	}
	rows = append(rows,
		[]string{"Open", strconv.Itoa(s.Open)},
		[]string{"Resolved", strconv.Itoa(s.Resolved)},
		[]string{"Resolved (30 days)", strconv.Itoa(s.ResolvedLast30Days)},
		[]string{"Scans", strconv.Itoa(s.Scans)},
		[]string{"Findings", strconv.Itoa(s.Findings.Total())},
	)
	table.AppendBulk(rows)
	table.Render()

	if len(s.TopOpen) > 0 {
		fmt.Fprintln(out)
		WriteVulnerabilities(out, s.TopOpen)
	}
}

func WriteTools(out io.Writer, tools []scanners.Tool) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Category", "Description", "Tags"})
	for _, t := range tools {
		table.Append([]string{t.ID, t.Name, string(t.Category), t.Description, strings.Join(t.Tags, ", ")})
	}
	table.Render()
}

// WriteResults lists tool results with the severity they were recorded at.
func WriteResults(out io.Writer, results []model.ToolResult) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Time", "Tool", "Command", "Target", "Finding", "Severity"})
	for _, r := range results {
		severity := "-"
		if r.Severity != nil {
			severity = string(*r.Severity)
		}
		table.Append([]string{formatTime(&r.Timestamp), r.ToolName, r.Command, r.Target, r.FindingType, severity})
	}
	table.Render()
}
