package model

import "time"

// ResultSeverity extends Severity with "info" for tool results that are not
// findings, such as remediation output.
type ResultSeverity string

const ResultSeverityInfo ResultSeverity = "info"

func (s ResultSeverity) Valid() bool {
	return s == ResultSeverityInfo || Severity(s).Valid()
}

type ToolResult struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	ToolName    string          `json:"tool_name"`
	Command     string          `json:"command"`
	Target      string          `json:"target,omitempty"`
	FindingType string          `json:"finding_type,omitempty"`
	Severity    *ResultSeverity `json:"severity,omitempty"`
	Details     string          `json:"details"`
	RawOutput   string          `json:"raw_output"`
}
