package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type ScanStatus string

const (
	ScanScheduled  ScanStatus = "scheduled"
	ScanInProgress ScanStatus = "in_progress"
	ScanCompleted  ScanStatus = "completed"
	ScanFailed     ScanStatus = "failed"
)

var scanTransitions = map[ScanStatus][]ScanStatus{
	ScanScheduled:  {ScanInProgress, ScanFailed},
	ScanInProgress: {ScanCompleted, ScanFailed},
	ScanCompleted:  {},
	ScanFailed:     {},
}

func (s ScanStatus) Valid() bool {
	_, ok := scanTransitions[s]
	return ok
}

func (s ScanStatus) CanTransitionTo(next ScanStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range scanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseScanStatus(s string) (ScanStatus, error) {
	status := ScanStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// FindingsSummary counts the issues attached to a completed scan.
type FindingsSummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

func (f FindingsSummary) Total() int {
	return f.Critical + f.High + f.Medium + f.Low
}

func (f FindingsSummary) Validate() error {
	if f.Critical < 0 || f.High < 0 || f.Medium < 0 || f.Low < 0 {
		return errors.New("findings counts must be non-negative")
	}
	return nil
}

// Value stores the summary as a JSON document.
func (f FindingsSummary) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FindingsSummary) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported findings summary type %T", src)
	}
}

type Scan struct {
	ID              string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string           `json:"name" gorm:"not null"`
	Status          ScanStatus       `json:"status" gorm:"type:varchar(15);index"`
	TargetURL       string           `json:"target_url" gorm:"not null"`
	ScanType        string           `json:"scan_type" gorm:"type:varchar(50)"`
	StartTime       *time.Time       `json:"start_time,omitempty"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	FindingsSummary *FindingsSummary `json:"findings_summary,omitempty" gorm:"type:text"`
	CreatedAt       time.Time        `json:"created_at" gorm:"index;autoCreateTime:false"`
}

func (Scan) TableName() string {
	return "security_scans"
}

type ScanInput struct {
	Name      string `json:"name"`
	TargetURL string `json:"target_url"`
	ScanType  string `json:"scan_type"`
	Status    string `json:"status,omitempty"`
}

// NewScan builds a record from validated input. New scans are scheduled
// unless the input says otherwise.
func NewScan(id string, in ScanInput, now time.Time) (Scan, error) {
	status := ScanScheduled
	if in.Status != "" {
		parsed, err := ParseScanStatus(in.Status)
		if err != nil {
			return Scan{}, err
		}
		status = parsed
	}
	return Scan{
		ID:        id,
		Name:      in.Name,
		Status:    status,
		TargetURL: in.TargetURL,
		ScanType:  in.ScanType,
		CreatedAt: now,
	}, nil
}

type ScanPatch struct {
	Name            *string          `json:"name,omitempty"`
	Status          *string          `json:"status,omitempty"`
	TargetURL       *string          `json:"target_url,omitempty"`
	ScanType        *string          `json:"scan_type,omitempty"`
	StartTime       *time.Time       `json:"start_time,omitempty"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	FindingsSummary *FindingsSummary `json:"findings_summary,omitempty"`
}

// Apply validates the patch against s and writes it in place. An
// in_progress scan needs a start time and a completed scan needs an end time
// and a findings summary; the end never precedes the start. The patch is
// applied entirely or not at all.
func (p ScanPatch) Apply(s *Scan) error {
	if p.FindingsSummary != nil {
		if err := p.FindingsSummary.Validate(); err != nil {
			return err
		}
	}
	next := *s
	if p.Status != nil {
		status, err := ParseScanStatus(*p.Status)
		if err != nil {
			return err
		}
		if !s.Status.CanTransitionTo(status) {
			return ErrInvalidTransition
		}
		next.Status = status
	}
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.TargetURL != nil {
		next.TargetURL = *p.TargetURL
	}
	if p.ScanType != nil {
		next.ScanType = *p.ScanType
	}
	if p.StartTime != nil {
		next.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		next.EndTime = p.EndTime
	}
	if p.FindingsSummary != nil {
		summary := *p.FindingsSummary
		next.FindingsSummary = &summary
	}

	switch next.Status {
	case ScanInProgress:
		if next.StartTime == nil {
			return fmt.Errorf("%w: in_progress requires start_time", ErrIncompleteTransition)
		}
	case ScanCompleted:
		if next.EndTime == nil || next.FindingsSummary == nil {
			return fmt.Errorf("%w: completed requires end_time and findings_summary", ErrIncompleteTransition)
		}
	}
	if next.StartTime != nil && next.EndTime != nil && next.EndTime.Before(*next.StartTime) {
		return ErrTimeOrder
	}
	*s = next
	return nil
}

func StartPatch(at time.Time) ScanPatch {
	status := string(ScanInProgress)
	return ScanPatch{Status: &status, StartTime: &at}
}

// CompletePatch finishes a scan. The end time never precedes startedAt.
func CompletePatch(startedAt *time.Time, at time.Time, findings FindingsSummary) ScanPatch {
	if startedAt != nil && at.Before(*startedAt) {
		at = *startedAt
	}
	status := string(ScanCompleted)
	return ScanPatch{Status: &status, EndTime: &at, FindingsSummary: &findings}
}
