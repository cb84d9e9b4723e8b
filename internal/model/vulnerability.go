package model

import "time"

type VulnerabilityStatus string

const (
	VulnerabilityOpen       VulnerabilityStatus = "open"
	VulnerabilityInProgress VulnerabilityStatus = "in_progress"
	VulnerabilityResolved   VulnerabilityStatus = "resolved"
	VulnerabilityClosed     VulnerabilityStatus = "closed"
)

var vulnerabilityTransitions = map[VulnerabilityStatus][]VulnerabilityStatus{
	VulnerabilityOpen:       {VulnerabilityInProgress, VulnerabilityResolved, VulnerabilityClosed},
	VulnerabilityInProgress: {VulnerabilityOpen, VulnerabilityResolved, VulnerabilityClosed},
	VulnerabilityResolved:   {VulnerabilityOpen, VulnerabilityClosed},
	VulnerabilityClosed:     {},
}

func (s VulnerabilityStatus) Valid() bool {
	_, ok := vulnerabilityTransitions[s]
	return ok
}

// CanTransitionTo reports whether a record in status s may be moved to next.
// Re-writing the current status is always allowed.
func (s VulnerabilityStatus) CanTransitionTo(next VulnerabilityStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range vulnerabilityTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseVulnerabilityStatus accepts the stored values plus the hyphenated
// "in-progress" spelling used by older clients.
func ParseVulnerabilityStatus(s string) (VulnerabilityStatus, error) {
	if s == "in-progress" {
		return VulnerabilityInProgress, nil
	}
	status := VulnerabilityStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

type Vulnerability struct {
	ID              string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string              `json:"name" gorm:"not null"`
	Description     *string             `json:"description,omitempty"`
	Severity        Severity            `json:"severity" gorm:"type:varchar(10);not null"`
	Status          VulnerabilityStatus `json:"status" gorm:"type:varchar(15);index"`
	TargetURL       *string             `json:"target_url,omitempty"`
	DiscoveredAt    time.Time           `json:"discovered_at"`
	ResolvedAt      *time.Time          `json:"resolved_at,omitempty"`
	ResolutionNotes *string             `json:"resolution_notes,omitempty"`
	CVEID           *string             `json:"cve_id,omitempty" gorm:"column:cve_id;type:varchar(20)"`
	CreatedAt       time.Time           `json:"created_at" gorm:"index;autoCreateTime:false"`
	UpdatedAt       time.Time           `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (Vulnerability) TableName() string {
	return "vulnerabilities"
}

// VulnerabilityInput carries the fields accepted when creating a vulnerability.
type VulnerabilityInput struct {
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	Severity        Severity   `json:"severity"`
	Status          string     `json:"status,omitempty"`
	TargetURL       *string    `json:"target_url,omitempty"`
	DiscoveredAt    *time.Time `json:"discovered_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
	CVEID           *string    `json:"cve_id,omitempty"`
}

// NewVulnerability builds a record from validated input. Status defaults to
// open and the discovery time defaults to now.
func NewVulnerability(id string, in VulnerabilityInput, now time.Time) (Vulnerability, error) {
	if !in.Severity.Valid() {
		return Vulnerability{}, ErrInvalidSeverity
	}
	status := VulnerabilityOpen
	if in.Status != "" {
		parsed, err := ParseVulnerabilityStatus(in.Status)
		if err != nil {
			return Vulnerability{}, err
		}
		status = parsed
	}
	discovered := now
	if in.DiscoveredAt != nil {
		discovered = *in.DiscoveredAt
	}
	return Vulnerability{
		ID:              id,
		Name:            in.Name,
		Description:     in.Description,
		Severity:        in.Severity,
		Status:          status,
		TargetURL:       in.TargetURL,
		DiscoveredAt:    discovered,
		ResolvedAt:      in.ResolvedAt,
		ResolutionNotes: in.ResolutionNotes,
		CVEID:           in.CVEID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// VulnerabilityPatch is a partial update. Nil fields are left untouched.
type VulnerabilityPatch struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Severity        *Severity  `json:"severity,omitempty"`
	Status          *string    `json:"status,omitempty"`
	TargetURL       *string    `json:"target_url,omitempty"`
	DiscoveredAt    *time.Time `json:"discovered_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
	CVEID           *string    `json:"cve_id,omitempty"`
}

// Apply validates the patch against v and writes it in place. A move to
// resolved without a resolution time is stamped at now, never before the
// discovery time. The patch is applied entirely or not at all.
func (p VulnerabilityPatch) Apply(v *Vulnerability, now time.Time) error {
	if p.Severity != nil && !p.Severity.Valid() {
		return ErrInvalidSeverity
	}
	next := *v
	if p.Status != nil {
		status, err := ParseVulnerabilityStatus(*p.Status)
		if err != nil {
			return err
		}
		if !v.Status.CanTransitionTo(status) {
			return ErrInvalidTransition
		}
		next.Status = status
	}
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Description != nil {
		next.Description = p.Description
	}
	if p.Severity != nil {
		next.Severity = *p.Severity
	}
	if p.TargetURL != nil {
		next.TargetURL = p.TargetURL
	}
	if p.DiscoveredAt != nil {
		next.DiscoveredAt = *p.DiscoveredAt
	}
	if p.ResolvedAt != nil {
		next.ResolvedAt = p.ResolvedAt
	}
	if p.ResolutionNotes != nil {
		next.ResolutionNotes = p.ResolutionNotes
	}
	if p.CVEID != nil {
		next.CVEID = p.CVEID
	}

	if next.Status == VulnerabilityResolved && next.ResolvedAt == nil {
		resolvedAt := now
		if resolvedAt.Before(next.DiscoveredAt) {
			resolvedAt = next.DiscoveredAt
		}
		next.ResolvedAt = &resolvedAt
	}
	if next.ResolvedAt != nil && next.ResolvedAt.Before(next.DiscoveredAt) {
		return ErrTimeOrder
	}
	next.UpdatedAt = now
	*v = next
	return nil
}

// ResolvePatch marks a vulnerability resolved. The resolution time is
// clamped so that it never precedes discoveredAt.
func ResolvePatch(discoveredAt, now time.Time, notes string) VulnerabilityPatch {
	resolvedAt := now
	if resolvedAt.Before(discoveredAt) {
		resolvedAt = discoveredAt
	}
	status := string(VulnerabilityResolved)
	patch := VulnerabilityPatch{
		Status:     &status,
		ResolvedAt: &resolvedAt,
	}
	if notes != "" {
		patch.ResolutionNotes = &notes
	}
	return patch
}
