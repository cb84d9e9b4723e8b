package model

import "time"

type RemediationStatus string

const (
	RemediationSuccess    RemediationStatus = "success"
	RemediationFailed     RemediationStatus = "failed"
	RemediationInProgress RemediationStatus = "in_progress"
)

type Remediation struct {
	ID              string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VulnerabilityID *string           `json:"vulnerability_id,omitempty" gorm:"type:varchar(36);index"`
	ProjectID       string            `json:"project_id" gorm:"type:varchar(36);index"`
	Name            string            `json:"name"`
	RemediationType string            `json:"remediation_type" gorm:"type:varchar(50)"`
	Method          string            `json:"method"`
	Target          string            `json:"target,omitempty"`
	Status          RemediationStatus `json:"status" gorm:"type:varchar(15)"`
	Output          string            `json:"output"`
	ExecutedAt      time.Time         `json:"executed_at" gorm:"index"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
}

func (Remediation) TableName() string {
	return "remediations"
}
