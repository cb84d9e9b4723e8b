package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type TargetType string

const (
	TargetWebsite TargetType = "website"
	TargetWebApp  TargetType = "webapp"
	TargetAPI     TargetType = "api"
	TargetServer  TargetType = "server"
	TargetNetwork TargetType = "network"
	TargetOther   TargetType = "other"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetWebsite, TargetWebApp, TargetAPI, TargetServer, TargetNetwork, TargetOther:
		return true
	}
	return false
}

// Technologies is a list of stack labels persisted as JSON.
type Technologies []string

func (t Technologies) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Technologies) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(t))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(t))
	default:
		return fmt.Errorf("unsupported technologies type %T", src)
	}
}

type Project struct {
	ID           string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string       `json:"name" gorm:"not null"`
	Description  *string      `json:"description,omitempty"`
	TargetDomain *string      `json:"target_domain,omitempty"`
	TargetIP     *string      `json:"target_ip,omitempty" gorm:"type:varchar(45)"`
	TargetType   *TargetType  `json:"target_type,omitempty" gorm:"type:varchar(20)"`
	Scope        *string      `json:"scope,omitempty"`
	Technologies Technologies `json:"technologies,omitempty" gorm:"type:text"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index;autoCreateTime:false"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectInput struct {
	Name         string      `json:"name"`
	Description  *string     `json:"description,omitempty"`
	TargetDomain *string     `json:"target_domain,omitempty"`
	TargetIP     *string     `json:"target_ip,omitempty"`
	TargetType   *TargetType `json:"target_type,omitempty"`
	Scope        *string     `json:"scope,omitempty"`
	Technologies []string    `json:"technologies,omitempty"`
}

func NewProject(id string, in ProjectInput, now time.Time) Project {
	return Project{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		TargetDomain: in.TargetDomain,
		TargetIP:     in.TargetIP,
		TargetType:   in.TargetType,
		Scope:        in.Scope,
		Technologies: in.Technologies,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Domain returns the target domain or "" when unset.
func (p Project) Domain() string {
	if p.TargetDomain == nil {
		return ""
	}
	return *p.TargetDomain
}

func (p Project) IP() string {
	if p.TargetIP == nil {
		return ""
	}
	return *p.TargetIP
}
