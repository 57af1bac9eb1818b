package projects

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status is the authoritative lifecycle field of a project.
type Status string

const (
	StatusPending          Status = "pending"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusChangesRequested Status = "changes_requested"
)

// ParseStatus returns the status named by s, or false if s is not a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusChangesRequested:
		return st, true
	}
	return "", false
}

// Project represents a submitted investment project listing
type Project struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Type         string          `gorm:"index;not null" json:"type"`
	Blockchain   string          `gorm:"index;not null" json:"blockchain"`
	ROI          float64         `gorm:"column:roi;index" json:"roi"`
	TVL          decimal.Decimal `gorm:"column:tvl;type:numeric(30,2)" json:"tvl"`
	Description  string          `json:"description"`
	Website      string          `json:"website"`
	Documents    datatypes.JSON  `json:"documents"` // list of object storage keys
	OwnerID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"owner_id"`
	ContactEmail string          `json:"-"`
	Status       Status          `gorm:"type:varchar(32);index;not null;default:'pending'" json:"status"`
	ReviewNotes  string          `json:"review_notes"`
	ReviewerID   *uuid.UUID      `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}

// IsApproved is the legacy boolean view of the status.
func (p *Project) IsApproved() bool {
	return p.Status == StatusApproved
}

// DocumentKeys decodes the stored document key list.
func (p *Project) DocumentKeys() []string {
	if len(p.Documents) == 0 {
		return nil
	}
	var keys []string
	if err := json.Unmarshal(p.Documents, &keys); err != nil {
		return nil
	}
	return keys
}

// MarshalJSON adds the legacy "approved" flag, derived from Status.
func (p Project) MarshalJSON() ([]byte, error) {
	type project Project
	return json.Marshal(struct {
		project
		Approved bool `json:"approved"`
	}{
		project:  project(p),
		Approved: p.IsApproved(),
	})
}

// Filter narrows the publishable set. Empty strings and nil bounds match everything.
type Filter struct {
	AssetType  string
	Blockchain string
	MinROI     *float64
	MaxROI     *float64
}

// ReviewUpdate is the set of columns written by a single moderation transition.
type ReviewUpdate struct {
	Status     Status
	Notes      string
	ReviewerID uuid.UUID
	ReviewedAt time.Time
}
