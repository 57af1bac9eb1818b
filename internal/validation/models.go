package validation

import (
	"time"

	"github.com/google/uuid"
)

// CheckName identifies one of the three automated checks.
type CheckName string

const (
	CheckScam      CheckName = "scam"
	CheckSanctions CheckName = "sanctions"
	CheckAudit     CheckName = "audit"
)

func ParseCheckName(s string) (CheckName, bool) {
	switch c := CheckName(s); c {
	case CheckScam, CheckSanctions, CheckAudit:
		return c, true
	}
	return "", false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CheckResult holds the automated outcome of a check and any human override.
// For the sanctions check, Passed means no sanctions match was found.
// Checked is false until an automated run has reported on the check.
type CheckResult struct {
	Checked        bool   `json:"checked"`
	Passed         bool   `json:"passed"`
	Details        string `json:"details"`
	ManualOverride bool   `json:"manual_override"`
	ManualPassed   bool   `json:"manual_passed"`
	ManualNotes    string `json:"manual_notes"`
}

// Known reports whether the check has a value at all, either from a run or
// from a human.
func (c CheckResult) Known() bool {
	return c.Checked || c.ManualOverride
}

// Effective is the value used for risk computation. It is only meaningful
// when Known is true.
func (c CheckResult) Effective() bool {
	if c.ManualOverride {
		return c.ManualPassed
	}
	return c.Passed
}

// Result is the stored validation state of a project. One row per project,
// created the first time a check runs or an admin overrides one.
type Result struct {
	ProjectID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"project_id"`
	Scam             CheckResult `gorm:"embedded;embeddedPrefix:scam_" json:"scam"`
	Sanctions        CheckResult `gorm:"embedded;embeddedPrefix:sanctions_" json:"sanctions"`
	Audit            CheckResult `gorm:"embedded;embeddedPrefix:audit_" json:"audit"`
	RiskLevel        RiskLevel   `gorm:"type:varchar(16);not null" json:"risk_level"`
	OverallPassed    bool        `json:"overall_passed"`
	ManuallyReviewed bool        `json:"manually_reviewed"`
	ReviewerID       *uuid.UUID  `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt       *time.Time  `json:"reviewed_at,omitempty"`
	CheckedAt        *time.Time  `gorm:"index" json:"checked_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (Result) TableName() string { return "validation_results" }

// Check returns a pointer to the named sub-check.
func (r *Result) Check(name CheckName) *CheckResult {
	switch name {
	case CheckScam:
		return &r.Scam
	case CheckSanctions:
		return &r.Sanctions
	case CheckAudit:
		return &r.Audit
	}
	return nil
}

// Recompute refreshes the derived verdict fields.
func (r *Result) Recompute() {
	v := Aggregate(r.Scam, r.Sanctions, r.Audit)
	r.RiskLevel = v.RiskLevel
	r.OverallPassed = v.OverallPassed
}

// Outcome is what a checker reports for one project.
type Outcome struct {
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// OverrideRequest is the body of PUT /validation/:projectId/overrides.
type OverrideRequest struct {
	Check  string `json:"check" binding:"required,oneof=scam sanctions audit"`
	Passed *bool  `json:"passed" binding:"required"`
	Notes  string `json:"notes"`
}
