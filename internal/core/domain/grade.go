package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryGradeStatus is the lifecycle state of a grade version.
type SalaryGradeStatus string

const (
	GradeDraft      SalaryGradeStatus = "DRAFT"
	GradeActive     SalaryGradeStatus = "ACTIVE"
	GradeSuperseded SalaryGradeStatus = "SUPERSEDED"
)

// SalaryGrade is a salary band scoped to a department/branch. At most one
// Active version per (code, scope) may be effective at a given date.
type SalaryGrade struct {
	GradeID       string            `json:"gradeID"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	DepartmentID  *string           `json:"departmentID,omitempty"`
	BranchID      *string           `json:"branchID,omitempty"`
	MinRate       decimal.Decimal   `json:"minRate"`
	MidRate       decimal.Decimal   `json:"midRate"`
	MaxRate       decimal.Decimal   `json:"maxRate"`
	EffectiveDate time.Time         `json:"effectiveDate"`
	EndDate       *time.Time        `json:"endDate,omitempty"`
	Status        SalaryGradeStatus `json:"status"`
	Steps         []SalaryStep      `json:"steps,omitempty"`
	AuditFields
}

// SalaryStep subdivides a grade into ordered bands.
// Invariant: MinRate <= BaseRate <= MaxRate; StepNumber unique within a grade.
type SalaryStep struct {
	StepID     string          `json:"stepID"`
	GradeID    string          `json:"gradeID"`
	StepNumber int             `json:"stepNumber"`
	MinRate    decimal.Decimal `json:"minRate"`
	BaseRate   decimal.Decimal `json:"baseRate"`
	MaxRate    decimal.Decimal `json:"maxRate"`
	AuditFields
}

// Validate checks the step band ordering.
func (s SalaryStep) Validate() bool {
	return s.MinRate.LessThanOrEqual(s.BaseRate) && s.BaseRate.LessThanOrEqual(s.MaxRate)
}
