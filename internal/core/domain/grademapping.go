package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BandStatus describes where an employee's salary sits relative to their
// grade band.
type BandStatus string

const (
	WithinBand    BandStatus = "WITHIN_BAND"
	BelowBand     BandStatus = "BELOW_BAND"
	AboveBand     BandStatus = "ABOVE_BAND"
	PendingReview BandStatus = "PENDING_REVIEW"
)

// CalculateSalaryStatus is a pure, total function mapping a salary and band
// boundaries to a band position. min == max is valid (a degenerate band).
func CalculateSalaryStatus(salary, min, max decimal.Decimal) BandStatus {
	if salary.LessThan(min) {
		return BelowBand
	}
	if salary.GreaterThan(max) {
		return AboveBand
	}
	return WithinBand
}

// EmployeeGradeMapping binds an employee to a (grade, step) for a date range.
// Invariant: at most one mapping per employee with EndDate null or in the
// future ("current"). Approving a new mapping ends the prior one at
// effective date minus one day.
type EmployeeGradeMapping struct {
	MappingID     string          `json:"mappingID"`
	EmployeeID    string          `json:"employeeID"`
	GradeID       string          `json:"gradeID"`
	StepID        string          `json:"stepID"`
	CurrentSalary decimal.Decimal `json:"currentSalary"`
	BandMin       decimal.Decimal `json:"bandMin"` // snapshot of the step band at mapping time
	BandMax       decimal.Decimal `json:"bandMax"`
	Status        BandStatus      `json:"status"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
	AuditFields
}

// IsCurrentAt reports whether the mapping is the employee's live assignment
// on the given day.
func (m EmployeeGradeMapping) IsCurrentAt(day time.Time) bool {
	return m.EndDate == nil || m.EndDate.After(day)
}
