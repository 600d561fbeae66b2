package domain

import "github.com/shopspring/decimal"

// PayFrequency is how an employee's base salary is quoted.
type PayFrequency string

const (
	Monthly PayFrequency = "MONTHLY"
	Daily   PayFrequency = "DAILY"
	Hourly  PayFrequency = "HOURLY"
)

// EmployeePayProfile is the read-only view of an employee the payroll engine
// consumes from the employee directory collaborator.
type EmployeePayProfile struct {
	EmployeeID   string          `json:"employeeID"`
	BranchID     *string         `json:"branchID,omitempty"` // nil: no assignment, included by open-enrollment fallback
	DepartmentID *string         `json:"departmentID,omitempty"`
	PositionID   *string         `json:"positionID,omitempty"`
	PayFrequency PayFrequency    `json:"payFrequency"`
	BaseSalary   decimal.Decimal `json:"baseSalary"`
	HasSalary    bool            `json:"hasSalary"` // false: no current salary record, skipped by the engine
}

// TimesheetSummary is the approved-timesheet aggregate for one employee and
// period.
type TimesheetSummary struct {
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	NightHours    decimal.Decimal `json:"nightHours"`
}

// DeductionSummary is the voluntary (non-statutory) deduction aggregate for
// one employee and period.
type DeductionSummary struct {
	Voluntary  decimal.Decimal `json:"voluntary"`
	HMOPremium decimal.Decimal `json:"hmoPremium"`
}

// Total returns the sum withheld as "other deductions" on a payslip.
func (d DeductionSummary) Total() decimal.Decimal {
	return d.Voluntary.Add(d.HMOPremium)
}
