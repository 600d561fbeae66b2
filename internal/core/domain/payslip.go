package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayslipStatus distinguishes live payslips from ones voided before the run
// was locked. A payslip is never hard-deleted.
type PayslipStatus string

const (
	PayslipActive PayslipStatus = "ACTIVE"
	PayslipVoided PayslipStatus = "VOIDED"
)

// TraceSchemaVersion identifies the ComputationTrace layout. Bump when fields
// are added so stored traces stay decodable.
const TraceSchemaVersion = 1

// ComputationTrace is the structured breakdown persisted with every payslip
// so any amount on it can be reproduced later. It is encoded to JSON only at
// the repository boundary.
type ComputationTrace struct {
	SchemaVersion      int             `json:"schemaVersion"`
	PayFrequency       PayFrequency    `json:"payFrequency"`
	BaseSalary         decimal.Decimal `json:"baseSalary"`
	WorkingDays        int             `json:"workingDays"`
	HourlyRate         decimal.Decimal `json:"hourlyRate"`
	OvertimeHours      decimal.Decimal `json:"overtimeHours"`
	OvertimeMultiplier decimal.Decimal `json:"overtimeMultiplier"`
	NightHours         decimal.Decimal `json:"nightHours"`
	TaxTableVersion    string          `json:"taxTableVersion"`
	TaxableIncome      decimal.Decimal `json:"taxableIncome"`
	TaxBracket         int             `json:"taxBracket"`
}

// Payslip is the computed pay statement for one employee in one run.
// Invariant: Net = Gross - (statutory contributions + tax + other deductions).
type Payslip struct {
	PayslipID       string           `json:"payslipID"`
	RunID           string           `json:"runID"`
	EmployeeID      string           `json:"employeeID"`
	BranchID        string           `json:"branchID"`
	PeriodStart     time.Time        `json:"periodStart"`
	PeriodEnd       time.Time        `json:"periodEnd"`
	BasicPay        decimal.Decimal  `json:"basicPay"`
	OvertimePay     decimal.Decimal  `json:"overtimePay"`
	NightDiffPay    decimal.Decimal  `json:"nightDiffPay"`
	Allowances      decimal.Decimal  `json:"allowances"`
	Bonuses         decimal.Decimal  `json:"bonuses"`
	Gross           decimal.Decimal  `json:"gross"`
	SocialInsurance decimal.Decimal  `json:"socialInsurance"`
	HealthInsurance decimal.Decimal  `json:"healthInsurance"`
	HousingFund     decimal.Decimal  `json:"housingFund"`
	WithholdingTax  decimal.Decimal  `json:"withholdingTax"`
	OtherDeductions decimal.Decimal  `json:"otherDeductions"`
	Net             decimal.Decimal  `json:"net"`
	Status          PayslipStatus    `json:"status"`
	Trace           ComputationTrace `json:"trace"`
	AuditFields
}

// TotalStatutory sums the three rate-based mandatory contributions.
func (p Payslip) TotalStatutory() decimal.Decimal {
	return p.SocialInsurance.Add(p.HealthInsurance).Add(p.HousingFund)
}

// TotalDeductions is everything withheld from gross on this payslip.
func (p Payslip) TotalDeductions() decimal.Decimal {
	return p.TotalStatutory().Add(p.WithholdingTax).Add(p.OtherDeductions)
}
