package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// PayslipResponse is the API shape of a payslip, trace included.
type PayslipResponse struct {
	PayslipID       string                  `json:"payslipID"`
	RunID           string                  `json:"runID"`
	EmployeeID      string                  `json:"employeeID"`
	BranchID        string                  `json:"branchID"`
	PeriodStart     time.Time               `json:"periodStart"`
	PeriodEnd       time.Time               `json:"periodEnd"`
	BasicPay        decimal.Decimal         `json:"basicPay"`
	OvertimePay     decimal.Decimal         `json:"overtimePay"`
	NightDiffPay    decimal.Decimal         `json:"nightDiffPay"`
	Allowances      decimal.Decimal         `json:"allowances"`
	Bonuses         decimal.Decimal         `json:"bonuses"`
	Gross           decimal.Decimal         `json:"gross"`
	SocialInsurance decimal.Decimal         `json:"socialInsurance"`
	HealthInsurance decimal.Decimal         `json:"healthInsurance"`
	HousingFund     decimal.Decimal         `json:"housingFund"`
	WithholdingTax  decimal.Decimal         `json:"withholdingTax"`
	OtherDeductions decimal.Decimal         `json:"otherDeductions"`
	Net             decimal.Decimal         `json:"net"`
	Status          string                  `json:"status"`
	Trace           domain.ComputationTrace `json:"trace"`
}

// ListPayslipsResponse wraps a page of payslips.
type ListPayslipsResponse struct {
	Payslips  []PayslipResponse `json:"payslips"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPayslipResponse converts a domain payslip to its API shape.
func ToPayslipResponse(p *domain.Payslip) PayslipResponse {
	return PayslipResponse{
		PayslipID:       p.PayslipID,
		RunID:           p.RunID,
		EmployeeID:      p.EmployeeID,
		BranchID:        p.BranchID,
		PeriodStart:     p.PeriodStart,
		PeriodEnd:       p.PeriodEnd,
		BasicPay:        p.BasicPay,
		OvertimePay:     p.OvertimePay,
		NightDiffPay:    p.NightDiffPay,
		Allowances:      p.Allowances,
		Bonuses:         p.Bonuses,
		Gross:           p.Gross,
		SocialInsurance: p.SocialInsurance,
		HealthInsurance: p.HealthInsurance,
		HousingFund:     p.HousingFund,
		WithholdingTax:  p.WithholdingTax,
		OtherDeductions: p.OtherDeductions,
		Net:             p.Net,
		Status:          string(p.Status),
		Trace:           p.Trace,
	}
}

// ToPayslipResponses converts a slice of domain payslips.
func ToPayslipResponses(payslips []domain.Payslip) []PayslipResponse {
	out := make([]PayslipResponse, len(payslips))
	for i := range payslips {
		out[i] = ToPayslipResponse(&payslips[i])
	}
	return out
}
