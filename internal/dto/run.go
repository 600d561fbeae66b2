package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// CreateRunRequest creates a Draft payroll run for a branch and pay period.
type CreateRunRequest struct {
	BranchID    string    `json:"branchID" binding:"required,uuid"`
	PeriodStart time.Time `json:"periodStart" binding:"required" time_format:"2006-01-02"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required" time_format:"2006-01-02"`
	PayDate     time.Time `json:"payDate" binding:"required" time_format:"2006-01-02"`
}

// ListRunsParams filters and paginates run listings.
type ListRunsParams struct {
	ListParams
	DateRange
	BranchID *string `form:"branchID" binding:"omitempty,uuid"`
	Status   *string `form:"status" binding:"omitempty,oneof=DRAFT PROCESSING COMPLETED APPROVED LOCKED"`
}

// RunResponse is the API shape of a payroll run.
type RunResponse struct {
	RunID           string          `json:"runID"`
	BranchID        string          `json:"branchID"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	PayDate         time.Time       `json:"payDate"`
	Status          string          `json:"status"`
	TotalGross      decimal.Decimal `json:"totalGross"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	TotalNet        decimal.Decimal `json:"totalNet"`
	EmployeeCount   int             `json:"employeeCount"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// ListRunsResponse wraps a page of runs.
type ListRunsResponse struct {
	Runs      []RunResponse `json:"runs"`
	NextToken *string       `json:"nextToken,omitempty"`
}

// ProcessRunResponse is returned by the process endpoint: the completed run
// plus the skip list operators reconcile against.
type ProcessRunResponse struct {
	Run     RunResponse              `json:"run"`
	Skipped []domain.SkippedEmployee `json:"skipped"`
}

// ToRunResponse converts a domain run to its API shape.
func ToRunResponse(r *domain.PayrollRun) RunResponse {
	return RunResponse{
		RunID:           r.RunID,
		BranchID:        r.BranchID,
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		PayDate:         r.PayDate,
		Status:          string(r.Status),
		TotalGross:      r.TotalGross,
		TotalDeductions: r.TotalDeductions,
		TotalNet:        r.TotalNet,
		EmployeeCount:   r.EmployeeCount,
		CreatedAt:       r.CreatedAt,
		CreatedBy:       r.CreatedBy,
	}
}

// ToRunResponses converts a slice of domain runs.
func ToRunResponses(runs []domain.PayrollRun) []RunResponse {
	out := make([]RunResponse, len(runs))
	for i := range runs {
		out[i] = ToRunResponse(&runs[i])
	}
	return out
}
