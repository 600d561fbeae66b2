package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRunStatus is the lifecycle state of a payroll run. Transitions are
// strictly forward: Draft -> Processing -> Completed -> Approved -> Locked.
type PayrollRunStatus string

const (
	RunDraft      PayrollRunStatus = "DRAFT"
	RunProcessing PayrollRunStatus = "PROCESSING"
	RunCompleted  PayrollRunStatus = "COMPLETED"
	RunApproved   PayrollRunStatus = "APPROVED"
	RunLocked     PayrollRunStatus = "LOCKED"
)

// CanTransitionTo reports whether moving from s to next follows the one-way
// run lifecycle.
func (s PayrollRunStatus) CanTransitionTo(next PayrollRunStatus) bool {
	order := map[PayrollRunStatus]int{
		RunDraft:      0,
		RunProcessing: 1,
		RunCompleted:  2,
		RunApproved:   3,
		RunLocked:     4,
	}
	cur, ok := order[s]
	nxt, ok2 := order[next]
	return ok && ok2 && nxt == cur+1
}

// PayrollRun is one payroll batch for a branch and pay period. Totals are only
// meaningful once the run reaches Completed.
type PayrollRun struct {
	RunID           string           `json:"runID"`
	BranchID        string           `json:"branchID"`
	PeriodStart     time.Time        `json:"periodStart"`
	PeriodEnd       time.Time        `json:"periodEnd"`
	PayDate         time.Time        `json:"payDate"`
	Status          PayrollRunStatus `json:"status"`
	TotalGross      decimal.Decimal  `json:"totalGross"`
	TotalDeductions decimal.Decimal  `json:"totalDeductions"`
	TotalNet        decimal.Decimal  `json:"totalNet"`
	EmployeeCount   int              `json:"employeeCount"`
	ApprovedBy      *string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time       `json:"approvedAt,omitempty"`
	LockedBy        *string          `json:"lockedBy,omitempty"`
	LockedAt        *time.Time       `json:"lockedAt,omitempty"`
	AuditFields
}

// SkippedEmployee records an employee excluded from a processed run and why,
// so operators can reconcile afterwards.
type SkippedEmployee struct {
	EmployeeID string `json:"employeeID"`
	Reason     string `json:"reason"`
}

// RunResult is what ProcessRun returns to the caller: the completed run plus
// the per-employee skip list.
type RunResult struct {
	Run     PayrollRun        `json:"run"`
	Skipped []SkippedEmployee `json:"skipped"`
}
