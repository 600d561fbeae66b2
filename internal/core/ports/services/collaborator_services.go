package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// External collaborator ports. The payroll core only ever reads through
// these; their backing systems (employee directory, timesheet capture, HMO,
// bonuses) are maintained elsewhere.

// EmployeeDirectory exposes active employees with their pay terms.
type EmployeeDirectory interface {
	// ListActiveByBranch returns active employees assigned to the branch,
	// plus employees with no branch assignment at all (open-enrollment
	// fallback).
	ListActiveByBranch(ctx context.Context, branchID string, asOf time.Time) ([]domain.EmployeePayProfile, error)

	FindPayProfile(ctx context.Context, employeeID string, asOf time.Time) (*domain.EmployeePayProfile, error)

	// ListByDepartmentsOrPositions returns active employees matching any of
	// the given departments or positions (OR semantics).
	ListByDepartmentsOrPositions(ctx context.Context, departmentIDs, positionIDs []string, asOf time.Time) ([]domain.EmployeePayProfile, error)
}

// TimesheetAggregator sums approved timesheet hours for a period.
type TimesheetAggregator interface {
	Summarize(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (domain.TimesheetSummary, error)
}

// BonusSource sums computed, approved or paid bonus amounts for a period.
type BonusSource interface {
	SumBonuses(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (decimal.Decimal, error)
}

// AllowanceSource sums recurring allowances applicable to a period.
type AllowanceSource interface {
	SumAllowances(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (decimal.Decimal, error)
}

// DeductionSource sums voluntary and HMO-premium deductions. The run engine
// tolerates this collaborator failing: it logs and substitutes zero.
type DeductionSource interface {
	Summarize(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (domain.DeductionSummary, error)
}

// AuditSink accepts audit entries fire-and-forget; a sink failure must never
// fail the operation being audited.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}
