package repositories

import (
	"context"
	"time"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// RunRepositoryFacade persists payroll runs and their payslips.
type RunRepositoryFacade interface {
	// SaveRun inserts a Draft run. Returns apperrors.ErrConflict when a
	// non-rejected run already overlaps the branch/period.
	SaveRun(ctx context.Context, run domain.PayrollRun) error

	FindRunByID(ctx context.Context, runID string) (*domain.PayrollRun, error)

	// FindOverlappingRun returns any run for the branch whose period
	// intersects [periodStart, periodEnd], or ErrNotFound.
	FindOverlappingRun(ctx context.Context, branchID string, periodStart, periodEnd time.Time) (*domain.PayrollRun, error)

	ListRuns(ctx context.Context, filter RunFilter, limit int, nextToken *string) ([]domain.PayrollRun, *string, error)

	// CompleteRunAtomic persists the outcome of processing in one database
	// transaction: it takes an advisory lock keyed on the run ID, re-checks
	// the run is still Draft under a row lock, inserts every payslip, and
	// moves the run to Completed with its totals. Any failure rolls the
	// whole call back, leaving the run and payslips untouched.
	CompleteRunAtomic(ctx context.Context, run domain.PayrollRun, payslips []domain.Payslip) error

	// UpdateRunStatus performs a guarded forward transition, recording the
	// actor and timestamp. Returns ErrInvalidState when the run is not in
	// the expected from status.
	UpdateRunStatus(ctx context.Context, runID string, from, to domain.PayrollRunStatus, actorID string, at time.Time) error

	FindPayslipByID(ctx context.Context, payslipID string) (*domain.Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string, limit int, nextToken *string) ([]domain.Payslip, *string, error)

	// VoidPayslip soft-deletes a payslip. Fails with ErrInvalidState when
	// the owning run is already Locked.
	VoidPayslip(ctx context.Context, payslipID string, actorID string, at time.Time) error
}

// RunRepositoryWithTx extends the facade with transaction management.
type RunRepositoryWithTx interface {
	RunRepositoryFacade
	TransactionManager
}
