package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// BatchRepositoryFacade persists pay adjustment batch workflows.
type BatchRepositoryFacade interface {
	SaveWorkflow(ctx context.Context, workflow domain.PayAdjustmentWorkflow) error

	FindWorkflowByID(ctx context.Context, workflowID string) (*domain.PayAdjustmentWorkflow, error)

	ListWorkflows(ctx context.Context, filter WorkflowFilter, limit int, nextToken *string) ([]domain.PayAdjustmentWorkflow, *string, error)

	// SaveImpactSnapshot caches the point-in-time impact estimate on the
	// workflow row.
	SaveImpactSnapshot(ctx context.Context, workflowID string, totalImpact decimal.Decimal, affectedCount int, at time.Time) error

	// ReplaceWorkflowDetails upserts the per-employee detail rows keyed on
	// (workflow, employee), so repeated materialization replaces rather
	// than duplicates.
	ReplaceWorkflowDetails(ctx context.Context, workflowID string, details []domain.WorkflowDetail) error

	ListWorkflowDetails(ctx context.Context, workflowID string) ([]domain.WorkflowDetail, error)

	// UpdateWorkflowStatus performs a guarded Draft->Approved transition.
	UpdateWorkflowStatus(ctx context.Context, workflowID string, from, to domain.PayAdjustmentWorkflowStatus, actorID string, at time.Time) error

	// ImplementWorkflow flips an Approved workflow to Implemented and
	// inserts one Pending-Review salary adjustment per detail row, all in
	// one transaction.
	ImplementWorkflow(ctx context.Context, workflowID string, implementedBy string, adjustments []domain.SalaryAdjustment, at time.Time) error
}
