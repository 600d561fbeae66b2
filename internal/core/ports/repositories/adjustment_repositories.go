package repositories

import (
	"context"
	"time"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// ActorField names the per-transition actor column a status change records.
type ActorField string

const (
	ActorReviewer    ActorField = "reviewed_by"
	ActorApprover    ActorField = "approved_by"
	ActorImplementer ActorField = "implemented_by"
)

// AdjustmentRepositoryFacade persists salary adjustments.
type AdjustmentRepositoryFacade interface {
	SaveAdjustment(ctx context.Context, adjustment domain.SalaryAdjustment) error

	FindAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.SalaryAdjustment, error)

	ListAdjustments(ctx context.Context, filter AdjustmentFilter, limit int, nextToken *string) ([]domain.SalaryAdjustment, *string, error)

	// UpdateAdjustmentStatus performs a guarded transition, writing the
	// actor into the given field. Returns ErrInvalidState when the row is
	// not in the expected from status.
	UpdateAdjustmentStatus(ctx context.Context, adjustmentID string, from, to domain.SalaryAdjustmentStatus, field ActorField, actorID string, at time.Time) error

	// ImplementAdjustment finalizes an Approved adjustment in one
	// transaction: guard and flip the status, end the employee's open
	// mappings at effective date minus one day, and insert the new mapping
	// carrying the new salary.
	ImplementAdjustment(ctx context.Context, adjustment domain.SalaryAdjustment, newMapping domain.EmployeeGradeMapping, implementedBy string, at time.Time) error
}
