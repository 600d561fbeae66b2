package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// GradeBandUpdate carries the grade/step mutation a revision implementation
// applies. Exactly one of Bands or Percentage is set, mirroring the two
// mutually exclusive revision strategies.
type GradeBandUpdate struct {
	GradeID    string
	Bands      *BandValues      // explicit min/mid/max replacement
	Percentage *decimal.Decimal // uniform uplift applied to every step base rate
}

// BandValues are explicit replacement band boundaries.
type BandValues struct {
	Min decimal.Decimal
	Mid decimal.Decimal
	Max decimal.Decimal
}

// RevisionRepositoryFacade persists grade revisions and implements their
// cascade.
type RevisionRepositoryFacade interface {
	SaveRevision(ctx context.Context, revision domain.GradeRevision) error

	FindRevisionByID(ctx context.Context, revisionID string) (*domain.GradeRevision, error)

	ListRevisions(ctx context.Context, filter RevisionFilter, limit int, nextToken *string) ([]domain.GradeRevision, *string, error)

	// UpdateRevisionStatus performs a guarded transition recording the actor
	// in the field matching the target status.
	UpdateRevisionStatus(ctx context.Context, revisionID string, from, to domain.GradeRevisionStatus, actorID string, at time.Time) error

	// ImplementRevision commits the whole cascade in a single transaction:
	// guard the revision is still Approved, apply the grade/step update,
	// insert one Pending-Review salary adjustment per affected employee, and
	// mark the revision Implemented. No partial outcome is possible.
	ImplementRevision(ctx context.Context, revisionID string, implementedBy string, update GradeBandUpdate, adjustments []domain.SalaryAdjustment, at time.Time) error
}
