package repositories

import (
	"time"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// Typed filter structs: each optional field translates to one fixed predicate
// in the repository, never to string-assembled SQL.

// RunFilter narrows payroll run listings.
type RunFilter struct {
	BranchID *string
	Status   *domain.PayrollRunStatus
	From     *time.Time // period start lower bound
	To       *time.Time // period end upper bound
}

// GradeFilter narrows salary grade listings.
type GradeFilter struct {
	BranchID     *string
	DepartmentID *string
	Status       *domain.SalaryGradeStatus
	Code         *string
}

// MappingFilter narrows employee grade mapping listings.
type MappingFilter struct {
	EmployeeID  *string
	GradeID     *string
	CurrentOnly bool
}

// RevisionFilter narrows grade revision listings.
type RevisionFilter struct {
	GradeID *string
	Status  *domain.GradeRevisionStatus
}

// AdjustmentFilter narrows salary adjustment listings.
type AdjustmentFilter struct {
	EmployeeID *string
	Status     *domain.SalaryAdjustmentStatus
	From       *time.Time // effective date lower bound
	To         *time.Time
}

// WorkflowFilter narrows batch workflow listings.
type WorkflowFilter struct {
	Status *domain.PayAdjustmentWorkflowStatus
}

// AuditFilter narrows audit trail listings.
type AuditFilter struct {
	RunID     *string
	PayslipID *string
	ActorID   *string
}
