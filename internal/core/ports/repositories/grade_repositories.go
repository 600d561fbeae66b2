package repositories

import (
	"context"
	"time"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// GradeRepositoryFacade persists salary grades and their steps.
type GradeRepositoryFacade interface {
	// SaveGrade inserts a Draft grade together with its steps in one
	// transaction.
	SaveGrade(ctx context.Context, grade domain.SalaryGrade) error

	// FindGradeByID returns the grade with its steps loaded.
	FindGradeByID(ctx context.Context, gradeID string) (*domain.SalaryGrade, error)

	ListGrades(ctx context.Context, filter GradeFilter, limit int, nextToken *string) ([]domain.SalaryGrade, *string, error)

	// ActivateGrade moves a Draft grade to Active and supersedes any other
	// Active version of the same code and scope, in one transaction.
	ActivateGrade(ctx context.Context, gradeID string, actorID string, at time.Time) error
}

// MappingRepositoryFacade persists employee grade mappings.
type MappingRepositoryFacade interface {
	SaveMapping(ctx context.Context, mapping domain.EmployeeGradeMapping) error

	FindMappingByID(ctx context.Context, mappingID string) (*domain.EmployeeGradeMapping, error)

	// FindCurrentMapping returns the employee's mapping whose end date is
	// null or after the given day.
	FindCurrentMapping(ctx context.Context, employeeID string, asOf time.Time) (*domain.EmployeeGradeMapping, error)

	// ListCurrentMappingsByGrade returns every current mapping bound to the
	// grade, the population a grade revision cascades over.
	ListCurrentMappingsByGrade(ctx context.Context, gradeID string, asOf time.Time) ([]domain.EmployeeGradeMapping, error)

	// ListCurrentMappingsByGrades is the batch-workflow variant over a
	// target grade set.
	ListCurrentMappingsByGrades(ctx context.Context, gradeIDs []string, asOf time.Time) ([]domain.EmployeeGradeMapping, error)

	ListMappings(ctx context.Context, filter MappingFilter, limit int, nextToken *string) ([]domain.EmployeeGradeMapping, *string, error)

	// ApproveMapping runs the end-then-activate pattern in one transaction:
	// every prior mapping for the employee still open at the new effective
	// date is ended at effective date minus one day, then the mapping is
	// marked with its re-validated band status and approver.
	ApproveMapping(ctx context.Context, mapping domain.EmployeeGradeMapping, approvedBy string, at time.Time) error
}
