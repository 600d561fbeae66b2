package services

import (
	"context"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	"github.com/hospicore/hr_payroll_app/internal/dto"
)

// GradeSvcFacade is the grade and band registry surface.
type GradeSvcFacade interface {
	CreateGrade(ctx context.Context, req dto.CreateGradeRequest, actorID string) (*domain.SalaryGrade, error)
	GetGradeByID(ctx context.Context, gradeID string) (*domain.SalaryGrade, error)
	ListGrades(ctx context.Context, params dto.ListGradesParams) (*dto.ListGradesResponse, error)
	ApproveGrade(ctx context.Context, gradeID string, actorID string) error
}

// MappingSvcFacade is the employee grade mapping surface.
type MappingSvcFacade interface {
	CreateMapping(ctx context.Context, req dto.CreateMappingRequest, actorID string) (*domain.EmployeeGradeMapping, error)
	GetMappingByID(ctx context.Context, mappingID string) (*domain.EmployeeGradeMapping, error)
	ListMappings(ctx context.Context, params dto.ListMappingsParams) (*dto.ListMappingsResponse, error)

	// Approve ends any overlapping prior mapping for the employee and
	// activates this one with a re-validated band status.
	Approve(ctx context.Context, mappingID string, approvedBy string) (*domain.EmployeeGradeMapping, error)
}

// RevisionSvcFacade is the grade revision workflow surface.
type RevisionSvcFacade interface {
	CreateRevision(ctx context.Context, req dto.CreateRevisionRequest, actorID string) (*domain.GradeRevision, error)
	GetRevisionByID(ctx context.Context, revisionID string) (*domain.GradeRevision, error)
	ListRevisions(ctx context.Context, params dto.ListRevisionsParams) (*dto.ListRevisionsResponse, error)

	SubmitForReview(ctx context.Context, revisionID string, actorID string) error
	Approve(ctx context.Context, revisionID string, actorID string) error
	Reject(ctx context.Context, revisionID string, actorID string) error

	// Implement applies the revision to the grade and cascades one
	// Pending-Review salary adjustment per currently mapped employee,
	// atomically.
	Implement(ctx context.Context, revisionID string, implementedBy string) (*dto.ImplementRevisionResponse, error)
}

// AdjustmentSvcFacade is the single-employee salary adjustment surface.
type AdjustmentSvcFacade interface {
	CreateAdjustment(ctx context.Context, req dto.CreateAdjustmentRequest, actorID string) (*domain.SalaryAdjustment, error)
	GetAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.SalaryAdjustment, error)
	ListAdjustments(ctx context.Context, params dto.ListAdjustmentsParams) (*dto.ListAdjustmentsResponse, error)

	// SetStatus validates the transition against the linear state machine
	// and records the actor in the field owned by the target status.
	SetStatus(ctx context.Context, adjustmentID string, next domain.SalaryAdjustmentStatus, actorID string) (*domain.SalaryAdjustment, error)
}

// BatchSvcFacade is the pay adjustment batch workflow surface.
type BatchSvcFacade interface {
	CreateWorkflow(ctx context.Context, req dto.CreateWorkflowRequest, actorID string) (*domain.PayAdjustmentWorkflow, error)
	GetWorkflowByID(ctx context.Context, workflowID string) (*domain.PayAdjustmentWorkflow, error)
	ListWorkflows(ctx context.Context, params dto.ListWorkflowsParams) (*dto.ListWorkflowsResponse, error)

	// CalculateImpact resolves the OR-combined target set, computes the
	// per-employee deltas, and persists the snapshot on the workflow row.
	CalculateImpact(ctx context.Context, workflowID string, actorID string) (*dto.ImpactResponse, error)

	// CreateWorkflowDetails materializes per-employee detail rows,
	// replacing on conflict so repeated calls do not duplicate.
	CreateWorkflowDetails(ctx context.Context, workflowID string, actorID string) ([]domain.WorkflowDetail, error)

	Approve(ctx context.Context, workflowID string, actorID string) error

	// Implement generates one Pending-Review salary adjustment per detail
	// row, atomically with the status flip.
	Implement(ctx context.Context, workflowID string, implementedBy string) (*dto.ImplementWorkflowResponse, error)
}
