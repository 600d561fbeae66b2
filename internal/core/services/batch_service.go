package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
	"github.com/hospicore/hr_payroll_app/internal/utils/payrollcalc"
)

var (
	ErrNoTargetDimension   = errors.New("at least one target dimension is required")
	ErrWorkflowNotDraft    = errors.New("only a draft workflow can be approved")
	ErrWorkflowNotApproved = errors.New("only an approved workflow can be implemented")
	ErrNoWorkflowDetails   = errors.New("workflow has no materialized details to implement")
)

// batchService manages bulk pay adjustment workflows: OR-combined targeting
// over grades, departments and positions, a cached impact estimate, and an
// implementation cascade that fans out one salary adjustment per detail row.
type batchService struct {
	batchRepo   portsrepo.BatchRepositoryFacade
	mappingRepo portsrepo.MappingRepositoryFacade
	directory   portssvc.EmployeeDirectory
	auditSink   portssvc.AuditSink
}

// NewBatchService creates a new BatchService.
func NewBatchService(
	batchRepo portsrepo.BatchRepositoryFacade,
	mappingRepo portsrepo.MappingRepositoryFacade,
	directory portssvc.EmployeeDirectory,
	auditSink portssvc.AuditSink,
) portssvc.BatchSvcFacade {
	return &batchService{
		batchRepo:   batchRepo,
		mappingRepo: mappingRepo,
		directory:   directory,
		auditSink:   auditSink,
	}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

// CreateWorkflow opens a Draft workflow. At least one target dimension must
// be supplied; the sets are OR-combined at resolution time.
func (s *batchService) CreateWorkflow(ctx context.Context, req dto.CreateWorkflowRequest, actorID string) (*domain.PayAdjustmentWorkflow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.TargetGradeIDs) == 0 && len(req.TargetDepartmentIDs) == 0 && len(req.TargetPositionIDs) == 0 {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoTargetDimension)
	}

	now := time.Now().UTC()
	workflow := domain.PayAdjustmentWorkflow{
		WorkflowID:          uuid.NewString(),
		Name:                req.Name,
		AdjustmentType:      domain.PayAdjustmentType(req.AdjustmentType),
		AdjustmentValue:     req.AdjustmentValue,
		TargetGradeIDs:      req.TargetGradeIDs,
		TargetDepartmentIDs: req.TargetDepartmentIDs,
		TargetPositionIDs:   req.TargetPositionIDs,
		Status:              domain.WorkflowDraft,
		TotalImpact:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.batchRepo.SaveWorkflow(ctx, workflow); err != nil {
		logger.Error("Failed to save workflow", slog.String("error", err.Error()), slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	logger.Info("Workflow created", slog.String("workflow_id", workflow.WorkflowID), slog.String("name", req.Name))
	return &workflow, nil
}

// GetWorkflowByID retrieves a single workflow.
func (s *batchService) GetWorkflowByID(ctx context.Context, workflowID string) (*domain.PayAdjustmentWorkflow, error) {
	workflow, err := s.batchRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}
	return workflow, nil
}

// ListWorkflows returns a filtered page of workflows.
func (s *batchService) ListWorkflows(ctx context.Context, params dto.ListWorkflowsParams) (*dto.ListWorkflowsResponse, error) {
	filter := portsrepo.WorkflowFilter{}
	if params.Status != nil {
		status := domain.PayAdjustmentWorkflowStatus(*params.Status)
		filter.Status = &status
	}

	workflows, nextToken, err := s.batchRepo.ListWorkflows(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return &dto.ListWorkflowsResponse{
		Workflows: dto.ToWorkflowResponses(workflows),
		NextToken: nextToken,
	}, nil
}

// CalculateImpact resolves the target set, computes per-employee deltas and
// caches the aggregate snapshot on the workflow row.
func (s *batchService) CalculateImpact(ctx context.Context, workflowID string, actorID string) (*dto.ImpactResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	workflow, err := s.batchRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}

	now := time.Now().UTC()
	details, err := s.computeDetails(ctx, workflow, actorID, now)
	if err != nil {
		return nil, err
	}

	totalImpact := decimal.Zero
	for i := range details {
		totalImpact = totalImpact.Add(details[i].Impact)
	}

	if err := s.batchRepo.SaveImpactSnapshot(ctx, workflowID, totalImpact, len(details), now); err != nil {
		logger.Error("Failed to save impact snapshot", slog.String("error", err.Error()), slog.String("workflow_id", workflowID))
		return nil, fmt.Errorf("failed to save impact snapshot for %s: %w", workflowID, err)
	}

	logger.Info("Workflow impact computed",
		slog.String("workflow_id", workflowID),
		slog.Int("affected_count", len(details)),
		slog.String("total_impact", totalImpact.String()))

	return &dto.ImpactResponse{
		WorkflowID:    workflowID,
		TotalImpact:   totalImpact,
		AffectedCount: len(details),
		ComputedAt:    now,
	}, nil
}

// CreateWorkflowDetails materializes per-employee detail rows, replacing any
// prior materialization for the same workflow.
func (s *batchService) CreateWorkflowDetails(ctx context.Context, workflowID string, actorID string) ([]domain.WorkflowDetail, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	workflow, err := s.batchRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}

	details, err := s.computeDetails(ctx, workflow, actorID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.batchRepo.ReplaceWorkflowDetails(ctx, workflowID, details); err != nil {
		logger.Error("Failed to replace workflow details", slog.String("error", err.Error()), slog.String("workflow_id", workflowID))
		return nil, fmt.Errorf("failed to replace details for workflow %s: %w", workflowID, err)
	}

	logger.Info("Workflow details materialized",
		slog.String("workflow_id", workflowID),
		slog.Int("detail_count", len(details)))
	return details, nil
}

// Approve moves a Draft workflow to Approved.
func (s *batchService) Approve(ctx context.Context, workflowID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	workflow, err := s.batchRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}
	if workflow.Status != domain.WorkflowDraft {
		return fmt.Errorf("%w: %v (workflow is %s)", apperrors.ErrInvalidState, ErrWorkflowNotDraft, workflow.Status)
	}

	if err := s.batchRepo.UpdateWorkflowStatus(ctx, workflowID, domain.WorkflowDraft, domain.WorkflowApproved, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to approve workflow", slog.String("error", err.Error()), slog.String("workflow_id", workflowID))
		return fmt.Errorf("failed to approve workflow %s: %w", workflowID, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "workflow.approved",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details:   map[string]any{"workflowID": workflowID},
	})

	logger.Info("Workflow approved", slog.String("workflow_id", workflowID), slog.String("actor_id", actorID))
	return nil
}

// Implement fans out one Pending-Review salary adjustment per detail row,
// atomically with the Implemented flip.
func (s *batchService) Implement(ctx context.Context, workflowID string, implementedBy string) (*dto.ImplementWorkflowResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	workflow, err := s.batchRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}
	if workflow.Status != domain.WorkflowApproved {
		return nil, fmt.Errorf("%w: %v (workflow is %s)", apperrors.ErrInvalidState, ErrWorkflowNotApproved, workflow.Status)
	}

	details, err := s.batchRepo.ListWorkflowDetails(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list details for workflow %s: %w", workflowID, err)
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidState, ErrNoWorkflowDetails)
	}

	now := time.Now().UTC()
	adjustments := make([]domain.SalaryAdjustment, 0, len(details))
	for i := range details {
		d := &details[i]
		adjustments = append(adjustments, domain.SalaryAdjustment{
			AdjustmentID:     uuid.NewString(),
			EmployeeID:       d.EmployeeID,
			OldSalary:        d.OldSalary,
			NewSalary:        d.NewSalary,
			Reason:           workflow.Name,
			Justification:    fmt.Sprintf("batch workflow %s", workflowID),
			IsCorrection:     d.NewSalary.Equal(d.OldSalary),
			Status:           domain.AdjustmentPendingReview,
			EffectiveDate:    now,
			InitiatedBy:      implementedBy,
			SourceWorkflowID: &workflowID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     implementedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: implementedBy,
			},
		})
	}

	if err := s.batchRepo.ImplementWorkflow(ctx, workflowID, implementedBy, adjustments, now); err != nil {
		logger.Error("Failed to implement workflow", slog.String("error", err.Error()), slog.String("workflow_id", workflowID))
		return nil, fmt.Errorf("failed to implement workflow %s: %w", workflowID, err)
	}

	adjustmentIDs := make([]string, len(adjustments))
	for i := range adjustments {
		adjustmentIDs[i] = adjustments[i].AdjustmentID
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "workflow.implemented",
		ActorID:   implementedBy,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"workflowID":        workflowID,
			"affectedEmployees": len(adjustments),
		},
	})

	logger.Info("Workflow implemented",
		slog.String("workflow_id", workflowID),
		slog.Int("affected_employees", len(adjustments)))

	return &dto.ImplementWorkflowResponse{
		WorkflowID:        workflowID,
		AdjustmentIDs:     adjustmentIDs,
		AffectedEmployees: len(adjustments),
	}, nil
}

// computeDetails resolves the OR-combined target population and computes one
// detail row per distinct employee holding a current mapping.
func (s *batchService) computeDetails(ctx context.Context, workflow *domain.PayAdjustmentWorkflow, actorID string, at time.Time) ([]domain.WorkflowDetail, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	seen := make(map[string]bool)
	var targets []domain.EmployeeGradeMapping

	if len(workflow.TargetGradeIDs) > 0 {
		mappings, err := s.mappingRepo.ListCurrentMappingsByGrades(ctx, workflow.TargetGradeIDs, at)
		if err != nil {
			return nil, fmt.Errorf("failed to list mappings for target grades: %w", err)
		}
		for i := range mappings {
			if !seen[mappings[i].EmployeeID] {
				seen[mappings[i].EmployeeID] = true
				targets = append(targets, mappings[i])
			}
		}
	}

	if len(workflow.TargetDepartmentIDs) > 0 || len(workflow.TargetPositionIDs) > 0 {
		profiles, err := s.directory.ListByDepartmentsOrPositions(ctx, workflow.TargetDepartmentIDs, workflow.TargetPositionIDs, at)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve department and position targets: %w", err)
		}
		for i := range profiles {
			employeeID := profiles[i].EmployeeID
			if seen[employeeID] {
				continue
			}
			mapping, err := s.mappingRepo.FindCurrentMapping(ctx, employeeID, at)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					logger.Debug("Target employee has no current mapping, skipped", slog.String("employee_id", employeeID))
					continue
				}
				return nil, fmt.Errorf("failed to find current mapping for %s: %w", employeeID, err)
			}
			seen[employeeID] = true
			targets = append(targets, *mapping)
		}
	}

	details := make([]domain.WorkflowDetail, 0, len(targets))
	for i := range targets {
		t := &targets[i]
		newSalary := s.adjustedSalary(workflow, t.CurrentSalary)
		details = append(details, domain.WorkflowDetail{
			DetailID:   uuid.NewString(),
			WorkflowID: workflow.WorkflowID,
			EmployeeID: t.EmployeeID,
			OldSalary:  t.CurrentSalary,
			NewSalary:  newSalary,
			Impact:     newSalary.Sub(t.CurrentSalary),
			AuditFields: domain.AuditFields{
				CreatedAt:     at,
				CreatedBy:     actorID,
				LastUpdatedAt: at,
				LastUpdatedBy: actorID,
			},
		})
	}
	return details, nil
}

// adjustedSalary applies the workflow's value to a current salary. Fixed
// amount adds; every other type treats the value as a percentage uplift.
func (s *batchService) adjustedSalary(workflow *domain.PayAdjustmentWorkflow, current decimal.Decimal) decimal.Decimal {
	if workflow.AdjustmentType == domain.AdjustFixedAmount {
		return payrollcalc.Round2(current.Add(workflow.AdjustmentValue))
	}
	factor := decimal.NewFromInt(1).Add(workflow.AdjustmentValue.Div(oneHundred))
	return payrollcalc.Round2(current.Mul(factor))
}
