package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

var (
	ErrStepNotInGrade    = errors.New("step does not belong to the given grade")
	ErrGradeNotActive    = errors.New("mappings can only target an active grade")
	ErrMappingNotPending = errors.New("only a pending-review mapping can be approved")
)

// mappingService manages employee grade assignments. A new mapping enters
// Pending Review with its band snapshot taken from the step; approval ends
// the employee's prior mapping and re-validates band position.
type mappingService struct {
	mappingRepo portsrepo.MappingRepositoryFacade
	gradeRepo   portsrepo.GradeRepositoryFacade
	auditSink   portssvc.AuditSink
}

// NewMappingService creates a new MappingService.
func NewMappingService(mappingRepo portsrepo.MappingRepositoryFacade, gradeRepo portsrepo.GradeRepositoryFacade, auditSink portssvc.AuditSink) portssvc.MappingSvcFacade {
	return &mappingService{mappingRepo: mappingRepo, gradeRepo: gradeRepo, auditSink: auditSink}
}

var _ portssvc.MappingSvcFacade = (*mappingService)(nil)

// CreateMapping snapshots the step's band onto a Pending-Review mapping.
func (s *mappingService) CreateMapping(ctx context.Context, req dto.CreateMappingRequest, actorID string) (*domain.EmployeeGradeMapping, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	grade, err := s.gradeRepo.FindGradeByID(ctx, req.GradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find grade %s: %w", req.GradeID, err)
	}
	if grade.Status != domain.GradeActive {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidState, ErrGradeNotActive)
	}

	var step *domain.SalaryStep
	for i := range grade.Steps {
		if grade.Steps[i].StepID == req.StepID {
			step = &grade.Steps[i]
			break
		}
	}
	if step == nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrStepNotInGrade)
	}

	now := time.Now().UTC()
	mapping := domain.EmployeeGradeMapping{
		MappingID:     uuid.NewString(),
		EmployeeID:    req.EmployeeID,
		GradeID:       req.GradeID,
		StepID:        req.StepID,
		CurrentSalary: req.CurrentSalary,
		BandMin:       step.MinRate,
		BandMax:       step.MaxRate,
		Status:        domain.PendingReview,
		EffectiveDate: req.EffectiveDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.mappingRepo.SaveMapping(ctx, mapping); err != nil {
		logger.Error("Failed to save mapping", slog.String("error", err.Error()), slog.String("employee_id", req.EmployeeID))
		return nil, fmt.Errorf("failed to save mapping: %w", err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "mapping.created",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"mappingID":  mapping.MappingID,
			"employeeID": req.EmployeeID,
			"gradeID":    req.GradeID,
			"stepID":     req.StepID,
		},
	})

	logger.Info("Mapping created",
		slog.String("mapping_id", mapping.MappingID),
		slog.String("employee_id", req.EmployeeID),
		slog.String("grade_id", req.GradeID))
	return &mapping, nil
}

// GetMappingByID retrieves a single mapping.
func (s *mappingService) GetMappingByID(ctx context.Context, mappingID string) (*domain.EmployeeGradeMapping, error) {
	mapping, err := s.mappingRepo.FindMappingByID(ctx, mappingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find mapping %s: %w", mappingID, err)
	}
	return mapping, nil
}

// ListMappings returns a filtered page of mappings.
func (s *mappingService) ListMappings(ctx context.Context, params dto.ListMappingsParams) (*dto.ListMappingsResponse, error) {
	filter := portsrepo.MappingFilter{
		EmployeeID:  params.EmployeeID,
		GradeID:     params.GradeID,
		CurrentOnly: params.CurrentOnly,
	}

	mappings, nextToken, err := s.mappingRepo.ListMappings(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return &dto.ListMappingsResponse{
		Mappings:  dto.ToMappingResponses(mappings),
		NextToken: nextToken,
	}, nil
}

// Approve re-validates band position from the stored snapshot and runs the
// end-then-activate cascade in one transaction.
func (s *mappingService) Approve(ctx context.Context, mappingID string, approvedBy string) (*domain.EmployeeGradeMapping, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	mapping, err := s.mappingRepo.FindMappingByID(ctx, mappingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find mapping %s: %w", mappingID, err)
	}
	if mapping.Status != domain.PendingReview {
		return nil, fmt.Errorf("%w: %v (mapping is %s)", apperrors.ErrInvalidState, ErrMappingNotPending, mapping.Status)
	}

	mapping.Status = domain.CalculateSalaryStatus(mapping.CurrentSalary, mapping.BandMin, mapping.BandMax)
	mapping.ApprovedBy = &approvedBy

	if err := s.mappingRepo.ApproveMapping(ctx, *mapping, approvedBy, time.Now().UTC()); err != nil {
		logger.Error("Failed to approve mapping", slog.String("error", err.Error()), slog.String("mapping_id", mappingID))
		return nil, fmt.Errorf("failed to approve mapping %s: %w", mappingID, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "mapping.approved",
		ActorID:   approvedBy,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"mappingID":  mappingID,
			"employeeID": mapping.EmployeeID,
			"bandStatus": string(mapping.Status),
		},
	})

	logger.Info("Mapping approved",
		slog.String("mapping_id", mappingID),
		slog.String("band_status", string(mapping.Status)),
		slog.String("approved_by", approvedBy))
	return mapping, nil
}
