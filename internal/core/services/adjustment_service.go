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
	ErrSalaryUnchanged   = errors.New("new salary equals current salary and the adjustment is not flagged as a correction")
	ErrNoCurrentMapping  = errors.New("employee has no current grade mapping")
	ErrBadTransition     = errors.New("status transition not allowed")
	ErrNonPositiveSalary = errors.New("new salary must be positive")
)

// actorFieldFor maps a target status to the actor column that transition owns.
func actorFieldFor(next domain.SalaryAdjustmentStatus) portsrepo.ActorField {
	switch next {
	case domain.AdjustmentApproved:
		return portsrepo.ActorApprover
	case domain.AdjustmentImplemented:
		return portsrepo.ActorImplementer
	default:
		return portsrepo.ActorReviewer
	}
}

// adjustmentService manages single-employee salary adjustments through their
// linear review lifecycle. Implementation rewrites the employee's grade
// mapping in the same transaction as the status flip.
type adjustmentService struct {
	adjustmentRepo portsrepo.AdjustmentRepositoryFacade
	mappingRepo    portsrepo.MappingRepositoryFacade
	auditSink      portssvc.AuditSink
}

// NewAdjustmentService creates a new AdjustmentService.
func NewAdjustmentService(
	adjustmentRepo portsrepo.AdjustmentRepositoryFacade,
	mappingRepo portsrepo.MappingRepositoryFacade,
	auditSink portssvc.AuditSink,
) portssvc.AdjustmentSvcFacade {
	return &adjustmentService{
		adjustmentRepo: adjustmentRepo,
		mappingRepo:    mappingRepo,
		auditSink:      auditSink,
	}
}

var _ portssvc.AdjustmentSvcFacade = (*adjustmentService)(nil)

// CreateAdjustment snapshots the employee's current salary and opens a Draft
// adjustment. An unchanged salary is rejected unless flagged as a correction.
func (s *adjustmentService) CreateAdjustment(ctx context.Context, req dto.CreateAdjustmentRequest, actorID string) (*domain.SalaryAdjustment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.NewSalary.IsPositive() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNonPositiveSalary)
	}

	now := time.Now().UTC()
	mapping, err := s.mappingRepo.FindCurrentMapping(ctx, req.EmployeeID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoCurrentMapping)
		}
		return nil, fmt.Errorf("failed to find current mapping for %s: %w", req.EmployeeID, err)
	}

	if req.NewSalary.Equal(mapping.CurrentSalary) && !req.IsCorrection {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrSalaryUnchanged)
	}

	adjustment := domain.SalaryAdjustment{
		AdjustmentID:  uuid.NewString(),
		EmployeeID:    req.EmployeeID,
		GradeID:       &mapping.GradeID,
		StepID:        &mapping.StepID,
		OldSalary:     mapping.CurrentSalary,
		NewSalary:     req.NewSalary,
		Reason:        req.Reason,
		Justification: req.Justification,
		IsCorrection:  req.IsCorrection,
		Status:        domain.AdjustmentDraft,
		EffectiveDate: req.EffectiveDate,
		InitiatedBy:   actorID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.adjustmentRepo.SaveAdjustment(ctx, adjustment); err != nil {
		logger.Error("Failed to save adjustment", slog.String("error", err.Error()), slog.String("employee_id", req.EmployeeID))
		return nil, fmt.Errorf("failed to save adjustment: %w", err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "adjustment.created",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"adjustmentID": adjustment.AdjustmentID,
			"employeeID":   req.EmployeeID,
			"oldSalary":    adjustment.OldSalary.String(),
			"newSalary":    adjustment.NewSalary.String(),
		},
	})

	logger.Info("Adjustment created",
		slog.String("adjustment_id", adjustment.AdjustmentID),
		slog.String("employee_id", req.EmployeeID))
	return &adjustment, nil
}

// GetAdjustmentByID retrieves a single adjustment.
func (s *adjustmentService) GetAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.SalaryAdjustment, error) {
	adjustment, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}
	return adjustment, nil
}

// ListAdjustments returns a filtered page of adjustments.
func (s *adjustmentService) ListAdjustments(ctx context.Context, params dto.ListAdjustmentsParams) (*dto.ListAdjustmentsResponse, error) {
	filter := portsrepo.AdjustmentFilter{
		EmployeeID: params.EmployeeID,
		From:       params.From,
		To:         params.To,
	}
	if params.Status != nil {
		status := domain.SalaryAdjustmentStatus(*params.Status)
		filter.Status = &status
	}

	adjustments, nextToken, err := s.adjustmentRepo.ListAdjustments(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	return &dto.ListAdjustmentsResponse{
		Adjustments: dto.ToAdjustmentResponses(adjustments),
		NextToken:   nextToken,
	}, nil
}

// SetStatus advances the state machine one step, recording the actor in the
// field the target status owns. Moving to Implemented additionally rewrites
// the employee's grade mapping atomically with the flip.
func (s *adjustmentService) SetStatus(ctx context.Context, adjustmentID string, next domain.SalaryAdjustmentStatus, actorID string) (*domain.SalaryAdjustment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	adjustment, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}

	if !adjustment.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %v (%s -> %s)", apperrors.ErrInvalidState, ErrBadTransition, adjustment.Status, next)
	}

	now := time.Now().UTC()
	if next == domain.AdjustmentImplemented {
		if err := s.implement(ctx, adjustment, actorID, now); err != nil {
			return nil, err
		}
	} else {
		field := actorFieldFor(next)
		if err := s.adjustmentRepo.UpdateAdjustmentStatus(ctx, adjustmentID, adjustment.Status, next, field, actorID, now); err != nil {
			logger.Error("Failed to update adjustment status",
				slog.String("error", err.Error()),
				slog.String("adjustment_id", adjustmentID),
				slog.String("next", string(next)))
			return nil, fmt.Errorf("failed to update adjustment %s to %s: %w", adjustmentID, next, err)
		}
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "adjustment.status_changed",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"adjustmentID": adjustmentID,
			"from":         string(adjustment.Status),
			"to":           string(next),
		},
	})

	logger.Info("Adjustment status changed",
		slog.String("adjustment_id", adjustmentID),
		slog.String("from", string(adjustment.Status)),
		slog.String("to", string(next)))

	updated, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload adjustment %s: %w", adjustmentID, err)
	}
	return updated, nil
}

// implement materializes the new salary as a fresh grade mapping, ending the
// prior one, in a single transaction with the status flip.
func (s *adjustmentService) implement(ctx context.Context, adjustment *domain.SalaryAdjustment, implementedBy string, at time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	current, err := s.mappingRepo.FindCurrentMapping(ctx, adjustment.EmployeeID, at)
	if err != nil {
		return fmt.Errorf("failed to find current mapping for %s: %w", adjustment.EmployeeID, err)
	}

	gradeID := current.GradeID
	stepID := current.StepID
	if adjustment.GradeID != nil {
		gradeID = *adjustment.GradeID
	}
	if adjustment.StepID != nil {
		stepID = *adjustment.StepID
	}

	newMapping := domain.EmployeeGradeMapping{
		MappingID:     uuid.NewString(),
		EmployeeID:    adjustment.EmployeeID,
		GradeID:       gradeID,
		StepID:        stepID,
		CurrentSalary: adjustment.NewSalary,
		BandMin:       current.BandMin,
		BandMax:       current.BandMax,
		Status:        domain.CalculateSalaryStatus(adjustment.NewSalary, current.BandMin, current.BandMax),
		EffectiveDate: adjustment.EffectiveDate,
		ApprovedBy:    &implementedBy,
		AuditFields: domain.AuditFields{
			CreatedAt:     at,
			CreatedBy:     implementedBy,
			LastUpdatedAt: at,
			LastUpdatedBy: implementedBy,
		},
	}

	if err := s.adjustmentRepo.ImplementAdjustment(ctx, *adjustment, newMapping, implementedBy, at); err != nil {
		logger.Error("Failed to implement adjustment",
			slog.String("error", err.Error()),
			slog.String("adjustment_id", adjustment.AdjustmentID))
		return fmt.Errorf("failed to implement adjustment %s: %w", adjustment.AdjustmentID, err)
	}
	return nil
}
