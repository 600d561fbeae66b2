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
	ErrStepBandOrder   = errors.New("step rates must satisfy min <= base <= max")
	ErrDuplicateStepNo = errors.New("step numbers must be unique within a grade")
	ErrGradeBandOrder  = errors.New("grade rates must satisfy min <= mid <= max")
	ErrGradeNotDraft   = errors.New("only a draft grade can be approved")
)

// gradeService manages the grade and band registry.
type gradeService struct {
	gradeRepo portsrepo.GradeRepositoryFacade
	auditSink portssvc.AuditSink
}

// NewGradeService creates a new GradeService.
func NewGradeService(gradeRepo portsrepo.GradeRepositoryFacade, auditSink portssvc.AuditSink) portssvc.GradeSvcFacade {
	return &gradeService{gradeRepo: gradeRepo, auditSink: auditSink}
}

var _ portssvc.GradeSvcFacade = (*gradeService)(nil)

// CreateGrade validates band ordering and inserts a Draft grade with steps.
func (s *gradeService) CreateGrade(ctx context.Context, req dto.CreateGradeRequest, actorID string) (*domain.SalaryGrade, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.MinRate.GreaterThan(req.MidRate) || req.MidRate.GreaterThan(req.MaxRate) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrGradeBandOrder)
	}

	now := time.Now().UTC()
	gradeID := uuid.NewString()

	seenSteps := make(map[int]bool, len(req.Steps))
	steps := make([]domain.SalaryStep, len(req.Steps))
	for i, stepReq := range req.Steps {
		if seenSteps[stepReq.StepNumber] {
			return nil, fmt.Errorf("%w: %v (step %d)", apperrors.ErrValidation, ErrDuplicateStepNo, stepReq.StepNumber)
		}
		seenSteps[stepReq.StepNumber] = true

		step := domain.SalaryStep{
			StepID:     uuid.NewString(),
			GradeID:    gradeID,
			StepNumber: stepReq.StepNumber,
			MinRate:    stepReq.MinRate,
			BaseRate:   stepReq.BaseRate,
			MaxRate:    stepReq.MaxRate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if !step.Validate() {
			return nil, fmt.Errorf("%w: %v (step %d)", apperrors.ErrValidation, ErrStepBandOrder, stepReq.StepNumber)
		}
		steps[i] = step
	}

	grade := domain.SalaryGrade{
		GradeID:       gradeID,
		Code:          req.Code,
		Name:          req.Name,
		DepartmentID:  req.DepartmentID,
		BranchID:      req.BranchID,
		MinRate:       req.MinRate,
		MidRate:       req.MidRate,
		MaxRate:       req.MaxRate,
		EffectiveDate: req.EffectiveDate,
		Status:        domain.GradeDraft,
		Steps:         steps,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.gradeRepo.SaveGrade(ctx, grade); err != nil {
		logger.Error("Failed to save grade", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "grade.created",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"gradeID": gradeID,
			"code":    req.Code,
			"steps":   len(steps),
		},
	})

	logger.Info("Grade created", slog.String("grade_id", gradeID), slog.String("code", req.Code))
	return &grade, nil
}

// GetGradeByID retrieves a grade with its steps.
func (s *gradeService) GetGradeByID(ctx context.Context, gradeID string) (*domain.SalaryGrade, error) {
	grade, err := s.gradeRepo.FindGradeByID(ctx, gradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find grade %s: %w", gradeID, err)
	}
	return grade, nil
}

// ListGrades returns a filtered page of grades.
func (s *gradeService) ListGrades(ctx context.Context, params dto.ListGradesParams) (*dto.ListGradesResponse, error) {
	filter := portsrepo.GradeFilter{
		BranchID:     params.BranchID,
		DepartmentID: params.DepartmentID,
		Code:         params.Code,
	}
	if params.Status != nil {
		status := domain.SalaryGradeStatus(*params.Status)
		filter.Status = &status
	}

	grades, nextToken, err := s.gradeRepo.ListGrades(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return &dto.ListGradesResponse{
		Grades:    dto.ToGradeResponses(grades),
		NextToken: nextToken,
	}, nil
}

// ApproveGrade activates a Draft grade, superseding any other Active version
// of the same code and scope.
func (s *gradeService) ApproveGrade(ctx context.Context, gradeID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	grade, err := s.gradeRepo.FindGradeByID(ctx, gradeID)
	if err != nil {
		return fmt.Errorf("failed to find grade %s: %w", gradeID, err)
	}
	if grade.Status != domain.GradeDraft {
		return fmt.Errorf("%w: %v (grade is %s)", apperrors.ErrInvalidState, ErrGradeNotDraft, grade.Status)
	}

	if err := s.gradeRepo.ActivateGrade(ctx, gradeID, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to activate grade", slog.String("error", err.Error()), slog.String("grade_id", gradeID))
		return fmt.Errorf("failed to activate grade %s: %w", gradeID, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "grade.activated",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"gradeID": gradeID,
			"code":    grade.Code,
		},
	})

	logger.Info("Grade activated", slog.String("grade_id", gradeID), slog.String("actor_id", actorID))
	return nil
}
