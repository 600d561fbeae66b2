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
	ErrRevisionStrategy     = errors.New("supply either all three after-band values or a percentage, not both")
	ErrRevisionPartialBands = errors.New("after-band values must be supplied together: min, mid and max")
	ErrRevisionBandOrder    = errors.New("after-band values must satisfy min <= mid <= max")
	ErrRevisionNotApproved  = errors.New("only an approved revision can be implemented")
)

var oneHundred = decimal.NewFromInt(100)

// revisionService manages grade revision proposals and their implementation
// cascade: applying new bands to the grade and spawning one pending salary
// adjustment per currently mapped employee, all in one transaction.
type revisionService struct {
	revisionRepo portsrepo.RevisionRepositoryFacade
	gradeRepo    portsrepo.GradeRepositoryFacade
	mappingRepo  portsrepo.MappingRepositoryFacade
	auditSink    portssvc.AuditSink
}

// NewRevisionService creates a new RevisionService.
func NewRevisionService(
	revisionRepo portsrepo.RevisionRepositoryFacade,
	gradeRepo portsrepo.GradeRepositoryFacade,
	mappingRepo portsrepo.MappingRepositoryFacade,
	auditSink portssvc.AuditSink,
) portssvc.RevisionSvcFacade {
	return &revisionService{
		revisionRepo: revisionRepo,
		gradeRepo:    gradeRepo,
		mappingRepo:  mappingRepo,
		auditSink:    auditSink,
	}
}

var _ portssvc.RevisionSvcFacade = (*revisionService)(nil)

// CreateRevision snapshots the grade's current bands and opens a Draft
// revision. Exactly one strategy must be supplied: explicit bands or a
// percentage uplift.
func (s *revisionService) CreateRevision(ctx context.Context, req dto.CreateRevisionRequest, actorID string) (*domain.GradeRevision, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hasAnyBand := req.AfterMin != nil || req.AfterMid != nil || req.AfterMax != nil
	hasBands := req.AfterMin != nil && req.AfterMid != nil && req.AfterMax != nil
	hasPct := req.Percentage != nil
	if hasAnyBand && !hasBands {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrRevisionPartialBands)
	}
	if hasBands == hasPct {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrRevisionStrategy)
	}
	if hasBands && (req.AfterMin.GreaterThan(*req.AfterMid) || req.AfterMid.GreaterThan(*req.AfterMax)) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrRevisionBandOrder)
	}

	grade, err := s.gradeRepo.FindGradeByID(ctx, req.GradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find grade %s: %w", req.GradeID, err)
	}

	now := time.Now().UTC()
	revision := domain.GradeRevision{
		RevisionID:    uuid.NewString(),
		GradeID:       req.GradeID,
		BeforeMin:     grade.MinRate,
		BeforeMid:     grade.MidRate,
		BeforeMax:     grade.MaxRate,
		AfterMin:      req.AfterMin,
		AfterMid:      req.AfterMid,
		AfterMax:      req.AfterMax,
		Percentage:    req.Percentage,
		Reason:        req.Reason,
		Status:        domain.RevisionDraft,
		EffectiveDate: req.EffectiveDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.revisionRepo.SaveRevision(ctx, revision); err != nil {
		logger.Error("Failed to save revision", slog.String("error", err.Error()), slog.String("grade_id", req.GradeID))
		return nil, fmt.Errorf("failed to save revision: %w", err)
	}

	logger.Info("Revision created", slog.String("revision_id", revision.RevisionID), slog.String("grade_id", req.GradeID))
	return &revision, nil
}

// GetRevisionByID retrieves a single revision.
func (s *revisionService) GetRevisionByID(ctx context.Context, revisionID string) (*domain.GradeRevision, error) {
	revision, err := s.revisionRepo.FindRevisionByID(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find revision %s: %w", revisionID, err)
	}
	return revision, nil
}

// ListRevisions returns a filtered page of revisions.
func (s *revisionService) ListRevisions(ctx context.Context, params dto.ListRevisionsParams) (*dto.ListRevisionsResponse, error) {
	filter := portsrepo.RevisionFilter{GradeID: params.GradeID}
	if params.Status != nil {
		status := domain.GradeRevisionStatus(*params.Status)
		filter.Status = &status
	}

	revisions, nextToken, err := s.revisionRepo.ListRevisions(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	return &dto.ListRevisionsResponse{
		Revisions: dto.ToRevisionResponses(revisions),
		NextToken: nextToken,
	}, nil
}

// SubmitForReview moves a Draft revision to Pending Review.
func (s *revisionService) SubmitForReview(ctx context.Context, revisionID string, actorID string) error {
	return s.transition(ctx, revisionID, domain.RevisionPendingReview, actorID)
}

// Approve moves a Pending-Review revision to Approved.
func (s *revisionService) Approve(ctx context.Context, revisionID string, actorID string) error {
	return s.transition(ctx, revisionID, domain.RevisionApproved, actorID)
}

// Reject terminates a non-terminal revision.
func (s *revisionService) Reject(ctx context.Context, revisionID string, actorID string) error {
	return s.transition(ctx, revisionID, domain.RevisionRejected, actorID)
}

func (s *revisionService) transition(ctx context.Context, revisionID string, next domain.GradeRevisionStatus, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	revision, err := s.revisionRepo.FindRevisionByID(ctx, revisionID)
	if err != nil {
		return fmt.Errorf("failed to find revision %s: %w", revisionID, err)
	}
	if !revision.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %v (%s -> %s)", apperrors.ErrInvalidState, ErrBadTransition, revision.Status, next)
	}

	if err := s.revisionRepo.UpdateRevisionStatus(ctx, revisionID, revision.Status, next, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to update revision status",
			slog.String("error", err.Error()),
			slog.String("revision_id", revisionID),
			slog.String("next", string(next)))
		return fmt.Errorf("failed to update revision %s to %s: %w", revisionID, next, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "revision.status_changed",
		ActorID:   actorID,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"revisionID": revisionID,
			"from":       string(revision.Status),
			"to":         string(next),
		},
	})

	logger.Info("Revision status changed",
		slog.String("revision_id", revisionID),
		slog.String("from", string(revision.Status)),
		slog.String("to", string(next)))
	return nil
}

// Implement applies an Approved revision atomically: the grade takes the new
// bands (or every step base rate takes the uplift) and every currently mapped
// employee gets one Pending-Review salary adjustment. Either everything
// commits or nothing does.
func (s *revisionService) Implement(ctx context.Context, revisionID string, implementedBy string) (*dto.ImplementRevisionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	revision, err := s.revisionRepo.FindRevisionByID(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find revision %s: %w", revisionID, err)
	}
	if revision.Status != domain.RevisionApproved {
		return nil, fmt.Errorf("%w: %v (revision is %s)", apperrors.ErrInvalidState, ErrRevisionNotApproved, revision.Status)
	}

	now := time.Now().UTC()
	mappings, err := s.mappingRepo.ListCurrentMappingsByGrade(ctx, revision.GradeID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings for grade %s: %w", revision.GradeID, err)
	}

	update := portsrepo.GradeBandUpdate{GradeID: revision.GradeID}
	if revision.HasBandValues() {
		update.Bands = &portsrepo.BandValues{
			Min: *revision.AfterMin,
			Mid: *revision.AfterMid,
			Max: *revision.AfterMax,
		}
	} else {
		update.Percentage = revision.Percentage
	}

	adjustments := make([]domain.SalaryAdjustment, 0, len(mappings))
	for i := range mappings {
		m := &mappings[i]
		newSalary := s.revisedSalary(revision, m.CurrentSalary)
		adjustments = append(adjustments, domain.SalaryAdjustment{
			AdjustmentID:     uuid.NewString(),
			EmployeeID:       m.EmployeeID,
			GradeID:          &m.GradeID,
			StepID:           &m.StepID,
			OldSalary:        m.CurrentSalary,
			NewSalary:        newSalary,
			Reason:           revision.Reason,
			Justification:    fmt.Sprintf("grade revision %s", revisionID),
			IsCorrection:     newSalary.Equal(m.CurrentSalary),
			Status:           domain.AdjustmentPendingReview,
			EffectiveDate:    revision.EffectiveDate,
			InitiatedBy:      implementedBy,
			SourceRevisionID: &revisionID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     implementedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: implementedBy,
			},
		})
	}

	if err := s.revisionRepo.ImplementRevision(ctx, revisionID, implementedBy, update, adjustments, now); err != nil {
		logger.Error("Failed to implement revision",
			slog.String("error", err.Error()),
			slog.String("revision_id", revisionID))
		return nil, fmt.Errorf("failed to implement revision %s: %w", revisionID, err)
	}

	adjustmentIDs := make([]string, len(adjustments))
	for i := range adjustments {
		adjustmentIDs[i] = adjustments[i].AdjustmentID
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		Action:    "revision.implemented",
		ActorID:   implementedBy,
		ActorRole: middleware.GetActorRoleFromCtx(ctx),
		Details: map[string]any{
			"revisionID":        revisionID,
			"gradeID":           revision.GradeID,
			"affectedEmployees": len(adjustments),
		},
	})

	logger.Info("Revision implemented",
		slog.String("revision_id", revisionID),
		slog.Int("affected_employees", len(adjustments)))

	return &dto.ImplementRevisionResponse{
		RevisionID:        revisionID,
		AdjustmentIDs:     adjustmentIDs,
		AffectedEmployees: len(adjustments),
	}, nil
}

// revisedSalary derives an employee's post-revision salary. A percentage
// revision uplifts the current salary. A band revision leaves the salary
// unchanged: the new boundaries move around the employee, and anyone left
// outside them needs a deliberate follow-up adjustment rather than an
// automatic one.
func (s *revisionService) revisedSalary(revision *domain.GradeRevision, current decimal.Decimal) decimal.Decimal {
	if revision.HasPercentage() {
		factor := decimal.NewFromInt(1).Add(revision.Percentage.Div(oneHundred))
		return payrollcalc.Round2(current.Mul(factor))
	}
	return current
}
