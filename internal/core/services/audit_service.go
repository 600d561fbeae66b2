package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// auditService writes and reads the append-only action trail. Record is
// fire-and-forget: a failed write is logged, never propagated.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// Record persists an audit entry. Failure to audit must not fail the
// operation being audited, so errors stop here.
func (s *auditService) Record(ctx context.Context, entry domain.AuditEntry) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.auditRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to write audit entry",
			slog.String("action", entry.Action),
			slog.String("actor_id", entry.ActorID),
			slog.String("error", err.Error()))
	}
}

// ListEntries returns a page of the audit trail for reconciliation.
func (s *auditService) ListEntries(ctx context.Context, params dto.ListAuditParams) (*dto.ListAuditResponse, error) {
	filter := portsrepo.AuditFilter{
		RunID:     params.RunID,
		PayslipID: params.PayslipID,
		ActorID:   params.ActorID,
	}
	entries, nextToken, err := s.auditRepo.ListEntries(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return &dto.ListAuditResponse{
		Entries:   dto.ToAuditEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}
