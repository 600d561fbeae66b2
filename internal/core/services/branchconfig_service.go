package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// branchConfigService resolves per-branch statutory rates and tax tables,
// falling back to the documented defaults when a branch has no config row.
type branchConfigService struct {
	configRepo portsrepo.ConfigRepositoryFacade
}

// NewBranchConfigService creates a new BranchConfigService.
func NewBranchConfigService(configRepo portsrepo.ConfigRepositoryFacade) portssvc.BranchConfigSvcFacade {
	return &branchConfigService{configRepo: configRepo}
}

var _ portssvc.BranchConfigSvcFacade = (*branchConfigService)(nil)

// GetBranchConfig returns the branch's statutory configuration. A missing row
// is a degrade-gracefully case: the defaults apply and a debug line records
// the fallback.
func (s *branchConfigService) GetBranchConfig(ctx context.Context, branchID string) (domain.BranchConfig, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cfg, err := s.configRepo.FindBranchConfig(ctx, branchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Debug("No branch config row, applying defaults", slog.String("branch_id", branchID))
			return domain.DefaultBranchConfig(branchID), nil
		}
		return domain.BranchConfig{}, fmt.Errorf("failed to load branch config for %s: %w", branchID, err)
	}
	return *cfg, nil
}

// GetTaxTable resolves a versioned withholding table. The compiled-in default
// table backs the default version so the engine works against an unseeded
// store.
func (s *branchConfigService) GetTaxTable(ctx context.Context, version string) (domain.TaxTable, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	table, err := s.configRepo.FindTaxTable(ctx, version)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) && version == domain.DefaultTaxTableVersion {
			logger.Debug("Tax table version not in store, using compiled-in default", slog.String("version", version))
			return domain.DefaultTaxTable(), nil
		}
		return domain.TaxTable{}, fmt.Errorf("failed to load tax table %s: %w", version, err)
	}
	return *table, nil
}
