package repositories

import (
	"context"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// ConfigRepositoryFacade reads branch statutory configuration and tax tables.
// There are no mutation operations in scope.
type ConfigRepositoryFacade interface {
	// FindBranchConfig returns ErrNotFound when no branch-specific row
	// exists; callers fall back to the documented defaults.
	FindBranchConfig(ctx context.Context, branchID string) (*domain.BranchConfig, error)

	// FindTaxTable returns the bracket table for a version, ErrNotFound
	// when the version is unknown to the store.
	FindTaxTable(ctx context.Context, version string) (*domain.TaxTable, error)
}

// AuditRepositoryFacade persists the append-only action trail.
type AuditRepositoryFacade interface {
	SaveEntry(ctx context.Context, entry domain.AuditEntry) error
	ListEntries(ctx context.Context, filter AuditFilter, limit int, nextToken *string) ([]domain.AuditEntry, *string, error)
}
