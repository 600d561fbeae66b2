package pgsql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
)

type PgxConfigRepository struct {
	BaseRepository
}

// newPgxConfigRepository creates a new repository for branch configuration and
// tax tables.
func newPgxConfigRepository(pool *pgxpool.Pool) portsrepo.ConfigRepositoryFacade {
	return &PgxConfigRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ConfigRepositoryFacade = (*PgxConfigRepository)(nil)

func (r *PgxConfigRepository) FindBranchConfig(ctx context.Context, branchID string) (*domain.BranchConfig, error) {
	query := `
		SELECT branch_id, overtime_multiplier, social_insurance_rate,
		       health_insurance_rate, housing_fund_rate, tax_table_version
		FROM branch_configs
		WHERE branch_id = $1;
	`
	var cfg domain.BranchConfig
	err := r.Pool.QueryRow(ctx, query, branchID).Scan(
		&cfg.BranchID,
		&cfg.OvertimeMultiplier,
		&cfg.SocialInsuranceRate,
		&cfg.HealthInsuranceRate,
		&cfg.HousingFundRate,
		&cfg.TaxTableVersion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no config for branch " + branchID)
		}
		return nil, apperrors.NewAppError(500, "failed to query config for branch "+branchID, err)
	}
	return &cfg, nil
}

func (r *PgxConfigRepository) FindTaxTable(ctx context.Context, version string) (*domain.TaxTable, error) {
	query := `SELECT version, brackets FROM tax_tables WHERE version = $1;`
	var table domain.TaxTable
	var bracketsJSON []byte
	err := r.Pool.QueryRow(ctx, query, version).Scan(&table.Version, &bracketsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("tax table version " + version + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query tax table "+version, err)
	}
	if err := json.Unmarshal(bracketsJSON, &table.Brackets); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode brackets of tax table "+version, err)
	}
	return &table, nil
}
