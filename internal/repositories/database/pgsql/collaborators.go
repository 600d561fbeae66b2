package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
)

// Read-only adapters over the HR tables other systems maintain. The payroll
// core only ever reads through these.

// NewCollaborators wires the pgx-backed collaborator adapters.
func NewCollaborators(pool *pgxpool.Pool) portssvc.Collaborators {
	return portssvc.Collaborators{
		Directory:  &pgxEmployeeDirectory{pool: pool},
		Timesheets: &pgxTimesheetAggregator{pool: pool},
		Bonuses:    &pgxBonusSource{pool: pool},
		Allowances: &pgxAllowanceSource{pool: pool},
		Deductions: &pgxDeductionSource{pool: pool},
	}
}

type pgxEmployeeDirectory struct {
	pool *pgxpool.Pool
}

var _ portssvc.EmployeeDirectory = (*pgxEmployeeDirectory)(nil)

const payProfileColumns = `
	e.employee_id, e.branch_id, e.department_id, e.position_id,
	COALESCE(s.pay_frequency, 'MONTHLY'), COALESCE(s.base_salary, 0), s.salary_id IS NOT NULL
`

const payProfileJoin = `
	FROM employees e
	LEFT JOIN employee_salaries s
	  ON s.employee_id = e.employee_id
	 AND s.effective_date <= $2
	 AND (s.end_date IS NULL OR s.end_date > $2)
`

// ListActiveByBranch returns active employees assigned to the branch, plus
// employees with no branch assignment at all.
func (d *pgxEmployeeDirectory) ListActiveByBranch(ctx context.Context, branchID string, asOf time.Time) ([]domain.EmployeePayProfile, error) {
	query := `
		SELECT ` + payProfileColumns + payProfileJoin + `
		WHERE e.status = 'ACTIVE' AND (e.branch_id = $1 OR e.branch_id IS NULL)
		ORDER BY e.employee_id;
	`
	rows, err := d.pool.Query(ctx, query, branchID, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query employees for branch "+branchID, err)
	}
	defer rows.Close()
	return scanPayProfiles(rows)
}

func (d *pgxEmployeeDirectory) FindPayProfile(ctx context.Context, employeeID string, asOf time.Time) (*domain.EmployeePayProfile, error) {
	query := `
		SELECT ` + payProfileColumns + payProfileJoin + `
		WHERE e.employee_id = $1;
	`
	var p domain.EmployeePayProfile
	err := d.pool.QueryRow(ctx, query, employeeID, asOf).Scan(
		&p.EmployeeID, &p.BranchID, &p.DepartmentID, &p.PositionID,
		&p.PayFrequency, &p.BaseSalary, &p.HasSalary,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("employee " + employeeID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query pay profile of employee "+employeeID, err)
	}
	return &p, nil
}

// ListByDepartmentsOrPositions returns active employees matching any of the
// given departments or positions.
func (d *pgxEmployeeDirectory) ListByDepartmentsOrPositions(ctx context.Context, departmentIDs, positionIDs []string, asOf time.Time) ([]domain.EmployeePayProfile, error) {
	if len(departmentIDs) == 0 && len(positionIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + payProfileColumns + `
		FROM employees e
		LEFT JOIN employee_salaries s
		  ON s.employee_id = e.employee_id
		 AND s.effective_date <= $1
		 AND (s.end_date IS NULL OR s.end_date > $1)
		WHERE e.status = 'ACTIVE'
		  AND (e.department_id = ANY($2) OR e.position_id = ANY($3))
		ORDER BY e.employee_id;
	`
	rows, err := d.pool.Query(ctx, query, asOf, departmentIDs, positionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query employees by department or position", err)
	}
	defer rows.Close()
	return scanPayProfiles(rows)
}

func scanPayProfiles(rows pgx.Rows) ([]domain.EmployeePayProfile, error) {
	var profiles []domain.EmployeePayProfile
	for rows.Next() {
		var p domain.EmployeePayProfile
		if err := rows.Scan(
			&p.EmployeeID, &p.BranchID, &p.DepartmentID, &p.PositionID,
			&p.PayFrequency, &p.BaseSalary, &p.HasSalary,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan pay profile row", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating pay profile rows", err)
	}
	return profiles, nil
}

type pgxTimesheetAggregator struct {
	pool *pgxpool.Pool
}

var _ portssvc.TimesheetAggregator = (*pgxTimesheetAggregator)(nil)

// Summarize sums approved overtime and night-shift hours for the period.
func (t *pgxTimesheetAggregator) Summarize(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (domain.TimesheetSummary, error) {
	query := `
		SELECT COALESCE(SUM(overtime_hours), 0), COALESCE(SUM(night_hours), 0)
		FROM timesheets
		WHERE employee_id = $1 AND status = 'APPROVED'
		  AND work_date BETWEEN $2 AND $3;
	`
	var summary domain.TimesheetSummary
	err := t.pool.QueryRow(ctx, query, employeeID, periodStart, periodEnd).
		Scan(&summary.OvertimeHours, &summary.NightHours)
	if err != nil {
		return domain.TimesheetSummary{}, apperrors.NewAppError(500, "failed to summarize timesheets for employee "+employeeID, err)
	}
	return summary, nil
}

type pgxBonusSource struct {
	pool *pgxpool.Pool
}

var _ portssvc.BonusSource = (*pgxBonusSource)(nil)

// SumBonuses sums computed, approved or paid bonuses dated inside the period.
func (b *pgxBonusSource) SumBonuses(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM bonuses
		WHERE employee_id = $1
		  AND status IN ('COMPUTED', 'APPROVED', 'PAID')
		  AND bonus_date BETWEEN $2 AND $3;
	`
	var total decimal.Decimal
	if err := b.pool.QueryRow(ctx, query, employeeID, periodStart, periodEnd).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum bonuses for employee "+employeeID, err)
	}
	return total, nil
}

type pgxAllowanceSource struct {
	pool *pgxpool.Pool
}

var _ portssvc.AllowanceSource = (*pgxAllowanceSource)(nil)

// SumAllowances sums recurring allowances active during the period.
func (a *pgxAllowanceSource) SumAllowances(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM employee_allowances
		WHERE employee_id = $1
		  AND effective_date <= $3
		  AND (end_date IS NULL OR end_date >= $2);
	`
	var total decimal.Decimal
	if err := a.pool.QueryRow(ctx, query, employeeID, periodStart, periodEnd).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum allowances for employee "+employeeID, err)
	}
	return total, nil
}

type pgxDeductionSource struct {
	pool *pgxpool.Pool
}

var _ portssvc.DeductionSource = (*pgxDeductionSource)(nil)

// Summarize sums voluntary deductions and HMO premiums for the period.
func (s *pgxDeductionSource) Summarize(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (domain.DeductionSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'VOLUNTARY'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'HMO_PREMIUM'), 0)
		FROM employee_deductions
		WHERE employee_id = $1
		  AND effective_date <= $3
		  AND (end_date IS NULL OR end_date >= $2);
	`
	var summary domain.DeductionSummary
	err := s.pool.QueryRow(ctx, query, employeeID, periodStart, periodEnd).
		Scan(&summary.Voluntary, &summary.HMOPremium)
	if err != nil {
		return domain.DeductionSummary{}, apperrors.NewAppError(500, "failed to summarize deductions for employee "+employeeID, err)
	}
	return summary, nil
}
