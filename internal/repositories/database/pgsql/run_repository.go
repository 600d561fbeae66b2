package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	"github.com/hospicore/hr_payroll_app/internal/utils/pagination"
)

type PgxRunRepository struct {
	BaseRepository
}

// newPgxRunRepository creates a new repository for payroll runs and payslips.
func newPgxRunRepository(pool *pgxpool.Pool) portsrepo.RunRepositoryWithTx {
	return &PgxRunRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RunRepositoryWithTx = (*PgxRunRepository)(nil)

const runColumns = `
	run_id, branch_id, period_start, period_end, pay_date, status,
	total_gross, total_deductions, total_net, employee_count,
	approved_by, approved_at, locked_by, locked_at,
	created_at, created_by, last_updated_at, last_updated_by
`

// SaveRun inserts a Draft run. The exclusion constraint on
// (branch_id, period) backs the overlap invariant against races.
func (r *PgxRunRepository) SaveRun(ctx context.Context, run domain.PayrollRun) error {
	query := `
		INSERT INTO payroll_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		run.RunID,
		run.BranchID,
		run.PeriodStart,
		run.PeriodEnd,
		run.PayDate,
		run.Status,
		run.TotalGross,
		run.TotalDeductions,
		run.TotalNet,
		run.EmployeeCount,
		run.ApprovedBy,
		run.ApprovedAt,
		run.LockedBy,
		run.LockedAt,
		run.CreatedAt,
		run.CreatedBy,
		run.LastUpdatedAt,
		run.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505") {
			return apperrors.NewAppError(409, "payroll run overlaps an existing run for branch "+run.BranchID, apperrors.ErrConflict)
		}
		return apperrors.NewAppError(500, "failed to insert payroll run "+run.RunID, err)
	}
	return nil
}

func (r *PgxRunRepository) FindRunByID(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE run_id = $1;`
	run, err := scanRun(r.Pool.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("payroll run " + runID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query payroll run "+runID, err)
	}
	return run, nil
}

// FindOverlappingRun returns any run for the branch whose period intersects
// the given range.
func (r *PgxRunRepository) FindOverlappingRun(ctx context.Context, branchID string, periodStart, periodEnd time.Time) (*domain.PayrollRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE branch_id = $1 AND period_start <= $3 AND period_end >= $2
		LIMIT 1;
	`
	run, err := scanRun(r.Pool.QueryRow(ctx, query, branchID, periodStart, periodEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no overlapping run for branch " + branchID)
		}
		return nil, apperrors.NewAppError(500, "failed to query overlapping run for branch "+branchID, err)
	}
	return run, nil
}

// ListRuns retrieves a paginated list of runs using token-based pagination
// ordered by period_start DESC, created_at DESC.
func (r *PgxRunRepository) ListRuns(ctx context.Context, filter portsrepo.RunFilter, limit int, nextToken *string) ([]domain.PayrollRun, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE 1=1`
	args := []interface{}{}

	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		query += ` AND branch_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND period_start >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND period_end <= $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastPeriodStart, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastPeriodStart, lastCreatedAt)
		query += ` AND (period_start, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY period_start DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payroll runs", err)
	}
	defer rows.Close()

	runs := make([]domain.PayrollRun, 0, fetchLimit)
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payroll run row", scanErr)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payroll run rows", err)
	}

	var nextTokenVal *string
	if len(runs) > limit {
		last := runs[limit-1]
		token := pagination.EncodeToken(last.PeriodStart, last.CreatedAt)
		nextTokenVal = &token
		runs = runs[:limit]
	}
	return runs, nextTokenVal, nil
}

// CompleteRunAtomic persists a processed run in one transaction. The advisory
// lock keyed on the run ID serializes concurrent process calls; the row lock
// re-check guarantees only one of them finds the run still Draft.
func (r *PgxRunRepository) CompleteRunAtomic(ctx context.Context, run domain.PayrollRun, payslips []domain.Payslip) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, run.RunID); err != nil {
		return apperrors.NewAppError(500, "failed to take advisory lock for run "+run.RunID, err)
	}

	var status domain.PayrollRunStatus
	err = tx.QueryRow(ctx, `SELECT status FROM payroll_runs WHERE run_id = $1 FOR UPDATE;`, run.RunID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("payroll run " + run.RunID + " not found")
		}
		return apperrors.NewAppError(500, "failed to lock payroll run "+run.RunID, err)
	}
	if status != domain.RunDraft {
		return apperrors.NewAppError(409, "payroll run "+run.RunID+" is no longer draft", apperrors.ErrInvalidState)
	}

	batch := &pgx.Batch{}
	payslipQuery := `
		INSERT INTO payslips (
			payslip_id, run_id, employee_id, branch_id, period_start, period_end,
			basic_pay, overtime_pay, night_diff_pay, allowances, bonuses, gross,
			social_insurance, health_insurance, housing_fund, withholding_tax,
			other_deductions, net, status, trace,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	for i := range payslips {
		p := &payslips[i]
		traceJSON, marshalErr := json.Marshal(p.Trace)
		if marshalErr != nil {
			return apperrors.NewAppError(500, "failed to marshal computation trace for payslip "+p.PayslipID, marshalErr)
		}
		batch.Queue(payslipQuery,
			p.PayslipID, p.RunID, p.EmployeeID, p.BranchID, p.PeriodStart, p.PeriodEnd,
			p.BasicPay, p.OvertimePay, p.NightDiffPay, p.Allowances, p.Bonuses, p.Gross,
			p.SocialInsurance, p.HealthInsurance, p.HousingFund, p.WithholdingTax,
			p.OtherDeductions, p.Net, p.Status, traceJSON,
			p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range payslips {
		if _, execErr := results.Exec(); execErr != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert payslip batch for run "+run.RunID, execErr)
		}
	}
	if closeErr := results.Close(); closeErr != nil {
		return apperrors.NewAppError(500, "failed to close payslip batch for run "+run.RunID, closeErr)
	}

	updateQuery := `
		UPDATE payroll_runs
		SET status = $2, total_gross = $3, total_deductions = $4, total_net = $5,
		    employee_count = $6, last_updated_at = $7, last_updated_by = $8
		WHERE run_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery,
		run.RunID, domain.RunCompleted, run.TotalGross, run.TotalDeductions,
		run.TotalNet, run.EmployeeCount, run.LastUpdatedAt, run.LastUpdatedBy,
	); err != nil {
		return apperrors.NewAppError(500, "failed to complete payroll run "+run.RunID, err)
	}

	return r.Commit(ctx, tx)
}

// UpdateRunStatus performs a guarded forward transition.
func (r *PgxRunRepository) UpdateRunStatus(ctx context.Context, runID string, from, to domain.PayrollRunStatus, actorID string, at time.Time) error {
	var actorColumn string
	switch to {
	case domain.RunApproved:
		actorColumn = `approved_by = $4, approved_at = $5,`
	case domain.RunLocked:
		actorColumn = `locked_by = $4, locked_at = $5,`
	default:
		actorColumn = ``
	}

	query := `
		UPDATE payroll_runs
		SET status = $3, ` + actorColumn + ` last_updated_at = $5, last_updated_by = $4
		WHERE run_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, runID, from, to, actorID, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of payroll run "+runID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the run is missing or it moved on concurrently.
		if _, findErr := r.FindRunByID(ctx, runID); findErr != nil {
			return findErr
		}
		return apperrors.NewAppError(409, "payroll run "+runID+" is not "+string(from), apperrors.ErrInvalidState)
	}
	return nil
}

func (r *PgxRunRepository) FindPayslipByID(ctx context.Context, payslipID string) (*domain.Payslip, error) {
	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE payslip_id = $1;`
	slip, err := scanPayslip(r.Pool.QueryRow(ctx, query, payslipID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("payslip " + payslipID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query payslip "+payslipID, err)
	}
	return slip, nil
}

const payslipColumns = `
	payslip_id, run_id, employee_id, branch_id, period_start, period_end,
	basic_pay, overtime_pay, night_diff_pay, allowances, bonuses, gross,
	social_insurance, health_insurance, housing_fund, withholding_tax,
	other_deductions, net, status, trace,
	created_at, created_by, last_updated_at, last_updated_by
`

// ListPayslipsByRun retrieves a paginated list of a run's payslips. All
// payslips of a run share a creation timestamp, so the cursor keys on
// (created_at, payslip_id).
func (r *PgxRunRepository) ListPayslipsByRun(ctx context.Context, runID string, limit int, nextToken *string) ([]domain.Payslip, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE run_id = $1`
	args := []interface{}{runID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastPayslipID, decodeErr := pagination.DecodeKeyToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastPayslipID)
		query += ` AND (created_at, payslip_id) < ($2, $3)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, payslip_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payslips for run "+runID, err)
	}
	defer rows.Close()

	payslips := make([]domain.Payslip, 0, fetchLimit)
	for rows.Next() {
		slip, scanErr := scanPayslip(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payslip row for run "+runID, scanErr)
		}
		payslips = append(payslips, *slip)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payslip rows for run "+runID, err)
	}

	var nextTokenVal *string
	if len(payslips) > limit {
		last := payslips[limit-1]
		token := pagination.EncodeKeyToken(last.CreatedAt, last.PayslipID)
		nextTokenVal = &token
		payslips = payslips[:limit]
	}
	return payslips, nextTokenVal, nil
}

// VoidPayslip soft-deletes an active payslip of a not-yet-locked run.
func (r *PgxRunRepository) VoidPayslip(ctx context.Context, payslipID string, actorID string, at time.Time) error {
	query := `
		UPDATE payslips p
		SET status = $4, last_updated_at = $2, last_updated_by = $3
		FROM payroll_runs r
		WHERE p.payslip_id = $1 AND r.run_id = p.run_id
		  AND p.status = $5 AND r.status <> $6;
	`
	tag, err := r.Pool.Exec(ctx, query, payslipID, at, actorID,
		domain.PayslipVoided, domain.PayslipActive, domain.RunLocked)
	if err != nil {
		return apperrors.NewAppError(500, "failed to void payslip "+payslipID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindPayslipByID(ctx, payslipID); findErr != nil {
			return findErr
		}
		return apperrors.NewAppError(409, "payslip "+payslipID+" cannot be voided", apperrors.ErrInvalidState)
	}
	return nil
}

func scanRun(row pgx.Row) (*domain.PayrollRun, error) {
	var run domain.PayrollRun
	err := row.Scan(
		&run.RunID,
		&run.BranchID,
		&run.PeriodStart,
		&run.PeriodEnd,
		&run.PayDate,
		&run.Status,
		&run.TotalGross,
		&run.TotalDeductions,
		&run.TotalNet,
		&run.EmployeeCount,
		&run.ApprovedBy,
		&run.ApprovedAt,
		&run.LockedBy,
		&run.LockedAt,
		&run.CreatedAt,
		&run.CreatedBy,
		&run.LastUpdatedAt,
		&run.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanPayslip(row pgx.Row) (*domain.Payslip, error) {
	var slip domain.Payslip
	var traceJSON []byte
	err := row.Scan(
		&slip.PayslipID,
		&slip.RunID,
		&slip.EmployeeID,
		&slip.BranchID,
		&slip.PeriodStart,
		&slip.PeriodEnd,
		&slip.BasicPay,
		&slip.OvertimePay,
		&slip.NightDiffPay,
		&slip.Allowances,
		&slip.Bonuses,
		&slip.Gross,
		&slip.SocialInsurance,
		&slip.HealthInsurance,
		&slip.HousingFund,
		&slip.WithholdingTax,
		&slip.OtherDeductions,
		&slip.Net,
		&slip.Status,
		&traceJSON,
		&slip.CreatedAt,
		&slip.CreatedBy,
		&slip.LastUpdatedAt,
		&slip.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(traceJSON) > 0 {
		if err := json.Unmarshal(traceJSON, &slip.Trace); err != nil {
			return nil, err
		}
	}
	return &slip, nil
}
