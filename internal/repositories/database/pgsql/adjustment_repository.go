package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	"github.com/hospicore/hr_payroll_app/internal/utils/pagination"
)

type PgxAdjustmentRepository struct {
	BaseRepository
}

// newPgxAdjustmentRepository creates a new repository for salary adjustments.
func newPgxAdjustmentRepository(pool *pgxpool.Pool) portsrepo.AdjustmentRepositoryFacade {
	return &PgxAdjustmentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AdjustmentRepositoryFacade = (*PgxAdjustmentRepository)(nil)

const adjustmentColumns = `
	adjustment_id, employee_id, grade_id, step_id, old_salary, new_salary,
	reason, justification, is_correction, status, effective_date,
	initiated_by, reviewed_by, approved_by, implemented_by,
	source_revision_id, source_workflow_id,
	created_at, created_by, last_updated_at, last_updated_by
`

const insertAdjustmentQuery = `
	INSERT INTO salary_adjustments (` + adjustmentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
`

// queueAdjustmentInserts adds the insert for each adjustment to a batch. The
// revision and workflow cascades reuse it inside their own transactions.
func queueAdjustmentInserts(batch *pgx.Batch, adjustments []domain.SalaryAdjustment) {
	for i := range adjustments {
		a := &adjustments[i]
		batch.Queue(insertAdjustmentQuery,
			a.AdjustmentID, a.EmployeeID, a.GradeID, a.StepID, a.OldSalary, a.NewSalary,
			a.Reason, a.Justification, a.IsCorrection, a.Status, a.EffectiveDate,
			a.InitiatedBy, a.ReviewedBy, a.ApprovedBy, a.ImplementedBy,
			a.SourceRevisionID, a.SourceWorkflowID,
			a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
		)
	}
}

func (r *PgxAdjustmentRepository) SaveAdjustment(ctx context.Context, adjustment domain.SalaryAdjustment) error {
	_, err := r.Pool.Exec(ctx, insertAdjustmentQuery,
		adjustment.AdjustmentID, adjustment.EmployeeID, adjustment.GradeID, adjustment.StepID,
		adjustment.OldSalary, adjustment.NewSalary,
		adjustment.Reason, adjustment.Justification, adjustment.IsCorrection,
		adjustment.Status, adjustment.EffectiveDate,
		adjustment.InitiatedBy, adjustment.ReviewedBy, adjustment.ApprovedBy, adjustment.ImplementedBy,
		adjustment.SourceRevisionID, adjustment.SourceWorkflowID,
		adjustment.CreatedAt, adjustment.CreatedBy, adjustment.LastUpdatedAt, adjustment.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert adjustment "+adjustment.AdjustmentID, err)
	}
	return nil
}

func (r *PgxAdjustmentRepository) FindAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.SalaryAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM salary_adjustments WHERE adjustment_id = $1;`
	adjustment, err := scanAdjustment(r.Pool.QueryRow(ctx, query, adjustmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("adjustment " + adjustmentID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query adjustment "+adjustmentID, err)
	}
	return adjustment, nil
}

// ListAdjustments retrieves a paginated list ordered by effective_date DESC,
// created_at DESC.
func (r *PgxAdjustmentRepository) ListAdjustments(ctx context.Context, filter portsrepo.AdjustmentFilter, limit int, nextToken *string) ([]domain.SalaryAdjustment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + adjustmentColumns + ` FROM salary_adjustments WHERE 1=1`
	args := []interface{}{}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		query += ` AND employee_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND effective_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND effective_date <= $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastEffective, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastEffective, lastCreatedAt)
		query += ` AND (effective_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY effective_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query adjustments", err)
	}
	defer rows.Close()

	adjustments := make([]domain.SalaryAdjustment, 0, fetchLimit)
	for rows.Next() {
		adjustment, scanErr := scanAdjustment(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan adjustment row", scanErr)
		}
		adjustments = append(adjustments, *adjustment)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating adjustment rows", err)
	}

	var nextTokenVal *string
	if len(adjustments) > limit {
		last := adjustments[limit-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.CreatedAt)
		nextTokenVal = &token
		adjustments = adjustments[:limit]
	}
	return adjustments, nextTokenVal, nil
}

// UpdateAdjustmentStatus performs a guarded transition, writing the actor
// into the column the target status owns.
func (r *PgxAdjustmentRepository) UpdateAdjustmentStatus(ctx context.Context, adjustmentID string, from, to domain.SalaryAdjustmentStatus, field portsrepo.ActorField, actorID string, at time.Time) error {
	var actorColumn string
	switch field {
	case portsrepo.ActorReviewer:
		actorColumn = "reviewed_by"
	case portsrepo.ActorApprover:
		actorColumn = "approved_by"
	case portsrepo.ActorImplementer:
		actorColumn = "implemented_by"
	default:
		return apperrors.NewAppError(500, "unknown actor field "+string(field), nil)
	}

	query := `
		UPDATE salary_adjustments
		SET status = $3, ` + actorColumn + ` = $4, last_updated_at = $5, last_updated_by = $4
		WHERE adjustment_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, adjustmentID, from, to, actorID, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of adjustment "+adjustmentID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindAdjustmentByID(ctx, adjustmentID); findErr != nil {
			return findErr
		}
		return apperrors.NewAppError(409, "adjustment "+adjustmentID+" is not "+string(from), apperrors.ErrInvalidState)
	}
	return nil
}

// ImplementAdjustment finalizes an Approved adjustment in one transaction:
// guard and flip the status, end the employee's open mappings at effective
// date minus one day, and insert the mapping carrying the new salary.
func (r *PgxAdjustmentRepository) ImplementAdjustment(ctx context.Context, adjustment domain.SalaryAdjustment, newMapping domain.EmployeeGradeMapping, implementedBy string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	flipQuery := `
		UPDATE salary_adjustments
		SET status = $3, implemented_by = $4, last_updated_at = $5, last_updated_by = $4
		WHERE adjustment_id = $1 AND status = $2;
	`
	tag, err := tx.Exec(ctx, flipQuery,
		adjustment.AdjustmentID, domain.AdjustmentApproved, domain.AdjustmentImplemented, implementedBy, at,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to implement adjustment "+adjustment.AdjustmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "adjustment "+adjustment.AdjustmentID+" is not approved", apperrors.ErrInvalidState)
	}

	endDate := newMapping.EffectiveDate.AddDate(0, 0, -1)
	endQuery := `
		UPDATE employee_grade_mappings
		SET end_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE employee_id = $1
		  AND status <> $5
		  AND (end_date IS NULL OR end_date >= $2);
	`
	if _, err := tx.Exec(ctx, endQuery,
		adjustment.EmployeeID, endDate, at, implementedBy, domain.PendingReview,
	); err != nil {
		return apperrors.NewAppError(500, "failed to end prior mappings for employee "+adjustment.EmployeeID, err)
	}

	insertMappingQuery := `
		INSERT INTO employee_grade_mappings (` + mappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	if _, err := tx.Exec(ctx, insertMappingQuery,
		newMapping.MappingID,
		newMapping.EmployeeID,
		newMapping.GradeID,
		newMapping.StepID,
		newMapping.CurrentSalary,
		newMapping.BandMin,
		newMapping.BandMax,
		newMapping.Status,
		newMapping.EffectiveDate,
		newMapping.EndDate,
		newMapping.ApprovedBy,
		newMapping.CreatedAt,
		newMapping.CreatedBy,
		newMapping.LastUpdatedAt,
		newMapping.LastUpdatedBy,
	); err != nil {
		return apperrors.NewAppError(500, "failed to insert mapping for adjustment "+adjustment.AdjustmentID, err)
	}

	return r.Commit(ctx, tx)
}

func scanAdjustment(row pgx.Row) (*domain.SalaryAdjustment, error) {
	var a domain.SalaryAdjustment
	err := row.Scan(
		&a.AdjustmentID,
		&a.EmployeeID,
		&a.GradeID,
		&a.StepID,
		&a.OldSalary,
		&a.NewSalary,
		&a.Reason,
		&a.Justification,
		&a.IsCorrection,
		&a.Status,
		&a.EffectiveDate,
		&a.InitiatedBy,
		&a.ReviewedBy,
		&a.ApprovedBy,
		&a.ImplementedBy,
		&a.SourceRevisionID,
		&a.SourceWorkflowID,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
