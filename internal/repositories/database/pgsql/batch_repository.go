package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	"github.com/hospicore/hr_payroll_app/internal/utils/pagination"
)

type PgxBatchRepository struct {
	BaseRepository
}

// newPgxBatchRepository creates a new repository for pay adjustment workflows.
func newPgxBatchRepository(pool *pgxpool.Pool) portsrepo.BatchRepositoryFacade {
	return &PgxBatchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BatchRepositoryFacade = (*PgxBatchRepository)(nil)

const workflowColumns = `
	workflow_id, name, adjustment_type, adjustment_value,
	target_grade_ids, target_department_ids, target_position_ids,
	status, total_impact, affected_count, impact_computed_at,
	approved_by, implemented_by,
	created_at, created_by, last_updated_at, last_updated_by
`

func (r *PgxBatchRepository) SaveWorkflow(ctx context.Context, workflow domain.PayAdjustmentWorkflow) error {
	query := `
		INSERT INTO pay_adjustment_workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		workflow.WorkflowID,
		workflow.Name,
		workflow.AdjustmentType,
		workflow.AdjustmentValue,
		workflow.TargetGradeIDs,
		workflow.TargetDepartmentIDs,
		workflow.TargetPositionIDs,
		workflow.Status,
		workflow.TotalImpact,
		workflow.AffectedCount,
		workflow.ImpactComputedAt,
		workflow.ApprovedBy,
		workflow.ImplementedBy,
		workflow.CreatedAt,
		workflow.CreatedBy,
		workflow.LastUpdatedAt,
		workflow.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert workflow "+workflow.WorkflowID, err)
	}
	return nil
}

func (r *PgxBatchRepository) FindWorkflowByID(ctx context.Context, workflowID string) (*domain.PayAdjustmentWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM pay_adjustment_workflows WHERE workflow_id = $1;`
	workflow, err := scanWorkflow(r.Pool.QueryRow(ctx, query, workflowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("workflow " + workflowID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query workflow "+workflowID, err)
	}
	return workflow, nil
}

// ListWorkflows retrieves a paginated list ordered by created_at DESC.
func (r *PgxBatchRepository) ListWorkflows(ctx context.Context, filter portsrepo.WorkflowFilter, limit int, nextToken *string) ([]domain.PayAdjustmentWorkflow, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + workflowColumns + ` FROM pay_adjustment_workflows WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastWorkflowID, decodeErr := pagination.DecodeKeyToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastWorkflowID)
		query += ` AND (created_at, workflow_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, workflow_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query workflows", err)
	}
	defer rows.Close()

	workflows := make([]domain.PayAdjustmentWorkflow, 0, fetchLimit)
	for rows.Next() {
		workflow, scanErr := scanWorkflow(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan workflow row", scanErr)
		}
		workflows = append(workflows, *workflow)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating workflow rows", err)
	}

	var nextTokenVal *string
	if len(workflows) > limit {
		last := workflows[limit-1]
		token := pagination.EncodeKeyToken(last.CreatedAt, last.WorkflowID)
		nextTokenVal = &token
		workflows = workflows[:limit]
	}
	return workflows, nextTokenVal, nil
}

// SaveImpactSnapshot caches the point-in-time impact estimate on the workflow
// row.
func (r *PgxBatchRepository) SaveImpactSnapshot(ctx context.Context, workflowID string, totalImpact decimal.Decimal, affectedCount int, at time.Time) error {
	query := `
		UPDATE pay_adjustment_workflows
		SET total_impact = $2, affected_count = $3, impact_computed_at = $4, last_updated_at = $4
		WHERE workflow_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, workflowID, totalImpact, affectedCount, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save impact snapshot for workflow "+workflowID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("workflow " + workflowID + " not found")
	}
	return nil
}

// ReplaceWorkflowDetails upserts the per-employee detail rows keyed on
// (workflow, employee). Rows for employees no longer targeted are removed.
func (r *PgxBatchRepository) ReplaceWorkflowDetails(ctx context.Context, workflowID string, details []domain.WorkflowDetail) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	employeeIDs := make([]string, len(details))
	for i := range details {
		employeeIDs[i] = details[i].EmployeeID
	}
	deleteQuery := `
		DELETE FROM pay_adjustment_workflow_details
		WHERE workflow_id = $1 AND NOT (employee_id = ANY($2));
	`
	if _, err := tx.Exec(ctx, deleteQuery, workflowID, employeeIDs); err != nil {
		return apperrors.NewAppError(500, "failed to prune details for workflow "+workflowID, err)
	}

	batch := &pgx.Batch{}
	upsertQuery := `
		INSERT INTO pay_adjustment_workflow_details (
			detail_id, workflow_id, employee_id, old_salary, new_salary, impact,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (workflow_id, employee_id) DO UPDATE
		SET old_salary = EXCLUDED.old_salary,
		    new_salary = EXCLUDED.new_salary,
		    impact = EXCLUDED.impact,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	for i := range details {
		d := &details[i]
		batch.Queue(upsertQuery,
			d.DetailID, d.WorkflowID, d.EmployeeID, d.OldSalary, d.NewSalary, d.Impact,
			d.CreatedAt, d.CreatedBy, d.LastUpdatedAt, d.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range details {
		if _, execErr := results.Exec(); execErr != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to upsert details for workflow "+workflowID, execErr)
		}
	}
	if closeErr := results.Close(); closeErr != nil {
		return apperrors.NewAppError(500, "failed to close detail batch for workflow "+workflowID, closeErr)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxBatchRepository) ListWorkflowDetails(ctx context.Context, workflowID string) ([]domain.WorkflowDetail, error) {
	query := `
		SELECT detail_id, workflow_id, employee_id, old_salary, new_salary, impact,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM pay_adjustment_workflow_details
		WHERE workflow_id = $1
		ORDER BY employee_id;
	`
	rows, err := r.Pool.Query(ctx, query, workflowID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query details for workflow "+workflowID, err)
	}
	defer rows.Close()

	var details []domain.WorkflowDetail
	for rows.Next() {
		var d domain.WorkflowDetail
		if err := rows.Scan(
			&d.DetailID, &d.WorkflowID, &d.EmployeeID, &d.OldSalary, &d.NewSalary, &d.Impact,
			&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan detail row for workflow "+workflowID, err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating detail rows for workflow "+workflowID, err)
	}
	return details, nil
}

// UpdateWorkflowStatus performs a guarded transition.
func (r *PgxBatchRepository) UpdateWorkflowStatus(ctx context.Context, workflowID string, from, to domain.PayAdjustmentWorkflowStatus, actorID string, at time.Time) error {
	var actorColumn string
	switch to {
	case domain.WorkflowApproved:
		actorColumn = `approved_by = $4,`
	case domain.WorkflowImplemented:
		actorColumn = `implemented_by = $4,`
	default:
		actorColumn = ``
	}

	query := `
		UPDATE pay_adjustment_workflows
		SET status = $3, ` + actorColumn + ` last_updated_at = $5, last_updated_by = $4
		WHERE workflow_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, workflowID, from, to, actorID, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of workflow "+workflowID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindWorkflowByID(ctx, workflowID); findErr != nil {
			return findErr
		}
		return apperrors.NewAppError(409, "workflow "+workflowID+" is not "+string(from), apperrors.ErrInvalidState)
	}
	return nil
}

// ImplementWorkflow flips an Approved workflow to Implemented and inserts the
// fan-out adjustments in one transaction.
func (r *PgxBatchRepository) ImplementWorkflow(ctx context.Context, workflowID string, implementedBy string, adjustments []domain.SalaryAdjustment, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	flipQuery := `
		UPDATE pay_adjustment_workflows
		SET status = $3, implemented_by = $4, last_updated_at = $5, last_updated_by = $4
		WHERE workflow_id = $1 AND status = $2;
	`
	tag, err := tx.Exec(ctx, flipQuery,
		workflowID, domain.WorkflowApproved, domain.WorkflowImplemented, implementedBy, at,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to implement workflow "+workflowID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "workflow "+workflowID+" is not approved", apperrors.ErrInvalidState)
	}

	batch := &pgx.Batch{}
	queueAdjustmentInserts(batch, adjustments)
	results := tx.SendBatch(ctx, batch)
	for range adjustments {
		if _, execErr := results.Exec(); execErr != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert fan-out adjustments for workflow "+workflowID, execErr)
		}
	}
	if closeErr := results.Close(); closeErr != nil {
		return apperrors.NewAppError(500, "failed to close adjustment batch for workflow "+workflowID, closeErr)
	}

	return r.Commit(ctx, tx)
}

func scanWorkflow(row pgx.Row) (*domain.PayAdjustmentWorkflow, error) {
	var w domain.PayAdjustmentWorkflow
	err := row.Scan(
		&w.WorkflowID,
		&w.Name,
		&w.AdjustmentType,
		&w.AdjustmentValue,
		&w.TargetGradeIDs,
		&w.TargetDepartmentIDs,
		&w.TargetPositionIDs,
		&w.Status,
		&w.TotalImpact,
		&w.AffectedCount,
		&w.ImpactComputedAt,
		&w.ApprovedBy,
		&w.ImplementedBy,
		&w.CreatedAt,
		&w.CreatedBy,
		&w.LastUpdatedAt,
		&w.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
