package pgsql

import (
	"context"
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

type PgxGradeRepository struct {
	BaseRepository
}

// newPgxGradeRepository creates a new repository for salary grades and steps.
func newPgxGradeRepository(pool *pgxpool.Pool) portsrepo.GradeRepositoryFacade {
	return &PgxGradeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.GradeRepositoryFacade = (*PgxGradeRepository)(nil)

const gradeColumns = `
	grade_id, code, name, department_id, branch_id,
	min_rate, mid_rate, max_rate, effective_date, end_date, status,
	created_at, created_by, last_updated_at, last_updated_by
`

// SaveGrade inserts a grade and its steps in one transaction.
func (r *PgxGradeRepository) SaveGrade(ctx context.Context, grade domain.SalaryGrade) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	gradeQuery := `
		INSERT INTO salary_grades (` + gradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, gradeQuery,
		grade.GradeID,
		grade.Code,
		grade.Name,
		grade.DepartmentID,
		grade.BranchID,
		grade.MinRate,
		grade.MidRate,
		grade.MaxRate,
		grade.EffectiveDate,
		grade.EndDate,
		grade.Status,
		grade.CreatedAt,
		grade.CreatedBy,
		grade.LastUpdatedAt,
		grade.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewAppError(409, "salary grade with code "+grade.Code+" already exists in draft", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert salary grade "+grade.GradeID, err)
	}

	batch := &pgx.Batch{}
	stepQuery := `
		INSERT INTO salary_steps (step_id, grade_id, step_number, min_rate, base_rate, max_rate, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, step := range grade.Steps {
		batch.Queue(stepQuery,
			step.StepID, step.GradeID, step.StepNumber,
			step.MinRate, step.BaseRate, step.MaxRate,
			step.CreatedAt, step.CreatedBy, step.LastUpdatedAt, step.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range grade.Steps {
		if _, execErr := results.Exec(); execErr != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert steps for grade "+grade.GradeID, execErr)
		}
	}
	if closeErr := results.Close(); closeErr != nil {
		return apperrors.NewAppError(500, "failed to close step batch for grade "+grade.GradeID, closeErr)
	}

	return r.Commit(ctx, tx)
}

// FindGradeByID returns the grade with its steps loaded.
func (r *PgxGradeRepository) FindGradeByID(ctx context.Context, gradeID string) (*domain.SalaryGrade, error) {
	query := `SELECT ` + gradeColumns + ` FROM salary_grades WHERE grade_id = $1;`
	grade, err := scanGrade(r.Pool.QueryRow(ctx, query, gradeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("salary grade " + gradeID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query salary grade "+gradeID, err)
	}

	steps, err := r.findSteps(ctx, gradeID)
	if err != nil {
		return nil, err
	}
	grade.Steps = steps
	return grade, nil
}

func (r *PgxGradeRepository) findSteps(ctx context.Context, gradeID string) ([]domain.SalaryStep, error) {
	query := `
		SELECT step_id, grade_id, step_number, min_rate, base_rate, max_rate,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM salary_steps
		WHERE grade_id = $1
		ORDER BY step_number;
	`
	rows, err := r.Pool.Query(ctx, query, gradeID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query steps for grade "+gradeID, err)
	}
	defer rows.Close()

	var steps []domain.SalaryStep
	for rows.Next() {
		var s domain.SalaryStep
		if err := rows.Scan(
			&s.StepID, &s.GradeID, &s.StepNumber,
			&s.MinRate, &s.BaseRate, &s.MaxRate,
			&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan step row for grade "+gradeID, err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating step rows for grade "+gradeID, err)
	}
	return steps, nil
}

// ListGrades retrieves a paginated list of grades ordered by effective_date
// DESC, created_at DESC. Steps are not loaded on listings.
func (r *PgxGradeRepository) ListGrades(ctx context.Context, filter portsrepo.GradeFilter, limit int, nextToken *string) ([]domain.SalaryGrade, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + gradeColumns + ` FROM salary_grades WHERE 1=1`
	args := []interface{}{}

	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		query += ` AND branch_id = $` + strconv.Itoa(len(args))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		query += ` AND department_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Code != nil {
		args = append(args, *filter.Code)
		query += ` AND code = $` + strconv.Itoa(len(args))
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
		return nil, nil, apperrors.NewAppError(500, "failed to query salary grades", err)
	}
	defer rows.Close()

	grades := make([]domain.SalaryGrade, 0, fetchLimit)
	for rows.Next() {
		grade, scanErr := scanGrade(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan salary grade row", scanErr)
		}
		grades = append(grades, *grade)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating salary grade rows", err)
	}

	var nextTokenVal *string
	if len(grades) > limit {
		last := grades[limit-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.CreatedAt)
		nextTokenVal = &token
		grades = grades[:limit]
	}
	return grades, nextTokenVal, nil
}

// ActivateGrade flips a Draft grade to Active and supersedes any other Active
// version of the same code and scope in one transaction.
func (r *PgxGradeRepository) ActivateGrade(ctx context.Context, gradeID string, actorID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	supersedeQuery := `
		UPDATE salary_grades
		SET status = $4, last_updated_at = $2, last_updated_by = $3
		WHERE status = $5
		  AND grade_id <> $1
		  AND code = (SELECT code FROM salary_grades WHERE grade_id = $1)
		  AND branch_id IS NOT DISTINCT FROM (SELECT branch_id FROM salary_grades WHERE grade_id = $1)
		  AND department_id IS NOT DISTINCT FROM (SELECT department_id FROM salary_grades WHERE grade_id = $1);
	`
	if _, err := tx.Exec(ctx, supersedeQuery, gradeID, at, actorID, domain.GradeSuperseded, domain.GradeActive); err != nil {
		return apperrors.NewAppError(500, "failed to supersede prior versions of grade "+gradeID, err)
	}

	activateQuery := `
		UPDATE salary_grades
		SET status = $4, last_updated_at = $2, last_updated_by = $3
		WHERE grade_id = $1 AND status = $5;
	`
	tag, err := tx.Exec(ctx, activateQuery, gradeID, at, actorID, domain.GradeActive, domain.GradeDraft)
	if err != nil {
		return apperrors.NewAppError(500, "failed to activate grade "+gradeID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "grade "+gradeID+" is not draft", apperrors.ErrInvalidState)
	}

	return r.Commit(ctx, tx)
}

func scanGrade(row pgx.Row) (*domain.SalaryGrade, error) {
	var g domain.SalaryGrade
	err := row.Scan(
		&g.GradeID,
		&g.Code,
		&g.Name,
		&g.DepartmentID,
		&g.BranchID,
		&g.MinRate,
		&g.MidRate,
		&g.MaxRate,
		&g.EffectiveDate,
		&g.EndDate,
		&g.Status,
		&g.CreatedAt,
		&g.CreatedBy,
		&g.LastUpdatedAt,
		&g.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
