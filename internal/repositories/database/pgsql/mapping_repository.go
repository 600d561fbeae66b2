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

type PgxMappingRepository struct {
	BaseRepository
}

// newPgxMappingRepository creates a new repository for employee grade mappings.
func newPgxMappingRepository(pool *pgxpool.Pool) portsrepo.MappingRepositoryFacade {
	return &PgxMappingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MappingRepositoryFacade = (*PgxMappingRepository)(nil)

const mappingColumns = `
	mapping_id, employee_id, grade_id, step_id, current_salary,
	band_min, band_max, status, effective_date, end_date, approved_by,
	created_at, created_by, last_updated_at, last_updated_by
`

func (r *PgxMappingRepository) SaveMapping(ctx context.Context, mapping domain.EmployeeGradeMapping) error {
	query := `
		INSERT INTO employee_grade_mappings (` + mappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		mapping.MappingID,
		mapping.EmployeeID,
		mapping.GradeID,
		mapping.StepID,
		mapping.CurrentSalary,
		mapping.BandMin,
		mapping.BandMax,
		mapping.Status,
		mapping.EffectiveDate,
		mapping.EndDate,
		mapping.ApprovedBy,
		mapping.CreatedAt,
		mapping.CreatedBy,
		mapping.LastUpdatedAt,
		mapping.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert mapping "+mapping.MappingID, err)
	}
	return nil
}

func (r *PgxMappingRepository) FindMappingByID(ctx context.Context, mappingID string) (*domain.EmployeeGradeMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM employee_grade_mappings WHERE mapping_id = $1;`
	mapping, err := scanMapping(r.Pool.QueryRow(ctx, query, mappingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("mapping " + mappingID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query mapping "+mappingID, err)
	}
	return mapping, nil
}

// FindCurrentMapping returns the employee's approved mapping open on the given
// day. Pending-review proposals are not live assignments.
func (r *PgxMappingRepository) FindCurrentMapping(ctx context.Context, employeeID string, asOf time.Time) (*domain.EmployeeGradeMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM employee_grade_mappings
		WHERE employee_id = $1
		  AND status <> $3
		  AND effective_date <= $2
		  AND (end_date IS NULL OR end_date > $2)
		ORDER BY effective_date DESC
		LIMIT 1;
	`
	mapping, err := scanMapping(r.Pool.QueryRow(ctx, query, employeeID, asOf, domain.PendingReview))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no current mapping for employee " + employeeID)
		}
		return nil, apperrors.NewAppError(500, "failed to query current mapping for employee "+employeeID, err)
	}
	return mapping, nil
}

// ListCurrentMappingsByGrade returns every current mapping bound to the grade.
func (r *PgxMappingRepository) ListCurrentMappingsByGrade(ctx context.Context, gradeID string, asOf time.Time) ([]domain.EmployeeGradeMapping, error) {
	return r.listCurrentByGrades(ctx, []string{gradeID}, asOf)
}

// ListCurrentMappingsByGrades is the batch variant over a grade set.
func (r *PgxMappingRepository) ListCurrentMappingsByGrades(ctx context.Context, gradeIDs []string, asOf time.Time) ([]domain.EmployeeGradeMapping, error) {
	return r.listCurrentByGrades(ctx, gradeIDs, asOf)
}

func (r *PgxMappingRepository) listCurrentByGrades(ctx context.Context, gradeIDs []string, asOf time.Time) ([]domain.EmployeeGradeMapping, error) {
	if len(gradeIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + mappingColumns + `
		FROM employee_grade_mappings
		WHERE grade_id = ANY($1)
		  AND status <> $3
		  AND effective_date <= $2
		  AND (end_date IS NULL OR end_date > $2)
		ORDER BY employee_id;
	`
	rows, err := r.Pool.Query(ctx, query, gradeIDs, asOf, domain.PendingReview)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query current mappings by grade", err)
	}
	defer rows.Close()

	var mappings []domain.EmployeeGradeMapping
	for rows.Next() {
		mapping, scanErr := scanMapping(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan mapping row", scanErr)
		}
		mappings = append(mappings, *mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating mapping rows", err)
	}
	return mappings, nil
}

// ListMappings retrieves a paginated list of mappings ordered by
// effective_date DESC, created_at DESC.
func (r *PgxMappingRepository) ListMappings(ctx context.Context, filter portsrepo.MappingFilter, limit int, nextToken *string) ([]domain.EmployeeGradeMapping, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + mappingColumns + ` FROM employee_grade_mappings WHERE 1=1`
	args := []interface{}{}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		query += ` AND employee_id = $` + strconv.Itoa(len(args))
	}
	if filter.GradeID != nil {
		args = append(args, *filter.GradeID)
		query += ` AND grade_id = $` + strconv.Itoa(len(args))
	}
	if filter.CurrentOnly {
		args = append(args, time.Now().UTC())
		n := strconv.Itoa(len(args))
		query += ` AND effective_date <= $` + n + ` AND (end_date IS NULL OR end_date > $` + n + `)`
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
		return nil, nil, apperrors.NewAppError(500, "failed to query mappings", err)
	}
	defer rows.Close()

	mappings := make([]domain.EmployeeGradeMapping, 0, fetchLimit)
	for rows.Next() {
		mapping, scanErr := scanMapping(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan mapping row", scanErr)
		}
		mappings = append(mappings, *mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating mapping rows", err)
	}

	var nextTokenVal *string
	if len(mappings) > limit {
		last := mappings[limit-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.CreatedAt)
		nextTokenVal = &token
		mappings = mappings[:limit]
	}
	return mappings, nextTokenVal, nil
}

// ApproveMapping runs the end-then-activate cascade in one transaction: every
// open prior mapping for the employee is ended at the new effective date minus
// one day, then the mapping row takes its re-validated band status and
// approver.
func (r *PgxMappingRepository) ApproveMapping(ctx context.Context, mapping domain.EmployeeGradeMapping, approvedBy string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	endDate := mapping.EffectiveDate.AddDate(0, 0, -1)
	endQuery := `
		UPDATE employee_grade_mappings
		SET end_date = $3, last_updated_at = $4, last_updated_by = $5
		WHERE employee_id = $1
		  AND mapping_id <> $2
		  AND status <> $6
		  AND (end_date IS NULL OR end_date >= $3);
	`
	if _, err := tx.Exec(ctx, endQuery,
		mapping.EmployeeID, mapping.MappingID, endDate, at, approvedBy, domain.PendingReview,
	); err != nil {
		return apperrors.NewAppError(500, "failed to end prior mappings for employee "+mapping.EmployeeID, err)
	}

	approveQuery := `
		UPDATE employee_grade_mappings
		SET status = $2, approved_by = $3, last_updated_at = $4, last_updated_by = $3
		WHERE mapping_id = $1 AND status = $5;
	`
	tag, err := tx.Exec(ctx, approveQuery,
		mapping.MappingID, mapping.Status, approvedBy, at, domain.PendingReview,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to approve mapping "+mapping.MappingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "mapping "+mapping.MappingID+" is not pending review", apperrors.ErrInvalidState)
	}

	return r.Commit(ctx, tx)
}

func scanMapping(row pgx.Row) (*domain.EmployeeGradeMapping, error) {
	var m domain.EmployeeGradeMapping
	err := row.Scan(
		&m.MappingID,
		&m.EmployeeID,
		&m.GradeID,
		&m.StepID,
		&m.CurrentSalary,
		&m.BandMin,
		&m.BandMax,
		&m.Status,
		&m.EffectiveDate,
		&m.EndDate,
		&m.ApprovedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
