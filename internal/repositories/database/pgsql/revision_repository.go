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

type PgxRevisionRepository struct {
	BaseRepository
}

// newPgxRevisionRepository creates a new repository for grade revisions.
func newPgxRevisionRepository(pool *pgxpool.Pool) portsrepo.RevisionRepositoryFacade {
	return &PgxRevisionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RevisionRepositoryFacade = (*PgxRevisionRepository)(nil)

const revisionColumns = `
	revision_id, grade_id, before_min, before_mid, before_max,
	after_min, after_mid, after_max, percentage, reason, status, effective_date,
	reviewed_by, approved_by, implemented_by, rejected_by,
	created_at, created_by, last_updated_at, last_updated_by
`

func (r *PgxRevisionRepository) SaveRevision(ctx context.Context, revision domain.GradeRevision) error {
	query := `
		INSERT INTO grade_revisions (` + revisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		revision.RevisionID,
		revision.GradeID,
		revision.BeforeMin,
		revision.BeforeMid,
		revision.BeforeMax,
		revision.AfterMin,
		revision.AfterMid,
		revision.AfterMax,
		revision.Percentage,
		revision.Reason,
		revision.Status,
		revision.EffectiveDate,
		revision.ReviewedBy,
		revision.ApprovedBy,
		revision.ImplementedBy,
		revision.RejectedBy,
		revision.CreatedAt,
		revision.CreatedBy,
		revision.LastUpdatedAt,
		revision.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert revision "+revision.RevisionID, err)
	}
	return nil
}

func (r *PgxRevisionRepository) FindRevisionByID(ctx context.Context, revisionID string) (*domain.GradeRevision, error) {
	query := `SELECT ` + revisionColumns + ` FROM grade_revisions WHERE revision_id = $1;`
	revision, err := scanRevision(r.Pool.QueryRow(ctx, query, revisionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("revision " + revisionID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query revision "+revisionID, err)
	}
	return revision, nil
}

// ListRevisions retrieves a paginated list ordered by effective_date DESC,
// created_at DESC.
func (r *PgxRevisionRepository) ListRevisions(ctx context.Context, filter portsrepo.RevisionFilter, limit int, nextToken *string) ([]domain.GradeRevision, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + revisionColumns + ` FROM grade_revisions WHERE 1=1`
	args := []interface{}{}

	if filter.GradeID != nil {
		args = append(args, *filter.GradeID)
		query += ` AND grade_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
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
		return nil, nil, apperrors.NewAppError(500, "failed to query revisions", err)
	}
	defer rows.Close()

	revisions := make([]domain.GradeRevision, 0, fetchLimit)
	for rows.Next() {
		revision, scanErr := scanRevision(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan revision row", scanErr)
		}
		revisions = append(revisions, *revision)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating revision rows", err)
	}

	var nextTokenVal *string
	if len(revisions) > limit {
		last := revisions[limit-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.CreatedAt)
		nextTokenVal = &token
		revisions = revisions[:limit]
	}
	return revisions, nextTokenVal, nil
}

// UpdateRevisionStatus performs a guarded transition recording the actor in
// the column matching the target status.
func (r *PgxRevisionRepository) UpdateRevisionStatus(ctx context.Context, revisionID string, from, to domain.GradeRevisionStatus, actorID string, at time.Time) error {
	var actorColumn string
	switch to {
	case domain.RevisionPendingReview:
		actorColumn = "reviewed_by"
	case domain.RevisionApproved:
		actorColumn = "approved_by"
	case domain.RevisionImplemented:
		actorColumn = "implemented_by"
	case domain.RevisionRejected:
		actorColumn = "rejected_by"
	default:
		return apperrors.NewAppError(500, "no actor column for revision status "+string(to), nil)
	}

	query := `
		UPDATE grade_revisions
		SET status = $3, ` + actorColumn + ` = $4, last_updated_at = $5, last_updated_by = $4
		WHERE revision_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, revisionID, from, to, actorID, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of revision "+revisionID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindRevisionByID(ctx, revisionID); findErr != nil {
			return findErr
		}
		return apperrors.NewAppError(409, "revision "+revisionID+" is not "+string(from), apperrors.ErrInvalidState)
	}
	return nil
}

// ImplementRevision commits the cascade in a single transaction: guard the
// revision is still Approved, apply the grade and step update, insert the
// per-employee adjustments, and mark the revision Implemented.
func (r *PgxRevisionRepository) ImplementRevision(ctx context.Context, revisionID string, implementedBy string, update portsrepo.GradeBandUpdate, adjustments []domain.SalaryAdjustment, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	flipQuery := `
		UPDATE grade_revisions
		SET status = $3, implemented_by = $4, last_updated_at = $5, last_updated_by = $4
		WHERE revision_id = $1 AND status = $2;
	`
	tag, err := tx.Exec(ctx, flipQuery,
		revisionID, domain.RevisionApproved, domain.RevisionImplemented, implementedBy, at,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to implement revision "+revisionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "revision "+revisionID+" is not approved", apperrors.ErrInvalidState)
	}

	if update.Bands != nil {
		bandQuery := `
			UPDATE salary_grades
			SET min_rate = $2, mid_rate = $3, max_rate = $4, last_updated_at = $5, last_updated_by = $6
			WHERE grade_id = $1;
		`
		if _, err := tx.Exec(ctx, bandQuery,
			update.GradeID, update.Bands.Min, update.Bands.Mid, update.Bands.Max, at, implementedBy,
		); err != nil {
			return apperrors.NewAppError(500, "failed to update bands of grade "+update.GradeID, err)
		}
	} else if update.Percentage != nil {
		factor := decimal.NewFromInt(1).Add(update.Percentage.Div(decimal.NewFromInt(100)))
		upliftQuery := `
			UPDATE salary_steps
			SET min_rate = round(min_rate * $2, 2),
			    base_rate = round(base_rate * $2, 2),
			    max_rate = round(max_rate * $2, 2),
			    last_updated_at = $3, last_updated_by = $4
			WHERE grade_id = $1;
		`
		if _, err := tx.Exec(ctx, upliftQuery, update.GradeID, factor, at, implementedBy); err != nil {
			return apperrors.NewAppError(500, "failed to uplift steps of grade "+update.GradeID, err)
		}
		gradeUpliftQuery := `
			UPDATE salary_grades
			SET min_rate = round(min_rate * $2, 2),
			    mid_rate = round(mid_rate * $2, 2),
			    max_rate = round(max_rate * $2, 2),
			    last_updated_at = $3, last_updated_by = $4
			WHERE grade_id = $1;
		`
		if _, err := tx.Exec(ctx, gradeUpliftQuery, update.GradeID, factor, at, implementedBy); err != nil {
			return apperrors.NewAppError(500, "failed to uplift bands of grade "+update.GradeID, err)
		}
	}

	batch := &pgx.Batch{}
	queueAdjustmentInserts(batch, adjustments)
	results := tx.SendBatch(ctx, batch)
	for range adjustments {
		if _, execErr := results.Exec(); execErr != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert cascade adjustments for revision "+revisionID, execErr)
		}
	}
	if closeErr := results.Close(); closeErr != nil {
		return apperrors.NewAppError(500, "failed to close adjustment batch for revision "+revisionID, closeErr)
	}

	return r.Commit(ctx, tx)
}

func scanRevision(row pgx.Row) (*domain.GradeRevision, error) {
	var rev domain.GradeRevision
	err := row.Scan(
		&rev.RevisionID,
		&rev.GradeID,
		&rev.BeforeMin,
		&rev.BeforeMid,
		&rev.BeforeMax,
		&rev.AfterMin,
		&rev.AfterMid,
		&rev.AfterMax,
		&rev.Percentage,
		&rev.Reason,
		&rev.Status,
		&rev.EffectiveDate,
		&rev.ReviewedBy,
		&rev.ApprovedBy,
		&rev.ImplementedBy,
		&rev.RejectedBy,
		&rev.CreatedAt,
		&rev.CreatedBy,
		&rev.LastUpdatedAt,
		&rev.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}
