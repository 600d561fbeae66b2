package pgsql

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	"github.com/hospicore/hr_payroll_app/internal/utils/pagination"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the append-only audit
// trail. Entries are never updated or deleted.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) SaveEntry(ctx context.Context, entry domain.AuditEntry) error {
	var detailsJSON []byte
	if entry.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(entry.Details)
		if err != nil {
			return apperrors.NewAppError(500, "failed to marshal audit details", err)
		}
	}

	query := `
		INSERT INTO audit_entries (entry_id, run_id, payslip_id, action, actor_id, actor_role, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.EntryID, entry.RunID, entry.PayslipID,
		entry.Action, entry.ActorID, entry.ActorRole,
		detailsJSON, entry.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entry "+entry.EntryID, err)
	}
	return nil
}

// ListEntries retrieves a paginated slice of the trail, newest first.
func (r *PgxAuditRepository) ListEntries(ctx context.Context, filter portsrepo.AuditFilter, limit int, nextToken *string) ([]domain.AuditEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT entry_id, run_id, payslip_id, action, actor_id, actor_role, details, created_at
		FROM audit_entries WHERE 1=1`
	args := []interface{}{}

	if filter.RunID != nil {
		args = append(args, *filter.RunID)
		query += ` AND run_id = $` + strconv.Itoa(len(args))
	}
	if filter.PayslipID != nil {
		args = append(args, *filter.PayslipID)
		query += ` AND payslip_id = $` + strconv.Itoa(len(args))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		query += ` AND actor_id = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastEntryID, decodeErr := pagination.DecodeKeyToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastEntryID)
		query += ` AND (created_at, entry_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query audit entries", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0, fetchLimit)
	for rows.Next() {
		var e domain.AuditEntry
		var detailsJSON []byte
		if err := rows.Scan(
			&e.EntryID, &e.RunID, &e.PayslipID,
			&e.Action, &e.ActorID, &e.ActorRole,
			&detailsJSON, &e.CreatedAt,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan audit entry row", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &e.Details); err != nil {
				return nil, nil, apperrors.NewAppError(500, "failed to decode audit entry details", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating audit entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeKeyToken(last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}
