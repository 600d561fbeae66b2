package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	runRepo := newPgxRunRepository(dbPool)
	gradeRepo := newPgxGradeRepository(dbPool)
	mappingRepo := newPgxMappingRepository(dbPool)
	revisionRepo := newPgxRevisionRepository(dbPool)
	adjustmentRepo := newPgxAdjustmentRepository(dbPool)
	batchRepo := newPgxBatchRepository(dbPool)
	configRepo := newPgxConfigRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		RunRepo:        runRepo,
		GradeRepo:      gradeRepo,
		MappingRepo:    mappingRepo,
		RevisionRepo:   revisionRepo,
		AdjustmentRepo: adjustmentRepo,
		BatchRepo:      batchRepo,
		ConfigRepo:     configRepo,
		AuditRepo:      auditRepo,
	}
}
