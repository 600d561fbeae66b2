package services

import (
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/pkg/config"
)

// NewServiceContainer wires every service with its repositories and
// collaborators.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, collab portssvc.Collaborators) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: nearly everything else writes to it.
	container.Audit = NewAuditService(repos.AuditRepo)

	container.BranchConfig = NewBranchConfigService(repos.ConfigRepo)
	container.Grade = NewGradeService(repos.GradeRepo, container.Audit)
	container.Mapping = NewMappingService(repos.MappingRepo, repos.GradeRepo, container.Audit)
	container.Adjustment = NewAdjustmentService(repos.AdjustmentRepo, repos.MappingRepo, container.Audit)
	container.Revision = NewRevisionService(repos.RevisionRepo, repos.GradeRepo, repos.MappingRepo, container.Audit)
	container.Batch = NewBatchService(repos.BatchRepo, repos.MappingRepo, collab.Directory, container.Audit)

	container.PayrollRun = NewPayrollRunService(
		repos.RunRepo,
		container.BranchConfig,
		collab.Directory,
		collab.Timesheets,
		collab.Bonuses,
		collab.Allowances,
		collab.Deductions,
		container.Audit,
		cfg.ProcessRunTimeout,
	)

	return container
}
