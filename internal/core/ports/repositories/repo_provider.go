package repositories

// RepositoryProvider bundles every repository facade the service layer needs.
type RepositoryProvider struct {
	RunRepo        RunRepositoryFacade
	GradeRepo      GradeRepositoryFacade
	MappingRepo    MappingRepositoryFacade
	RevisionRepo   RevisionRepositoryFacade
	AdjustmentRepo AdjustmentRepositoryFacade
	BatchRepo      BatchRepositoryFacade
	ConfigRepo     ConfigRepositoryFacade
	AuditRepo      AuditRepositoryFacade
}
