package services

// ServiceContainer holds every service facade the handlers consume.
type ServiceContainer struct {
	PayrollRun   PayrollRunSvcFacade
	BranchConfig BranchConfigSvcFacade
	Grade        GradeSvcFacade
	Mapping      MappingSvcFacade
	Revision     RevisionSvcFacade
	Adjustment   AdjustmentSvcFacade
	Batch        BatchSvcFacade
	Audit        AuditSvcFacade
}

// Collaborators bundles the external read-only data sources the run engine
// and batch workflow consume.
type Collaborators struct {
	Directory  EmployeeDirectory
	Timesheets TimesheetAggregator
	Bonuses    BonusSource
	Allowances AllowanceSource
	Deductions DeductionSource
}
