package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
)

// Shared hand-written mocks for every repository facade and collaborator
// port. Each service suite picks the ones it needs.

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// MockRunRepository is a mock type for the RunRepositoryFacade interface
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, run domain.PayrollRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) FindRunByID(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayrollRun), args.Error(1)
}

func (m *MockRunRepository) FindOverlappingRun(ctx context.Context, branchID string, periodStart, periodEnd time.Time) (*domain.PayrollRun, error) {
	args := m.Called(ctx, branchID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayrollRun), args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, filter portsrepo.RunFilter, limit int, nextToken *string) ([]domain.PayrollRun, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var runs []domain.PayrollRun
	if args.Get(0) != nil {
		runs = args.Get(0).([]domain.PayrollRun)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return runs, token, args.Error(2)
}

func (m *MockRunRepository) CompleteRunAtomic(ctx context.Context, run domain.PayrollRun, payslips []domain.Payslip) error {
	args := m.Called(ctx, run, payslips)
	return args.Error(0)
}

func (m *MockRunRepository) UpdateRunStatus(ctx context.Context, runID string, from, to domain.PayrollRunStatus, actorID string, at time.Time) error {
	args := m.Called(ctx, runID, from, to, actorID, at)
	return args.Error(0)
}

func (m *MockRunRepository) FindPayslipByID(ctx context.Context, payslipID string) (*domain.Payslip, error) {
	args := m.Called(ctx, payslipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payslip), args.Error(1)
}

func (m *MockRunRepository) ListPayslipsByRun(ctx context.Context, runID string, limit int, nextToken *string) ([]domain.Payslip, *string, error) {
	args := m.Called(ctx, runID, limit, nextToken)
	var slips []domain.Payslip
	if args.Get(0) != nil {
		slips = args.Get(0).([]domain.Payslip)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return slips, token, args.Error(2)
}

func (m *MockRunRepository) VoidPayslip(ctx context.Context, payslipID string, actorID string, at time.Time) error {
	args := m.Called(ctx, payslipID, actorID, at)
	return args.Error(0)
}

// MockGradeRepository is a mock type for the GradeRepositoryFacade interface
type MockGradeRepository struct {
	mock.Mock
}

func (m *MockGradeRepository) SaveGrade(ctx context.Context, grade domain.SalaryGrade) error {
	args := m.Called(ctx, grade)
	return args.Error(0)
}

func (m *MockGradeRepository) FindGradeByID(ctx context.Context, gradeID string) (*domain.SalaryGrade, error) {
	args := m.Called(ctx, gradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalaryGrade), args.Error(1)
}

func (m *MockGradeRepository) ListGrades(ctx context.Context, filter portsrepo.GradeFilter, limit int, nextToken *string) ([]domain.SalaryGrade, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var grades []domain.SalaryGrade
	if args.Get(0) != nil {
		grades = args.Get(0).([]domain.SalaryGrade)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return grades, token, args.Error(2)
}

func (m *MockGradeRepository) ActivateGrade(ctx context.Context, gradeID string, actorID string, at time.Time) error {
	args := m.Called(ctx, gradeID, actorID, at)
	return args.Error(0)
}

// MockMappingRepository is a mock type for the MappingRepositoryFacade interface
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) SaveMapping(ctx context.Context, mapping domain.EmployeeGradeMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) FindMappingByID(ctx context.Context, mappingID string) (*domain.EmployeeGradeMapping, error) {
	args := m.Called(ctx, mappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeGradeMapping), args.Error(1)
}

func (m *MockMappingRepository) FindCurrentMapping(ctx context.Context, employeeID string, asOf time.Time) (*domain.EmployeeGradeMapping, error) {
	args := m.Called(ctx, employeeID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeGradeMapping), args.Error(1)
}

func (m *MockMappingRepository) ListCurrentMappingsByGrade(ctx context.Context, gradeID string, asOf time.Time) ([]domain.EmployeeGradeMapping, error) {
	args := m.Called(ctx, gradeID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeeGradeMapping), args.Error(1)
}

func (m *MockMappingRepository) ListCurrentMappingsByGrades(ctx context.Context, gradeIDs []string, asOf time.Time) ([]domain.EmployeeGradeMapping, error) {
	args := m.Called(ctx, gradeIDs, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeeGradeMapping), args.Error(1)
}

func (m *MockMappingRepository) ListMappings(ctx context.Context, filter portsrepo.MappingFilter, limit int, nextToken *string) ([]domain.EmployeeGradeMapping, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var mappings []domain.EmployeeGradeMapping
	if args.Get(0) != nil {
		mappings = args.Get(0).([]domain.EmployeeGradeMapping)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return mappings, token, args.Error(2)
}

func (m *MockMappingRepository) ApproveMapping(ctx context.Context, mapping domain.EmployeeGradeMapping, approvedBy string, at time.Time) error {
	args := m.Called(ctx, mapping, approvedBy, at)
	return args.Error(0)
}

// MockRevisionRepository is a mock type for the RevisionRepositoryFacade interface
type MockRevisionRepository struct {
	mock.Mock
}

func (m *MockRevisionRepository) SaveRevision(ctx context.Context, revision domain.GradeRevision) error {
	args := m.Called(ctx, revision)
	return args.Error(0)
}

func (m *MockRevisionRepository) FindRevisionByID(ctx context.Context, revisionID string) (*domain.GradeRevision, error) {
	args := m.Called(ctx, revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GradeRevision), args.Error(1)
}

func (m *MockRevisionRepository) ListRevisions(ctx context.Context, filter portsrepo.RevisionFilter, limit int, nextToken *string) ([]domain.GradeRevision, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var revisions []domain.GradeRevision
	if args.Get(0) != nil {
		revisions = args.Get(0).([]domain.GradeRevision)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return revisions, token, args.Error(2)
}

func (m *MockRevisionRepository) UpdateRevisionStatus(ctx context.Context, revisionID string, from, to domain.GradeRevisionStatus, actorID string, at time.Time) error {
	args := m.Called(ctx, revisionID, from, to, actorID, at)
	return args.Error(0)
}

func (m *MockRevisionRepository) ImplementRevision(ctx context.Context, revisionID string, implementedBy string, update portsrepo.GradeBandUpdate, adjustments []domain.SalaryAdjustment, at time.Time) error {
	args := m.Called(ctx, revisionID, implementedBy, update, adjustments, at)
	return args.Error(0)
}

// MockAdjustmentRepository is a mock type for the AdjustmentRepositoryFacade interface
type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) SaveAdjustment(ctx context.Context, adjustment domain.SalaryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) FindAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.SalaryAdjustment, error) {
	args := m.Called(ctx, adjustmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalaryAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) ListAdjustments(ctx context.Context, filter portsrepo.AdjustmentFilter, limit int, nextToken *string) ([]domain.SalaryAdjustment, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var adjustments []domain.SalaryAdjustment
	if args.Get(0) != nil {
		adjustments = args.Get(0).([]domain.SalaryAdjustment)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return adjustments, token, args.Error(2)
}

func (m *MockAdjustmentRepository) UpdateAdjustmentStatus(ctx context.Context, adjustmentID string, from, to domain.SalaryAdjustmentStatus, field portsrepo.ActorField, actorID string, at time.Time) error {
	args := m.Called(ctx, adjustmentID, from, to, field, actorID, at)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) ImplementAdjustment(ctx context.Context, adjustment domain.SalaryAdjustment, newMapping domain.EmployeeGradeMapping, implementedBy string, at time.Time) error {
	args := m.Called(ctx, adjustment, newMapping, implementedBy, at)
	return args.Error(0)
}

// MockBatchRepository is a mock type for the BatchRepositoryFacade interface
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) SaveWorkflow(ctx context.Context, workflow domain.PayAdjustmentWorkflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockBatchRepository) FindWorkflowByID(ctx context.Context, workflowID string) (*domain.PayAdjustmentWorkflow, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayAdjustmentWorkflow), args.Error(1)
}

func (m *MockBatchRepository) ListWorkflows(ctx context.Context, filter portsrepo.WorkflowFilter, limit int, nextToken *string) ([]domain.PayAdjustmentWorkflow, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var workflows []domain.PayAdjustmentWorkflow
	if args.Get(0) != nil {
		workflows = args.Get(0).([]domain.PayAdjustmentWorkflow)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return workflows, token, args.Error(2)
}

func (m *MockBatchRepository) SaveImpactSnapshot(ctx context.Context, workflowID string, totalImpact decimal.Decimal, affectedCount int, at time.Time) error {
	args := m.Called(ctx, workflowID, totalImpact, affectedCount, at)
	return args.Error(0)
}

func (m *MockBatchRepository) ReplaceWorkflowDetails(ctx context.Context, workflowID string, details []domain.WorkflowDetail) error {
	args := m.Called(ctx, workflowID, details)
	return args.Error(0)
}

func (m *MockBatchRepository) ListWorkflowDetails(ctx context.Context, workflowID string) ([]domain.WorkflowDetail, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkflowDetail), args.Error(1)
}

func (m *MockBatchRepository) UpdateWorkflowStatus(ctx context.Context, workflowID string, from, to domain.PayAdjustmentWorkflowStatus, actorID string, at time.Time) error {
	args := m.Called(ctx, workflowID, from, to, actorID, at)
	return args.Error(0)
}

func (m *MockBatchRepository) ImplementWorkflow(ctx context.Context, workflowID string, implementedBy string, adjustments []domain.SalaryAdjustment, at time.Time) error {
	args := m.Called(ctx, workflowID, implementedBy, adjustments, at)
	return args.Error(0)
}

// MockConfigRepository is a mock type for the ConfigRepositoryFacade interface
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) FindBranchConfig(ctx context.Context, branchID string) (*domain.BranchConfig, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BranchConfig), args.Error(1)
}

func (m *MockConfigRepository) FindTaxTable(ctx context.Context, version string) (*domain.TaxTable, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxTable), args.Error(1)
}

// MockAuditRepository is a mock type for the AuditRepositoryFacade interface
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveEntry(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListEntries(ctx context.Context, filter portsrepo.AuditFilter, limit int, nextToken *string) ([]domain.AuditEntry, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var entries []domain.AuditEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.AuditEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

// MockBranchConfigService is a mock type for the BranchConfigSvcFacade interface
type MockBranchConfigService struct {
	mock.Mock
}

func (m *MockBranchConfigService) GetBranchConfig(ctx context.Context, branchID string) (domain.BranchConfig, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).(domain.BranchConfig), args.Error(1)
}

func (m *MockBranchConfigService) GetTaxTable(ctx context.Context, version string) (domain.TaxTable, error) {
	args := m.Called(ctx, version)
	return args.Get(0).(domain.TaxTable), args.Error(1)
}

// MockEmployeeDirectory is a mock type for the EmployeeDirectory interface
type MockEmployeeDirectory struct {
	mock.Mock
}

func (m *MockEmployeeDirectory) ListActiveByBranch(ctx context.Context, branchID string, asOf time.Time) ([]domain.EmployeePayProfile, error) {
	args := m.Called(ctx, branchID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeePayProfile), args.Error(1)
}

func (m *MockEmployeeDirectory) FindPayProfile(ctx context.Context, employeeID string, asOf time.Time) (*domain.EmployeePayProfile, error) {
	args := m.Called(ctx, employeeID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeePayProfile), args.Error(1)
}

func (m *MockEmployeeDirectory) ListByDepartmentsOrPositions(ctx context.Context, departmentIDs, positionIDs []string, asOf time.Time) ([]domain.EmployeePayProfile, error) {
	args := m.Called(ctx, departmentIDs, positionIDs, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeePayProfile), args.Error(1)
}

// MockTimesheetAggregator is a mock type for the TimesheetAggregator interface
type MockTimesheetAggregator struct {
	mock.Mock
}

func (m *MockTimesheetAggregator) Summarize(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (domain.TimesheetSummary, error) {
	args := m.Called(ctx, employeeID, periodStart, periodEnd)
	return args.Get(0).(domain.TimesheetSummary), args.Error(1)
}

// MockBonusSource is a mock type for the BonusSource interface
type MockBonusSource struct {
	mock.Mock
}

func (m *MockBonusSource) SumBonuses(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, employeeID, periodStart, periodEnd)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockAllowanceSource is a mock type for the AllowanceSource interface
type MockAllowanceSource struct {
	mock.Mock
}

func (m *MockAllowanceSource) SumAllowances(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, employeeID, periodStart, periodEnd)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDeductionSource is a mock type for the DeductionSource interface
type MockDeductionSource struct {
	mock.Mock
}

func (m *MockDeductionSource) Summarize(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (domain.DeductionSummary, error) {
	args := m.Called(ctx, employeeID, periodStart, periodEnd)
	return args.Get(0).(domain.DeductionSummary), args.Error(1)
}

// MockAuditSink is a mock type for the AuditSink interface
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, entry domain.AuditEntry) {
	m.Called(ctx, entry)
}
