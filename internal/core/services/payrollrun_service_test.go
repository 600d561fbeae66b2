package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/core/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
)

type PayrollRunServiceTestSuite struct {
	suite.Suite
	mockRunRepo    *MockRunRepository
	mockConfigSvc  *MockBranchConfigService
	mockDirectory  *MockEmployeeDirectory
	mockTimesheets *MockTimesheetAggregator
	mockBonuses    *MockBonusSource
	mockAllowances *MockAllowanceSource
	mockDeductions *MockDeductionSource
	mockAudit      *MockAuditSink
	service        portssvc.PayrollRunSvcFacade
}

func (suite *PayrollRunServiceTestSuite) SetupTest() {
	suite.mockRunRepo = new(MockRunRepository)
	suite.mockConfigSvc = new(MockBranchConfigService)
	suite.mockDirectory = new(MockEmployeeDirectory)
	suite.mockTimesheets = new(MockTimesheetAggregator)
	suite.mockBonuses = new(MockBonusSource)
	suite.mockAllowances = new(MockAllowanceSource)
	suite.mockDeductions = new(MockDeductionSource)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewPayrollRunService(
		suite.mockRunRepo,
		suite.mockConfigSvc,
		suite.mockDirectory,
		suite.mockTimesheets,
		suite.mockBonuses,
		suite.mockAllowances,
		suite.mockDeductions,
		suite.mockAudit,
		time.Minute,
	)
}

// julyPeriod is a month with 23 weekdays, so a monthly salary pays in full.
func julyPeriod() (time.Time, time.Time) {
	return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *PayrollRunServiceTestSuite) TestCreateRun_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	start, end := julyPeriod()
	req := dto.CreateRunRequest{
		BranchID:    uuid.NewString(),
		PeriodStart: start,
		PeriodEnd:   end,
		PayDate:     end.AddDate(0, 0, 5),
	}

	suite.mockRunRepo.On("FindOverlappingRun", ctx, req.BranchID, start, end).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRunRepo.On("SaveRun", ctx, mock.AnythingOfType("domain.PayrollRun")).
		Return(nil).Once()

	run, err := suite.service.CreateRun(ctx, req, actorID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), run)
	assert.NotEmpty(suite.T(), run.RunID)
	assert.Equal(suite.T(), req.BranchID, run.BranchID)
	assert.Equal(suite.T(), domain.RunDraft, run.Status)
	assert.Equal(suite.T(), actorID, run.CreatedBy)
	suite.mockRunRepo.AssertExpectations(suite.T())
}

func (suite *PayrollRunServiceTestSuite) TestCreateRun_PeriodOrderRejected() {
	ctx := context.Background()
	start, end := julyPeriod()
	req := dto.CreateRunRequest{
		BranchID:    uuid.NewString(),
		PeriodStart: end,
		PeriodEnd:   start,
		PayDate:     end,
	}

	run, err := suite.service.CreateRun(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), run)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockRunRepo.AssertNotCalled(suite.T(), "SaveRun", mock.Anything, mock.Anything)
}

func (suite *PayrollRunServiceTestSuite) TestCreateRun_PayDateOrderRejected() {
	ctx := context.Background()
	start, end := julyPeriod()
	req := dto.CreateRunRequest{
		BranchID:    uuid.NewString(),
		PeriodStart: start,
		PeriodEnd:   end,
		PayDate:     end.AddDate(0, 0, -3),
	}

	run, err := suite.service.CreateRun(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), run)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *PayrollRunServiceTestSuite) TestCreateRun_OverlapRejected() {
	ctx := context.Background()
	start, end := julyPeriod()
	req := dto.CreateRunRequest{
		BranchID:    uuid.NewString(),
		PeriodStart: start,
		PeriodEnd:   end,
		PayDate:     end,
	}
	existing := &domain.PayrollRun{RunID: uuid.NewString(), BranchID: req.BranchID, Status: domain.RunCompleted}

	suite.mockRunRepo.On("FindOverlappingRun", ctx, req.BranchID, start, end).
		Return(existing, nil).Once()

	run, err := suite.service.CreateRun(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), run)
	assert.ErrorIs(suite.T(), err, apperrors.ErrConflict)
	suite.mockRunRepo.AssertNotCalled(suite.T(), "SaveRun", mock.Anything, mock.Anything)
	suite.mockRunRepo.AssertExpectations(suite.T())
}

func (suite *PayrollRunServiceTestSuite) TestProcessRun_Success() {
	ctx := context.Background()
	runID := uuid.NewString()
	branchID := uuid.NewString()
	actorID := uuid.NewString()
	employeeID := uuid.NewString()
	skippedID := uuid.NewString()
	start, end := julyPeriod()

	draft := &domain.PayrollRun{
		RunID:       runID,
		BranchID:    branchID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      domain.RunDraft,
	}

	suite.mockRunRepo.On("FindRunByID", mock.Anything, runID).Return(draft, nil).Once()
	suite.mockConfigSvc.On("GetBranchConfig", mock.Anything, branchID).
		Return(domain.DefaultBranchConfig(branchID), nil).Once()
	suite.mockConfigSvc.On("GetTaxTable", mock.Anything, domain.DefaultTaxTableVersion).
		Return(domain.DefaultTaxTable(), nil).Once()
	suite.mockDirectory.On("ListActiveByBranch", mock.Anything, branchID, end).
		Return([]domain.EmployeePayProfile{
			{EmployeeID: employeeID, PayFrequency: domain.Monthly, BaseSalary: d("30000"), HasSalary: true},
			{EmployeeID: skippedID, HasSalary: false},
		}, nil).Once()

	suite.mockTimesheets.On("Summarize", mock.Anything, employeeID, start, end).
		Return(domain.TimesheetSummary{}, nil).Once()
	suite.mockBonuses.On("SumBonuses", mock.Anything, employeeID, start, end).
		Return(d("0"), nil).Once()
	suite.mockAllowances.On("SumAllowances", mock.Anything, employeeID, start, end).
		Return(d("0"), nil).Once()
	suite.mockDeductions.On("Summarize", mock.Anything, employeeID, start, end).
		Return(domain.DeductionSummary{Voluntary: d("500"), HMOPremium: d("250")}, nil).Once()

	var savedPayslips []domain.Payslip
	suite.mockRunRepo.On("CompleteRunAtomic", mock.Anything, mock.AnythingOfType("domain.PayrollRun"), mock.AnythingOfType("[]domain.Payslip")).
		Run(func(args mock.Arguments) {
			savedPayslips = args.Get(2).([]domain.Payslip)
		}).Return(nil).Once()
	suite.mockAudit.On("Record", mock.Anything, mock.AnythingOfType("domain.AuditEntry")).Return().Once()

	result, err := suite.service.ProcessRun(ctx, runID, actorID, "PAYROLL_ADMIN")

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.Equal(suite.T(), domain.RunCompleted, result.Run.Status)
	assert.Equal(suite.T(), 1, result.Run.EmployeeCount)

	// 30,000 gross: 2,250 statutory, 1,383.40 tax, 750 other deductions.
	assert.True(suite.T(), result.Run.TotalGross.Equal(d("30000")), "gross %s", result.Run.TotalGross)
	assert.True(suite.T(), result.Run.TotalDeductions.Equal(d("4383.40")), "deductions %s", result.Run.TotalDeductions)
	assert.True(suite.T(), result.Run.TotalNet.Equal(d("25616.60")), "net %s", result.Run.TotalNet)

	if assert.Len(suite.T(), savedPayslips, 1) {
		slip := savedPayslips[0]
		assert.Equal(suite.T(), employeeID, slip.EmployeeID)
		assert.True(suite.T(), slip.BasicPay.Equal(d("30000")))
		assert.True(suite.T(), slip.SocialInsurance.Equal(d("1350")))
		assert.True(suite.T(), slip.HealthInsurance.Equal(d("600")))
		assert.True(suite.T(), slip.HousingFund.Equal(d("300")))
		assert.True(suite.T(), slip.WithholdingTax.Equal(d("1383.40")))
		assert.True(suite.T(), slip.OtherDeductions.Equal(d("750")))
		assert.True(suite.T(), slip.Net.Equal(d("25616.60")), "net %s", slip.Net)
		assert.Equal(suite.T(), 1, slip.Trace.TaxBracket)
		assert.Equal(suite.T(), domain.DefaultTaxTableVersion, slip.Trace.TaxTableVersion)
	}

	if assert.Len(suite.T(), result.Skipped, 1) {
		assert.Equal(suite.T(), skippedID, result.Skipped[0].EmployeeID)
		assert.Equal(suite.T(), "no current salary record", result.Skipped[0].Reason)
	}

	suite.mockRunRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *PayrollRunServiceTestSuite) TestProcessRun_DeductionSourceFailureDegradesToZero() {
	ctx := context.Background()
	runID := uuid.NewString()
	branchID := uuid.NewString()
	employeeID := uuid.NewString()
	start, end := julyPeriod()

	draft := &domain.PayrollRun{
		RunID:       runID,
		BranchID:    branchID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      domain.RunDraft,
	}

	suite.mockRunRepo.On("FindRunByID", mock.Anything, runID).Return(draft, nil).Once()
	suite.mockConfigSvc.On("GetBranchConfig", mock.Anything, branchID).
		Return(domain.DefaultBranchConfig(branchID), nil).Once()
	suite.mockConfigSvc.On("GetTaxTable", mock.Anything, domain.DefaultTaxTableVersion).
		Return(domain.DefaultTaxTable(), nil).Once()
	suite.mockDirectory.On("ListActiveByBranch", mock.Anything, branchID, end).
		Return([]domain.EmployeePayProfile{
			{EmployeeID: employeeID, PayFrequency: domain.Monthly, BaseSalary: d("30000"), HasSalary: true},
		}, nil).Once()

	suite.mockTimesheets.On("Summarize", mock.Anything, employeeID, start, end).
		Return(domain.TimesheetSummary{}, nil).Once()
	suite.mockBonuses.On("SumBonuses", mock.Anything, employeeID, start, end).
		Return(d("0"), nil).Once()
	suite.mockAllowances.On("SumAllowances", mock.Anything, employeeID, start, end).
		Return(d("0"), nil).Once()
	suite.mockDeductions.On("Summarize", mock.Anything, employeeID, start, end).
		Return(domain.DeductionSummary{}, errors.New("hmo system down")).Once()

	suite.mockRunRepo.On("CompleteRunAtomic", mock.Anything, mock.AnythingOfType("domain.PayrollRun"), mock.AnythingOfType("[]domain.Payslip")).
		Return(nil).Once()
	suite.mockAudit.On("Record", mock.Anything, mock.AnythingOfType("domain.AuditEntry")).Return().Once()

	result, err := suite.service.ProcessRun(ctx, runID, uuid.NewString(), "PAYROLL_ADMIN")

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.True(suite.T(), result.Run.TotalNet.Equal(d("26366.60")), "net %s", result.Run.TotalNet)
	suite.mockRunRepo.AssertExpectations(suite.T())
}

func (suite *PayrollRunServiceTestSuite) TestProcessRun_TimesheetFailureAbortsRun() {
	ctx := context.Background()
	runID := uuid.NewString()
	branchID := uuid.NewString()
	employeeID := uuid.NewString()
	start, end := julyPeriod()

	draft := &domain.PayrollRun{
		RunID:       runID,
		BranchID:    branchID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      domain.RunDraft,
	}

	suite.mockRunRepo.On("FindRunByID", mock.Anything, runID).Return(draft, nil).Once()
	suite.mockConfigSvc.On("GetBranchConfig", mock.Anything, branchID).
		Return(domain.DefaultBranchConfig(branchID), nil).Once()
	suite.mockConfigSvc.On("GetTaxTable", mock.Anything, domain.DefaultTaxTableVersion).
		Return(domain.DefaultTaxTable(), nil).Once()
	suite.mockDirectory.On("ListActiveByBranch", mock.Anything, branchID, end).
		Return([]domain.EmployeePayProfile{
			{EmployeeID: employeeID, PayFrequency: domain.Monthly, BaseSalary: d("30000"), HasSalary: true},
		}, nil).Once()
	suite.mockTimesheets.On("Summarize", mock.Anything, employeeID, start, end).
		Return(domain.TimesheetSummary{}, errors.New("timesheet store unreachable")).Once()

	result, err := suite.service.ProcessRun(ctx, runID, uuid.NewString(), "PAYROLL_ADMIN")

	assert.Nil(suite.T(), result)
	assert.Error(suite.T(), err)
	suite.mockRunRepo.AssertNotCalled(suite.T(), "CompleteRunAtomic", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PayrollRunServiceTestSuite) TestProcessRun_NotDraftRejected() {
	ctx := context.Background()
	runID := uuid.NewString()
	completed := &domain.PayrollRun{RunID: runID, Status: domain.RunCompleted}

	suite.mockRunRepo.On("FindRunByID", mock.Anything, runID).Return(completed, nil).Once()

	result, err := suite.service.ProcessRun(ctx, runID, uuid.NewString(), "PAYROLL_ADMIN")

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *PayrollRunServiceTestSuite) TestApproveRun_Success() {
	ctx := context.Background()
	runID := uuid.NewString()
	actorID := uuid.NewString()
	completed := &domain.PayrollRun{RunID: runID, Status: domain.RunCompleted}
	approved := &domain.PayrollRun{RunID: runID, Status: domain.RunApproved}

	suite.mockRunRepo.On("FindRunByID", ctx, runID).Return(completed, nil).Once()
	suite.mockRunRepo.On("UpdateRunStatus", ctx, runID, domain.RunCompleted, domain.RunApproved, actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()
	suite.mockRunRepo.On("FindRunByID", ctx, runID).Return(approved, nil).Once()

	run, err := suite.service.ApproveRun(ctx, runID, actorID, "PAYROLL_MANAGER")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.RunApproved, run.Status)
	suite.mockRunRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *PayrollRunServiceTestSuite) TestApproveRun_NotCompletedRejected() {
	ctx := context.Background()
	runID := uuid.NewString()
	draft := &domain.PayrollRun{RunID: runID, Status: domain.RunDraft}

	suite.mockRunRepo.On("FindRunByID", ctx, runID).Return(draft, nil).Once()

	run, err := suite.service.ApproveRun(ctx, runID, uuid.NewString(), "PAYROLL_MANAGER")

	assert.Nil(suite.T(), run)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockRunRepo.AssertNotCalled(suite.T(), "UpdateRunStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PayrollRunServiceTestSuite) TestLockRun_NotApprovedRejected() {
	ctx := context.Background()
	runID := uuid.NewString()
	completed := &domain.PayrollRun{RunID: runID, Status: domain.RunCompleted}

	suite.mockRunRepo.On("FindRunByID", ctx, runID).Return(completed, nil).Once()

	run, err := suite.service.LockRun(ctx, runID, uuid.NewString(), "PAYROLL_MANAGER")

	assert.Nil(suite.T(), run)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *PayrollRunServiceTestSuite) TestVoidPayslip_Success() {
	ctx := context.Background()
	payslipID := uuid.NewString()
	actorID := uuid.NewString()

	suite.mockRunRepo.On("VoidPayslip", ctx, payslipID, actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()

	err := suite.service.VoidPayslip(ctx, payslipID, actorID, "PAYROLL_ADMIN")

	assert.NoError(suite.T(), err)
	suite.mockRunRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *PayrollRunServiceTestSuite) TestVoidPayslip_LockedRunPropagates() {
	ctx := context.Background()
	payslipID := uuid.NewString()

	suite.mockRunRepo.On("VoidPayslip", ctx, payslipID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrInvalidState).Once()

	err := suite.service.VoidPayslip(ctx, payslipID, uuid.NewString(), "PAYROLL_ADMIN")

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockAudit.AssertNotCalled(suite.T(), "Record", mock.Anything, mock.Anything)
}

func TestPayrollRunServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PayrollRunServiceTestSuite))
}
