package services_test

import (
	"context"
	"testing"

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

type BatchServiceTestSuite struct {
	suite.Suite
	mockBatchRepo   *MockBatchRepository
	mockMappingRepo *MockMappingRepository
	mockDirectory   *MockEmployeeDirectory
	mockAudit       *MockAuditSink
	service         portssvc.BatchSvcFacade
}

func (suite *BatchServiceTestSuite) SetupTest() {
	suite.mockBatchRepo = new(MockBatchRepository)
	suite.mockMappingRepo = new(MockMappingRepository)
	suite.mockDirectory = new(MockEmployeeDirectory)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewBatchService(
		suite.mockBatchRepo,
		suite.mockMappingRepo,
		suite.mockDirectory,
		suite.mockAudit,
	)
}

func (suite *BatchServiceTestSuite) TestCreateWorkflow_Success() {
	ctx := context.Background()
	req := dto.CreateWorkflowRequest{
		Name:            "Q3 nursing uplift",
		AdjustmentType:  "PERCENTAGE",
		AdjustmentValue: d("5"),
		TargetGradeIDs:  []string{uuid.NewString()},
	}

	suite.mockBatchRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.PayAdjustmentWorkflow")).
		Return(nil).Once()

	workflow, err := suite.service.CreateWorkflow(ctx, req, uuid.NewString())

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), workflow)
	assert.Equal(suite.T(), domain.WorkflowDraft, workflow.Status)
	assert.Equal(suite.T(), domain.AdjustPercentage, workflow.AdjustmentType)
	suite.mockBatchRepo.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestCreateWorkflow_NoTargetDimensionRejected() {
	ctx := context.Background()
	req := dto.CreateWorkflowRequest{
		Name:            "aimless",
		AdjustmentType:  "PERCENTAGE",
		AdjustmentValue: d("5"),
	}

	workflow, err := suite.service.CreateWorkflow(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), workflow)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockBatchRepo.AssertNotCalled(suite.T(), "SaveWorkflow", mock.Anything, mock.Anything)
}

func (suite *BatchServiceTestSuite) TestCalculateImpact_PercentageOverGradeTargets() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	gradeID := uuid.NewString()
	workflow := &domain.PayAdjustmentWorkflow{
		WorkflowID:      workflowID,
		Name:            "annual uplift",
		AdjustmentType:  domain.AdjustPercentage,
		AdjustmentValue: d("10"),
		TargetGradeIDs:  []string{gradeID},
		Status:          domain.WorkflowDraft,
	}
	mappings := []domain.EmployeeGradeMapping{
		{MappingID: uuid.NewString(), EmployeeID: uuid.NewString(), GradeID: gradeID, CurrentSalary: d("26000")},
		{MappingID: uuid.NewString(), EmployeeID: uuid.NewString(), GradeID: gradeID, CurrentSalary: d("30000")},
	}

	suite.mockBatchRepo.On("FindWorkflowByID", ctx, workflowID).Return(workflow, nil).Once()
	suite.mockMappingRepo.On("ListCurrentMappingsByGrades", ctx, []string{gradeID}, mock.AnythingOfType("time.Time")).
		Return(mappings, nil).Once()
	suite.mockBatchRepo.On("SaveImpactSnapshot", ctx, workflowID, mock.Anything, 2, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	impact, err := suite.service.CalculateImpact(ctx, workflowID, uuid.NewString())

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, impact.AffectedCount)
	// 10% of 26,000 plus 10% of 30,000.
	assert.True(suite.T(), impact.TotalImpact.Equal(d("5600")), "impact %s", impact.TotalImpact)
	suite.mockBatchRepo.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestCreateWorkflowDetails_FixedAmountOverDepartments() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	departmentID := uuid.NewString()
	mappedID := uuid.NewString()
	unmappedID := uuid.NewString()
	workflow := &domain.PayAdjustmentWorkflow{
		WorkflowID:          workflowID,
		Name:                "allowance consolidation",
		AdjustmentType:      domain.AdjustFixedAmount,
		AdjustmentValue:     d("1000"),
		TargetDepartmentIDs: []string{departmentID},
		Status:              domain.WorkflowDraft,
	}
	profiles := []domain.EmployeePayProfile{
		{EmployeeID: mappedID, DepartmentID: &departmentID},
		{EmployeeID: unmappedID, DepartmentID: &departmentID},
	}
	mapping := &domain.EmployeeGradeMapping{
		MappingID:     uuid.NewString(),
		EmployeeID:    mappedID,
		GradeID:       uuid.NewString(),
		CurrentSalary: d("26000"),
	}

	suite.mockBatchRepo.On("FindWorkflowByID", ctx, workflowID).Return(workflow, nil).Once()
	suite.mockDirectory.On("ListByDepartmentsOrPositions", ctx, []string{departmentID}, []string(nil), mock.AnythingOfType("time.Time")).
		Return(profiles, nil).Once()
	suite.mockMappingRepo.On("FindCurrentMapping", ctx, mappedID, mock.AnythingOfType("time.Time")).
		Return(mapping, nil).Once()
	suite.mockMappingRepo.On("FindCurrentMapping", ctx, unmappedID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockBatchRepo.On("ReplaceWorkflowDetails", ctx, workflowID, mock.AnythingOfType("[]domain.WorkflowDetail")).
		Return(nil).Once()

	details, err := suite.service.CreateWorkflowDetails(ctx, workflowID, uuid.NewString())

	assert.NoError(suite.T(), err)
	if assert.Len(suite.T(), details, 1) {
		assert.Equal(suite.T(), mappedID, details[0].EmployeeID)
		assert.True(suite.T(), details[0].NewSalary.Equal(d("27000")))
		assert.True(suite.T(), details[0].Impact.Equal(d("1000")))
	}
	suite.mockBatchRepo.AssertExpectations(suite.T())
	suite.mockMappingRepo.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestCreateWorkflowDetails_DeduplicatesAcrossDimensions() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	gradeID := uuid.NewString()
	departmentID := uuid.NewString()
	sharedID := uuid.NewString()
	workflow := &domain.PayAdjustmentWorkflow{
		WorkflowID:          workflowID,
		Name:                "overlap check",
		AdjustmentType:      domain.AdjustPercentage,
		AdjustmentValue:     d("10"),
		TargetGradeIDs:      []string{gradeID},
		TargetDepartmentIDs: []string{departmentID},
		Status:              domain.WorkflowDraft,
	}
	mappings := []domain.EmployeeGradeMapping{
		{MappingID: uuid.NewString(), EmployeeID: sharedID, GradeID: gradeID, CurrentSalary: d("26000")},
	}
	// The same employee also matches the department dimension.
	profiles := []domain.EmployeePayProfile{
		{EmployeeID: sharedID, DepartmentID: &departmentID},
	}

	suite.mockBatchRepo.On("FindWorkflowByID", ctx, workflowID).Return(workflow, nil).Once()
	suite.mockMappingRepo.On("ListCurrentMappingsByGrades", ctx, []string{gradeID}, mock.AnythingOfType("time.Time")).
		Return(mappings, nil).Once()
	suite.mockDirectory.On("ListByDepartmentsOrPositions", ctx, []string{departmentID}, []string(nil), mock.AnythingOfType("time.Time")).
		Return(profiles, nil).Once()
	suite.mockBatchRepo.On("ReplaceWorkflowDetails", ctx, workflowID, mock.AnythingOfType("[]domain.WorkflowDetail")).
		Return(nil).Once()

	details, err := suite.service.CreateWorkflowDetails(ctx, workflowID, uuid.NewString())

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), details, 1)
	suite.mockMappingRepo.AssertNotCalled(suite.T(), "FindCurrentMapping", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BatchServiceTestSuite) TestApprove_NotDraftRejected() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	approved := &domain.PayAdjustmentWorkflow{WorkflowID: workflowID, Status: domain.WorkflowApproved}

	suite.mockBatchRepo.On("FindWorkflowByID", ctx, workflowID).Return(approved, nil).Once()

	err := suite.service.Approve(ctx, workflowID, uuid.NewString())

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockBatchRepo.AssertNotCalled(suite.T(), "UpdateWorkflowStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BatchServiceTestSuite) TestImplement_FansOutAdjustments() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	actorID := uuid.NewString()
	approved := &domain.PayAdjustmentWorkflow{
		WorkflowID:     workflowID,
		Name:           "annual uplift",
		AdjustmentType: domain.AdjustPercentage,
		Status:         domain.WorkflowApproved,
	}
	details := []domain.WorkflowDetail{
		{DetailID: uuid.NewString(), WorkflowID: workflowID, EmployeeID: uuid.NewString(), OldSalary: d("26000"), NewSalary: d("28600"), Impact: d("2600")},
		{DetailID: uuid.NewString(), WorkflowID: workflowID, EmployeeID: uuid.NewString(), OldSalary: d("30000"), NewSalary: d("33000"), Impact: d("3000")},
	}

	suite.mockBatchRepo.On("FindWorkflowByID", ctx, workflowID).Return(approved, nil).Once()
	suite.mockBatchRepo.On("ListWorkflowDetails", ctx, workflowID).Return(details, nil).Once()

	var capturedAdjustments []domain.SalaryAdjustment
	suite.mockBatchRepo.On("ImplementWorkflow", ctx, workflowID, actorID,
		mock.AnythingOfType("[]domain.SalaryAdjustment"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			capturedAdjustments = args.Get(3).([]domain.SalaryAdjustment)
		}).Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()

	resp, err := suite.service.Implement(ctx, workflowID, actorID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, resp.AffectedEmployees)
	if assert.Len(suite.T(), capturedAdjustments, 2) {
		for i, adj := range capturedAdjustments {
			assert.Equal(suite.T(), details[i].EmployeeID, adj.EmployeeID)
			assert.True(suite.T(), adj.NewSalary.Equal(details[i].NewSalary))
			assert.Equal(suite.T(), domain.AdjustmentPendingReview, adj.Status)
			assert.NotNil(suite.T(), adj.SourceWorkflowID)
			assert.Equal(suite.T(), workflowID, *adj.SourceWorkflowID)
		}
	}
	suite.mockBatchRepo.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestImplement_NoDetailsRejected() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	approved := &domain.PayAdjustmentWorkflow{WorkflowID: workflowID, Status: domain.WorkflowApproved}

	suite.mockBatchRepo.On("FindWorkflowByID", ctx, workflowID).Return(approved, nil).Once()
	suite.mockBatchRepo.On("ListWorkflowDetails", ctx, workflowID).Return([]domain.WorkflowDetail{}, nil).Once()

	resp, err := suite.service.Implement(ctx, workflowID, uuid.NewString())

	assert.Nil(suite.T(), resp)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockBatchRepo.AssertNotCalled(suite.T(), "ImplementWorkflow",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBatchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BatchServiceTestSuite))
}
