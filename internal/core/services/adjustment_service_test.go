package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/core/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
)

type AdjustmentServiceTestSuite struct {
	suite.Suite
	mockAdjustmentRepo *MockAdjustmentRepository
	mockMappingRepo    *MockMappingRepository
	mockAudit          *MockAuditSink
	service            portssvc.AdjustmentSvcFacade
}

func (suite *AdjustmentServiceTestSuite) SetupTest() {
	suite.mockAdjustmentRepo = new(MockAdjustmentRepository)
	suite.mockMappingRepo = new(MockMappingRepository)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewAdjustmentService(suite.mockAdjustmentRepo, suite.mockMappingRepo, suite.mockAudit)
}

func currentMappingFor(employeeID string) *domain.EmployeeGradeMapping {
	return &domain.EmployeeGradeMapping{
		MappingID:     uuid.NewString(),
		EmployeeID:    employeeID,
		GradeID:       uuid.NewString(),
		StepID:        uuid.NewString(),
		CurrentSalary: d("26000"),
		BandMin:       d("25000"),
		BandMax:       d("28000"),
		Status:        domain.WithinBand,
	}
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_Success() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	actorID := uuid.NewString()
	mapping := currentMappingFor(employeeID)
	req := dto.CreateAdjustmentRequest{
		EmployeeID:    employeeID,
		NewSalary:     d("27500"),
		Reason:        "merit increase",
		EffectiveDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.mockMappingRepo.On("FindCurrentMapping", ctx, employeeID, mock.AnythingOfType("time.Time")).
		Return(mapping, nil).Once()
	suite.mockAdjustmentRepo.On("SaveAdjustment", ctx, mock.AnythingOfType("domain.SalaryAdjustment")).
		Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()

	adjustment, err := suite.service.CreateAdjustment(ctx, req, actorID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), adjustment)
	assert.Equal(suite.T(), domain.AdjustmentDraft, adjustment.Status)
	assert.True(suite.T(), adjustment.OldSalary.Equal(d("26000")))
	assert.True(suite.T(), adjustment.NewSalary.Equal(d("27500")))
	assert.Equal(suite.T(), mapping.GradeID, *adjustment.GradeID)
	assert.Equal(suite.T(), actorID, adjustment.InitiatedBy)
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_NonPositiveSalaryRejected() {
	ctx := context.Background()
	req := dto.CreateAdjustmentRequest{
		EmployeeID:    uuid.NewString(),
		NewSalary:     d("0"),
		Reason:        "typo",
		EffectiveDate: time.Now().UTC(),
	}

	adjustment, err := suite.service.CreateAdjustment(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), adjustment)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockMappingRepo.AssertNotCalled(suite.T(), "FindCurrentMapping", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_NoCurrentMappingRejected() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	req := dto.CreateAdjustmentRequest{
		EmployeeID:    employeeID,
		NewSalary:     d("27500"),
		Reason:        "merit increase",
		EffectiveDate: time.Now().UTC(),
	}

	suite.mockMappingRepo.On("FindCurrentMapping", ctx, employeeID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound).Once()

	adjustment, err := suite.service.CreateAdjustment(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), adjustment)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_UnchangedSalaryRejected() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	mapping := currentMappingFor(employeeID)
	req := dto.CreateAdjustmentRequest{
		EmployeeID:    employeeID,
		NewSalary:     mapping.CurrentSalary,
		Reason:        "no-op",
		EffectiveDate: time.Now().UTC(),
	}

	suite.mockMappingRepo.On("FindCurrentMapping", ctx, employeeID, mock.AnythingOfType("time.Time")).
		Return(mapping, nil).Once()

	adjustment, err := suite.service.CreateAdjustment(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), adjustment)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockAdjustmentRepo.AssertNotCalled(suite.T(), "SaveAdjustment", mock.Anything, mock.Anything)
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_UnchangedSalaryAllowedAsCorrection() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	mapping := currentMappingFor(employeeID)
	req := dto.CreateAdjustmentRequest{
		EmployeeID:    employeeID,
		NewSalary:     mapping.CurrentSalary,
		Reason:        "record correction",
		IsCorrection:  true,
		EffectiveDate: time.Now().UTC(),
	}

	suite.mockMappingRepo.On("FindCurrentMapping", ctx, employeeID, mock.AnythingOfType("time.Time")).
		Return(mapping, nil).Once()
	suite.mockAdjustmentRepo.On("SaveAdjustment", ctx, mock.AnythingOfType("domain.SalaryAdjustment")).
		Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()

	adjustment, err := suite.service.CreateAdjustment(ctx, req, uuid.NewString())

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), adjustment)
	assert.True(suite.T(), adjustment.IsCorrection)
}

func (suite *AdjustmentServiceTestSuite) TestSetStatus_SubmitRecordsReviewer() {
	ctx := context.Background()
	adjustmentID := uuid.NewString()
	actorID := uuid.NewString()
	draft := &domain.SalaryAdjustment{AdjustmentID: adjustmentID, Status: domain.AdjustmentDraft}
	pending := &domain.SalaryAdjustment{AdjustmentID: adjustmentID, Status: domain.AdjustmentPendingReview}

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(draft, nil).Once()
	suite.mockAdjustmentRepo.On("UpdateAdjustmentStatus", ctx, adjustmentID,
		domain.AdjustmentDraft, domain.AdjustmentPendingReview,
		portsrepo.ActorReviewer, actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()
	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(pending, nil).Once()

	updated, err := suite.service.SetStatus(ctx, adjustmentID, domain.AdjustmentPendingReview, actorID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.AdjustmentPendingReview, updated.Status)
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestSetStatus_ApproveRecordsApprover() {
	ctx := context.Background()
	adjustmentID := uuid.NewString()
	actorID := uuid.NewString()
	pending := &domain.SalaryAdjustment{AdjustmentID: adjustmentID, Status: domain.AdjustmentPendingReview}
	approved := &domain.SalaryAdjustment{AdjustmentID: adjustmentID, Status: domain.AdjustmentApproved}

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(pending, nil).Once()
	suite.mockAdjustmentRepo.On("UpdateAdjustmentStatus", ctx, adjustmentID,
		domain.AdjustmentPendingReview, domain.AdjustmentApproved,
		portsrepo.ActorApprover, actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()
	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(approved, nil).Once()

	updated, err := suite.service.SetStatus(ctx, adjustmentID, domain.AdjustmentApproved, actorID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.AdjustmentApproved, updated.Status)
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestSetStatus_SkipTransitionRejected() {
	ctx := context.Background()
	adjustmentID := uuid.NewString()
	draft := &domain.SalaryAdjustment{AdjustmentID: adjustmentID, Status: domain.AdjustmentDraft}

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(draft, nil).Once()

	updated, err := suite.service.SetStatus(ctx, adjustmentID, domain.AdjustmentApproved, uuid.NewString())

	assert.Nil(suite.T(), updated)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockAdjustmentRepo.AssertNotCalled(suite.T(), "UpdateAdjustmentStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AdjustmentServiceTestSuite) TestSetStatus_ImplementRewritesMapping() {
	ctx := context.Background()
	adjustmentID := uuid.NewString()
	employeeID := uuid.NewString()
	actorID := uuid.NewString()
	mapping := currentMappingFor(employeeID)
	approved := &domain.SalaryAdjustment{
		AdjustmentID:  adjustmentID,
		EmployeeID:    employeeID,
		GradeID:       &mapping.GradeID,
		StepID:        &mapping.StepID,
		OldSalary:     mapping.CurrentSalary,
		NewSalary:     d("29000"), // above the band snapshot
		Status:        domain.AdjustmentApproved,
		EffectiveDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	implemented := &domain.SalaryAdjustment{AdjustmentID: adjustmentID, Status: domain.AdjustmentImplemented}

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(approved, nil).Once()
	suite.mockMappingRepo.On("FindCurrentMapping", ctx, employeeID, mock.AnythingOfType("time.Time")).
		Return(mapping, nil).Once()

	var newMapping domain.EmployeeGradeMapping
	suite.mockAdjustmentRepo.On("ImplementAdjustment", ctx,
		mock.AnythingOfType("domain.SalaryAdjustment"),
		mock.AnythingOfType("domain.EmployeeGradeMapping"),
		actorID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			newMapping = args.Get(2).(domain.EmployeeGradeMapping)
		}).Return(nil).Once()
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).Return().Once()
	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adjustmentID).Return(implemented, nil).Once()

	updated, err := suite.service.SetStatus(ctx, adjustmentID, domain.AdjustmentImplemented, actorID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.AdjustmentImplemented, updated.Status)
	assert.Equal(suite.T(), employeeID, newMapping.EmployeeID)
	assert.True(suite.T(), newMapping.CurrentSalary.Equal(d("29000")))
	assert.Equal(suite.T(), domain.AboveBand, newMapping.Status)
	assert.Equal(suite.T(), approved.EffectiveDate, newMapping.EffectiveDate)
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
	suite.mockMappingRepo.AssertExpectations(suite.T())
}

func TestAdjustmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdjustmentServiceTestSuite))
}
