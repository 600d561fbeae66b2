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
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/core/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
)

type MappingServiceTestSuite struct {
	suite.Suite
	mockMappingRepo *MockMappingRepository
	mockGradeRepo   *MockGradeRepository
	mockAudit       *MockAuditSink
	service         portssvc.MappingSvcFacade
}

func (suite *MappingServiceTestSuite) SetupTest() {
	suite.mockMappingRepo = new(MockMappingRepository)
	suite.mockGradeRepo = new(MockGradeRepository)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewMappingService(suite.mockMappingRepo, suite.mockGradeRepo, suite.mockAudit)
}

func activeGradeWithStep(gradeID, stepID string) *domain.SalaryGrade {
	return &domain.SalaryGrade{
		GradeID: gradeID,
		Code:    "N2",
		Status:  domain.GradeActive,
		MinRate: d("25000"),
		MidRate: d("30000"),
		MaxRate: d("35000"),
		Steps: []domain.SalaryStep{
			{
				StepID:     stepID,
				GradeID:    gradeID,
				StepNumber: 1,
				MinRate:    d("25000"),
				BaseRate:   d("26000"),
				MaxRate:    d("28000"),
			},
		},
	}
}

func (suite *MappingServiceTestSuite) TestCreateMapping_Success() {
	ctx := context.Background()
	gradeID := uuid.NewString()
	stepID := uuid.NewString()
	req := dto.CreateMappingRequest{
		EmployeeID:    uuid.NewString(),
		GradeID:       gradeID,
		StepID:        stepID,
		CurrentSalary: d("26500"),
		EffectiveDate: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.mockGradeRepo.On("FindGradeByID", ctx, gradeID).
		Return(activeGradeWithStep(gradeID, stepID), nil).Once()
	suite.mockMappingRepo.On("SaveMapping", ctx, mock.AnythingOfType("domain.EmployeeGradeMapping")).
		Return(nil).Once()

	var entry domain.AuditEntry
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			entry = args.Get(1).(domain.AuditEntry)
		}).Return().Once()

	mapping, err := suite.service.CreateMapping(ctx, req, uuid.NewString())

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), mapping)
	assert.Equal(suite.T(), domain.PendingReview, mapping.Status)
	assert.True(suite.T(), mapping.BandMin.Equal(d("25000")))
	assert.True(suite.T(), mapping.BandMax.Equal(d("28000")))
	assert.Equal(suite.T(), "mapping.created", entry.Action)
	suite.mockMappingRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestCreateMapping_InactiveGradeRejected() {
	ctx := context.Background()
	gradeID := uuid.NewString()
	stepID := uuid.NewString()
	grade := activeGradeWithStep(gradeID, stepID)
	grade.Status = domain.GradeDraft
	req := dto.CreateMappingRequest{
		EmployeeID:    uuid.NewString(),
		GradeID:       gradeID,
		StepID:        stepID,
		CurrentSalary: d("26500"),
		EffectiveDate: time.Now().UTC(),
	}

	suite.mockGradeRepo.On("FindGradeByID", ctx, gradeID).Return(grade, nil).Once()

	mapping, err := suite.service.CreateMapping(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), mapping)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockMappingRepo.AssertNotCalled(suite.T(), "SaveMapping", mock.Anything, mock.Anything)
}

func (suite *MappingServiceTestSuite) TestCreateMapping_ForeignStepRejected() {
	ctx := context.Background()
	gradeID := uuid.NewString()
	req := dto.CreateMappingRequest{
		EmployeeID:    uuid.NewString(),
		GradeID:       gradeID,
		StepID:        uuid.NewString(), // not one of the grade's steps
		CurrentSalary: d("26500"),
		EffectiveDate: time.Now().UTC(),
	}

	suite.mockGradeRepo.On("FindGradeByID", ctx, gradeID).
		Return(activeGradeWithStep(gradeID, uuid.NewString()), nil).Once()

	mapping, err := suite.service.CreateMapping(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), mapping)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *MappingServiceTestSuite) TestApprove_RevalidatesBandStatus() {
	ctx := context.Background()
	mappingID := uuid.NewString()
	approvedBy := uuid.NewString()
	pending := &domain.EmployeeGradeMapping{
		MappingID:     mappingID,
		EmployeeID:    uuid.NewString(),
		CurrentSalary: d("24000"), // below the snapshot band
		BandMin:       d("25000"),
		BandMax:       d("28000"),
		Status:        domain.PendingReview,
	}

	suite.mockMappingRepo.On("FindMappingByID", ctx, mappingID).Return(pending, nil).Once()
	suite.mockMappingRepo.On("ApproveMapping", ctx, mock.AnythingOfType("domain.EmployeeGradeMapping"), approvedBy, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	var entry domain.AuditEntry
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			entry = args.Get(1).(domain.AuditEntry)
		}).Return().Once()

	mapping, err := suite.service.Approve(ctx, mappingID, approvedBy)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.BelowBand, mapping.Status)
	assert.NotNil(suite.T(), mapping.ApprovedBy)
	assert.Equal(suite.T(), approvedBy, *mapping.ApprovedBy)
	assert.Equal(suite.T(), "mapping.approved", entry.Action)
	assert.Equal(suite.T(), approvedBy, entry.ActorID)
	suite.mockMappingRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestApprove_NotPendingRejected() {
	ctx := context.Background()
	mappingID := uuid.NewString()
	already := &domain.EmployeeGradeMapping{
		MappingID: mappingID,
		Status:    domain.WithinBand,
	}

	suite.mockMappingRepo.On("FindMappingByID", ctx, mappingID).Return(already, nil).Once()

	mapping, err := suite.service.Approve(ctx, mappingID, uuid.NewString())

	assert.Nil(suite.T(), mapping)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockMappingRepo.AssertNotCalled(suite.T(), "ApproveMapping",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMappingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MappingServiceTestSuite))
}
