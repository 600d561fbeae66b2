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

type GradeServiceTestSuite struct {
	suite.Suite
	mockGradeRepo *MockGradeRepository
	mockAudit     *MockAuditSink
	service       portssvc.GradeSvcFacade
}

func (suite *GradeServiceTestSuite) SetupTest() {
	suite.mockGradeRepo = new(MockGradeRepository)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewGradeService(suite.mockGradeRepo, suite.mockAudit)
}

func validGradeRequest() dto.CreateGradeRequest {
	return dto.CreateGradeRequest{
		Code:          "N2",
		Name:          "Nurse II",
		MinRate:       d("25000"),
		MidRate:       d("30000"),
		MaxRate:       d("35000"),
		EffectiveDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Steps: []dto.CreateStepRequest{
			{StepNumber: 1, MinRate: d("25000"), BaseRate: d("26000"), MaxRate: d("28000")},
			{StepNumber: 2, MinRate: d("28000"), BaseRate: d("30000"), MaxRate: d("35000")},
		},
	}
}

func (suite *GradeServiceTestSuite) TestCreateGrade_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	req := validGradeRequest()

	var saved domain.SalaryGrade
	suite.mockGradeRepo.On("SaveGrade", ctx, mock.AnythingOfType("domain.SalaryGrade")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.SalaryGrade)
		}).Return(nil).Once()

	var entry domain.AuditEntry
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			entry = args.Get(1).(domain.AuditEntry)
		}).Return().Once()

	grade, err := suite.service.CreateGrade(ctx, req, actorID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), grade)
	assert.Equal(suite.T(), domain.GradeDraft, grade.Status)
	assert.Equal(suite.T(), "N2", grade.Code)
	assert.Len(suite.T(), grade.Steps, 2)
	for _, step := range saved.Steps {
		assert.Equal(suite.T(), saved.GradeID, step.GradeID)
		assert.NotEmpty(suite.T(), step.StepID)
	}
	assert.Equal(suite.T(), "grade.created", entry.Action)
	assert.Equal(suite.T(), actorID, entry.ActorID)
	suite.mockGradeRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *GradeServiceTestSuite) TestCreateGrade_BandOrderRejected() {
	ctx := context.Background()
	req := validGradeRequest()
	req.MidRate = d("40000") // above max

	grade, err := suite.service.CreateGrade(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), grade)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockGradeRepo.AssertNotCalled(suite.T(), "SaveGrade", mock.Anything, mock.Anything)
}

func (suite *GradeServiceTestSuite) TestCreateGrade_StepBandOrderRejected() {
	ctx := context.Background()
	req := validGradeRequest()
	req.Steps[1].BaseRate = d("40000") // above the step max

	grade, err := suite.service.CreateGrade(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), grade)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *GradeServiceTestSuite) TestCreateGrade_DuplicateStepNumberRejected() {
	ctx := context.Background()
	req := validGradeRequest()
	req.Steps[1].StepNumber = req.Steps[0].StepNumber

	grade, err := suite.service.CreateGrade(ctx, req, uuid.NewString())

	assert.Nil(suite.T(), grade)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockGradeRepo.AssertNotCalled(suite.T(), "SaveGrade", mock.Anything, mock.Anything)
}

func (suite *GradeServiceTestSuite) TestApproveGrade_Success() {
	ctx := context.Background()
	gradeID := uuid.NewString()
	actorID := uuid.NewString()
	draft := &domain.SalaryGrade{GradeID: gradeID, Status: domain.GradeDraft}

	suite.mockGradeRepo.On("FindGradeByID", ctx, gradeID).Return(draft, nil).Once()
	suite.mockGradeRepo.On("ActivateGrade", ctx, gradeID, actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	var entry domain.AuditEntry
	suite.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			entry = args.Get(1).(domain.AuditEntry)
		}).Return().Once()

	err := suite.service.ApproveGrade(ctx, gradeID, actorID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "grade.activated", entry.Action)
	suite.mockGradeRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *GradeServiceTestSuite) TestApproveGrade_NotDraftRejected() {
	ctx := context.Background()
	gradeID := uuid.NewString()
	active := &domain.SalaryGrade{GradeID: gradeID, Status: domain.GradeActive}

	suite.mockGradeRepo.On("FindGradeByID", ctx, gradeID).Return(active, nil).Once()

	err := suite.service.ApproveGrade(ctx, gradeID, uuid.NewString())

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockGradeRepo.AssertNotCalled(suite.T(), "ActivateGrade",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GradeServiceTestSuite) TestGetGradeByID_NotFound() {
	ctx := context.Background()
	gradeID := uuid.NewString()

	suite.mockGradeRepo.On("FindGradeByID", ctx, gradeID).Return(nil, apperrors.ErrNotFound).Once()

	grade, err := suite.service.GetGradeByID(ctx, gradeID)

	assert.Nil(suite.T(), grade)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func TestGradeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GradeServiceTestSuite))
}
