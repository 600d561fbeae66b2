package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/core/services"
)

type AuditServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockAuditRepository
	service       portssvc.AuditSvcFacade
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewAuditService(suite.mockAuditRepo)
}

func (suite *AuditServiceTestSuite) TestRecord_FillsEntryIDAndTimestamp() {
	ctx := context.Background()

	var saved domain.AuditEntry
	suite.mockAuditRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.AuditEntry)
		}).Return(nil).Once()

	suite.service.Record(ctx, domain.AuditEntry{
		Action:  "run.processed",
		ActorID: uuid.NewString(),
	})

	assert.NotEmpty(suite.T(), saved.EntryID)
	assert.False(suite.T(), saved.CreatedAt.IsZero())
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestRecord_SwallowsRepoFailure() {
	ctx := context.Background()

	suite.mockAuditRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.AuditEntry")).
		Return(errors.New("disk full")).Once()

	// Must not panic or propagate; auditing never fails the audited call.
	suite.service.Record(ctx, domain.AuditEntry{Action: "run.processed", ActorID: uuid.NewString()})

	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func TestAuditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
