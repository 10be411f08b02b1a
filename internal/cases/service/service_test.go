package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	accessModels "casevault/internal/access/models"
	"casevault/internal/cases/models"
	"casevault/internal/cases/service/mocks"
	"casevault/internal/cases/store/caserequest"
	identityModels "casevault/internal/identity/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
)

type ServiceSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockCases    *mocks.MockCaseStore
	mockRequests *mocks.MockRequestStore
	mockAccess   *mocks.MockAccessGrants
	mockUsers    *mocks.MockUserDirectory
	service      *Service
	now          time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockCases = mocks.NewMockCaseStore(s.ctrl)
	s.mockRequests = mocks.NewMockRequestStore(s.ctrl)
	s.mockAccess = mocks.NewMockAccessGrants(s.ctrl)
	s.mockUsers = mocks.NewMockUserDirectory(s.ctrl)
	s.now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s.service = New(s.mockCases, s.mockRequests, s.mockAccess, s.mockUsers, tx.NewLockRunner(),
		WithClock(func() time.Time { return s.now }))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestSubmitCaseRequest() {
	ctx := context.Background()
	requester := id.NewUserID()

	s.Run("missing fields", func() {
		_, err := s.service.SubmitCaseRequest(ctx, "", " ", requester)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "title is required")
		s.Contains(err.Error(), "description is required")
	})

	s.Run("unknown requester", func() {
		s.mockUsers.EXPECT().Exists(ctx, requester).Return(false, nil)

		_, err := s.service.SubmitCaseRequest(ctx, "Burglary", "Warehouse 4", requester)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("creates pending request", func() {
		s.mockUsers.EXPECT().Exists(ctx, requester).Return(true, nil)
		s.mockRequests.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		req, err := s.service.SubmitCaseRequest(ctx, "Burglary", "Warehouse 4", requester)
		s.Require().NoError(err)
		s.Equal(models.RequestPending, req.Status)
		s.Nil(req.CaseID)
		s.Equal(s.now, req.RequestedAt)
	})
}

func (s *ServiceSuite) TestApproveCaseRequest() {
	ctx := context.Background()
	requestID := id.NewCaseRequestID()
	requester := id.NewUserID()
	pending := &models.CaseRequest{ID: requestID, Title: "Fraud", Description: "Ledger 9", RequestedBy: requester, Status: models.RequestPending}

	s.Run("not found", func() {
		s.mockRequests.EXPECT().FindByID(gomock.Any(), requestID).Return(nil, caserequest.ErrNotFound)

		_, err := s.service.ApproveCaseRequest(ctx, requestID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("already reviewed", func() {
		approved := *pending
		approved.Status = models.RequestApproved
		s.mockRequests.EXPECT().FindByID(gomock.Any(), requestID).Return(&approved, nil)

		_, err := s.service.ApproveCaseRequest(ctx, requestID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("lost race on conditional review", func() {
		s.mockRequests.EXPECT().FindByID(gomock.Any(), requestID).Return(pending, nil)
		s.mockCases.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockRequests.EXPECT().Review(gomock.Any(), requestID, gomock.Any()).Return(sentinel.ErrInvalidState)

		_, err := s.service.ApproveCaseRequest(ctx, requestID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("opens case and grants access", func() {
		var created *models.Case
		s.mockRequests.EXPECT().FindByID(gomock.Any(), requestID).Return(pending, nil)
		s.mockCases.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Case) error {
			created = c
			return nil
		})
		s.mockRequests.EXPECT().Review(gomock.Any(), requestID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.CaseRequestID, review caserequest.Review) error {
				s.Equal(models.RequestApproved, review.Status)
				s.Require().NotNil(review.CaseID)
				s.Equal(created.ID, *review.CaseID)
				s.Equal(s.now, review.ReviewedAt)
				return nil
			})
		s.mockAccess.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *accessModels.AccessRequest) error {
			s.Equal(requester, a.UserID)
			s.Equal(created.ID, a.CaseID)
			s.Equal(accessModels.StatusApproved, a.Status)
			return nil
		})

		res, err := s.service.ApproveCaseRequest(ctx, requestID)
		s.Require().NoError(err)
		s.Equal(models.StatusOpen, res.Case.Status)
		s.Equal(requester, res.Case.CreatedBy)
		s.Equal("Fraud", res.Case.Title)
	})

	s.Run("grant failure is internal", func() {
		s.mockRequests.EXPECT().FindByID(gomock.Any(), requestID).Return(pending, nil)
		s.mockCases.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockRequests.EXPECT().Review(gomock.Any(), requestID, gomock.Any()).Return(nil)
		s.mockAccess.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := s.service.ApproveCaseRequest(ctx, requestID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestRejectAndList() {
	ctx := context.Background()
	requestID := id.NewCaseRequestID()
	requester := id.NewUserID()

	s.Run("reject twice", func() {
		s.mockRequests.EXPECT().Review(ctx, requestID, caserequest.Review{Status: models.RequestRejected, ReviewedAt: s.now}).
			Return(sentinel.ErrInvalidState)

		_, err := s.service.RejectCaseRequest(ctx, requestID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("list joins usernames", func() {
		s.mockRequests.EXPECT().List(ctx).Return([]*models.CaseRequest{{ID: requestID, RequestedBy: requester, Title: "A"}}, nil)
		s.mockUsers.EXPECT().Summaries(ctx, []id.UserID{requester}).
			Return(map[id.UserID]identityModels.Summary{requester: {ID: requester, Username: "alice"}}, nil)

		views, err := s.service.ListCaseRequests(ctx)
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal("alice", views[0].RequesterUsername)
	})
}

func (s *ServiceSuite) TestCloseCase() {
	ctx := context.Background()
	caseID := id.NewCaseID()

	s.Run("already closed", func() {
		s.mockCases.EXPECT().TransitionStatus(ctx, caseID, models.StatusOpen, models.StatusClosed, s.now).Return(sentinel.ErrInvalidState)

		_, err := s.service.CloseCase(ctx, caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown case", func() {
		s.mockCases.EXPECT().TransitionStatus(ctx, caseID, models.StatusOpen, models.StatusClosed, s.now).Return(sentinel.ErrNotFound)

		_, err := s.service.CloseCase(ctx, caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("closes", func() {
		s.mockCases.EXPECT().TransitionStatus(ctx, caseID, models.StatusOpen, models.StatusClosed, s.now).Return(nil)
		s.mockCases.EXPECT().FindByID(ctx, caseID).Return(&models.Case{ID: caseID, Status: models.StatusClosed}, nil)

		c, err := s.service.CloseCase(ctx, caseID)
		s.Require().NoError(err)
		s.Equal(models.StatusClosed, c.Status)
	})
}
