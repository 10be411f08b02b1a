//go:build integration

package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	accessModels "casevault/internal/access/models"
	accessStore "casevault/internal/access/store"
	"casevault/internal/cases/models"
	"casevault/internal/cases/service"
	"casevault/internal/cases/store/casefile"
	"casevault/internal/cases/store/caserequest"
	identityModels "casevault/internal/identity/models"
	"casevault/internal/identity/store/user"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
	"casevault/pkg/testutil/containers"
)

type directory struct{ users *user.PostgresStore }

func (d directory) Exists(ctx context.Context, userID id.UserID) (bool, error) {
	_, err := d.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (d directory) Summaries(ctx context.Context, ids []id.UserID) (map[id.UserID]identityModels.Summary, error) {
	return d.users.FindSummaries(ctx, ids)
}

type PostgresApprovalSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	users    *user.PostgresStore
	cases    *casefile.PostgresStore
	requests *caserequest.PostgresStore
	grants   *accessStore.PostgresStore
	svc      *service.Service
}

func TestPostgresApprovalSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresApprovalSuite))
}

func (s *PostgresApprovalSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	db := s.postgres.DB
	s.users = user.NewPostgres(db)
	s.cases = casefile.NewPostgres(db)
	s.requests = caserequest.NewPostgres(db)
	s.grants = accessStore.NewPostgres(db)
	s.svc = service.New(s.cases, s.requests, s.grants, directory{s.users}, tx.NewPostgresRunner(db))
}

func (s *PostgresApprovalSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"access_requests", "evidence", "case_requests", "cases", "users")
	s.Require().NoError(err)
}

func (s *PostgresApprovalSuite) newUser() id.UserID {
	suffix := uuid.NewString()[:8]
	u := &identityModels.User{
		ID: id.NewUserID(), Username: "det_" + suffix, PasswordHash: "x",
		Email: suffix + "@casevault.test", FullName: "Det " + suffix,
		Role: identityModels.RoleUser, CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u.ID
}

func (s *PostgresApprovalSuite) TestConcurrentApprovalsOpenOneCase() {
	ctx := context.Background()
	requester := s.newUser()
	req, err := s.svc.SubmitCaseRequest(ctx, "Arson", "Dock 3", requester)
	s.Require().NoError(err)

	const goroutines = 20
	var wg sync.WaitGroup
	var ok, conflicts atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.ApproveCaseRequest(ctx, req.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case dErrors.HasCode(err, dErrors.CodeInvalidState):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load(), "exactly one approval should succeed")
	s.Equal(int32(goroutines-1), conflicts.Load())

	all, err := s.cases.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
	granted, err := s.grants.ApprovedCaseIDs(ctx, requester)
	s.Require().NoError(err)
	s.Contains(granted, all[0].ID)

	stored, err := s.requests.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestApproved, stored.Status)
	s.Require().NotNil(stored.CaseID)
	s.Equal(all[0].ID, *stored.CaseID)
}

func (s *PostgresApprovalSuite) TestCloseCaseTwice() {
	ctx := context.Background()
	requester := s.newUser()
	req, err := s.svc.SubmitCaseRequest(ctx, "Fraud", "Ledger 9", requester)
	s.Require().NoError(err)
	approval, err := s.svc.ApproveCaseRequest(ctx, req.ID)
	s.Require().NoError(err)

	closed, err := s.svc.CloseCase(ctx, approval.Case.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusClosed, closed.Status)

	_, err = s.svc.CloseCase(ctx, approval.Case.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState), "got %v", err)
}

func (s *PostgresApprovalSuite) TestAccessRequestsAreUniquePerPair() {
	ctx := context.Background()
	requester, other := s.newUser(), s.newUser()
	req, err := s.svc.SubmitCaseRequest(ctx, "Theft", "Lot 7", requester)
	s.Require().NoError(err)
	approval, err := s.svc.ApproveCaseRequest(ctx, req.ID)
	s.Require().NoError(err)

	_, err = s.svc.ApproveCaseRequest(ctx, req.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	err = s.grants.Create(ctx, pendingAccess(requester, approval.Case.ID))
	s.ErrorIs(err, accessStore.ErrDuplicate)

	s.NoError(s.grants.Create(ctx, pendingAccess(other, approval.Case.ID)))
	pending, err := s.grants.ListByStatus(ctx, accessModels.StatusPending)
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func pendingAccess(userID id.UserID, caseID id.CaseID) *accessModels.AccessRequest {
	return &accessModels.AccessRequest{
		ID: id.NewAccessRequestID(), UserID: userID, CaseID: caseID,
		Status: accessModels.StatusPending, RequestedAt: time.Now().UTC(),
	}
}
