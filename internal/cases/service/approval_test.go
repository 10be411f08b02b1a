package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessModels "casevault/internal/access/models"
	accessStore "casevault/internal/access/store"
	"casevault/internal/cases/models"
	"casevault/internal/cases/store/casefile"
	"casevault/internal/cases/store/caserequest"
	identityModels "casevault/internal/identity/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/tx"
)

type knownUsers map[id.UserID]string

func (k knownUsers) Exists(_ context.Context, userID id.UserID) (bool, error) {
	_, ok := k[userID]
	return ok, nil
}

func (k knownUsers) Summaries(_ context.Context, ids []id.UserID) (map[id.UserID]identityModels.Summary, error) {
	out := make(map[id.UserID]identityModels.Summary)
	for _, userID := range ids {
		if name, ok := k[userID]; ok {
			out[userID] = identityModels.Summary{ID: userID, Username: name}
		}
	}
	return out, nil
}

type failingGrants struct{ *accessStore.InMemoryStore }

func (failingGrants) Create(context.Context, *accessModels.AccessRequest) error {
	return errors.New("grant store unavailable")
}

func TestApproveCaseRequest_InMemoryUnitOfWork(t *testing.T) {
	ctx := context.Background()
	requester := id.NewUserID()
	users := knownUsers{requester: "alice"}

	t.Run("concurrent approvals open exactly one case", func(t *testing.T) {
		cases, requests, grants := casefile.New(), caserequest.New(), accessStore.New()
		svc := New(cases, requests, grants, users, tx.NewLockRunner())

		req, err := svc.SubmitCaseRequest(ctx, "Arson", "Dock 3", requester)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var ok, conflicts atomic.Int32
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ApproveCaseRequest(ctx, req.ID)
				switch {
				case err == nil:
					ok.Add(1)
				case dErrors.HasCode(err, dErrors.CodeInvalidState):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), ok.Load())
		assert.Equal(t, int32(19), conflicts.Load())
		all, err := cases.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		granted, err := grants.ApprovedCaseIDs(ctx, requester)
		require.NoError(t, err)
		assert.Len(t, granted, 1)
	})

	t.Run("failed grant rolls back case and request", func(t *testing.T) {
		cases, requests, grants := casefile.New(), caserequest.New(), accessStore.New()
		broken := failingGrants{grants}
		svc := New(cases, requests, broken, users, tx.NewLockRunner())

		req, err := svc.SubmitCaseRequest(ctx, "Theft", "Lot 7", requester)
		require.NoError(t, err)

		_, err = svc.ApproveCaseRequest(ctx, req.ID)
		require.Error(t, err)

		all, err := cases.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		stored, err := requests.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestPending, stored.Status)
		assert.Nil(t, stored.CaseID)
	})
}
