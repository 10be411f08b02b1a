package casefile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"casevault/internal/cases/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	base  time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newCase(title string, offset time.Duration) *models.Case {
	c := &models.Case{
		ID: id.NewCaseID(), Title: title, Description: title,
		Status: models.StatusOpen, CreatedBy: id.NewUserID(),
		CreatedAt: s.base.Add(offset), UpdatedAt: s.base.Add(offset),
	}
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *InMemoryStoreSuite) TestFindAndList() {
	ctx := context.Background()
	later := s.newCase("later", time.Hour)
	earlier := s.newCase("earlier", 0)

	found, err := s.store.FindByID(ctx, later.ID)
	s.Require().NoError(err)
	s.Equal(later, found)

	_, err = s.store.FindByID(ctx, id.NewCaseID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(earlier.ID, all[0].ID)
}

func (s *InMemoryStoreSuite) TestReturnedCasesAreCopies() {
	ctx := context.Background()
	c := s.newCase("copy", 0)
	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	found.Title = "mutated"
	found.EvidenceIDs = append(found.EvidenceIDs, id.NewEvidenceID())

	again, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("copy", again.Title)
	s.Empty(again.EvidenceIDs)
}

func (s *InMemoryStoreSuite) TestTransitionStatus() {
	ctx := context.Background()
	c := s.newCase("transition", 0)
	at := s.base.Add(2 * time.Hour)

	s.Require().NoError(s.store.TransitionStatus(ctx, c.ID, models.StatusOpen, models.StatusClosed, at))
	s.ErrorIs(s.store.TransitionStatus(ctx, c.ID, models.StatusOpen, models.StatusClosed, at), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.TransitionStatus(ctx, id.NewCaseID(), models.StatusOpen, models.StatusClosed, at), sentinel.ErrNotFound)

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusClosed, found.Status)
	s.Equal(at, found.UpdatedAt)
}

func (s *InMemoryStoreSuite) TestAppendEvidenceKeepsOrder() {
	ctx := context.Background()
	c := s.newCase("evidence", 0)
	first, second := id.NewEvidenceID(), id.NewEvidenceID()
	s.Require().NoError(s.store.AppendEvidence(ctx, c.ID, first, s.base))
	s.Require().NoError(s.store.AppendEvidence(ctx, c.ID, second, s.base))
	s.ErrorIs(s.store.AppendEvidence(ctx, id.NewCaseID(), first, s.base), sentinel.ErrNotFound)

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal([]id.EvidenceID{first, second}, found.EvidenceIDs)
}

func (s *InMemoryStoreSuite) TestRollbackUndoesOnlyTheFailedUnitOfWork() {
	ctx := context.Background()
	kept := s.newCase("kept", 0)
	var concurrent *models.Case

	err := tx.NewLockRunner().RunInTx(ctx, func(txCtx context.Context) error {
		discarded := &models.Case{
			ID: id.NewCaseID(), Title: "discarded", Status: models.StatusOpen,
			CreatedBy: id.NewUserID(), CreatedAt: s.base, UpdatedAt: s.base,
		}
		s.Require().NoError(s.store.Create(txCtx, discarded))
		s.Require().NoError(s.store.AppendEvidence(txCtx, kept.ID, id.NewEvidenceID(), s.base))
		s.Require().NoError(s.store.TransitionStatus(txCtx, kept.ID, models.StatusOpen, models.StatusClosed, s.base))

		done := make(chan struct{})
		go func() {
			defer close(done)
			concurrent = s.newCase("concurrent", time.Minute)
		}()
		<-done
		return sentinel.ErrInvalidState
	})
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(kept.ID, all[0].ID)
	s.Empty(all[0].EvidenceIDs)
	s.Equal(models.StatusOpen, all[0].Status)
	s.Equal(concurrent.ID, all[1].ID)
}
