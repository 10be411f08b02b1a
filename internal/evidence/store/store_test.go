package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casevault/internal/evidence/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	caseID, otherCase := id.NewCaseID(), id.NewCaseID()

	add := func(caseID id.CaseID, title string, offset time.Duration) *models.Evidence {
		e := &models.Evidence{
			ID: id.NewEvidenceID(), CaseID: caseID, Title: title,
			FileHash: "tx-" + title, UploadedBy: "Det. Ruiz", UploadedAt: base.Add(offset),
		}
		require.NoError(t, s.Create(ctx, e))
		return e
	}
	add(caseID, "photo", time.Minute)
	add(caseID, "statement", 0)
	add(otherCase, "receipt", 0)

	t.Run("lists a case in upload order", func(t *testing.T) {
		records, err := s.ListByCase(ctx, caseID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "statement", records[0].Title)
		assert.Equal(t, "photo", records[1].Title)
	})

	t.Run("unknown case lists nothing", func(t *testing.T) {
		records, err := s.ListByCase(ctx, id.NewCaseID())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("titles by case", func(t *testing.T) {
		titles, err := s.TitlesByCase(ctx, []id.CaseID{caseID, otherCase})
		require.NoError(t, err)
		assert.Equal(t, []string{"statement", "photo"}, titles[caseID])
		assert.Equal(t, []string{"receipt"}, titles[otherCase])
	})

	t.Run("failed unit of work drops only its own records", func(t *testing.T) {
		err := tx.NewLockRunner().RunInTx(ctx, func(txCtx context.Context) error {
			require.NoError(t, s.Create(txCtx, &models.Evidence{
				ID: id.NewEvidenceID(), CaseID: caseID, Title: "discarded", UploadedAt: base.Add(time.Hour),
			}))
			done := make(chan struct{})
			go func() {
				defer close(done)
				add(caseID, "meanwhile", 2*time.Hour)
			}()
			<-done
			return sentinel.ErrNotFound
		})
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		titles, err := s.TitlesByCase(ctx, []id.CaseID{caseID})
		require.NoError(t, err)
		assert.Equal(t, []string{"statement", "photo", "meanwhile"}, titles[caseID])
	})
}
