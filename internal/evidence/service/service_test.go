package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	caseModels "casevault/internal/cases/models"
	"casevault/internal/evidence/models"
	"casevault/internal/evidence/service/mocks"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
)

type ServiceSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockEvidence *mocks.MockEvidenceStore
	mockCases    *mocks.MockCaseStore
	mockActivity *mocks.MockActivityRecorder
	mockBlobs    *mocks.MockBlobStore
	mockLedger   *mocks.MockAnchorer
	service      *Service
	now          time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockEvidence = mocks.NewMockEvidenceStore(s.ctrl)
	s.mockCases = mocks.NewMockCaseStore(s.ctrl)
	s.mockActivity = mocks.NewMockActivityRecorder(s.ctrl)
	s.mockBlobs = mocks.NewMockBlobStore(s.ctrl)
	s.mockLedger = mocks.NewMockAnchorer(s.ctrl)
	s.now = time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	s.service = New(s.mockEvidence, s.mockCases, s.mockActivity, tx.NewLockRunner(),
		WithGateways(s.mockBlobs, s.mockLedger),
		WithClock(func() time.Time { return s.now }))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestAddEvidence() {
	ctx := context.Background()
	caseID := id.NewCaseID()

	s.Run("missing fields", func() {
		_, err := s.service.AddEvidence(ctx, "", "desc", "", "officer-7", caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "title is required")
		s.Contains(err.Error(), "fileHash is required")
	})

	s.Run("unknown case writes nothing", func() {
		s.mockCases.EXPECT().FindByID(gomock.Any(), caseID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.AddEvidence(ctx, "Photo", "Front door", "abc123", "officer-7", caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("records evidence, case reference and activity", func() {
		s.mockCases.EXPECT().FindByID(gomock.Any(), caseID).Return(&caseModels.Case{ID: caseID}, nil)
		s.mockEvidence.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockCases.EXPECT().AppendEvidence(gomock.Any(), caseID, gomock.Any(), s.now).Return(nil)
		s.mockActivity.EXPECT().Record(gomock.Any(), "officer-7", "EVIDENCE_UPLOADED", gomock.Any(),
			`Evidence "Photo" uploaded for case `+caseID.String()).Return(nil)

		e, err := s.service.AddEvidence(ctx, "Photo", "Front door", "abc123", "officer-7", caseID)
		s.Require().NoError(err)
		s.Equal("abc123", e.FileHash)
		s.Equal(s.now, e.UploadedAt)
	})
}

func (s *ServiceSuite) TestListEvidenceForCase() {
	ctx := context.Background()
	caseID := id.NewCaseID()

	s.Run("empty is not found", func() {
		s.mockEvidence.EXPECT().ListByCase(ctx, caseID).Return([]*models.Evidence{}, nil)

		_, err := s.service.ListEvidenceForCase(ctx, caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("returns records", func() {
		s.mockEvidence.EXPECT().ListByCase(ctx, caseID).Return([]*models.Evidence{{Title: "Photo"}}, nil)

		records, err := s.service.ListEvidenceForCase(ctx, caseID)
		s.Require().NoError(err)
		s.Len(records, 1)
	})
}

func (s *ServiceSuite) TestSubmitEvidence() {
	ctx := context.Background()
	caseID := id.NewCaseID()
	sub := models.Submission{
		CaseID:      caseID,
		UploadedBy:  "officer-7",
		Title:       "Photo",
		Description: "Front door",
		FileName:    "door.jpg",
		Attachment:  []byte("jpeg bytes"),
		Metadata:    map[string]any{"place": "Warehouse 4"},
	}

	s.Run("anchors metadata and records the transaction id", func() {
		s.mockCases.EXPECT().FindByID(gomock.Any(), caseID).Return(&caseModels.Case{ID: caseID}, nil).Times(2)
		s.mockBlobs.EXPECT().StoreBlob(ctx, "door.jpg", sub.Attachment).Return("QmAttachment", nil)
		s.mockBlobs.EXPECT().StoreBlob(ctx, "metadata.json", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, data []byte) (string, error) {
				var doc map[string]any
				s.Require().NoError(json.Unmarshal(data, &doc))
				s.Equal("QmAttachment", doc["attachment_hash"])
				s.Equal("Warehouse 4", doc["place"])
				s.Equal(caseID.String(), doc["case_id"])
				return "QmMetadata", nil
			})
		s.mockLedger.EXPECT().AnchorHash(ctx, "QmMetadata").Return("a1b2c3", nil)
		s.mockEvidence.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockCases.EXPECT().AppendEvidence(gomock.Any(), caseID, gomock.Any(), s.now).Return(nil)
		s.mockActivity.EXPECT().Record(gomock.Any(), "officer-7", "EVIDENCE_UPLOADED", gomock.Any(), gomock.Any()).Return(nil)

		receipt, err := s.service.SubmitEvidence(ctx, sub)
		s.Require().NoError(err)
		s.Equal("a1b2c3", receipt.TransactionID)
		s.Equal("a1b2c3", receipt.Evidence.FileHash)
		s.Equal("QmMetadata", receipt.MetadataHash)
	})

	s.Run("ledger failure records nothing", func() {
		s.mockCases.EXPECT().FindByID(gomock.Any(), caseID).Return(&caseModels.Case{ID: caseID}, nil)
		s.mockBlobs.EXPECT().StoreBlob(ctx, gomock.Any(), gomock.Any()).Return("QmX", nil).Times(2)
		s.mockLedger.EXPECT().AnchorHash(ctx, "QmX").Return("", errors.New("peer unreachable"))

		_, err := s.service.SubmitEvidence(ctx, sub)
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	})

	s.Run("missing attachment", func() {
		bad := sub
		bad.Attachment = nil
		_, err := s.service.SubmitEvidence(ctx, bad)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
