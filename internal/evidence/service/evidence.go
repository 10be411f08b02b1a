package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casevault/internal/evidence/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
)

const activityEvidenceUploaded = "EVIDENCE_UPLOADED"

// AddEvidence records evidence for an existing case. The evidence row, the
// case's evidence reference and the activity entry commit together.
func (s *Service) AddEvidence(ctx context.Context, title, description, fileHash, uploadedBy string, caseID id.CaseID) (*models.Evidence, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", title},
		{"description", description},
		{"fileHash", fileHash},
		{"uploadedBy", uploadedBy},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if caseID.IsNil() {
		missing = append(missing, "caseId is required")
	}
	if len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, strings.Join(missing, "; "))
	}

	now := s.now().UTC()
	e := &models.Evidence{
		ID:          id.NewEvidenceID(),
		CaseID:      caseID,
		Title:       title,
		Description: description,
		FileHash:    fileHash,
		UploadedBy:  uploadedBy,
		UploadedAt:  now,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.cases.FindByID(ctx, caseID); err != nil {
			return err
		}
		if err := s.evidence.Create(ctx, e); err != nil {
			return err
		}
		if err := s.cases.AppendEvidence(ctx, caseID, e.ID, now); err != nil {
			return err
		}
		details := fmt.Sprintf("Evidence %q uploaded for case %s", title, caseID)
		return s.activity.Record(ctx, uploadedBy, activityEvidenceUploaded, e.ID.String(), details)
	})
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return nil, err
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record evidence")
	}

	s.logAudit(ctx, "evidence_recorded",
		"evidence_id", e.ID.String(),
		"case_id", caseID.String(),
		"uploaded_by", uploadedBy,
	)
	if s.metrics != nil {
		s.metrics.EvidenceRecorded.Inc()
	}
	return e, nil
}

// ListEvidenceForCase returns a case's evidence in upload order. A case with
// no evidence is reported as NotFound.
func (s *Service) ListEvidenceForCase(ctx context.Context, caseID id.CaseID) ([]*models.Evidence, error) {
	records, err := s.evidence.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list evidence")
	}
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no evidence found for this case")
	}
	return records, nil
}
