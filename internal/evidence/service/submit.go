package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"casevault/internal/evidence/models"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
)

// SubmitEvidence stores the attachment and a metadata document in the blob
// store, anchors the metadata hash on the ledger and records the evidence
// with the transaction id as its file hash. A gateway failure aborts before
// anything is recorded.
func (s *Service) SubmitEvidence(ctx context.Context, sub models.Submission) (*models.Receipt, error) {
	if s.blobs == nil || s.ledger == nil {
		return nil, dErrors.New(dErrors.CodeLedgerUnavailable, "evidence submission is not configured")
	}
	if len(sub.Attachment) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "attachment is required")
	}
	if strings.TrimSpace(sub.Title) == "" || strings.TrimSpace(sub.Description) == "" || strings.TrimSpace(sub.UploadedBy) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title, description and uploadedBy are required")
	}
	if _, err := s.cases.FindByID(ctx, sub.CaseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}

	attachmentHash, err := s.blobs.StoreBlob(ctx, sub.FileName, sub.Attachment)
	if err != nil {
		return nil, gatewayError(err, "failed to store attachment")
	}

	doc := make(map[string]any, len(sub.Metadata)+5)
	for k, v := range sub.Metadata {
		doc[k] = v
	}
	doc["evidence_title"] = sub.Title
	doc["description"] = sub.Description
	doc["case_id"] = sub.CaseID.String()
	doc["officer_id"] = sub.UploadedBy
	doc["attachment_hash"] = attachmentHash
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "metadata is not serializable")
	}
	metadataHash, err := s.blobs.StoreBlob(ctx, "metadata.json", raw)
	if err != nil {
		return nil, gatewayError(err, "failed to store evidence metadata")
	}

	txID, err := s.ledger.AnchorHash(ctx, metadataHash)
	if err != nil {
		return nil, gatewayError(err, "failed to anchor evidence metadata")
	}

	e, err := s.AddEvidence(ctx, sub.Title, sub.Description, txID, sub.UploadedBy, sub.CaseID)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "evidence anchored but not recorded",
				"transaction_id", txID,
				"metadata_hash", metadataHash,
				"error", err,
			)
		}
		return nil, err
	}
	return &models.Receipt{
		Evidence:       e,
		AttachmentHash: attachmentHash,
		MetadataHash:   metadataHash,
		TransactionID:  txID,
	}, nil
}

// gatewayError keeps coded gateway errors and marks anything else unavailable.
func gatewayError(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, msg)
}
