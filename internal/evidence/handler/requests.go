package handler

import (
	"time"

	"casevault/internal/evidence/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
)

type AddEvidenceRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	FileHash    string `json:"fileHash" validate:"required,max=128"`
	UploadedBy  string `json:"uploadedBy" validate:"required"`
	CaseID      string `json:"caseId" validate:"required"`

	caseID id.CaseID
}

func (r *AddEvidenceRequest) Validate() error {
	caseID, err := id.ParseCaseID(r.CaseID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "caseId must be a valid case id")
	}
	r.caseID = caseID
	return nil
}

// EvidenceResponse is the listing projection; the record id and case id are
// implied by the route.
type EvidenceResponse struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileHash    string    `json:"fileHash"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func toEvidenceResponse(e *models.Evidence) EvidenceResponse {
	return EvidenceResponse{
		Title:       e.Title,
		Description: e.Description,
		FileHash:    e.FileHash,
		UploadedBy:  e.UploadedBy,
		UploadedAt:  e.UploadedAt,
	}
}

type CreatedEvidence struct {
	ID     string `json:"id"`
	CaseID string `json:"caseId"`
	EvidenceResponse
}

func toCreated(e *models.Evidence) CreatedEvidence {
	return CreatedEvidence{ID: e.ID.String(), CaseID: e.CaseID.String(), EvidenceResponse: toEvidenceResponse(e)}
}

type AddEvidenceResponse struct {
	Message  string          `json:"message"`
	Evidence CreatedEvidence `json:"evidence"`
}

type SubmitEvidenceResponse struct {
	Message        string          `json:"message"`
	Evidence       CreatedEvidence `json:"evidence"`
	AttachmentHash string          `json:"attachmentHash"`
	MetadataHash   string          `json:"metadataHash"`
	TransactionID  string          `json:"transactionId"`
}
