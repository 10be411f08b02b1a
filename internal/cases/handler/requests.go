package handler

import (
	"time"

	accessModels "casevault/internal/access/models"
	"casevault/internal/cases/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
)

type SubmitCaseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	RequestedBy string `json:"requestedBy" validate:"required"`

	requester id.UserID
}

func (r *SubmitCaseRequest) Validate() error {
	requester, err := id.ParseUserID(r.RequestedBy)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "requestedBy must be a valid user id")
	}
	r.requester = requester
	return nil
}

type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type CaseRequestResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	RequestedBy UserRef    `json:"requestedBy"`
	Status      string     `json:"status"`
	CaseID      *string    `json:"caseId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
}

func toRequestResponse(r *models.CaseRequest, username string) CaseRequestResponse {
	out := CaseRequestResponse{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		RequestedBy: UserRef{ID: r.RequestedBy.String(), Username: username},
		Status:      string(r.Status),
		CreatedAt:   r.RequestedAt,
		ReviewedAt:  r.ReviewedAt,
	}
	if r.CaseID != nil {
		caseID := r.CaseID.String()
		out.CaseID = &caseID
	}
	return out
}

type CaseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy"`
	Evidence    []string  `json:"evidence"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCaseResponse(c *models.Case) CaseResponse {
	evidence := make([]string, len(c.EvidenceIDs))
	for i, e := range c.EvidenceIDs {
		evidence[i] = e.String()
	}
	return CaseResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		CreatedBy:   c.CreatedBy.String(),
		Evidence:    evidence,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type AccessResponse struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	CaseID string `json:"caseId"`
	Status string `json:"status"`
}

func toAccessResponse(a *accessModels.AccessRequest) AccessResponse {
	return AccessResponse{
		ID:     a.ID.String(),
		UserID: a.UserID.String(),
		CaseID: a.CaseID.String(),
		Status: string(a.Status),
	}
}

type SubmitResponse struct {
	Message string              `json:"message"`
	Request CaseRequestResponse `json:"request"`
}

type ApprovalResponse struct {
	Message string         `json:"message"`
	Case    CaseResponse   `json:"case"`
	Access  AccessResponse `json:"access"`
}
