package handler

import (
	"time"

	"casevault/internal/access/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
)

type RequestAccessRequest struct {
	UserID string `json:"userId" validate:"required"`
	CaseID string `json:"caseId" validate:"required"`

	userID id.UserID
	caseID id.CaseID
}

func (r *RequestAccessRequest) Validate() error {
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "userId must be a valid user id")
	}
	caseID, err := id.ParseCaseID(r.CaseID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "caseId must be a valid case id")
	}
	r.userID, r.caseID = userID, caseID
	return nil
}

type AccessRequestResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	CaseID      string     `json:"caseId"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
}

func toAccessResponse(a *models.AccessRequest) AccessRequestResponse {
	return AccessRequestResponse{
		ID:          a.ID.String(),
		UserID:      a.UserID.String(),
		CaseID:      a.CaseID.String(),
		Status:      string(a.Status),
		RequestedAt: a.RequestedAt,
		ReviewedAt:  a.ReviewedAt,
	}
}

type AccessEnvelope struct {
	Message string                `json:"message"`
	Request AccessRequestResponse `json:"request"`
}

type PendingAccessResponse struct {
	AccessRequestResponse
	FullName  string `json:"fullName"`
	CaseTitle string `json:"caseTitle"`
}

type CaseWithAccessResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	CreatedBy       string    `json:"createdBy"`
	CreatorUsername string    `json:"creatorUsername"`
	CreatedAt       time.Time `json:"createdAt"`
	AccessGranted   bool      `json:"accessGranted"`
	Evidence        []string  `json:"evidence"`
}

func toCaseWithAccess(c models.CaseAccess) CaseWithAccessResponse {
	return CaseWithAccessResponse{
		ID:              c.CaseID.String(),
		Title:           c.Title,
		Description:     c.Description,
		Status:          c.Status,
		CreatedBy:       c.CreatedBy.String(),
		CreatorUsername: c.CreatorUsername,
		CreatedAt:       c.CreatedAt,
		AccessGranted:   c.AccessGranted,
		Evidence:        c.EvidenceTitles,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
