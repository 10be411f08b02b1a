package models

import (
	"time"

	id "casevault/pkg/domain"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// AccessRequest grants one user access to one case once approved. At most
// one exists per (user, case) pair.
type AccessRequest struct {
	ID          id.AccessRequestID
	UserID      id.UserID
	CaseID      id.CaseID
	Status      Status
	RequestedAt time.Time
	ReviewedAt  *time.Time
}

func (a *AccessRequest) IsApproved() bool { return a.Status == StatusApproved }

// PendingView joins the requester's full name and the case title.
type PendingView struct {
	AccessRequest
	RequesterFullName string
	CaseTitle         string
}

// CaseAccess is one row of a user's case listing. EvidenceTitles is empty
// unless AccessGranted.
type CaseAccess struct {
	CaseID          id.CaseID
	Title           string
	Description     string
	Status          string
	CreatedBy       id.UserID
	CreatorUsername string
	CreatedAt       time.Time
	AccessGranted   bool
	EvidenceTitles  []string
}
