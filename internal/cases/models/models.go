package models

import (
	"time"

	id "casevault/pkg/domain"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
)

// Case is an investigation container. EvidenceIDs keeps upload order.
type Case struct {
	ID          id.CaseID
	Title       string
	Description string
	Status      Status
	CreatedBy   id.UserID
	EvidenceIDs []id.EvidenceID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Case) IsOpen() bool { return c.Status == StatusOpen }

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// CaseRequest is a user's proposal to open a case. It is kept after review;
// CaseID is set only once approved.
type CaseRequest struct {
	ID          id.CaseRequestID
	Title       string
	Description string
	RequestedBy id.UserID
	Status      RequestStatus
	CaseID      *id.CaseID
	RequestedAt time.Time
	ReviewedAt  *time.Time
}

func (r *CaseRequest) IsPending() bool { return r.Status == RequestPending }

// RequestView is a CaseRequest with the requester's username joined in.
type RequestView struct {
	CaseRequest
	RequesterUsername string
}
