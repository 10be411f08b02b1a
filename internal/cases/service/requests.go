package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	accessModels "casevault/internal/access/models"
	"casevault/internal/cases/models"
	"casevault/internal/cases/store/caserequest"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
)

// Approval is the result of approving a case request.
type Approval struct {
	Case   *models.Case
	Access *accessModels.AccessRequest
}

func (s *Service) SubmitCaseRequest(ctx context.Context, title, description string, requestedBy id.UserID) (*models.CaseRequest, error) {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title is required")
	}
	if strings.TrimSpace(description) == "" {
		missing = append(missing, "description is required")
	}
	if requestedBy.IsNil() {
		missing = append(missing, "requestedBy is required")
	}
	if len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, strings.Join(missing, "; "))
	}

	exists, err := s.users.Exists(ctx, requestedBy)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "requesting user not found")
	}

	req := &models.CaseRequest{
		ID:          id.NewCaseRequestID(),
		Title:       title,
		Description: description,
		RequestedBy: requestedBy,
		Status:      models.RequestPending,
		RequestedAt: s.now().UTC(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case request")
	}
	s.recordActivity(ctx, "CASE_REQUESTED", req.ID.String(), fmt.Sprintf("Case %q requested", title))
	return req, nil
}

// ApproveCaseRequest opens a case from a pending request and grants the
// requester access to it. The three writes commit together or not at all.
func (s *Service) ApproveCaseRequest(ctx context.Context, requestID id.CaseRequestID) (*Approval, error) {
	var result *Approval
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return caserequest.ErrInvalidState
		}

		now := s.now().UTC()
		c := &models.Case{
			ID:          id.NewCaseID(),
			Title:       req.Title,
			Description: req.Description,
			Status:      models.StatusOpen,
			CreatedBy:   req.RequestedBy,
			EvidenceIDs: []id.EvidenceID{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.cases.Create(ctx, c); err != nil {
			return err
		}
		if err := s.requests.Review(ctx, requestID, caserequest.Review{
			Status:     models.RequestApproved,
			CaseID:     &c.ID,
			ReviewedAt: now,
		}); err != nil {
			return err
		}
		grant := &accessModels.AccessRequest{
			ID:          id.NewAccessRequestID(),
			UserID:      req.RequestedBy,
			CaseID:      c.ID,
			Status:      accessModels.StatusApproved,
			RequestedAt: now,
			ReviewedAt:  &now,
		}
		if err := s.access.Create(ctx, grant); err != nil {
			return err
		}
		result = &Approval{Case: c, Access: grant}
		return nil
	})
	if err != nil {
		return nil, translateReview(err, "failed to approve case request")
	}

	s.logAudit(ctx, "case_request_approved",
		"case_request_id", requestID.String(),
		"case_id", result.Case.ID.String(),
		"requested_by", result.Case.CreatedBy.String(),
	)
	s.recordActivity(ctx, "CASE_APPROVED", result.Case.ID.String(), fmt.Sprintf("Case %q opened", result.Case.Title))
	if s.metrics != nil {
		s.metrics.CasesOpened.Inc()
	}
	return result, nil
}

func (s *Service) RejectCaseRequest(ctx context.Context, requestID id.CaseRequestID) (*models.CaseRequest, error) {
	if err := s.requests.Review(ctx, requestID, caserequest.Review{
		Status:     models.RequestRejected,
		ReviewedAt: s.now().UTC(),
	}); err != nil {
		return nil, translateReview(err, "failed to reject case request")
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case request")
	}
	s.logAudit(ctx, "case_request_rejected", "case_request_id", requestID.String())
	s.recordActivity(ctx, "CASE_REJECTED", requestID.String(), fmt.Sprintf("Case request %q rejected", req.Title))
	return req, nil
}

// ListCaseRequests returns every request, reviewed ones included, with the
// requester's username.
func (s *Service) ListCaseRequests(ctx context.Context) ([]models.RequestView, error) {
	reqs, err := s.requests.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list case requests")
	}
	ids := make([]id.UserID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.RequestedBy)
	}
	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.RequestView, len(reqs))
	for i, r := range reqs {
		out[i] = models.RequestView{CaseRequest: *r, RequesterUsername: users[r.RequestedBy].Username}
	}
	return out, nil
}

func translateReview(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case request not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "case request has already been reviewed")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
