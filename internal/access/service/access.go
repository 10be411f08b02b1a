package service

import (
	"context"
	"errors"
	"fmt"

	"casevault/internal/access/models"
	"casevault/internal/access/store"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
)

// RequestAccess files a pending request for userID to see caseID. Only one
// request may ever exist per user and case.
func (s *Service) RequestAccess(ctx context.Context, userID id.UserID, caseID id.CaseID) (*models.AccessRequest, error) {
	if userID.IsNil() || caseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "userId and caseId are required")
	}

	req := &models.AccessRequest{
		ID:          id.NewAccessRequestID(),
		UserID:      userID,
		CaseID:      caseID,
		Status:      models.StatusPending,
		RequestedAt: s.now().UTC(),
	}
	var title string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.FindByID(ctx, caseID)
		if err != nil {
			return err
		}
		title = c.Title
		return s.access.Create(ctx, req)
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrDuplicate):
		return nil, dErrors.New(dErrors.CodeDuplicateRequest, "access has already been requested for this case")
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return nil, err
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create access request")
	}

	s.recordActivity(ctx, "ACCESS_REQUESTED", caseID.String(), fmt.Sprintf("Access requested for case %q", title))
	return req, nil
}

// ListPendingAccessRequests returns pending requests, oldest first, with the
// requester's full name and the case title.
func (s *Service) ListPendingAccessRequests(ctx context.Context) ([]models.PendingView, error) {
	pending, err := s.access.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list access requests")
	}
	if len(pending) == 0 {
		return []models.PendingView{}, nil
	}

	userIDs := make([]id.UserID, 0, len(pending))
	for _, a := range pending {
		userIDs = append(userIDs, a.UserID)
	}
	users, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load requesters")
	}
	titles, err := s.caseTitles(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.PendingView, len(pending))
	for i, a := range pending {
		out[i] = models.PendingView{
			AccessRequest:     *a,
			RequesterFullName: users[a.UserID].FullName,
			CaseTitle:         titles[a.CaseID],
		}
	}
	return out, nil
}

func (s *Service) ApproveAccess(ctx context.Context, requestID id.AccessRequestID) (*models.AccessRequest, error) {
	if err := s.access.Approve(ctx, requestID, s.now().UTC()); err != nil {
		return nil, translateLookup(err, "failed to approve access request")
	}
	a, err := s.access.FindByID(ctx, requestID)
	if err != nil {
		return nil, translateLookup(err, "failed to load access request")
	}
	s.logAudit(ctx, "access_approved",
		"access_request_id", requestID.String(),
		"user_id", a.UserID.String(),
		"case_id", a.CaseID.String(),
	)
	s.recordActivity(ctx, "ACCESS_APPROVED", a.CaseID.String(), "Access approved for user "+a.UserID.String())
	return a, nil
}

// RejectAccess deletes the request, which lets the user ask again later.
func (s *Service) RejectAccess(ctx context.Context, requestID id.AccessRequestID) error {
	a, err := s.access.FindByID(ctx, requestID)
	if err != nil {
		return translateLookup(err, "failed to load access request")
	}
	if err := s.access.Delete(ctx, requestID); err != nil {
		return translateLookup(err, "failed to reject access request")
	}
	s.logAudit(ctx, "access_rejected",
		"access_request_id", requestID.String(),
		"user_id", a.UserID.String(),
		"case_id", a.CaseID.String(),
	)
	s.recordActivity(ctx, "ACCESS_REJECTED", a.CaseID.String(), "Access rejected for user "+a.UserID.String())
	return nil
}

// ListCasesWithAccess lists every case and marks the ones userID may open.
// Evidence titles are only filled in for those.
func (s *Service) ListCasesWithAccess(ctx context.Context, userID id.UserID) ([]models.CaseAccess, error) {
	cases, err := s.cases.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	granted, err := s.access.ApprovedCaseIDs(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access grants")
	}

	creators := make([]id.UserID, 0, len(cases))
	visible := make([]id.CaseID, 0, len(granted))
	for _, c := range cases {
		creators = append(creators, c.CreatedBy)
		if _, ok := granted[c.ID]; ok {
			visible = append(visible, c.ID)
		}
	}
	users, err := s.users.Summaries(ctx, creators)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case creators")
	}
	titles := map[id.CaseID][]string{}
	if len(visible) > 0 {
		titles, err = s.evidence.TitlesByCase(ctx, visible)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evidence titles")
		}
	}

	out := make([]models.CaseAccess, len(cases))
	for i, c := range cases {
		_, ok := granted[c.ID]
		row := models.CaseAccess{
			CaseID:          c.ID,
			Title:           c.Title,
			Description:     c.Description,
			Status:          string(c.Status),
			CreatedBy:       c.CreatedBy,
			CreatorUsername: users[c.CreatedBy].Username,
			CreatedAt:       c.CreatedAt,
			AccessGranted:   ok,
			EvidenceTitles:  []string{},
		}
		if ok && titles[c.ID] != nil {
			row.EvidenceTitles = titles[c.ID]
		}
		out[i] = row
	}
	return out, nil
}

func (s *Service) caseTitles(ctx context.Context) (map[id.CaseID]string, error) {
	cases, err := s.cases.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	out := make(map[id.CaseID]string, len(cases))
	for _, c := range cases {
		out[c.ID] = c.Title
	}
	return out, nil
}

func translateLookup(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "access request not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

