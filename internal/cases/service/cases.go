package service

import (
	"context"
	"errors"
	"fmt"

	"casevault/internal/cases/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/sentinel"
)

func (s *Service) GetCase(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}

// CloseCase moves an open case to closed. Closing twice is an InvalidState.
func (s *Service) CloseCase(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	err := s.cases.TransitionStatus(ctx, caseID, models.StatusOpen, models.StatusClosed, s.now().UTC())
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return nil, dErrors.New(dErrors.CodeInvalidState, "only open cases can be closed")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close case")
	}
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "case_closed", "case_id", caseID.String())
	s.recordActivity(ctx, "CASE_CLOSED", caseID.String(), fmt.Sprintf("Case %q closed", c.Title))
	return c, nil
}
