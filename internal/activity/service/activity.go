package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casevault/internal/activity/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/tx"
)

// Input is one entry as submitted by a client. OccurredAt is optional; the
// shipper sets it for entries it had to cache.
type Input struct {
	UserID       string
	ActivityType string
	RelatedID    string
	Details      string
	OccurredAt   time.Time
}

func (in Input) problems() []string {
	var out []string
	if strings.TrimSpace(in.UserID) == "" {
		out = append(out, "userId is required")
	}
	if strings.TrimSpace(in.ActivityType) == "" {
		out = append(out, "activityType is required")
	}
	return out
}

func (s *Service) entry(in Input) models.Entry {
	at := in.OccurredAt
	if at.IsZero() {
		at = s.now()
	}
	return models.Entry{
		ID:           id.NewActivityID(),
		UserID:       in.UserID,
		ActivityType: in.ActivityType,
		RelatedID:    in.RelatedID,
		Details:      in.Details,
		CreatedAt:    at.UTC(),
	}
}

// Record appends an entry on behalf of another service. It joins the
// caller's unit of work when ctx carries one.
func (s *Service) Record(ctx context.Context, userID, activityType, relatedID, details string) error {
	_, err := s.Log(ctx, Input{UserID: userID, ActivityType: activityType, RelatedID: relatedID, Details: details})
	return err
}

func (s *Service) Log(ctx context.Context, in Input) (*models.Entry, error) {
	if problems := in.problems(); len(problems) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, strings.Join(problems, "; "))
	}
	e := s.entry(in)
	if err := s.store.Append(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log activity")
	}
	tx.AfterCommit(ctx, func() { s.publish(ctx, e) })
	return &e, nil
}

// LogBatch appends every entry or none. Any invalid entry rejects the batch.
func (s *Service) LogBatch(ctx context.Context, inputs []Input) ([]models.Entry, error) {
	if len(inputs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one entry is required")
	}
	if len(inputs) > models.MaxBatch {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d entries per batch", models.MaxBatch))
	}
	var problems []string
	for i, in := range inputs {
		for _, p := range in.problems() {
			problems = append(problems, fmt.Sprintf("entries[%d]: %s", i, p))
		}
	}
	if len(problems) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, strings.Join(problems, "; "))
	}

	entries := make([]models.Entry, len(inputs))
	for i, in := range inputs {
		entries[i] = s.entry(in)
	}
	if err := s.store.Append(ctx, entries...); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log activity batch")
	}
	tx.AfterCommit(ctx, func() { s.publish(ctx, entries...) })
	return entries, nil
}

// List returns the whole log, newest first, with usernames joined where the
// entry's user id names a known user.
func (s *Service) List(ctx context.Context) ([]models.View, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity")
	}

	seen := make(map[id.UserID]struct{})
	ids := make([]id.UserID, 0)
	for _, e := range entries {
		userID, err := id.ParseUserID(e.UserID)
		if err != nil {
			continue
		}
		if _, ok := seen[userID]; !ok {
			seen[userID] = struct{}{}
			ids = append(ids, userID)
		}
	}
	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load usernames")
	}

	out := make([]models.View, len(entries))
	for i, e := range entries {
		out[i] = models.View{Entry: e}
		if userID, err := id.ParseUserID(e.UserID); err == nil {
			out[i].Username = users[userID].Username
		}
	}
	return out, nil
}
