package handler

import (
	"time"

	"casevault/internal/activity/models"
	"casevault/internal/activity/service"
)

type LogActivityRequest struct {
	UserID       string     `json:"userId" validate:"required"`
	ActivityType string     `json:"activityType" validate:"required"`
	RelatedID    string     `json:"relatedId"`
	Details      string     `json:"details"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
}

func (r LogActivityRequest) input() service.Input {
	in := service.Input{
		UserID:       r.UserID,
		ActivityType: r.ActivityType,
		RelatedID:    r.RelatedID,
		Details:      r.Details,
	}
	if r.Timestamp != nil {
		in.OccurredAt = *r.Timestamp
	}
	return in
}

type LogActivityBatchRequest struct {
	Entries []LogActivityRequest `json:"entries" validate:"required,min=1,max=100,dive"`
}

type ActivityResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username,omitempty"`
	ActivityType string    `json:"activityType"`
	RelatedID    string    `json:"relatedId,omitempty"`
	Details      string    `json:"details,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func toActivityResponse(e models.Entry, username string) ActivityResponse {
	return ActivityResponse{
		ID:           e.ID.String(),
		UserID:       e.UserID,
		Username:     username,
		ActivityType: e.ActivityType,
		RelatedID:    e.RelatedID,
		Details:      e.Details,
		Timestamp:    e.CreatedAt,
	}
}

type LogResponse struct {
	Message string           `json:"message"`
	Log     ActivityResponse `json:"log"`
}

type BatchResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
