package models

import (
	"time"

	id "casevault/pkg/domain"
)

// MaxBatch caps a single batch append.
const MaxBatch = 100

// Entry is one append-only activity record. UserID is free-form: it is
// usually a user id but the shipper may send anything identifying the actor.
type Entry struct {
	ID           id.ActivityID `json:"id"`
	UserID       string        `json:"userId"`
	ActivityType string        `json:"activityType"`
	RelatedID    string        `json:"relatedId,omitempty"`
	Details      string        `json:"details,omitempty"`
	CreatedAt    time.Time     `json:"timestamp"`
}

// View joins the username when UserID names a known user.
type View struct {
	Entry
	Username string
}
