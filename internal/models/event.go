package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// CalendarEvent is a calendar entry derived from a deadline or created by the
// user directly.
type CalendarEvent struct {
	ID             surrealmodels.RecordID `json:"id"`
	UserID         string                 `json:"user_id"`
	Analysis       surrealmodels.RecordID `json:"analysis"`
	Thread         surrealmodels.RecordID `json:"thread"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	StartTime      time.Time              `json:"start_time"`
	EndTime        time.Time              `json:"end_time"`
	AllDay         bool                   `json:"all_day"`
	Color          string                 `json:"color"`
	SourceType     string                 `json:"source_type"`
	SourceEvidence string                 `json:"source_evidence"`
	CreatedAt      time.Time              `json:"created_at"`
}

// EventInput is the payload for creating or updating a calendar event.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	Color       string    `json:"color"`
}
