package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Todo is a task derived from an analysis' action items.
type Todo struct {
	ID          surrealmodels.RecordID `json:"id"`
	UserID      string                 `json:"user_id"`
	Analysis    surrealmodels.RecordID `json:"analysis"`
	Thread      surrealmodels.RecordID `json:"thread"`
	Description string                 `json:"description"`
	Assignee    *string                `json:"assignee,omitempty"`
	Priority    string                 `json:"priority"`
	DueDate     *time.Time             `json:"due_date,omitempty"`
	Completed   bool                   `json:"completed"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`

	// Joined for display, not stored on the row.
	ThreadTitle string `json:"thread_title,omitempty"`
}

// TodoInput is the payload for creating a todo directly.
type TodoInput struct {
	Description string  `json:"description"`
	Assignee    *string `json:"assignee,omitempty"`
	Priority    string  `json:"priority"`
}
