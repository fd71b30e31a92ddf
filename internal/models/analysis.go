package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Priority levels used for action items and todos.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Stakeholder is a person identified in an email thread.
type Stakeholder struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Evidence string `json:"evidence"`
}

// ActionItem is a task extracted from a thread.
type ActionItem struct {
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority"`
	Evidence    string `json:"evidence"`
}

// Deadline is a date or time commitment mentioned in a thread. Date may be an
// ISO 8601 string or descriptive text ("next Friday").
type Deadline struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// KeyDecision is a decision made or proposed in a thread.
type KeyDecision struct {
	Decision  string `json:"decision"`
	Rationale string `json:"rationale"`
	Evidence  string `json:"evidence"`
}

// OpenQuestion is a question left unanswered in a thread.
type OpenQuestion struct {
	Question string `json:"question"`
	Context  string `json:"context"`
	Evidence string `json:"evidence"`
}

// SuggestedReply is one drafted reply to a thread.
type SuggestedReply struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Extraction is the structured output of the thread-analysis LLM call.
type Extraction struct {
	Stakeholders     []Stakeholder    `json:"stakeholders"`
	ActionItems      []ActionItem     `json:"action_items"`
	Deadlines        []Deadline       `json:"deadlines"`
	KeyDecisions     []KeyDecision    `json:"key_decisions"`
	OpenQuestions    []OpenQuestion   `json:"open_questions"`
	SuggestedReplies []SuggestedReply `json:"suggested_replies"`
}

// Analysis is one structured-extraction result for a thread. At most one
// analysis is treated as current per thread, the latest by creation time.
// Rows are never updated after creation.
type Analysis struct {
	ID               surrealmodels.RecordID `json:"id"`
	Thread           surrealmodels.RecordID `json:"thread"`
	UserID           string                 `json:"user_id"`
	Stakeholders     []Stakeholder          `json:"stakeholders"`
	ActionItems      []ActionItem           `json:"action_items"`
	Deadlines        []Deadline             `json:"deadlines"`
	KeyDecisions     []KeyDecision          `json:"key_decisions"`
	OpenQuestions    []OpenQuestion         `json:"open_questions"`
	SuggestedReplies []SuggestedReply       `json:"suggested_replies"`
	SuggestedReply   string                 `json:"suggested_reply"` // legacy, first of SuggestedReplies
	CreatedAt        time.Time              `json:"created_at"`
}
