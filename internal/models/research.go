package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ResearchTopic is one unit of research work owned by an analysis. Title is
// immutable once created. IsLoading starts true and is cleared when a result
// is written; readers derive the effective loading state from the joined
// result rather than trusting this flag alone.
type ResearchTopic struct {
	ID        surrealmodels.RecordID `json:"id"`
	Analysis  surrealmodels.RecordID `json:"analysis"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	IsLoading bool                   `json:"is_loading"`
	CreatedAt time.Time              `json:"created_at"`
}

// ResultStatus values for ResearchResult.Status.
const (
	ResultStatusCompleted = "completed"
)

// ResearchResult is the persisted brief for one topic. Topic is unique, so
// writes are upserts and reprocessing is idempotent. Content holds the brief
// as serialized JSON.
type ResearchResult struct {
	ID        surrealmodels.RecordID `json:"id"`
	Topic     surrealmodels.RecordID `json:"topic"`
	Analysis  surrealmodels.RecordID `json:"analysis"`
	UserID    string                 `json:"user_id"`
	Status    string                 `json:"status"`
	Content   string                 `json:"content"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// TopicView is the uniform shape the identify operation returns for each
// topic, whether cached or freshly created.
type TopicView struct {
	ID        string   `json:"id"`
	Topic     string   `json:"topic"`
	Context   string   `json:"context"`
	Priority  string   `json:"priority"`
	IsLoading bool     `json:"isLoading"`
	TLDR      []string `json:"tldr,omitempty"`
}

// TopicWithResult is a topic row joined to its at-most-one result.
type TopicWithResult struct {
	Topic  ResearchTopic
	Result *ResearchResult
}

// Loading reports the effective loading state: a topic is done once a
// completed result row exists, regardless of the stored flag.
func (t TopicWithResult) Loading() bool {
	if t.Result != nil && t.Result.Status == ResultStatusCompleted {
		return false
	}
	return t.Topic.IsLoading
}
