package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QueryCreateAnalysis stores an extraction result for a thread. Analyses are
// append-only; the newest row per thread is the current one.
func (c *Client) QueryCreateAnalysis(
	ctx context.Context,
	id string,
	threadID string,
	userID string,
	ex models.Extraction,
	suggestedReply string,
) (*models.Analysis, error) {
	sql := `
		CREATE type::record("analysis", $id) SET
			thread = type::record("thread", $thread_id),
			user_id = $user_id,
			stakeholders = $stakeholders,
			action_items = $action_items,
			deadlines = $deadlines,
			key_decisions = $key_decisions,
			open_questions = $open_questions,
			suggested_replies = $suggested_replies,
			suggested_reply = $suggested_reply
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Analysis](ctx, c.db, sql, map[string]any{
		"id":                id,
		"thread_id":         threadID,
		"user_id":           userID,
		"stakeholders":      orEmpty(ex.Stakeholders),
		"action_items":      orEmpty(ex.ActionItems),
		"deadlines":         orEmpty(ex.Deadlines),
		"key_decisions":     orEmpty(ex.KeyDecisions),
		"open_questions":    orEmpty(ex.OpenQuestions),
		"suggested_replies": orEmpty(ex.SuggestedReplies),
		"suggested_reply":   suggestedReply,
	})
	if err != nil {
		return nil, fmt.Errorf("create analysis: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create analysis: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetAnalysis retrieves an analysis by id scoped to the owning user.
func (c *Client) QueryGetAnalysis(ctx context.Context, id, userID string) (*models.Analysis, error) {
	results, err := surrealdb.Query[[]models.Analysis](ctx, c.db, `
		SELECT * FROM type::record("analysis", $id) WHERE user_id = $user_id
	`, map[string]any{"id": id, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get analysis %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryLatestAnalysisForThread returns the newest analysis for a thread, or
// ErrNotFound when the thread has never been analyzed.
func (c *Client) QueryLatestAnalysisForThread(ctx context.Context, threadID, userID string) (*models.Analysis, error) {
	results, err := surrealdb.Query[[]models.Analysis](ctx, c.db, `
		SELECT * FROM analysis
		WHERE thread = type::record("thread", $thread_id) AND user_id = $user_id
		ORDER BY created_at DESC LIMIT 1
	`, map[string]any{"thread_id": threadID, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("latest analysis: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("latest analysis for thread %s: %w", threadID, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// orEmpty keeps FLEXIBLE array fields non-null on the wire.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
