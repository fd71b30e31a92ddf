package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QueryCreateThread stores a new thread under the given id.
func (c *Client) QueryCreateThread(ctx context.Context, id, userID, title, content string) (*models.Thread, error) {
	sql := `
		CREATE type::record("thread", $id) SET
			user_id = $user_id,
			title = $title,
			content = $content
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Thread](ctx, c.db, sql, map[string]any{
		"id":      id,
		"user_id": userID,
		"title":   title,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create thread: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetThread retrieves a thread by id scoped to the owning user.
// Returns ErrNotFound when absent or owned by someone else.
func (c *Client) QueryGetThread(ctx context.Context, id, userID string) (*models.Thread, error) {
	results, err := surrealdb.Query[[]models.Thread](ctx, c.db, `
		SELECT * FROM type::record("thread", $id) WHERE user_id = $user_id
	`, map[string]any{"id": id, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get thread %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryListThreads returns the user's threads, newest first.
func (c *Client) QueryListThreads(ctx context.Context, userID string, limit int) ([]models.Thread, error) {
	if limit <= 0 {
		limit = 50
	}
	results, err := surrealdb.Query[[]models.Thread](ctx, c.db, `
		SELECT * FROM thread WHERE user_id = $user_id ORDER BY created_at DESC LIMIT $limit
	`, map[string]any{"user_id": userID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Thread{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryDeleteThread deletes a thread and everything hanging off it: analyses,
// topics, results, todos and calendar events. Returns the number of threads
// deleted (0 when absent, idempotent).
func (c *Client) QueryDeleteThread(ctx context.Context, id, userID string) (int, error) {
	sql := `
		LET $t = type::record("thread", $id);
		LET $analyses = (SELECT VALUE id FROM analysis WHERE thread = $t AND user_id = $user_id);
		DELETE research_result WHERE analysis IN $analyses;
		DELETE research_topic WHERE analysis IN $analyses;
		DELETE topic_batch WHERE analysis IN $analyses;
		DELETE todo WHERE thread = $t AND user_id = $user_id;
		DELETE calendar_event WHERE thread = $t AND user_id = $user_id;
		DELETE analysis WHERE thread = $t AND user_id = $user_id;
		DELETE $t WHERE user_id = $user_id RETURN BEFORE;
	`

	results, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":      id,
		"user_id": userID,
	})
	if err != nil {
		return 0, fmt.Errorf("delete thread: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	// The final statement's result reports the deleted thread records.
	last := (*results)[len(*results)-1].Result
	if rows, ok := last.([]any); ok {
		return len(rows), nil
	}
	if last != nil {
		return 1, nil
	}
	return 0, nil
}
