package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QueryCreateTodo stores a todo. analysisID and threadID may be empty for
// todos created directly rather than derived from an analysis.
func (c *Client) QueryCreateTodo(
	ctx context.Context,
	id string,
	userID string,
	analysisID string,
	threadID string,
	description string,
	assignee *string,
	priority string,
	dueDate *time.Time,
) (*models.Todo, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}

	vars := map[string]any{
		"id":          id,
		"user_id":     userID,
		"description": description,
		"assignee":    assignee,
		"priority":    priority,
		"due_date":    dueDate,
	}

	analysisSet := "analysis = NONE, thread = NONE,"
	if analysisID != "" && threadID != "" {
		analysisSet = `analysis = type::record("analysis", $analysis_id), thread = type::record("thread", $thread_id),`
		vars["analysis_id"] = analysisID
		vars["thread_id"] = threadID
	}

	sql := fmt.Sprintf(`
		CREATE type::record("todo", $id) SET
			user_id = $user_id,
			%s
			description = $description,
			assignee = $assignee,
			priority = $priority,
			due_date = $due_date,
			completed = false
		RETURN AFTER
	`, analysisSet)

	results, err := surrealdb.Query[[]models.Todo](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create todo: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryListTodos returns the user's todos, incomplete first, newest first
// within each group.
func (c *Client) QueryListTodos(ctx context.Context, userID string) ([]models.Todo, error) {
	results, err := surrealdb.Query[[]models.Todo](ctx, c.db, `
		SELECT *, thread.title AS thread_title FROM todo
		WHERE user_id = $user_id
		ORDER BY completed ASC, created_at DESC
	`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Todo{}, nil
	}
	return (*results)[0].Result, nil
}

// QuerySetTodoCompleted toggles completion, stamping or clearing completed_at.
func (c *Client) QuerySetTodoCompleted(ctx context.Context, id, userID string, completed bool) (*models.Todo, error) {
	sql := `
		UPDATE type::record("todo", $id) SET
			completed = $completed,
			completed_at = IF $completed THEN time::now() ELSE NONE END
		WHERE user_id = $user_id
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Todo](ctx, c.db, sql, map[string]any{
		"id":        id,
		"user_id":   userID,
		"completed": completed,
	})
	if err != nil {
		return nil, fmt.Errorf("set todo completed: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryDeleteTodo deletes a todo. Returns deleted count (0 when absent).
func (c *Client) QueryDeleteTodo(ctx context.Context, id, userID string) (int, error) {
	results, err := surrealdb.Query[[]models.Todo](ctx, c.db, `
		DELETE type::record("todo", $id) WHERE user_id = $user_id RETURN BEFORE
	`, map[string]any{"id": id, "user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete todo: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}
