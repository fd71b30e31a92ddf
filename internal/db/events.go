package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QueryCreateEvent stores a calendar event. analysisID and threadID may be
// empty for manually created events.
func (c *Client) QueryCreateEvent(
	ctx context.Context,
	id string,
	userID string,
	analysisID string,
	threadID string,
	in models.EventInput,
	sourceType string,
	sourceEvidence string,
) (*models.CalendarEvent, error) {
	if sourceType == "" {
		sourceType = "manual"
	}
	if in.Color == "" {
		in.Color = "blue"
	}

	vars := map[string]any{
		"id":              id,
		"user_id":         userID,
		"title":           in.Title,
		"description":     in.Description,
		"start_time":      in.StartTime,
		"end_time":        in.EndTime,
		"all_day":         in.AllDay,
		"color":           in.Color,
		"source_type":     sourceType,
		"source_evidence": sourceEvidence,
	}

	analysisSet := "analysis = NONE, thread = NONE,"
	if analysisID != "" && threadID != "" {
		analysisSet = `analysis = type::record("analysis", $analysis_id), thread = type::record("thread", $thread_id),`
		vars["analysis_id"] = analysisID
		vars["thread_id"] = threadID
	}

	sql := fmt.Sprintf(`
		CREATE type::record("calendar_event", $id) SET
			user_id = $user_id,
			%s
			title = $title,
			description = $description,
			start_time = $start_time,
			end_time = $end_time,
			all_day = $all_day,
			color = $color,
			source_type = $source_type,
			source_evidence = $source_evidence
		RETURN AFTER
	`, analysisSet)

	results, err := surrealdb.Query[[]models.CalendarEvent](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create event: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryListEvents returns the user's events overlapping [from, to) ordered by
// start time. Zero times disable the bound on that side.
func (c *Client) QueryListEvents(ctx context.Context, userID string, from, to *string) ([]models.CalendarEvent, error) {
	filter := ""
	vars := map[string]any{"user_id": userID}
	if from != nil {
		filter += " AND end_time >= <datetime>$from"
		vars["from"] = *from
	}
	if to != nil {
		filter += " AND start_time < <datetime>$to"
		vars["to"] = *to
	}

	sql := fmt.Sprintf(`
		SELECT * FROM calendar_event
		WHERE user_id = $user_id %s
		ORDER BY start_time ASC
	`, filter)

	results, err := surrealdb.Query[[]models.CalendarEvent](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.CalendarEvent{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryUpdateEvent replaces the user-editable fields of an event.
func (c *Client) QueryUpdateEvent(ctx context.Context, id, userID string, in models.EventInput) (*models.CalendarEvent, error) {
	sql := `
		UPDATE type::record("calendar_event", $id) SET
			title = $title,
			description = $description,
			start_time = $start_time,
			end_time = $end_time,
			all_day = $all_day,
			color = $color
		WHERE user_id = $user_id
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.CalendarEvent](ctx, c.db, sql, map[string]any{
		"id":          id,
		"user_id":     userID,
		"title":       in.Title,
		"description": in.Description,
		"start_time":  in.StartTime,
		"end_time":    in.EndTime,
		"all_day":     in.AllDay,
		"color":       in.Color,
	})
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryDeleteEvent deletes an event. Returns deleted count (0 when absent).
func (c *Client) QueryDeleteEvent(ctx context.Context, id, userID string) (int, error) {
	results, err := surrealdb.Query[[]models.CalendarEvent](ctx, c.db, `
		DELETE type::record("calendar_event", $id) WHERE user_id = $user_id RETURN BEFORE
	`, map[string]any{"id": id, "user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}
