package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// Stats holds per-user record counts for the stats endpoint.
type Stats struct {
	Threads        int `json:"threads"`
	Analyses       int `json:"analyses"`
	Topics         int `json:"topics"`
	Results        int `json:"results"`
	PendingTopics  int `json:"pending_topics"`
	Todos          int `json:"todos"`
	OpenTodos      int `json:"open_todos"`
	CalendarEvents int `json:"calendar_events"`
}

// QueryStats counts the user's records across all tables in one round trip.
func (c *Client) QueryStats(ctx context.Context, userID string) (*Stats, error) {
	sql := `
		RETURN {
			threads: (SELECT count() AS c FROM thread WHERE user_id = $user_id GROUP ALL)[0].c ?? 0,
			analyses: (SELECT count() AS c FROM analysis WHERE user_id = $user_id GROUP ALL)[0].c ?? 0,
			topics: (SELECT count() AS c FROM research_topic WHERE user_id = $user_id GROUP ALL)[0].c ?? 0,
			results: (SELECT count() AS c FROM research_result WHERE user_id = $user_id GROUP ALL)[0].c ?? 0,
			pending_topics: (SELECT count() AS c FROM research_topic WHERE user_id = $user_id AND is_loading = true GROUP ALL)[0].c ?? 0,
			todos: (SELECT count() AS c FROM todo WHERE user_id = $user_id GROUP ALL)[0].c ?? 0,
			open_todos: (SELECT count() AS c FROM todo WHERE user_id = $user_id AND completed = false GROUP ALL)[0].c ?? 0,
			calendar_events: (SELECT count() AS c FROM calendar_event WHERE user_id = $user_id GROUP ALL)[0].c ?? 0
		}
	`

	results, err := surrealdb.Query[Stats](ctx, c.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return &Stats{}, nil
	}
	s := (*results)[0].Result
	return &s, nil
}
