package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// TopicSeed is one topic to persist during batch creation. The id is chosen
// by the caller so retries stay idempotent.
type TopicSeed struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// QueryCreateTopicBatch persists the identified topics for an analysis in a
// single transaction guarded by the per-analysis batch record. When a
// concurrent request has already created the batch, the whole transaction
// rolls back and ErrAlreadyExists is returned; callers should re-read the
// stored topics instead of retrying.
//
// An empty topics slice still creates the batch record, pinning "this
// analysis yields no topics" so identification is not re-run.
func (c *Client) QueryCreateTopicBatch(ctx context.Context, analysisID, userID string, topics []TopicSeed) error {
	if topics == nil {
		topics = []TopicSeed{}
	}

	// The batch record id doubles as the guard: CREATE on an existing id
	// fails, and the unique index on analysis backs it up.
	sql := `
		BEGIN TRANSACTION;
		CREATE type::record("topic_batch", $analysis_id) SET
			analysis = type::record("analysis", $analysis_id),
			user_id = $user_id,
			topic_count = array::len($topics);
		FOR $t IN $topics {
			CREATE type::record("research_topic", $t.id) SET
				analysis = type::record("analysis", $analysis_id),
				user_id = $user_id,
				title = $t.title,
				is_loading = true;
		};
		COMMIT TRANSACTION;
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"analysis_id": analysisID,
		"user_id":     userID,
		"topics":      topics,
	})
	if err != nil {
		return fmt.Errorf("create topic batch: %w", wrapQueryError(err))
	}
	return nil
}

// QueryHasTopicBatch reports whether topic identification has already run for
// the analysis. Distinguishes "no topics identified" from "never identified".
func (c *Client) QueryHasTopicBatch(ctx context.Context, analysisID string) (bool, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM type::record("topic_batch", $analysis_id)
	`, map[string]any{"analysis_id": analysisID})
	if err != nil {
		return false, fmt.Errorf("has topic batch: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return false, nil
	}
	return (*results)[0].Result[0].C > 0, nil
}

// QueryGetTopicsWithResults returns the analysis' topics in creation order,
// each joined to its at-most-one result.
func (c *Client) QueryGetTopicsWithResults(ctx context.Context, analysisID, userID string) ([]models.TopicWithResult, error) {
	topicRes, err := surrealdb.Query[[]models.ResearchTopic](ctx, c.db, `
		SELECT * FROM research_topic
		WHERE analysis = type::record("analysis", $analysis_id) AND user_id = $user_id
		ORDER BY created_at ASC
	`, map[string]any{"analysis_id": analysisID, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get topics: %w", err)
	}

	var topics []models.ResearchTopic
	if topicRes != nil && len(*topicRes) > 0 {
		topics = (*topicRes)[0].Result
	}
	if len(topics) == 0 {
		return []models.TopicWithResult{}, nil
	}

	resultRes, err := surrealdb.Query[[]models.ResearchResult](ctx, c.db, `
		SELECT * FROM research_result
		WHERE analysis = type::record("analysis", $analysis_id) AND user_id = $user_id
	`, map[string]any{"analysis_id": analysisID, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}

	byTopic := map[string]*models.ResearchResult{}
	if resultRes != nil && len(*resultRes) > 0 {
		rows := (*resultRes)[0].Result
		for i := range rows {
			id, err := models.RecordIDString(rows[i].Topic)
			if err != nil {
				return nil, fmt.Errorf("get results: %w", err)
			}
			byTopic[id] = &rows[i]
		}
	}

	joined := make([]models.TopicWithResult, len(topics))
	for i, t := range topics {
		id, err := models.RecordIDString(t.ID)
		if err != nil {
			return nil, fmt.Errorf("get topics: %w", err)
		}
		joined[i] = models.TopicWithResult{Topic: t, Result: byTopic[id]}
	}
	return joined, nil
}

// QueryGetTopic retrieves a topic by id scoped to the owning user.
func (c *Client) QueryGetTopic(ctx context.Context, id, userID string) (*models.ResearchTopic, error) {
	results, err := surrealdb.Query[[]models.ResearchTopic](ctx, c.db, `
		SELECT * FROM type::record("research_topic", $id) WHERE user_id = $user_id
	`, map[string]any{"id": id, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get topic %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryUpsertResult writes the brief for a topic, keyed on the topic id so
// reprocessing replaces rather than duplicates (last write wins). The stored
// is_loading flag is cleared in the same batch so readers never observe a
// result next to a still-loading topic.
func (c *Client) QueryUpsertResult(ctx context.Context, topicID, analysisID, userID string, content []byte) (*models.ResearchResult, error) {
	sql := `
		UPSERT type::record("research_result", $topic_id) SET
			topic = type::record("research_topic", $topic_id),
			analysis = type::record("analysis", $analysis_id),
			user_id = $user_id,
			status = "completed",
			content = $content,
			updated_at = time::now()
		RETURN AFTER;
		UPDATE type::record("research_topic", $topic_id) SET is_loading = false;
	`

	results, err := surrealdb.Query[[]models.ResearchResult](ctx, c.db, sql, map[string]any{
		"topic_id":    topicID,
		"analysis_id": analysisID,
		"user_id":     userID,
		"content":     string(content),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert result: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("upsert result: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetResultByTopic returns the stored result for a topic, or ErrNotFound.
func (c *Client) QueryGetResultByTopic(ctx context.Context, topicID, userID string) (*models.ResearchResult, error) {
	results, err := surrealdb.Query[[]models.ResearchResult](ctx, c.db, `
		SELECT * FROM type::record("research_result", $topic_id) WHERE user_id = $user_id
	`, map[string]any{"topic_id": topicID, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("result for topic %s: %w", topicID, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}
