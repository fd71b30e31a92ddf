package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mailbrief/internal/brief"
	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/raphaelgruber/mailbrief/internal/research"
)

// topicContextNote is what every topic view reports as its context.
const topicContextNote = "Email thread analysis"

// ResearchService orchestrates topic identification and per-topic research.
type ResearchService struct {
	db         *db.Client
	identifier *research.Identifier
	engine     *research.Engine
	logger     *slog.Logger
}

// NewResearchService creates a research service.
func NewResearchService(database *db.Client, identifier *research.Identifier, engine *research.Engine, logger *slog.Logger) *ResearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchService{db: database, identifier: identifier, engine: engine, logger: logger}
}

// IdentifyOutcome is the uniform identify response: cached and fresh topics
// share one shape.
type IdentifyOutcome struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Topics  []models.TopicView `json:"topics"`
}

// Identify returns the analysis' topics, generating and persisting them on
// first call. Identification runs at most once per analysis: a concurrent
// duplicate loses the batch guard and re-reads what the winner stored, and an
// identification that yields zero topics is pinned so it is not re-run.
func (s *ResearchService) Identify(ctx context.Context, userID, analysisID, emailContent string) (*IdentifyOutcome, error) {
	if _, err := s.db.QueryGetAnalysis(ctx, analysisID, userID); err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	topics, err := s.db.QueryGetTopicsWithResults(ctx, analysisID, userID)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}
	if len(topics) > 0 {
		s.logger.Info("returning cached topics", "analysis", analysisID, "count", len(topics))
		return outcome(s.topicViews(topics)), nil
	}

	created, err := s.db.QueryHasTopicBatch(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	if !created {
		identified := s.identifier.Identify(ctx, emailContent)
		seeds := make([]db.TopicSeed, len(identified))
		for i, t := range identified {
			seeds[i] = db.TopicSeed{ID: uuid.NewString(), Title: t.Topic}
		}

		err := s.db.QueryCreateTopicBatch(ctx, analysisID, userID, seeds)
		switch {
		case errors.Is(err, db.ErrAlreadyExists):
			// A concurrent identify won; its topics are authoritative.
			s.logger.Info("topic batch already created by concurrent request", "analysis", analysisID)
		case err != nil:
			return nil, fmt.Errorf("identify: %w", err)
		default:
			s.logger.Info("identified topics", "analysis", analysisID, "count", len(seeds))
		}
	}

	topics, err = s.db.QueryGetTopicsWithResults(ctx, analysisID, userID)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}
	return outcome(s.topicViews(topics)), nil
}

func outcome(views []models.TopicView) *IdentifyOutcome {
	return &IdentifyOutcome{Success: true, Count: len(views), Topics: views}
}

// topicViews maps joined rows to the uniform view shape, deriving the
// effective loading state and lifting the tldr out of stored briefs.
func (s *ResearchService) topicViews(topics []models.TopicWithResult) []models.TopicView {
	views := make([]models.TopicView, len(topics))
	for i, tw := range topics {
		v := models.TopicView{
			ID:        models.MustRecordIDString(tw.Topic.ID),
			Topic:     tw.Topic.Title,
			Context:   topicContextNote,
			Priority:  models.PriorityMedium,
			IsLoading: tw.Loading(),
		}
		if tw.Result != nil && tw.Result.Content != "" {
			var stored struct {
				TLDR []string `json:"tldr"`
			}
			if err := json.Unmarshal([]byte(tw.Result.Content), &stored); err == nil {
				v.TLDR = stored.TLDR
			}
		}
		views[i] = v
	}
	return views
}

// ProcessRequest carries one topic through the research workflow.
type ProcessRequest struct {
	AnalysisID   string `json:"analysisId"`
	TopicID      string `json:"topicId"`
	Topic        string `json:"topic"`
	Context      string `json:"context"`
	EmailContent string `json:"emailContent"`
}

// ProcessOutcome reports a finished workflow run. Success is false for
// degraded (failure-brief) results and when the result could not be stored.
type ProcessOutcome struct {
	Success bool         `json:"success"`
	Result  *brief.Brief `json:"result"`
}

// Process runs the research workflow for one topic and upserts the outcome.
// The brief coming back from the engine is always schema-valid, so Process
// persists unconditionally; reprocessing a topic replaces its stored result.
// Ownership errors are real errors, workflow failures are not.
func (s *ResearchService) Process(ctx context.Context, userID string, req ProcessRequest) (*ProcessOutcome, error) {
	topic, err := s.db.QueryGetTopic(ctx, req.TopicID, userID)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}

	title := req.Topic
	if title == "" {
		title = topic.Title
	}
	topicContext := req.Context
	if topicContext == "" {
		topicContext = topicContextNote
	}

	result, degraded := s.engine.Run(ctx, title, topicContext, req.EmailContent)

	content, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("process: marshal brief: %w", err)
	}

	success := !degraded
	if _, err := s.db.QueryUpsertResult(ctx, req.TopicID, req.AnalysisID, userID, content); err != nil {
		// The caller still gets the brief; it is just not persisted.
		s.logger.Error("failed to store research result", "topic", req.TopicID, "error", err)
		success = false
	}

	return &ProcessOutcome{Success: success, Result: result}, nil
}

// Summary returns the research state for a thread's latest analysis.
// ErrNotFound when the thread was never analyzed.
type Summary struct {
	AnalysisID string             `json:"analysisId"`
	Topics     []models.TopicView `json:"topics"`
}

// ThreadSummary reads the per-topic research status for a thread.
func (s *ResearchService) ThreadSummary(ctx context.Context, userID, threadID string) (*Summary, error) {
	analysis, err := s.db.QueryLatestAnalysisForThread(ctx, threadID, userID)
	if err != nil {
		return nil, fmt.Errorf("thread summary: %w", err)
	}
	analysisID := models.MustRecordIDString(analysis.ID)

	topics, err := s.db.QueryGetTopicsWithResults(ctx, analysisID, userID)
	if err != nil {
		return nil, fmt.Errorf("thread summary: %w", err)
	}
	return &Summary{AnalysisID: analysisID, Topics: s.topicViews(topics)}, nil
}

// AnalysisSummary reads the per-topic research status for an analysis,
// used by the websocket watcher.
func (s *ResearchService) AnalysisSummary(ctx context.Context, userID, analysisID string) (*Summary, error) {
	topics, err := s.db.QueryGetTopicsWithResults(ctx, analysisID, userID)
	if err != nil {
		return nil, fmt.Errorf("analysis summary: %w", err)
	}
	return &Summary{AnalysisID: analysisID, Topics: s.topicViews(topics)}, nil
}
