// Package service provides business logic for Mailbrief operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/llm"
	"github.com/raphaelgruber/mailbrief/internal/mail"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// AnalysisService handles thread submission and structured extraction.
type AnalysisService struct {
	db     *db.Client
	model  Generator
	logger *slog.Logger
}

// Generator is the slice of the LLM model the services need.
type Generator interface {
	GenerateWithSystem(ctx context.Context, op, systemPrompt, userPrompt string, opts ...llms.CallOption) (string, error)
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(database *db.Client, model Generator, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{db: database, model: model, logger: logger}
}

// AnalyzeResult is the outcome of a thread submission.
type AnalyzeResult struct {
	Thread   *models.Thread         `json:"thread"`
	Analysis *models.Analysis       `json:"analysis"`
	Todos    []models.Todo          `json:"todos"`
	Events   []models.CalendarEvent `json:"events"`
	Degraded bool                   `json:"degraded"`
}

const extractionSystemPrompt = `You are an expert email analyst. Extract structured information from email threads.

Respond with JSON only, matching exactly this shape:
{
  "stakeholders": [{"name": "", "email": "", "role": "", "evidence": ""}],
  "action_items": [{"description": "", "assignee": "", "priority": "high|medium|low", "evidence": ""}],
  "deadlines": [{"date": "", "description": "", "evidence": ""}],
  "key_decisions": [{"decision": "", "rationale": "", "evidence": ""}],
  "open_questions": [{"question": "", "context": "", "evidence": ""}],
  "suggested_replies": [{"title": "", "content": ""}]
}

Rules:
- Every extracted item must include a short verbatim evidence quote from the thread.
- Dates may be ISO 8601 or descriptive text exactly as written ("next Friday").
- Provide exactly 3 suggested replies with distinct tones (e.g. concise confirmation, detailed response, clarifying questions).
- Empty arrays for categories with no findings. Never invent people or commitments.`

// Analyze stores the thread, runs structured extraction and derives todos and
// calendar events from the findings. Extraction failure degrades to an empty
// analysis rather than failing the submission.
func (s *AnalysisService) Analyze(ctx context.Context, userID, title, content string) (*AnalyzeResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("analyze: empty thread content")
	}
	parsed := mail.ParseThread(content)
	if strings.TrimSpace(title) == "" {
		title = mail.DeriveTitle(content)
	}

	thread, err := s.db.QueryCreateThread(ctx, uuid.NewString(), userID, title, content)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	threadID := models.MustRecordIDString(thread.ID)
	log := s.logger.With("thread", threadID)
	log.Debug("parsed thread", "messages", len(parsed.Messages), "participants", len(parsed.Participants))

	extraction, degraded := s.extract(ctx, log, content)

	// The model often names stakeholders without their address even when the
	// thread headers carry it.
	for i, st := range extraction.Stakeholders {
		if st.Email == "" {
			if addr, ok := parsed.FindAddress(st.Name); ok {
				extraction.Stakeholders[i].Email = addr.Email
			}
		}
	}

	suggestedReply := ""
	if len(extraction.SuggestedReplies) > 0 {
		suggestedReply = extraction.SuggestedReplies[0].Content
	}

	analysis, err := s.db.QueryCreateAnalysis(ctx, uuid.NewString(), threadID, userID, extraction, suggestedReply)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	analysisID := models.MustRecordIDString(analysis.ID)

	result := &AnalyzeResult{
		Thread:   thread,
		Analysis: analysis,
		Todos:    []models.Todo{},
		Events:   []models.CalendarEvent{},
		Degraded: degraded,
	}

	// Derived rows are best effort: a storage hiccup on one todo must not
	// lose the analysis itself.
	for _, item := range extraction.ActionItems {
		var assignee *string
		if item.Assignee != "" {
			a := item.Assignee
			assignee = &a
		}
		todo, err := s.db.QueryCreateTodo(ctx, uuid.NewString(), userID, analysisID, threadID,
			item.Description, assignee, normalizePriority(item.Priority), nil)
		if err != nil {
			log.Warn("failed to create derived todo", "error", err)
			continue
		}
		result.Todos = append(result.Todos, *todo)
	}

	eventColors := []string{"sky", "amber", "violet", "rose", "emerald", "orange"}
	now := time.Now()
	for _, d := range extraction.Deadlines {
		day, ok := ParseDescriptiveDate(d.Date, now)
		if !ok {
			log.Info("skipping deadline with unparseable date", "date", d.Date)
			continue
		}
		evTitle := d.Description
		if evTitle == "" {
			evTitle = "Deadline: " + title
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, day.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), 17, 0, 0, 0, day.Location())
		ev, err := s.db.QueryCreateEvent(ctx, uuid.NewString(), userID, analysisID, threadID,
			models.EventInput{
				Title:       evTitle,
				Description: fmt.Sprintf("From email: %q\n\nOriginal deadline: %s", title, d.Date),
				StartTime:   start,
				EndTime:     end,
				AllDay:      true,
				Color:       eventColors[len(result.Events)%len(eventColors)],
			}, "deadline", d.Evidence)
		if err != nil {
			log.Warn("failed to create derived event", "error", err)
			continue
		}
		result.Events = append(result.Events, *ev)
	}

	log.Info("thread analyzed",
		"analysis", analysisID,
		"action_items", len(extraction.ActionItems),
		"deadlines", len(extraction.Deadlines),
		"todos", len(result.Todos),
		"events", len(result.Events),
		"degraded", degraded)
	return result, nil
}

// extract runs the extraction call, falling back to an empty extraction with
// degraded=true on any failure.
func (s *AnalysisService) extract(ctx context.Context, log *slog.Logger, content string) (models.Extraction, bool) {
	out, err := s.model.GenerateWithSystem(ctx, metrics.OpExtraction, extractionSystemPrompt,
		"Email thread:\n\n"+content)
	if err != nil {
		log.Warn("extraction failed, storing empty analysis", "error", err)
		return emptyExtraction(), true
	}

	var ex models.Extraction
	if err := llm.DecodeJSON(out, &ex); err != nil {
		log.Warn("extraction returned malformed output", "error", err)
		return emptyExtraction(), true
	}

	for i := range ex.ActionItems {
		ex.ActionItems[i].Priority = normalizePriority(ex.ActionItems[i].Priority)
	}
	return ex, false
}

func emptyExtraction() models.Extraction {
	return models.Extraction{
		Stakeholders:     []models.Stakeholder{},
		ActionItems:      []models.ActionItem{},
		Deadlines:        []models.Deadline{},
		KeyDecisions:     []models.KeyDecision{},
		OpenQuestions:    []models.OpenQuestion{},
		SuggestedReplies: []models.SuggestedReply{},
	}
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case models.PriorityHigh:
		return models.PriorityHigh
	case models.PriorityLow:
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}
