// Package research implements the two-stage research pipeline: topic
// identification and the research→format workflow that produces structured
// briefs.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/mailbrief/internal/llm"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/tmc/langchaingo/llms"
)

// MaxTopics is the hard cap on topics per analysis, enforced even when the
// model suggests more.
const MaxTopics = 5

// Generator is the slice of the LLM model the pipeline needs.
type Generator interface {
	GenerateMessages(ctx context.Context, op string, messages []llms.MessageContent, opts ...llms.CallOption) (string, error)
}

// Topic is one identified research topic with its default context and
// priority.
type Topic struct {
	Topic    string `json:"topic"`
	Context  string `json:"context"`
	Priority string `json:"priority"`
}

// Identifier extracts research topics from thread text.
type Identifier struct {
	gen         Generator
	maxTopics   int
	contextNote string
	logger      *slog.Logger
}

// NewIdentifier creates a topic identifier. maxTopics above MaxTopics is
// clamped; zero or negative means MaxTopics.
func NewIdentifier(gen Generator, maxTopics int, contextNote string, logger *slog.Logger) *Identifier {
	if maxTopics <= 0 || maxTopics > MaxTopics {
		maxTopics = MaxTopics
	}
	if contextNote == "" {
		contextNote = "Topic identified from thread analysis"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Identifier{gen: gen, maxTopics: maxTopics, contextNote: contextNote, logger: logger}
}

// Identify returns 0 to maxTopics specific research topics for the thread.
// Any failure of the underlying call (timeout, malformed output, provider
// error) is recoverable and yields an empty list, never an error.
func (i *Identifier) Identify(ctx context.Context, emailContent string) []Topic {
	if strings.TrimSpace(emailContent) == "" {
		return nil
	}

	prompt := fmt.Sprintf(`Analyze the following email thread and identify MAXIMUM %d HIGHLY SPECIFIC research topics or questions.

Email thread:
%s

Respond with JSON only: {"topics": ["topic one", "topic two", ...]}
Return only a flat list of highly relevant, granular research queries.`, i.maxTopics, emailContent)

	out, err := i.gen.GenerateMessages(ctx, metrics.OpTopicIdentify, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithJSONMode())
	if err != nil {
		i.logger.Warn("topic identification failed", "error", err)
		return nil
	}

	var parsed struct {
		Topics []string `json:"topics"`
	}
	if err := llm.DecodeJSON(out, &parsed); err != nil {
		i.logger.Warn("topic identification returned malformed output", "error", err)
		return nil
	}

	topics := make([]Topic, 0, i.maxTopics)
	for _, t := range parsed.Topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		topics = append(topics, Topic{
			Topic:    t,
			Context:  i.contextNote,
			Priority: "high",
		})
		// Hard cap even when the model suggests more.
		if len(topics) == i.maxTopics {
			break
		}
	}
	return topics
}
