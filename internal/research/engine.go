package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/mailbrief/internal/brief"
	"github.com/raphaelgruber/mailbrief/internal/llm"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

// Engine runs the two-stage research workflow for a single topic. Run never
// returns an error: every failure mode inside the pipeline is converted to
// the standard failure brief at the outer boundary, so callers persist
// whatever comes back without a separate error branch.
type Engine struct {
	gen     Generator
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine creates a workflow engine. The limiter is shared across all
// topic-processing calls to bound throughput against the rate-limited
// provider; nil disables limiting. timeout is the ceiling for one full
// workflow invocation and zero means no ceiling.
func NewEngine(gen Generator, limiter *rate.Limiter, timeout time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{gen: gen, limiter: limiter, timeout: timeout, logger: logger}
}

// Run executes research → format for one topic. The returned brief is always
// schema-valid; degraded reports whether it is the standard failure brief
// rather than a real result.
func (e *Engine) Run(ctx context.Context, topic, contextNote, emailContent string) (b *brief.Brief, degraded bool) {
	log := e.logger.With("topic", topic)

	defer func() {
		if r := recover(); r != nil {
			log.Error("research workflow panicked", "panic", r)
			b = brief.Failure(topic, "")
			degraded = true
		}
	}()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			log.Warn("rate limiter wait aborted", "error", err)
			return brief.Failure(topic, ""), true
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := e.run(ctx, log, topic, contextNote, emailContent)
	if err != nil {
		log.Error("research workflow failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return brief.Failure(topic, ""), true
	}

	log.Info("research workflow completed",
		"sections", len(result.Sections),
		"sources", len(result.Sources),
		"duration_ms", time.Since(start).Milliseconds())
	return result, false
}

// run is the fallible pipeline body; Run is its single recovery boundary.
func (e *Engine) run(ctx context.Context, log *slog.Logger, topic, contextNote, emailContent string) (*brief.Brief, error) {
	input := fmt.Sprintf(`Research request for topic: %q
Context: %s

Original Email Content:
%s
`, topic, contextNote, emailContent)

	history := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, researchSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	notes, err := e.gen.GenerateMessages(ctx, metrics.OpResearchStage, history, llms.WithMaxTokens(2048))
	if err != nil {
		return nil, fmt.Errorf("research stage: %w", err)
	}
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("research stage: empty notes")
	}
	notes = EnsureHeadings(notes)

	// The formatting stage sees the full exchange so far, plus its own
	// instructions.
	history = append(history,
		llms.TextParts(llms.ChatMessageTypeAI, notes),
		llms.TextParts(llms.ChatMessageTypeSystem, formatSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, "Format the research notes above into the FormattedBrief JSON."),
	)

	out, err := e.gen.GenerateMessages(ctx, metrics.OpFormatStage, history, llms.WithMaxTokens(8192), llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("format stage: %w", err)
	}

	raw, err := llm.ExtractJSON(out)
	if err != nil {
		return nil, fmt.Errorf("format stage: %w", err)
	}

	b, err := brief.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("format stage: %w", err)
	}

	e.finish(b, topic, notes)
	return b, nil
}

// finish normalizes a decoded brief: stamps topic and schema version, fills
// in sources from the notes when the model omitted them, and drops citations
// that don't resolve.
func (e *Engine) finish(b *brief.Brief, topic, notes string) {
	if b.SchemaVersion == "" {
		b.SchemaVersion = brief.SchemaVersion
	}
	t := topic
	b.Topic = &t
	if b.Title == "" {
		b.Title = "Research: " + topic
	}
	if len(b.Sources) == 0 {
		b.Sources = brief.ParseSources(notes)
	}
	if b.Sources == nil {
		b.Sources = []brief.Source{}
	}
	b.DropUnresolvedCitations()
}
