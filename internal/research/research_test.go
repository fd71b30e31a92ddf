package research

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/tmc/langchaingo/llms"
)

// fakeGenerator returns canned responses keyed by operation name and records
// the calls it saw.
type fakeGenerator struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeGenerator) GenerateMessages(_ context.Context, op string, _ []llms.MessageContent, _ ...llms.CallOption) (string, error) {
	f.calls = append(f.calls, op)
	if err := f.errs[op]; err != nil {
		return "", err
	}
	return f.responses[op], nil
}

const validBriefJSON = `{
	"schema_version": "1.0.0",
	"title": "Quantum Key Distribution",
	"tldr": ["QKD secures key exchange using quantum states."],
	"sections": [
		{
			"id": "what_it_is",
			"kind": "what_it_is",
			"title": "What it is",
			"blocks": [{"type": "paragraph", "text": "A protocol family.", "citations": [{"source_id": "s1"}]}]
		}
	],
	"sources": [{"id": "s1", "title": "NIST", "url": "https://nist.gov/qkd"}]
}`

func TestEngineRunProducesBrief(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		metrics.OpResearchStage: "Topic\nQKD\n\nSources\n- NIST — https://nist.gov/qkd",
		metrics.OpFormatStage:   validBriefJSON,
	}}
	e := NewEngine(gen, nil, time.Minute, nil)

	b, degraded := e.Run(context.Background(), "Quantum Key Distribution", "Email thread analysis", "Can we use QKD for the Berlin link?")
	if degraded {
		t.Fatal("expected non-degraded result")
	}
	if b.Topic == nil || *b.Topic != "Quantum Key Distribution" {
		t.Errorf("topic not stamped: %+v", b.Topic)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("result brief invalid: %v", err)
	}
	if want := []string{metrics.OpResearchStage, metrics.OpFormatStage}; len(gen.calls) != 2 || gen.calls[0] != want[0] || gen.calls[1] != want[1] {
		t.Errorf("unexpected call sequence %v", gen.calls)
	}
}

func TestEngineRunNeverErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{
			name: "research stage fails",
			gen:  &fakeGenerator{errs: map[string]error{metrics.OpResearchStage: errors.New("rate limited")}},
		},
		{
			name: "research stage empty",
			gen:  &fakeGenerator{responses: map[string]string{metrics.OpResearchStage: "   "}},
		},
		{
			name: "format stage fails",
			gen: &fakeGenerator{
				responses: map[string]string{metrics.OpResearchStage: "Topic\nX"},
				errs:      map[string]error{metrics.OpFormatStage: errors.New("overloaded")},
			},
		},
		{
			name: "format stage not JSON",
			gen: &fakeGenerator{responses: map[string]string{
				metrics.OpResearchStage: "Topic\nX",
				metrics.OpFormatStage:   "sorry, I cannot do that",
			}},
		},
		{
			name: "format stage schema violation",
			gen: &fakeGenerator{responses: map[string]string{
				metrics.OpResearchStage: "Topic\nX",
				metrics.OpFormatStage:   `{"schema_version":"1.0.0","title":"x","tldr":["a","b","c","d","e","f"],"sections":[],"sources":[]}`,
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.gen, nil, time.Minute, nil)
			b, degraded := e.Run(context.Background(), "Some topic", "", "body")
			if !degraded {
				t.Fatal("expected degraded result")
			}
			if !b.IsFailure() {
				t.Errorf("expected failure brief, got %+v", b)
			}
			if err := b.Validate(); err != nil {
				t.Errorf("failure brief invalid: %v", err)
			}
			if len(b.Sources) != 0 {
				t.Errorf("failure brief must have no sources, got %d", len(b.Sources))
			}
			if len(b.TLDR) != 1 {
				t.Errorf("failure brief must have one tldr line, got %d", len(b.TLDR))
			}
		})
	}
}

func TestEngineFillsSourcesFromNotes(t *testing.T) {
	noSources := strings.Replace(validBriefJSON, `[{"id": "s1", "title": "NIST", "url": "https://nist.gov/qkd"}]`, `[]`, 1)
	gen := &fakeGenerator{responses: map[string]string{
		metrics.OpResearchStage: "Topic\nQKD\n\nSources\n- NIST — https://nist.gov/qkd",
		metrics.OpFormatStage:   noSources,
	}}
	e := NewEngine(gen, nil, 0, nil)

	b, degraded := e.Run(context.Background(), "QKD", "", "body")
	if degraded {
		t.Fatal("expected non-degraded result")
	}
	if len(b.Sources) != 1 || b.Sources[0].URL != "https://nist.gov/qkd" {
		t.Errorf("sources not recovered from notes: %+v", b.Sources)
	}
	// Recovered sources get sequential ids, so s1 still resolves.
	if got := b.Sections[0].Blocks[0].Citations; len(got) != 1 || got[0].SourceID != "s1" {
		t.Errorf("citations = %v", got)
	}
}

func TestEnsureHeadings(t *testing.T) {
	notes := "# Topic\nQKD\n\n## Sources\nNone found."
	out := EnsureHeadings(notes)
	for _, h := range requiredHeadings {
		if !containsHeading(strings.ToLower(out), strings.ToLower(h)) {
			t.Errorf("missing heading %q after EnsureHeadings", h)
		}
	}
	// Idempotent once complete.
	if again := EnsureHeadings(out); again != out {
		t.Error("EnsureHeadings not stable on complete notes")
	}
}

func TestIdentifyCapsTopics(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		metrics.OpTopicIdentify: `{"topics":["a","b","c","d","e","f","g"]}`,
	}}
	id := NewIdentifier(gen, 0, "Email thread analysis", nil)

	topics := id.Identify(context.Background(), "some thread")
	if len(topics) != MaxTopics {
		t.Fatalf("got %d topics, want %d", len(topics), MaxTopics)
	}
	for _, tp := range topics {
		if tp.Priority != "high" {
			t.Errorf("priority = %q", tp.Priority)
		}
		if tp.Context != "Email thread analysis" {
			t.Errorf("context = %q", tp.Context)
		}
	}
}

func TestIdentifyRecoverableFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		body string
	}{
		{"empty input", &fakeGenerator{}, "   "},
		{"provider error", &fakeGenerator{errs: map[string]error{metrics.OpTopicIdentify: errors.New("boom")}}, "thread"},
		{"malformed output", &fakeGenerator{responses: map[string]string{metrics.OpTopicIdentify: "not json"}}, "thread"},
		{"blank topics", &fakeGenerator{responses: map[string]string{metrics.OpTopicIdentify: `{"topics":["  ",""]}`}}, "thread"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := NewIdentifier(tt.gen, 3, "", nil)
			if topics := id.Identify(context.Background(), tt.body); len(topics) != 0 {
				t.Errorf("expected no topics, got %v", topics)
			}
		})
	}
}

func TestIdentifyClampsMaxTopics(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		metrics.OpTopicIdentify: `{"topics":["a","b","c","d","e","f","g","h"]}`,
	}}
	id := NewIdentifier(gen, 50, "", nil)
	if topics := id.Identify(context.Background(), "thread"); len(topics) != MaxTopics {
		t.Errorf("got %d topics, want clamp to %d", len(topics), MaxTopics)
	}
}
