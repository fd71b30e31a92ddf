package brief

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validBrief() *Brief {
	return &Brief{
		SchemaVersion: SchemaVersion,
		Title:         "Rate limiting strategies",
		TLDR:          []string{"Token buckets are the common choice."},
		Sections: []Section{
			{
				ID:    "key_points",
				Kind:  KindKeyPoints,
				Title: "Key points",
				Blocks: []Block{
					{
						Type: BlockBullets,
						Items: []BulletItem{
							{Text: "Buckets refill at a fixed rate.", Citations: []Citation{{SourceID: "s1"}}},
						},
					},
				},
			},
		},
		Sources: []Source{
			{ID: "s1", Title: "Wikipedia", URL: "https://en.wikipedia.org/wiki/Token_bucket"},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validBrief().Validate(); err != nil {
		t.Fatalf("valid brief rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Brief)
		wantField string
	}{
		{"empty schema version", func(b *Brief) { b.SchemaVersion = "" }, "schema_version"},
		{"empty title", func(b *Brief) { b.Title = "" }, "title"},
		{"tldr too long", func(b *Brief) {
			b.TLDR = []string{"a", "b", "c", "d", "e", "f"}
		}, "tldr"},
		{"unknown section kind", func(b *Brief) { b.Sections[0].Kind = "musings" }, "sections[0].kind"},
		{"empty section id", func(b *Brief) { b.Sections[0].ID = "" }, "sections[0].id"},
		{"unknown block type", func(b *Brief) { b.Sections[0].Blocks[0].Type = "poem" }, "sections[0].blocks[0].type"},
		{"callout without kind", func(b *Brief) {
			b.Sections[0].Blocks[0] = Block{Type: BlockCallout}
		}, "callout_kind"},
		{"callout with bad kind", func(b *Brief) {
			k := "panic"
			b.Sections[0].Blocks[0] = Block{Type: BlockCallout, CalloutKind: &k}
		}, "callout_kind"},
		{"empty faq answer", func(b *Brief) {
			b.Sections[0].Blocks[0] = Block{Type: BlockQAList, Questions: []QAItem{{Question: "Why?", Answer: ""}}}
		}, "questions[0].a"},
		{"table block without table", func(b *Brief) {
			b.Sections[0].Blocks[0] = Block{Type: BlockTable}
		}, "table"},
		{"bad table cell", func(b *Brief) {
			b.Sections[0].Blocks[0] = Block{Type: BlockTable, Table: &Table{
				Rows: [][]TableCell{{{Value: map[string]any{"nested": true}}}},
			}}
		}, "rows[0][0].value"},
		{"duplicate source id", func(b *Brief) {
			b.Sources = append(b.Sources, Source{ID: "s1", Title: "dup", URL: "https://example.com"})
		}, "sources[1].id"},
		{"source without url", func(b *Brief) { b.Sources[0].URL = "" }, "sources[0].url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBrief()
			tt.mutate(b)
			err := b.Validate()
			if err == nil {
				t.Fatal("expected SchemaViolation, got nil")
			}
			var sv *SchemaViolation
			if !errors.As(err, &sv) {
				t.Fatalf("expected *SchemaViolation, got %T", err)
			}
			if !strings.Contains(sv.Field, tt.wantField) {
				t.Errorf("violation field = %q, want it to contain %q", sv.Field, tt.wantField)
			}
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	data, err := json.Marshal(validBrief())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b.Title != "Rate limiting strategies" {
		t.Errorf("Title = %q", b.Title)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	var sv *SchemaViolation
	if !errors.As(err, &sv) {
		t.Fatalf("expected SchemaViolation for invalid JSON, got %v", err)
	}
}

// Table cells decoded from JSON carry float64 numbers; make sure the
// validator accepts every scalar shape json.Unmarshal can produce.
func TestDecodedTableCells(t *testing.T) {
	b := validBrief()
	b.Sections[0].Blocks[0] = Block{Type: BlockTable, Table: &Table{
		Columns: []TableColumn{{Key: "metric", Label: "Metric"}, {Key: "value", Label: "Value"}},
		Rows: [][]TableCell{
			{{Value: "latency"}, {Value: 12.5}},
			{{Value: "enabled"}, {Value: true}},
			{{Value: "unknown"}, {Value: nil}},
		},
	}}
	data, _ := json.Marshal(b)
	if _, err := Decode(data); err != nil {
		t.Fatalf("Decode table brief: %v", err)
	}
}

func TestDropUnresolvedCitations(t *testing.T) {
	b := validBrief()
	blk := &b.Sections[0].Blocks[0]
	blk.Items[0].Citations = append(blk.Items[0].Citations, Citation{SourceID: "s99"})
	blk.Citations = []Citation{{SourceID: "ghost"}}

	b.DropUnresolvedCitations()

	if len(blk.Items[0].Citations) != 1 || blk.Items[0].Citations[0].SourceID != "s1" {
		t.Errorf("item citations = %+v, want only s1", blk.Items[0].Citations)
	}
	if blk.Citations != nil {
		t.Errorf("block citations = %+v, want nil", blk.Citations)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("brief invalid after dropping citations: %v", err)
	}
}

func TestFailureBriefIsValid(t *testing.T) {
	tests := []string{"", "GDPR retention rules", "a topic with, punctuation!"}
	for _, topic := range tests {
		b := Failure(topic, "")
		if err := b.Validate(); err != nil {
			t.Errorf("Failure(%q) invalid: %v", topic, err)
		}
		if !b.IsFailure() {
			t.Errorf("Failure(%q) not recognized by IsFailure", topic)
		}
		if len(b.TLDR) != 1 {
			t.Errorf("Failure(%q) tldr len = %d, want 1", topic, len(b.TLDR))
		}
		if len(b.Sources) != 0 {
			t.Errorf("Failure(%q) sources = %v, want empty", topic, b.Sources)
		}
		if b.Sections[0].Kind != KindCustom || b.Sections[0].ID != ErrorSectionID {
			t.Errorf("Failure(%q) section = %+v", topic, b.Sections[0])
		}
		kind := b.Sections[0].Blocks[0].CalloutKind
		if kind == nil || *kind != CalloutRisk {
			t.Errorf("Failure(%q) callout kind = %v, want risk", topic, kind)
		}
	}
}

func TestIsFailureFalseForNormalBrief(t *testing.T) {
	if validBrief().IsFailure() {
		t.Error("normal brief flagged as failure")
	}
}
