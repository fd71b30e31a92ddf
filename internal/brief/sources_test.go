package brief

import "testing"

func TestParseSourcesFromSection(t *testing.T) {
	notes := `Topic
Token buckets

Overview
Some overview text mentioning https://ignored.example.com inline.

Sources
- Wikipedia — https://en.wikipedia.org/wiki/Token_bucket
- Google Cloud docs — cloud.google.com/architecture/rate-limiting
this line has no url separator
- None found
`
	sources := ParseSources(notes)
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2: %+v", len(sources), sources)
	}
	if sources[0].ID != "s1" || sources[1].ID != "s2" {
		t.Errorf("ids = %q, %q, want s1, s2", sources[0].ID, sources[1].ID)
	}
	if sources[0].Title != "Wikipedia" {
		t.Errorf("title = %q", sources[0].Title)
	}
	if sources[1].URL != "https://cloud.google.com/architecture/rate-limiting" {
		t.Errorf("bare domain not normalized: %q", sources[1].URL)
	}
}

func TestParseSourcesHeuristicFallback(t *testing.T) {
	notes := `No headings here at all, just prose.
See https://example.com/a and also www.example.org/b for details.`
	sources := ParseSources(notes)
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2: %+v", len(sources), sources)
	}
	if sources[1].URL != "https://www.example.org/b" {
		t.Errorf("URL = %q", sources[1].URL)
	}
}

func TestParseSourcesEmpty(t *testing.T) {
	if got := ParseSources("Sources\n- None found\n"); len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
	if got := ParseSources(""); len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestParseSourcesDeduplicates(t *testing.T) {
	notes := `Sources
- First — https://example.com/page
- Second — https://example.com/page
`
	if got := ParseSources(notes); len(got) != 1 {
		t.Errorf("got %d sources, want 1 after dedup", len(got))
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com", "https://example.com"},
		{"http://example.com/path", "http://example.com/path"},
		{"example.com", "https://example.com"},
		{"example.com/path?q=1", "https://example.com/path?q=1"},
		{"(https://example.com).", "https://example.com"},
		{"not a url", ""},
		{"nodots", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
