package mail

import (
	"testing"
)

const sampleThread = `From: Alice Smith <alice@corp.example>
To: Bob Jones <bob@corp.example>
Subject: Q3 budget review
Date: Mon, 31 Aug 2026 09:14:00 +0200

Hi Bob,

Can we lock the Q3 numbers by Friday? Finance needs them for the board deck.

Alice

On Mon, Aug 31, 2026 at 8:02 AM Bob Jones <bob@corp.example> wrote:
> Sure, I'll have the draft ready Thursday.
> Looping in carol@vendor.example for the license line items.
`

func TestParseThread(t *testing.T) {
	thread := ParseThread(sampleThread)

	if thread.Subject != "Q3 budget review" {
		t.Errorf("Subject = %q, want %q", thread.Subject, "Q3 budget review")
	}
	if len(thread.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(thread.Messages))
	}

	first := thread.Messages[0]
	if first.From != "Alice Smith <alice@corp.example>" {
		t.Errorf("first message From = %q", first.From)
	}
	if first.Date == "" {
		t.Error("first message Date is empty")
	}

	second := thread.Messages[1]
	if second.From != "Bob Jones <bob@corp.example>" {
		t.Errorf("second message From = %q", second.From)
	}
}

func TestParseThreadNoBoundaries(t *testing.T) {
	thread := ParseThread("Just a single note with no headers at all.")
	if len(thread.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(thread.Messages))
	}
	if thread.Subject != "" {
		t.Errorf("Subject = %q, want empty", thread.Subject)
	}
}

func TestParseThreadForwardSeparator(t *testing.T) {
	content := "FYI, see below.\n\n---------- Forwarded message ----------\nFrom: Dana <dana@corp.example>\n\nThe contract is signed.\n"
	thread := ParseThread(content)
	if len(thread.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(thread.Messages))
	}
	if thread.Messages[1].From != "Dana <dana@corp.example>" {
		t.Errorf("forwarded message From = %q", thread.Messages[1].From)
	}
}

func TestExtractParticipants(t *testing.T) {
	thread := ParseThread(sampleThread)

	want := map[string]string{
		"alice@corp.example":   "Alice Smith",
		"bob@corp.example":     "Bob Jones",
		"carol@vendor.example": "",
	}
	if len(thread.Participants) != len(want) {
		t.Fatalf("got %d participants, want %d: %v", len(thread.Participants), len(want), thread.Participants)
	}
	for _, a := range thread.Participants {
		name, ok := want[a.Email]
		if !ok {
			t.Errorf("unexpected participant %q", a.Email)
			continue
		}
		if a.Name != name {
			t.Errorf("participant %q has name %q, want %q", a.Email, a.Name, name)
		}
	}
}

func TestFindAddress(t *testing.T) {
	thread := ParseThread(sampleThread)

	addr, ok := thread.FindAddress("Alice")
	if !ok || addr.Email != "alice@corp.example" {
		t.Errorf("FindAddress(Alice) = %v, %v", addr, ok)
	}

	// No display name for carol; match on the address local part.
	addr, ok = thread.FindAddress("Carol")
	if !ok || addr.Email != "carol@vendor.example" {
		t.Errorf("FindAddress(Carol) = %v, %v", addr, ok)
	}

	if _, ok := thread.FindAddress("Mallory"); ok {
		t.Error("FindAddress(Mallory) matched, want no match")
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"subject line", "From: a@b.c\nSubject: Q3 budget review\n\nHi all", "Q3 budget review"},
		{"no subject", "Hello team, quick question about the launch", "Hello team, quick question about the launch"},
		{"skips header lines", "From: a@b.c\nTo: d@e.f\n\nLet's sync tomorrow", "Let's sync tomorrow"},
		{"blank content", "\n\n", "Untitled thread"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.content); got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
