package session

import (
	"strings"
	"testing"
	"unicode/utf8"

	"aether/internal/intent"
)

func TestSnapshot(t *testing.T) {
	s := New("gravity-escape", "baseline")
	s.SetPendingText("引力消失")
	if _, err := s.ApplyIntent(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := s.Snapshot("Gravity Escape")
	second := s.Snapshot("Gravity Escape")

	if first.ShareID == "" || first.ShareID == second.ShareID {
		t.Fatalf("expected distinct share ids, got %q and %q", first.ShareID, second.ShareID)
	}
	if first.WorldID != "gravity-escape" || first.WorldName != "Gravity Escape" {
		t.Fatalf("unexpected world fields: %+v", first)
	}
	if first.FinalStateID != intent.GravityStateID {
		t.Fatalf("unexpected final state %q", first.FinalStateID)
	}
	if len(first.Timeline) != 1 || len(second.Timeline) != 1 || first.Timeline[0].ID != second.Timeline[0].ID {
		t.Fatalf("expected identical timelines")
	}
	if first.Summary != "引力消失" {
		t.Fatalf("unexpected summary %q", first.Summary)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected created at")
	}
}

func TestSnapshotIndependentOfSession(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText("gravity")
	if _, err := s.ApplyIntent(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := s.Snapshot("World")

	s.SetPendingText("sword")
	if _, err := s.ApplyIntent(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Timeline) != 1 {
		t.Fatalf("snapshot timeline changed after apply: %d entries", len(snap.Timeline))
	}
	if snap.FinalStateID != intent.GravityStateID {
		t.Fatalf("snapshot final state changed: %q", snap.FinalStateID)
	}

	cloned := snap.Clone()
	cloned.Timeline[0].Result.AffectedAnchors[0] = "changed"
	if snap.Timeline[0].Result.AffectedAnchors[0] != "GravityField" {
		t.Fatalf("Clone must deep copy anchors")
	}
	if s.Timeline()[0].Result.AffectedAnchors[0] != "GravityField" {
		t.Fatalf("snapshot shares anchors with the session")
	}
}

func TestSnapshotSummarySource(t *testing.T) {
	s := New("w", "baseline")
	if got := s.Snapshot("W").Summary; got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}

	s.SetPendingText("gravity fades")
	if _, err := s.ApplyIntent(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.SetPendingText("   ")
	if got := s.Snapshot("W").Summary; got != "gravity fades" {
		t.Fatalf("expected last entry text, got %q", got)
	}
}

func TestSnapshotUnknownWorldName(t *testing.T) {
	s := New("w", "baseline")
	if got := s.Snapshot("  ").WorldName; got != UnknownWorldName {
		t.Fatalf("expected fallback world name, got %q", got)
	}
}

func TestSnapshotSummaryLimit(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText(strings.Repeat("剑", 250))
	summary := s.Snapshot("W").Summary
	if utf8.RuneCountInString(summary) != DefaultSummaryLimit {
		t.Fatalf("expected %d code points, got %d", DefaultSummaryLimit, utf8.RuneCountInString(summary))
	}
	if !utf8.ValidString(summary) {
		t.Fatalf("summary split a multi-byte character")
	}

	s = New("w", "baseline", WithSummaryLimit(5))
	s.SetPendingText("abcdefgh")
	if got := s.Snapshot("W").Summary; got != "abcde" {
		t.Fatalf("expected custom limit, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "shorter", text: "abc", limit: 5, want: "abc"},
		{name: "exact", text: "abcde", limit: 5, want: "abcde"},
		{name: "ascii", text: "abcdef", limit: 3, want: "abc"},
		{name: "cjk", text: "突然，引力消失了", limit: 4, want: "突然，引"},
		{name: "zero", text: "abc", limit: 0, want: ""},
		{name: "empty", text: "", limit: 3, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}
