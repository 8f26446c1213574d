package session

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultSummaryLimit = 200
	UnknownWorldName    = "Unknown World"
)

type SharedSnapshot struct {
	ShareID      string    `json:"share_id"`
	WorldID      string    `json:"world_id"`
	WorldName    string    `json:"world_name"`
	FinalStateID string    `json:"final_state_id"`
	Timeline     []Entry   `json:"timeline"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
}

// Clone returns a deep copy of the snapshot.
func (s SharedSnapshot) Clone() SharedSnapshot {
	s.Timeline = cloneEntries(s.Timeline)
	return s
}

// Snapshot exports the session for read-only replay. Every call yields a new
// share id and an independent copy of the timeline.
func (s *Session) Snapshot(worldName string) SharedSnapshot {
	if strings.TrimSpace(worldName) == "" {
		worldName = UnknownWorldName
	}
	return SharedSnapshot{
		ShareID:      s.newID(),
		WorldID:      s.worldID,
		WorldName:    worldName,
		FinalStateID: s.currentStateID,
		Timeline:     cloneEntries(s.timeline),
		Summary:      Truncate(s.summarySource(), s.summaryLimit),
		CreatedAt:    s.now(),
	}
}

func (s *Session) summarySource() string {
	if strings.TrimSpace(s.pendingText) != "" {
		return s.pendingText
	}
	if n := len(s.timeline); n > 0 {
		return s.timeline[n-1].SourceText
	}
	return ""
}

// Truncate returns the first limit code points of text. It never splits a
// UTF-8 sequence; invalid bytes count as one code point each.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
