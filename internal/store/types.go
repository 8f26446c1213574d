package store

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"aether/internal/session"
)

type SnapshotSummary struct {
	ShareID      string    `json:"share_id"`
	WorldID      string    `json:"world_id"`
	WorldName    string    `json:"world_name"`
	FinalStateID string    `json:"final_state_id"`
	Summary      string    `json:"summary"`
	Entries      int       `json:"entries"`
	CreatedAt    time.Time `json:"created_at"`
}

type SearchResult struct {
	ShareID   string  `json:"share_id"`
	WorldID   string  `json:"world_id"`
	WorldName string  `json:"world_name"`
	Score     float64 `json:"score"`
	Snippet   string  `json:"snippet"`
}

// Story joins the source texts of a snapshot's timeline, one entry per line,
// in the form backends index for full-text search.
func Story(snap session.SharedSnapshot) string {
	lines := make([]string, 0, len(snap.Timeline))
	for _, entry := range snap.Timeline {
		lines = append(lines, entry.SourceText)
	}
	return SearchText(strings.Join(lines, "\n"))
}

// SearchText puts every Han character in its own word. Full-text tokenizers
// split on spaces and punctuation only, so an unbroken run of Chinese would
// otherwise index as a single token. Indexed text and queries both go
// through it.
func SearchText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var prev rune
	for i, r := range text {
		if i > 0 && (isHan(r) || isHan(prev)) && !unicode.IsSpace(r) && !unicode.IsSpace(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func isHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// PositionalArgs orders params keyed "1", "2", ... into a slice. Missing
// keys end the sequence.
func PositionalArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		val, ok := params[strconv.Itoa(i)]
		if !ok {
			break
		}
		args = append(args, val)
	}
	return args
}
