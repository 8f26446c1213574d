package sqlite

import (
	"context"
	"testing"

	"aether/internal/session"
)

func TestConvertWebsearchToFTS5(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single term",
			input:    "gravity",
			expected: `"gravity"`,
		},
		{
			name:     "multiple terms",
			input:    "zero gravity",
			expected: `"zero" AND "gravity"`,
		},
		{
			name:     "explicit AND",
			input:    "gravity AND blade",
			expected: `"gravity" AND "blade"`,
		},
		{
			name:     "explicit OR",
			input:    "gravity OR blade",
			expected: `"gravity" OR "blade"`,
		},
		{
			name:     "negation",
			input:    "gravity -rain",
			expected: `"gravity" AND NOT "rain"`,
		},
		{
			name:     "phrase",
			input:    `"zero gravity"`,
			expected: `"zero gravity"`,
		},
		{
			name:     "phrase with other term",
			input:    `"zero gravity" lab`,
			expected: `"zero gravity" AND "lab"`,
		},
		{
			name:     "phrase after OR",
			input:    `lab OR "zero gravity"`,
			expected: `"lab" OR "zero gravity"`,
		},
		{
			name:     "prefix search",
			input:    "gravity*",
			expected: `"gravity"*`,
		},
		{
			name:     "complex query",
			input:    `"zero gravity" -rain lab OR dojo`,
			expected: `"zero gravity" AND NOT "rain" AND "lab" OR "dojo"`,
		},
		{
			name:     "NOT operator",
			input:    "gravity NOT rain",
			expected: `"gravity" NOT "rain"`,
		},
		{
			name:     "hyphenated term",
			input:    "zero-g",
			expected: `"zero-g"`,
		},
		{
			name:     "punctuation",
			input:    "dojo: night.",
			expected: `"dojo:" AND "night."`,
		},
		{
			name:     "unterminated quote",
			input:    `it"s`,
			expected: `"it" AND "s"`,
		},
		{
			name:     "han characters",
			input:    "长剑",
			expected: `"长 剑"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertWebsearchToFTS5(tt.input)
			if result != tt.expected {
				t.Errorf("convertWebsearchToFTS5(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSearchSnapshots(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	gravity := testSnapshot("share-gravity", "gravity-escape", "The lab loses its gravity", "Everything floats")
	noir := testSnapshot("share-noir", "noir-city", "Rain over the harbor", "A blade flashes")
	for _, snap := range []session.SharedSnapshot{gravity, noir} {
		if err := client.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("saving snapshot: %v", err)
		}
	}

	results, err := client.SearchSnapshots(ctx, "blade", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ShareID != "share-noir" {
		t.Fatalf("unexpected results: %+v", results)
	}

	results, err = client.SearchSnapshots(ctx, "gravity", "noir-city")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected world filter to exclude results, got %+v", results)
	}

	if _, err := client.SearchSnapshots(ctx, "  ", ""); err == nil {
		t.Fatalf("expected error for blank query")
	}
}

func TestSearchSnapshots_Punctuation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	snap := testSnapshot("share-zero-g", "gravity-escape", "zero-g training begins")
	if err := client.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("saving snapshot: %v", err)
	}

	for _, query := range []string{"zero-g", "zero-g training", "training:", "zero*"} {
		results, err := client.SearchSnapshots(ctx, query, "")
		if err != nil {
			t.Fatalf("search %q: unexpected error: %v", query, err)
		}
		if len(results) != 1 || results[0].ShareID != "share-zero-g" {
			t.Fatalf("search %q: unexpected results: %+v", query, results)
		}
	}
}

func TestSearchSnapshots_Han(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	han := testSnapshot("share-han", "cyber-dojo", "突然，引力消失了", "他拔出了长剑")
	latin := testSnapshot("share-latin", "noir-city", "zero-g training begins")
	for _, snap := range []session.SharedSnapshot{han, latin} {
		if err := client.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("saving snapshot: %v", err)
		}
	}

	for _, query := range []string{"长剑", "引力", "引力 长剑", `"拔出"`} {
		results, err := client.SearchSnapshots(ctx, query, "")
		if err != nil {
			t.Fatalf("search %q: unexpected error: %v", query, err)
		}
		if len(results) != 1 || results[0].ShareID != "share-han" {
			t.Fatalf("search %q: unexpected results: %+v", query, results)
		}
	}

	results, err := client.SearchSnapshots(ctx, "剑引", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected characters out of order not to match, got %+v", results)
	}

	got, err := client.GetSnapshot(ctx, "share-han")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Timeline[1].SourceText != "他拔出了长剑" {
		t.Fatalf("expected stored source text to be unchanged, got %q", got.Timeline[1].SourceText)
	}
}
