package postgres

import (
	"context"
	"fmt"
	"strings"

	"aether/internal/store"
)

func (c *Client) SearchSnapshots(ctx context.Context, query, worldID string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	sql := `
SELECT share_id, world_id, world_name,
    ts_rank(search_vector, websearch_to_tsquery('simple', $1)) AS score,
    CASE WHEN story <> '' THEN
        ts_headline('simple', story, websearch_to_tsquery('simple', $1),
            'MaxFragments=2, MaxWords=24, MinWords=8, StartSel=**, StopSel=**')
    ELSE '' END AS snippet
FROM shared_worlds
WHERE search_vector @@ websearch_to_tsquery('simple', $1)
  AND ($2 = '' OR world_id = $2)
ORDER BY score DESC, created_at DESC
LIMIT 50
`

	rows, err := c.pool.Query(ctx, sql, store.SearchText(query), worldID)
	if err != nil {
		return nil, fmt.Errorf("searching snapshots: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var score float32
		if err := rows.Scan(&r.ShareID, &r.WorldID, &r.WorldName, &score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Score = float64(score)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}
