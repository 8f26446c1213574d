package sqlite

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

	ftsQuery := convertWebsearchToFTS5(query)

	sqlQuery := `
	SELECT s.share_id, s.world_id, s.world_name,
		   bm25(shared_worlds_fts, 4.0, 2.0, 1.0) AS score,
		   snippet(shared_worlds_fts, 2, '**', '**', '...', 24) AS snippet
	FROM shared_worlds_fts
	JOIN shared_worlds s ON shared_worlds_fts.rowid = s.id
	WHERE shared_worlds_fts MATCH ?
	  AND (? = '' OR s.world_id = ?)
	ORDER BY score ASC, s.created_at DESC
	LIMIT 50
	`

	rows, err := c.db.QueryContext(ctx, sqlQuery, ftsQuery, worldID, worldID)
	if err != nil {
		return nil, fmt.Errorf("searching snapshots: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		if err := rows.Scan(&r.ShareID, &r.WorldID, &r.WorldName, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		// bm25 is lower-is-better; flip it so callers can sort descending.
		r.Score = -r.Score
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

func convertWebsearchToFTS5(query string) string {
	var result strings.Builder
	var inQuote bool
	var current strings.Builder

	flushToken := func() {
		token := current.String()
		current.Reset()
		if token == "" {
			return
		}

		upper := strings.ToUpper(token)
		switch upper {
		case "AND", "OR", "NOT":
			if result.Len() > 0 {
				result.WriteString(" ")
			}
			result.WriteString(upper)
			return
		}

		if result.Len() > 0 {
			lastWord := lastWord(result.String())
			if lastWord != "AND" && lastWord != "OR" && lastWord != "NOT" && lastWord != "" {
				result.WriteString(" AND ")
			} else {
				result.WriteString(" ")
			}
		}

		if strings.HasPrefix(token, "-") && len(token) > 1 {
			result.WriteString("NOT ")
			result.WriteString(quoteFTS5(token[1:]))
		} else if strings.HasSuffix(token, "*") && len(token) > 1 {
			result.WriteString(quoteFTS5(strings.TrimSuffix(token, "*")))
			result.WriteString("*")
		} else {
			result.WriteString(quoteFTS5(token))
		}
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '"':
			if inQuote {
				inQuote = false
				token := current.String()
				current.Reset()
				if token != "" {
					if result.Len() > 0 {
						switch lastWord(result.String()) {
						case "AND", "OR", "NOT":
							result.WriteString(" ")
						default:
							result.WriteString(" AND ")
						}
					}
					result.WriteString(quoteFTS5(token))
				}
			} else {
				flushToken()
				inQuote = true
			}
		case inQuote:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t':
			flushToken()
		default:
			current.WriteByte(ch)
		}
	}

	flushToken()

	return result.String()
}

// quoteFTS5 turns a term into an FTS5 string so punctuation such as the
// hyphen in "zero-g" is tokenized instead of parsed as query syntax.
func quoteFTS5(term string) string {
	return `"` + strings.ReplaceAll(store.SearchText(term), `"`, `""`) + `"`
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
