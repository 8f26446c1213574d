// Package parser reads narrative scripts: markdown files whose YAML
// frontmatter names a world and whose body paragraphs are intents.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Script struct {
	Frontmatter map[string]any
	Title       string
	WorldID     string
	Tags        []string
	// Select is the timeline sequence to roll back to before sharing; zero
	// keeps the latest entry.
	Select     int
	Intents    []string
	Body       string
	SourceFile string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingWorld  = errors.New("frontmatter missing required 'world' field")
	ErrInvalidSelect = errors.New("frontmatter 'select' must be a positive integer")
)

func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	script, err := Parse(data)
	if err != nil {
		return nil, err
	}
	script.SourceFile = path
	return script, nil
}

func Parse(content []byte) (*Script, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := string(rest[end+len("---\n"):])

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	title, ok := frontmatter["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	worldID, ok := frontmatter["world"].(string)
	if !ok || strings.TrimSpace(worldID) == "" {
		return nil, ErrMissingWorld
	}

	tags, err := parseTags(frontmatter["tags"])
	if err != nil {
		return nil, err
	}

	sel, err := parseSelect(frontmatter["select"])
	if err != nil {
		return nil, err
	}

	return &Script{
		Frontmatter: frontmatter,
		Title:       title,
		WorldID:     strings.TrimSpace(worldID),
		Tags:        tags,
		Select:      sel,
		Intents:     Paragraphs(body),
		Body:        body,
	}, nil
}

// Paragraphs splits body on blank lines. Markdown headings are dropped and
// the lines of a paragraph are joined with a single space.
func Paragraphs(body string) []string {
	var (
		paragraphs []string
		current    []string
	)
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#"):
			flush()
		default:
			current = append(current, line)
		}
	}
	flush()

	return paragraphs
}

func parseSelect(value any) (int, error) {
	if value == nil {
		return 0, nil
	}
	n, ok := value.(int)
	if !ok || n < 1 {
		return 0, ErrInvalidSelect
	}
	return n, nil
}

func parseTags(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			tags = append(tags, s)
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("tags must be string or list of strings")
	}
}
