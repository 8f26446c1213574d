// Package validate checks that a rule table, a world catalog and the shared
// snapshots on record agree with each other. The compiler never consults the
// catalog at runtime, so this is where a rule target without a clip shows up.
package validate

import (
	"context"
	"fmt"
	"strings"

	"aether/internal/config"
	"aether/internal/store"
	"aether/internal/world"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeMissingClip        = "missing_clip"
	codeMissingDefaultClip = "missing_default_clip"
	codeShadowedKeyword    = "shadowed_keyword"
	codeDuplicateKeyword   = "duplicate_keyword"
	codeUnknownWorld       = "unknown_world"
	codeUnknownState       = "unknown_state"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	World    string
	Target   string
	ShareID  string
}

type Report struct {
	Issues []Issue
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// SnapshotLister is the slice of store.Store that validation reads.
type SnapshotLister interface {
	ListSnapshots(ctx context.Context, worldID string) ([]store.SnapshotSummary, error)
}

// Run checks rules against catalog, and, when snapshots is non-nil, every
// stored snapshot against the catalog.
func Run(ctx context.Context, rules *config.RuleSet, catalog *world.Catalog, snapshots SnapshotLister) (*Report, error) {
	if rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("world catalog is required")
	}

	issues := make([]Issue, 0)
	issues = append(issues, validateKeywords(rules)...)
	for _, w := range catalog.List() {
		issues = append(issues, validateWorld(w, rules)...)
	}

	if snapshots != nil {
		summaries, err := snapshots.ListSnapshots(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, summary := range summaries {
			issues = append(issues, validateSnapshot(summary, catalog)...)
		}
	}

	return &Report{Issues: issues}, nil
}

func validateWorld(w world.World, rules *config.RuleSet) []Issue {
	var issues []Issue

	if _, ok := w.Clip(w.DefaultClipID); !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeMissingDefaultClip,
			Message:  fmt.Sprintf("default clip %s is not defined", w.DefaultClipID),
			World:    w.ID,
			Target:   w.DefaultClipID,
		})
	}

	for _, target := range rules.Targets() {
		if _, ok := w.Clip(target); ok {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeMissingClip,
			Message:  fmt.Sprintf("no clip for state %s (%s)", target, targetLabel(rules, target)),
			World:    w.ID,
			Target:   target,
		})
	}

	return issues
}

func targetLabel(rules *config.RuleSet, target string) string {
	if rule, ok := rules.RuleByTarget(target); ok {
		return rule.Label
	}
	return rules.Baseline.Label
}

// validateKeywords flags keywords that can never select their rule. Matching
// is first-match substring containment, so a keyword that contains an
// earlier rule's keyword always resolves to the earlier rule.
func validateKeywords(rules *config.RuleSet) []Issue {
	var issues []Issue

	type owner struct {
		target  string
		keyword string
	}
	var earlier []owner

	for _, rule := range rules.Rules {
		for _, keyword := range rule.Keywords {
			folded := strings.ToLower(keyword)
		scan:
			for _, prev := range earlier {
				switch {
				case prev.keyword == folded:
					issues = append(issues, Issue{
						Severity: SeverityWarn,
						Code:     codeDuplicateKeyword,
						Message:  fmt.Sprintf("keyword %q is already claimed by %s", keyword, prev.target),
						Target:   rule.Target,
					})
				case strings.Contains(folded, prev.keyword):
					issues = append(issues, Issue{
						Severity: SeverityWarn,
						Code:     codeShadowedKeyword,
						Message:  fmt.Sprintf("keyword %q always matches %s first via %q", keyword, prev.target, prev.keyword),
						Target:   rule.Target,
					})
				default:
					continue
				}
				break scan
			}
		}
		for _, keyword := range rule.Keywords {
			earlier = append(earlier, owner{target: rule.Target, keyword: strings.ToLower(keyword)})
		}
	}

	return issues
}

func validateSnapshot(summary store.SnapshotSummary, catalog *world.Catalog) []Issue {
	w, ok := catalog.Get(summary.WorldID)
	if !ok {
		return []Issue{{
			Severity: SeverityWarn,
			Code:     codeUnknownWorld,
			Message:  fmt.Sprintf("shared world refers to unknown world %s", summary.WorldID),
			World:    summary.WorldID,
			ShareID:  summary.ShareID,
		}}
	}
	if _, ok := w.Clip(summary.FinalStateID); !ok {
		return []Issue{{
			Severity: SeverityWarn,
			Code:     codeUnknownState,
			Message:  fmt.Sprintf("final state %s has no clip", summary.FinalStateID),
			World:    summary.WorldID,
			Target:   summary.FinalStateID,
			ShareID:  summary.ShareID,
		}}
	}
	return nil
}
