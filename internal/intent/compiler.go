// Package intent classifies narrative text into world state transitions.
//
// Classification is a fixed-priority keyword table: rules are checked in
// order and the first rule with any keyword contained in the case-folded
// text wins. Text that matches no rule maps to the baseline result.
package intent

import "strings"

const (
	BaselineStateID = "baseline"
	BaselineLabel   = "Baseline"
)

type Rule struct {
	TargetStateID   string
	Keywords        []string
	AffectedAnchors []string
	Label           string
}

type Result struct {
	TargetStateID   string   `json:"target_state_id"`
	AffectedAnchors []string `json:"affected_anchors"`
	Label           string   `json:"label"`
}

// Clone returns a copy that shares no slices with r.
func (r Result) Clone() Result {
	anchors := make([]string, len(r.AffectedAnchors))
	copy(anchors, r.AffectedAnchors)
	r.AffectedAnchors = anchors
	return r
}

// Compiler is immutable after construction and safe for concurrent use.
type Compiler struct {
	rules    []Rule
	folded   [][]string
	baseline Result
}

func NewCompiler(rules []Rule, baseline Result) *Compiler {
	if strings.TrimSpace(baseline.TargetStateID) == "" {
		baseline.TargetStateID = BaselineStateID
	}
	if baseline.Label == "" {
		baseline.Label = BaselineLabel
	}
	baseline.AffectedAnchors = nil

	c := &Compiler{
		rules:    make([]Rule, 0, len(rules)),
		folded:   make([][]string, 0, len(rules)),
		baseline: baseline.Clone(),
	}
	for _, rule := range rules {
		c.rules = append(c.rules, cloneRule(rule))
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			keywords = append(keywords, strings.ToLower(keyword))
		}
		c.folded = append(c.folded, keywords)
	}
	return c
}

func (c *Compiler) Compile(text string) Result {
	normalized := strings.ToLower(text)
	for i, keywords := range c.folded {
		if containsAny(normalized, keywords) {
			rule := c.rules[i]
			return Result{
				TargetStateID:   rule.TargetStateID,
				AffectedAnchors: cloneStrings(rule.AffectedAnchors),
				Label:           rule.Label,
			}
		}
	}
	return c.baseline.Clone()
}

// Rules returns a copy of the rule table in priority order.
func (c *Compiler) Rules() []Rule {
	out := make([]Rule, 0, len(c.rules))
	for _, rule := range c.rules {
		out = append(out, cloneRule(rule))
	}
	return out
}

func (c *Compiler) Baseline() Result {
	return c.baseline.Clone()
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func cloneRule(rule Rule) Rule {
	return Rule{
		TargetStateID:   rule.TargetStateID,
		Keywords:        cloneStrings(rule.Keywords),
		AffectedAnchors: cloneStrings(rule.AffectedAnchors),
		Label:           rule.Label,
	}
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
