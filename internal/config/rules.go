package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"aether/internal/intent"
)

// RuleSet is the on-disk form of an intent rule table. Rules are listed in
// priority order.
type RuleSet struct {
	Version  int            `yaml:"version"`
	Baseline BaselineConfig `yaml:"baseline"`
	Rules    []RuleConfig   `yaml:"rules"`

	targetIndex map[string]*RuleConfig
}

type BaselineConfig struct {
	Target string `yaml:"target"`
	Label  string `yaml:"label"`
}

type RuleConfig struct {
	Target   string   `yaml:"target"`
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Anchors  []string `yaml:"anchors"`
}

func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	var rules RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	if rules.Baseline.Target == "" {
		rules.Baseline.Target = intent.BaselineStateID
	}
	if rules.Baseline.Label == "" {
		rules.Baseline.Label = intent.BaselineLabel
	}

	if err := validateRules(&rules); err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	rules.buildIndex()

	return &rules, nil
}

// DefaultRuleSet mirrors the compiler's built-in table.
func DefaultRuleSet() *RuleSet {
	rs := &RuleSet{
		Version: 1,
		Baseline: BaselineConfig{
			Target: intent.BaselineStateID,
			Label:  intent.BaselineLabel,
		},
	}
	for _, rule := range intent.DefaultRules() {
		rs.Rules = append(rs.Rules, RuleConfig{
			Target:   rule.TargetStateID,
			Label:    rule.Label,
			Keywords: rule.Keywords,
			Anchors:  rule.AffectedAnchors,
		})
	}
	rs.buildIndex()
	return rs
}

func (rs *RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(rs)
}

func (rs *RuleSet) Compiler() *intent.Compiler {
	rules := make([]intent.Rule, 0, len(rs.Rules))
	for _, rule := range rs.Rules {
		rules = append(rules, intent.Rule{
			TargetStateID:   rule.Target,
			Keywords:        rule.Keywords,
			AffectedAnchors: rule.Anchors,
			Label:           rule.Label,
		})
	}
	return intent.NewCompiler(rules, intent.Result{
		TargetStateID: rs.Baseline.Target,
		Label:         rs.Baseline.Label,
	})
}

func (rs *RuleSet) RuleByTarget(target string) (*RuleConfig, bool) {
	if rs == nil {
		return nil, false
	}
	rule, ok := rs.targetIndex[target]
	return rule, ok
}

// Targets lists every state id the rule set can produce, baseline first.
func (rs *RuleSet) Targets() []string {
	targets := []string{rs.Baseline.Target}
	for _, rule := range rs.Rules {
		targets = append(targets, rule.Target)
	}
	return targets
}

func (rs *RuleSet) buildIndex() {
	rs.targetIndex = make(map[string]*RuleConfig, len(rs.Rules))
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		rs.targetIndex[rule.Target] = rule
	}
}

func validateRules(rs *RuleSet) error {
	if rs.Version != 1 {
		return fmt.Errorf("unsupported version: %d", rs.Version)
	}
	if len(rs.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}

	targets := map[string]struct{}{rs.Baseline.Target: {}}
	for i, rule := range rs.Rules {
		if strings.TrimSpace(rule.Target) == "" {
			return fmt.Errorf("rule %d target is required", i)
		}
		if _, exists := targets[rule.Target]; exists {
			return fmt.Errorf("duplicate rule target: %s", rule.Target)
		}
		targets[rule.Target] = struct{}{}

		if strings.TrimSpace(rule.Label) == "" {
			return fmt.Errorf("rule %s label is required", rule.Target)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("rule %s has no keywords", rule.Target)
		}
		for _, keyword := range rule.Keywords {
			if strings.TrimSpace(keyword) == "" {
				return fmt.Errorf("rule %s has an empty keyword", rule.Target)
			}
		}
		for _, anchor := range rule.Anchors {
			if strings.TrimSpace(anchor) == "" {
				return fmt.Errorf("rule %s has an empty anchor", rule.Target)
			}
		}
	}

	return nil
}
