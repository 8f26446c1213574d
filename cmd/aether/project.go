package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"aether/internal/config"
	"aether/internal/world"
)

type project struct {
	cfg     *config.ProjectConfig
	rules   *config.RuleSet
	catalog *world.Catalog
}

// loadProject reads the project config and the rule and world files it
// points at. Paths in the config are relative to the config file. An empty
// rules or worlds entry selects the built-in table or seed catalog.
func loadProject(path string) (*project, error) {
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	rules := config.DefaultRuleSet()
	if cfg.Rules != "" {
		rules, err = config.LoadRules(resolvePath(dir, cfg.Rules))
		if err != nil {
			return nil, err
		}
	}

	catalog := world.Seed()
	if cfg.Worlds != "" {
		catalog, err = world.LoadCatalog(resolvePath(dir, cfg.Worlds))
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("project loaded", "project", cfg.Project, "rules", len(rules.Rules), "worlds", len(catalog.Worlds))
	return &project{cfg: cfg, rules: rules, catalog: catalog}, nil
}

// loadRulesOrDefault is for commands that work without a project: a missing
// config file falls back to the built-in rule table.
func loadRulesOrDefault(path string) (*config.RuleSet, error) {
	if !exists(path) {
		return config.DefaultRuleSet(), nil
	}
	p, err := loadProject(path)
	if err != nil {
		return nil, err
	}
	return p.rules, nil
}

func loadCatalogOrDefault(path string) (*world.Catalog, error) {
	if !exists(path) {
		return world.Seed(), nil
	}
	p, err := loadProject(path)
	if err != nil {
		return nil, err
	}
	return p.catalog, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
