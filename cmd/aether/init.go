package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aether/internal/config"
)

const exampleScript = `---
title: First light
world: gravity-escape
---

The lab is quiet and every instrument sits where it belongs.

Suddenly the gravity fails and the crew starts floating.

The captain draws a sword and cuts through the drifting cables.
`

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new aether project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, dsn)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://aether.db", "Database DSN (sqlite:// or postgres://)")
	return cmd
}

func runInit(projectName, dsn string) error {
	if _, err := config.DatabaseDriver(dsn); err != nil {
		return err
	}

	rulesPath := "rules.yaml"
	scriptPath := filepath.Join("scripts", "first-light.md")
	for _, path := range []string{configPath, rulesPath, scriptPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	rules, err := config.DefaultRuleSet().Marshal()
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  dsn: %s\n\nrules: %s\n\nshare:\n  summary_limit: %d\n\nscripts:\n  paths:\n    - ./scripts/\n  exclude:\n    - ./scripts/drafts/\n",
		projectName, dsn, rulesPath, config.DefaultSummaryLimit)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(rulesPath, rules, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", rulesPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(scriptPath), err)
	}
	if err := os.WriteFile(scriptPath, []byte(exampleScript), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", scriptPath, err)
	}

	logger.Info("project initialised", "project", projectName, "config", configPath)
	return nil
}
