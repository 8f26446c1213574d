package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aether/internal/validate"
)

func validateCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check rules, worlds and shared snapshots against each other",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(offline)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that need the database")
	return cmd
}

func runValidate(offline bool) error {
	ctx := context.Background()

	p, err := loadProject(configPath)
	if err != nil {
		return err
	}

	var lister validate.SnapshotLister
	if !offline {
		db, err := openStore(ctx, p.cfg)
		if err != nil {
			return err
		}
		defer db.Close(ctx)
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		lister = db
	}

	report, err := validate.Run(ctx, p.rules, p.catalog, lister)
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if report.HasErrors() {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out *os.File, issues []validate.Issue) {
	for _, issue := range issues {
		location := "rules"
		switch {
		case issue.ShareID != "":
			location = "share " + issue.ShareID
		case issue.World != "":
			location = "world " + issue.World
		}
		if issue.Target != "" {
			location = fmt.Sprintf("%s [%s]", location, issue.Target)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
