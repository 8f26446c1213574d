package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func compileCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compile <text>",
		Short: "Classify narrative text into a world state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(strings.Join(args, " "), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func runCompile(text string, asJSON bool) error {
	rules, err := loadRulesOrDefault(configPath)
	if err != nil {
		return err
	}

	result := rules.Compiler().Compile(text)
	if asJSON {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(payload))
		return nil
	}

	fmt.Fprintf(os.Stdout, "%s (%s)\n", result.TargetStateID, result.Label)
	if len(result.AffectedAnchors) > 0 {
		fmt.Fprintf(os.Stdout, "  anchors: %s\n", strings.Join(result.AffectedAnchors, ", "))
	}
	return nil
}
