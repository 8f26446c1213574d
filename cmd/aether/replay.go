package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aether/internal/replay"
)

var replayFull bool

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Play narrative scripts through sessions and share the results",
		RunE:  runReplay,
	}
	cmd.Flags().BoolVar(&replayFull, "full", false, "Replay every script, even ones already shared")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject(configPath)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, p.cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := replay.Run(ctx, p.cfg, p.rules.Compiler(), p.catalog, db, replay.Options{
		Full:   replayFull,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Replay complete.")
	fmt.Fprintf(os.Stdout, "  Snapshots saved: %d\n", result.SnapshotsSaved)
	fmt.Fprintf(os.Stdout, "  Entries applied: %d\n", result.EntriesApplied)
	fmt.Fprintf(os.Stdout, "  Files skipped:   %d\n", result.FilesSkipped)
	for _, share := range result.Shares {
		fmt.Fprintf(os.Stdout, "  %s -> %s (%s)\n", share.Path, share.ShareID, share.FinalStateID)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("replay completed with errors")
	}

	return nil
}
