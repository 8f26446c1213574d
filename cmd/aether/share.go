package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"aether/internal/session"
	"aether/internal/store"
	"aether/internal/world"
)

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Inspect shared worlds in the database",
	}
	cmd.AddCommand(shareGetCmd())
	cmd.AddCommand(shareListCmd())
	cmd.AddCommand(shareSearchCmd())
	cmd.AddCommand(shareDeleteCmd())
	cmd.AddCommand(shareSQLCmd())
	return cmd
}

// withStore loads the project, opens its store and hands both to fn.
func withStore(fn func(ctx context.Context, p *project, db store.Store) error) error {
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

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(ctx, p, db)
}

func shareGetCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <share-id>",
		Short: "Show a shared world and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, p *project, db store.Store) error {
				return runShareGet(ctx, p, db, args[0], asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func runShareGet(ctx context.Context, p *project, db store.Store, shareID string, asJSON bool) error {
	snap, err := db.GetSnapshot(ctx, shareID)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("shared world %s not found", shareID)
	}

	if asJSON {
		payload, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(payload))
		return nil
	}

	printSnapshot(p.catalog, snap)
	return nil
}

func printSnapshot(catalog *world.Catalog, snap *session.SharedSnapshot) {
	title := lipgloss.NewStyle().Bold(true)
	clipLabel := snap.FinalStateID
	if w, ok := catalog.Get(snap.WorldID); ok {
		title = title.Foreground(lipgloss.Color(world.PaletteFor(w.Style).Color))
		clipLabel = w.ResolveClip(snap.FinalStateID).Label
	}
	dim := lipgloss.NewStyle().Faint(true)

	fmt.Fprintf(os.Stdout, "%s %s\n", title.Render(snap.WorldName), dim.Render(snap.ShareID))
	fmt.Fprintf(os.Stdout, "  final: %s (%s)\n", snap.FinalStateID, clipLabel)
	if snap.Summary != "" {
		fmt.Fprintf(os.Stdout, "  summary: %s\n", snap.Summary)
	}
	for _, entry := range snap.Timeline {
		fmt.Fprintf(os.Stdout, "  %d. %s %s\n", entry.Sequence, entry.Result.TargetStateID, dim.Render(entry.SourceText))
	}
}

func shareListCmd() *cobra.Command {
	var worldID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shared worlds, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, p *project, db store.Store) error {
				items, err := db.ListSnapshots(ctx, worldID)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(os.Stdout, "No shared worlds found.")
					return nil
				}
				for _, item := range items {
					fmt.Fprintf(os.Stdout, "%s %s [%s] %d entries, %s\n",
						item.ShareID, item.WorldName, item.FinalStateID, item.Entries, item.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&worldID, "world", "", "World to filter")
	return cmd
}

func shareSearchCmd() *cobra.Command {
	var worldID string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search shared stories using the full-text index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withStore(func(ctx context.Context, p *project, db store.Store) error {
				results, err := db.SearchSnapshots(ctx, query, worldID)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(os.Stdout, "No matches found.")
					return nil
				}
				for _, result := range results {
					fmt.Fprintf(os.Stdout, "%s %s score=%.2f\n", result.ShareID, result.WorldName, result.Score)
					if result.Snippet != "" {
						fmt.Fprintf(os.Stdout, "  %s\n", result.Snippet)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&worldID, "world", "", "World to filter")
	return cmd
}

func shareDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <share-id>",
		Short: "Delete a shared world and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, p *project, db store.Store) error {
				deleted, err := db.DeleteSnapshot(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("shared world %s not found", args[0])
				}
				logger.Info("shared world deleted", "share_id", args[0])
				return nil
			})
		},
	}
}

func shareSQLCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Execute a raw SQL query against the share store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			params, err := parseParamPairs(paramPairs)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, p *project, db store.Store) error {
				rows, err := db.RunSQL(ctx, query, params)
				if err != nil {
					return err
				}
				payload, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
				fmt.Fprintln(os.Stdout, string(payload))
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Positional parameter as N=value, e.g. 1=noir-city (repeatable)")
	return cmd
}

func parseParamPairs(pairs []string) (map[string]any, error) {
	params := make(map[string]any)
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid param %q: empty key", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}
