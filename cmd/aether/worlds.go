package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"aether/internal/world"
)

func worldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worlds",
		Short: "List the worlds in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorlds()
		},
	}
}

func runWorlds() error {
	catalog, err := loadCatalogOrDefault(configPath)
	if err != nil {
		return err
	}

	dim := lipgloss.NewStyle().Faint(true)
	for _, w := range catalog.List() {
		title := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(world.PaletteFor(w.Style).Color))
		fmt.Fprintf(os.Stdout, "%s %s\n", title.Render(w.Name), dim.Render(fmt.Sprintf("[%s, %s]", w.ID, w.Style)))
		for _, clip := range w.Clips {
			marker := " "
			if clip.ID == w.DefaultClipID {
				marker = "*"
			}
			fmt.Fprintf(os.Stdout, "  %s %s  %s\n", marker, clip.ID, dim.Render(clip.Label))
		}
	}
	return nil
}
