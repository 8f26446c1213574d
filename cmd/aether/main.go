package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "aether",
		Short: "Compile narrative intents into world state transitions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogger(logLevel)
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "aether.yaml", "Project config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $AETHER_LOG_LEVEL or info")

	root.AddCommand(initCmd())
	root.AddCommand(compileCmd())
	root.AddCommand(worldsCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(replayCmd())
	root.AddCommand(shareCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
