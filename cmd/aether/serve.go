package main

import (
	"context"

	"github.com/spf13/cobra"

	"aether/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
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

	server := mcp.NewServer(p.rules, p.catalog, db, mcp.Options{
		Version:      version,
		SummaryLimit: p.cfg.Share.SummaryLimit,
		Logger:       logger,
	})
	logger.Info("serving over stdio", "project", p.cfg.Project)
	return server.Run(ctx, &sdk.StdioTransport{})
}
