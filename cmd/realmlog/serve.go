package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"realmlog/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	a.log.Info("serving mcp over stdio", slog.String("dsn_scheme", dsnScheme(a.cfg.Database.DSN)))
	server := mcp.NewServer(a.game, a.timers, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
