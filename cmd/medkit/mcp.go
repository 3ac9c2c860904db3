package main

import (
	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for medkit on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			server := mcp.NewServer(dbCtx, mcp.Options{
				Version:    version,
				BackupSalt: settings.Backup.Salt,
				Cache:      filesystem.NewCache(""),
				Logger:     logger,
			})

			ctx, cancel := signalContext()
			defer cancel()
			return server.Run(ctx)
		},
	}

	return cmd
}
