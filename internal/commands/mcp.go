package commands

import (
	"github.com/spf13/cobra"

	"pagedoc/internal/app"
	"pagedoc/internal/config"
)

func addMCP(topLevel *cobra.Command, cfg *config.Config) {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server on stdio",
		Long: `Launch an MCP server that exposes documents, pages and the editing
commands (insert, format, select, paste, undo) to agents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(*cfg)
		},
	}
	topLevel.AddCommand(cmd)
}
