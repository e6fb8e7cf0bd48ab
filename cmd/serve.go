package cmd

import (
	"log/slog"

	"github.com/sandwichlabs/mcp-config-extract/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the extractor as an MCP tool over stdio.",
		Long:  `serve starts an MCP server on stdin/stdout exposing an extract_config tool that runs the same extraction as the root command.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := newExtractor(v)
			if err != nil {
				return err
			}
			slog.Info("Serving MCP over stdio", "tool", server.ToolName)
			return server.Run(appName, version, ex.ExtractConfiguration)
		},
	}
}
