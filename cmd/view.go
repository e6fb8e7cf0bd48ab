package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandwichlabs/mcp-config-extract/internal/extractor"
	"github.com/sandwichlabs/mcp-config-extract/internal/tui"
	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [output.json]",
		Short: "View an extracted configuration in an interactive TUI.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := extractor.LoadOutput(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.NewModel(out), tea.WithAltScreen()).Run()
			return err
		},
	}
}
