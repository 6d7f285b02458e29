package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"flowedit/internal/config"
	"flowedit/internal/diagram"
	"flowedit/internal/sysclip"
	"flowedit/internal/tui"
)

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the diagram editor",
		Long: "Open the terminal diagram editor. The file, when given, is loaded\n" +
			"if it exists and becomes the save target otherwise.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.EnsureExists(); err != nil {
				logger.Warn("edit: could not write default config", "err", err)
			}

			opts := tui.Options{Config: cfg, Logger: logger}
			if sysclip.Available() {
				opts.Clipboard = sysclip.New()
			}
			m := tui.New(diagram.FromContext(cmd.Context()), opts)
			if len(args) == 1 {
				if err := m.Open(args[0]); err != nil {
					return err
				}
			}

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err := p.Run()
			return err
		},
	}
}
