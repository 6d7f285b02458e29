package cmd

import (
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <snapshot>...",
		Short: "Validate saved diagrams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				store, err := loadSnapshot(cmd, path)
				if err != nil {
					bad.Fprintf(out, "  ✗ %s: %v\n", path, err)
					failed++
					continue
				}
				groups := 0
				for _, n := range store.Nodes() {
					if n.IsGroup() {
						groups++
					}
				}
				good.Fprintf(out, "  ✓ %s", path)
				subtle.Fprintf(out, " (%d nodes, %d groups, %d edges)\n", len(store.Nodes()), groups, len(store.Edges()))
			}
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}
}
