package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flowedit/internal/render"
)

func exportCmd() *cobra.Command {
	opts := render.DefaultPNGOptions()
	var width, height int

	cmd := &cobra.Command{
		Use:   "export <snapshot> <output>",
		Short: "Render a saved diagram to PNG or text",
		Long: "Render a saved diagram. Outputs ending in .txt get the terminal\n" +
			"rendering fitted to --width x --height cells; anything else is PNG.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadSnapshot(cmd, args[0])
			if err != nil {
				return err
			}
			out := args[1]

			if strings.EqualFold(filepath.Ext(out), ".txt") {
				store.FitView(float64(width)*render.CellWidth, float64(height)*render.CellHeight, render.CellWidth)
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := render.WriteText(f, store, store.Viewport(), width, height); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
			} else if err := render.ExportPNG(store, out, opts); err != nil {
				return err
			}

			good.Fprintf(cmd.OutOrStdout(), "  ✓ %s", out)
			subtle.Fprintf(cmd.OutOrStdout(), " (%d nodes, %d edges)\n", len(store.Nodes()), len(store.Edges()))
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG pixels per canvas unit")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "PNG margin around the diagram")
	cmd.Flags().IntVar(&width, "width", 100, "Text export width in cells")
	cmd.Flags().IntVar(&height, "height", 40, "Text export height in cells")
	return cmd
}
