package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowedit/internal/config"
	"flowedit/internal/diagram"
	"flowedit/internal/sysclip"
)

var version = "0.3.0"

var (
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
	subtle = color.New(color.FgHiBlack)
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
	verbose bool
)

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("flowedit: failed")

var rootCmd = &cobra.Command{
	Use:           "flowedit",
	Short:         "flowedit: node and edge diagrams in the terminal",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			warn.Fprintf(cmd.ErrOrStderr(), "flowedit: %v (using defaults)\n", err)
		}
		cfg = c

		level := cfg.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		// The editor owns the terminal, so it logs to a file.
		var w io.Writer = cmd.ErrOrStderr()
		if cmd.Name() == "edit" {
			f, err := openLogFile()
			if err != nil {
				return err
			}
			w, logFile = f, f
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

		opts := cfg.Options()
		opts.Logger = logger
		if sysclip.Available() {
			opts.Clipboard = sysclip.New()
		}
		cmd.SetContext(diagram.WithStore(cmd.Context(), diagram.New(opts)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate("flowedit {{ .Version }}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		editCmd(),
		exportCmd(),
		checkCmd(),
	)
}

func openLogFile() (*os.File, error) {
	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// loadSnapshot reads the snapshot at path into the command's store.
func loadSnapshot(cmd *cobra.Command, path string) (*diagram.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := diagram.ReadSnapshot(f)
	if err != nil {
		return nil, err
	}
	store := diagram.FromContext(cmd.Context())
	if err := store.Load(snap); err != nil {
		return nil, err
	}
	return store, nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, errReported) {
		bad.Fprintf(rootCmd.ErrOrStderr(), "flowedit: %v\n", err)
	}
	return err
}
