// Package cmd implements the adgraph commands.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X ...cmd.version=...".
var version = "v0.1.0-dev"

// NewRootCmd builds the command tree. Output goes to out, logs to logw.
func NewRootCmd(out, logw io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "adgraph",
		Short: "Automatic differentiation over expression graphs",
		Long: `adgraph evaluates catalog functions with every differentiation mode of
the engine: values, forward partials, reverse gradients, n-th directional
derivatives and Hessians. It can also minimize them.

Examples:
  adgraph list
  adgraph eval rosenbrock --at x=1.2 --at y=0.8 --mode hessian
  adgraph eval fike --at x=1.5 --mode nth --order 4
  adgraph eval --file run.yaml
  adgraph minimize himmelblau --optimizer newton`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(logw, &slog.HandlerOptions{Level: level})))
		},
	}
	root.SetOut(out)
	root.SetErr(logw)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newVersionCmd(), newListCmd(), newEvalCmd(), newMinimizeCmd())
	return root
}

// Execute runs the CLI against os.Args.
func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "adgraph %s\n", version)
		},
	}
}
