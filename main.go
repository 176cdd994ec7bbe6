// morpho maps the structure of Rust codebases: declaration listings,
// call-graph trees, and pretty-printed source over one or more roots.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "morpho",
		Short: "Structural analysis for Rust codebases",
		Long: `morpho builds an in-memory model of one or more Rust source trees and
answers structural queries over it: every declared type and function, the
call graph reachable from a function, or a function's pretty-printed source.

Every item is addressed by a fully qualified name of the form
<root-relative path>::<item path>, for example ./src/lib.rs::Engine::new.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("morpho {{.Version}}\n")

	root.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newMCPCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the morpho version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "morpho %s\n", version)
		},
	}
}

// newLogger builds the process logger on w, which is always stderr outside
// of tests so served stdout stays clean. MORPHO_LOG picks the level (debug,
// info, warn, error).
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("MORPHO_LOG")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
