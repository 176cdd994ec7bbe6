package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morphohq/morpho/internal/config"
	"github.com/morphohq/morpho/internal/engine"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		publicOnly bool
		blacklist  []string
		source     bool
		deps       []string
		scope      string
	)

	cmd := &cobra.Command{
		Use:   "analyze <directory> [function]",
		Short: "List declarations or trace a function's call graph",
		Long: `With only a directory, analyze prints every type and function declared in
it, grouped by file. With a function name it prints the call graph rooted at
that function, or the function's source with --source. Names may be short
(new), partially qualified (Engine::new), or full FQNs.`,
		Example: `  morpho analyze .
  morpho analyze . --public-only
  morpho analyze . handle_request
  morpho analyze . Engine::new --source
  morpho analyze . run --deps ../shared --scope shared`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("root path: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s: not a directory", args[0])
			}

			roots, err := config.ResolveRoots(append([]string{args[0]}, deps...))
			if err != nil {
				return err
			}
			eng := engine.New(roots, newLogger(cmd.ErrOrStderr()))
			opts := engine.Options{
				PublicOnly: publicOnly,
				Blacklist:  blacklist,
				Scope:      scope,
			}

			ctx := cmd.Context()
			var out string
			switch {
			case len(args) < 2:
				out, err = eng.ListAll(ctx, opts)
			case source:
				out, err = eng.Source(ctx, args[1], opts)
			default:
				out, err = eng.CallGraph(ctx, args[1], opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&publicOnly, "public-only", false, "show only public items")
	cmd.Flags().StringSliceVar(&blacklist, "blacklist", nil, "exclude paths containing any of these substrings")
	cmd.Flags().BoolVar(&source, "source", false, "print the queried function's source instead of its call graph")
	cmd.Flags().StringSliceVar(&deps, "deps", nil, "additional dependency roots, ranked after the primary")
	cmd.Flags().StringVar(&scope, "scope", "", "restrict results to a root name, root/subpath, or absolute path prefix")
	return cmd
}
