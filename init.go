package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- morpho:start -->"
	sentinelEnd   = "<!-- morpho:end -->"
)

// newInitCmd writes (or updates) a morpho usage section in a CLAUDE.md file
// so coding assistants discover the tool.
func newInitCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a morpho usage section to a CLAUDE.md file",
		Long: `Write a morpho usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := generateSection()

			// --dry-run with no path: just print the section itself.
			if dryRun && len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), section)
				return nil
			}

			path := "CLAUDE.md"
			if len(args) > 0 {
				path = args[0]
			}

			existing, _ := os.ReadFile(path)
			updated := applySection(string(existing), section)

			if dryRun {
				fmt.Fprint(cmd.OutOrStdout(), updated)
				return nil
			}

			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "wrote morpho section to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// generateSection returns the full sentinel-wrapped morpho documentation block.
func generateSection() string {
	body := `## morpho — Rust Code Structure

Run ` + "`morpho`" + ` via the Bash tool when working on an unfamiliar Rust codebase.
It models the whole tree and answers structural questions directly, replacing
broad file-by-file exploration.

**Availability:** Check with ` + "`morpho version`" + ` first; skip gracefully if not
found.

**Run it:**
` + "```" + `bash
morpho analyze .                               # list every type and function
morpho analyze . --public-only                 # public API surface only
morpho analyze . handle_request                # call graph for one function
morpho analyze . Engine::new --source          # pretty-printed source
morpho analyze . run --blacklist tests,target  # exclude paths by substring
morpho analyze . run --deps ../shared          # include a dependency root
` + "```" + `

Items are addressed as ` + "`<file>::<item>`" + `, e.g. ` + "`./src/lib.rs::Engine::new`" + `.
Short names work too; an ambiguous short name lists the candidates.

**All flags:** ` + "`morpho analyze --help`" + `

**How to use the output — follow these rules:**

1. **Start from the listing.** ` + "`morpho analyze .`" + ` shows every declaration
   grouped by file. Use it instead of directory listings or broad Grep.

2. **Trace call graphs instead of reading whole files.** Before opening a
   function's file to see what it calls, run
   ` + "`morpho analyze . <function>`" + `. Branch annotations like
   ` + "`[in: if cfg.enabled]`" + ` show the condition guarding each call.

3. **Use ` + "`--source`" + ` for one definition.** It prints a single function or
   type cleanly reindented, cheaper than reading the surrounding file.

4. **Only fall back to Grep for what morpho cannot answer** — e.g. finding
   callers of a function, string literals, or macro bodies.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
