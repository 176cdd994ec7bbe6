package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/morphohq/morpho/internal/config"
	"github.com/morphohq/morpho/internal/engine"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp [roots...]",
		Short: "Serve the analysis tools over MCP stdio",
		Long: `mcp runs a Model Context Protocol server on stdin/stdout exposing the
list_items, generate_call_graph, and get_source tools. Roots come from the
arguments, then MORPHO_ROOTS, then the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer(configPath)
			if err != nil {
				return err
			}
			roots, err := config.ResolveRoots(args)
			if err != nil {
				return err
			}

			// stdout carries the protocol; every log line must stay on stderr.
			log := newLogger(cmd.ErrOrStderr())
			server := newMCPServer(engine.New(roots, log), cfg.Blacklist)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("mcp server on stdio", "primary", roots[0].Name)
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	return cmd
}

type listItemsInput struct {
	PublicOnly bool     `json:"public_only,omitempty"`
	Blacklist  []string `json:"blacklist,omitempty"`
	Directory  string   `json:"directory,omitempty"`
}

type callGraphInput struct {
	RootFunction string   `json:"root_function"`
	PublicOnly   bool     `json:"public_only,omitempty"`
	Blacklist    []string `json:"blacklist,omitempty"`
	Directory    string   `json:"directory,omitempty"`
}

type getSourceInput struct {
	Function  string   `json:"function"`
	Blacklist []string `json:"blacklist,omitempty"`
	Directory string   `json:"directory,omitempty"`
}

type toolOutput struct {
	Result string `json:"result"`
}

// mcpTools adapts engine queries to MCP tool calls. The configured blacklist
// is merged into each request's own exclusions.
type mcpTools struct {
	eng       *engine.Engine
	blacklist []string
}

func (t *mcpTools) options(publicOnly bool, blacklist []string, directory string) engine.Options {
	merged := make([]string, 0, len(t.blacklist)+len(blacklist))
	merged = append(merged, t.blacklist...)
	merged = append(merged, blacklist...)
	return engine.Options{PublicOnly: publicOnly, Blacklist: merged, Scope: directory}
}

func (t *mcpTools) listItems(ctx context.Context, in listItemsInput) (string, error) {
	return t.eng.ListAll(ctx, t.options(in.PublicOnly, in.Blacklist, in.Directory))
}

func (t *mcpTools) callGraph(ctx context.Context, in callGraphInput) (string, error) {
	if in.RootFunction == "" {
		return "", fmt.Errorf("root_function is required")
	}
	return t.eng.CallGraph(ctx, in.RootFunction, t.options(in.PublicOnly, in.Blacklist, in.Directory))
}

func (t *mcpTools) getSource(ctx context.Context, in getSourceInput) (string, error) {
	if in.Function == "" {
		return "", fmt.Errorf("function is required")
	}
	return t.eng.Source(ctx, in.Function, t.options(false, in.Blacklist, in.Directory))
}

func newMCPServer(eng *engine.Engine, blacklist []string) *mcp.Server {
	tools := &mcpTools{eng: eng, blacklist: blacklist}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "morpho",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_items",
		Description: "List every type and function declared in the analyzed Rust roots, grouped by file",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listItemsInput) (*mcp.CallToolResult, toolOutput, error) {
		return toolResult(tools.listItems(ctx, in))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_call_graph",
		Description: "Show the tree of project functions reachable from a function, annotated with call contexts",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in callGraphInput) (*mcp.CallToolResult, toolOutput, error) {
		return toolResult(tools.callGraph(ctx, in))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_source",
		Description: "Pretty-print the source of a function or type by name or FQN",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in getSourceInput) (*mcp.CallToolResult, toolOutput, error) {
		return toolResult(tools.getSource(ctx, in))
	})

	return server
}

// toolResult maps a query outcome onto the MCP envelope. Resolution failures
// become tool error results, not protocol failures.
func toolResult(out string, err error) (*mcp.CallToolResult, toolOutput, error) {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, toolOutput{}, nil
	}
	return nil, toolOutput{Result: out}, nil
}
