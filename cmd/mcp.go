package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/chrispaulintheory/ContextGraph/internal/project"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <project-root>",
	Short: "Serve capsule/resume/observe/graph as MCP tools over stdio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}

		s := server.NewMCPServer("contextgraph", Version)

		s.AddTool(mcp.NewTool("capsule",
			mcp.WithDescription("Render a bounded markdown capsule for one node"),
			mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id, e.g. pkg.mod.ClassName.method")),
			mcp.WithNumber("depth", mcp.Description("Dependency/dependent traversal depth")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("node_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			depth := req.GetInt("depth", cfg.DefaultDepth)
			doc, err := p.Capsule.Render(ctx, id, depth)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(doc), nil
		})

		s.AddTool(mcp.NewTool("resume",
			mcp.WithDescription("Render a token-budgeted session resume digest"),
			mcp.WithNumber("budget", mcp.Description("Token budget")),
			mcp.WithNumber("hours", mcp.Description("Lookback window in hours")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			budget := req.GetInt("budget", cfg.DefaultBudget)
			hours := req.GetInt("hours", cfg.DefaultHours)
			doc, err := p.Resume.Render(ctx, budget, hours)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(doc), nil
		})

		s.AddTool(mcp.NewTool("observe",
			mcp.WithDescription("Record a free-form observation, optionally linked to a node"),
			mcp.WithString("content", mcp.Required(), mcp.Description("Observation text")),
			mcp.WithString("node_id", mcp.Description("Node id to link to")),
			mcp.WithString("source", mcp.Description("Origin: user, claude, git, hook")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			nodeID := req.GetString("node_id", "")
			source := req.GetString("source", "")
			id, err := p.Observations.Add(content, nodeID, nil, source)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("observation %d recorded", id)), nil
		})

		s.AddTool(mcp.NewTool("graph_query",
			mcp.WithDescription("Query callers, callees, imports, importers, superclasses, or subclasses"),
			mcp.WithString("relation", mcp.Required(), mcp.Description("One of: callers, callees, imports, importers, superclasses, subclasses")),
			mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id to query from")),
			mcp.WithNumber("depth", mcp.Description("Traversal depth")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			relation, err := req.RequireString("relation")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			id, err := req.RequireString("node_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			depth := req.GetInt("depth", cfg.DefaultDepth)

			result, err := runGraphRelation(p, relation, id, depth)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(result), nil
		})

		return server.ServeStdio(s)
	},
}

func runGraphRelation(p *project.Project, relation, id string, depth int) (string, error) {
	var nodes []store.Node
	var err error
	switch relation {
	case "callers":
		nodes, err = p.Graph.Callers(id, depth)
	case "callees":
		nodes, err = p.Graph.Callees(id, depth)
	case "imports":
		nodes, err = p.Graph.Imports(id, depth)
	case "importers":
		nodes, err = p.Graph.Importers(id, depth)
	case "superclasses":
		nodes, err = p.Graph.Superclasses(id, depth)
	case "subclasses":
		nodes, err = p.Graph.Subclasses(id, depth)
	default:
		return "", fmt.Errorf("mcp: unknown relation %q", relation)
	}
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "%s\t%s\t%s:%d\n", n.ID, n.Kind, n.FilePath, n.LineStart)
	}
	return b.String(), nil
}
