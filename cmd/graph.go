package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

var graphDepth int

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the callers/callees/imports/inheritance graph",
}

func graphQueryCmd(use, short string, query func(root, id string, depth int) ([]store.Node, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-root> <node-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, id := args[0], args[1]
			depth := graphDepth
			if depth <= 0 {
				depth = cfg.DefaultDepth
			}
			nodes, err := query(root, id, depth)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				fmt.Printf("%s\t%s\t%s:%d\n", n.ID, n.Kind, n.FilePath, n.LineStart)
			}
			return nil
		},
	}
}

var graphResolveCmd = &cobra.Command{
	Use:   "resolve <project-root> <name>",
	Short: "Resolve a short name to its unique node id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, name := args[0], args[1]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		n, err := p.Graph.ResolveTarget(name)
		if err != nil {
			return err
		}
		fmt.Println(n.ID)
		return nil
	},
}

func init() {
	graphCmd.PersistentFlags().IntVar(&graphDepth, "depth", 0, "Traversal depth (0 = config default)")

	graphCmd.AddCommand(graphQueryCmd("callers", "Who calls this node", func(root, id string, depth int) ([]store.Node, error) {
		p, err := reg.Open(root)
		if err != nil {
			return nil, err
		}
		return p.Graph.Callers(id, depth)
	}))
	graphCmd.AddCommand(graphQueryCmd("callees", "What this node calls", func(root, id string, depth int) ([]store.Node, error) {
		p, err := reg.Open(root)
		if err != nil {
			return nil, err
		}
		return p.Graph.Callees(id, depth)
	}))
	graphCmd.AddCommand(graphQueryCmd("importers", "Who imports this module", func(root, id string, depth int) ([]store.Node, error) {
		p, err := reg.Open(root)
		if err != nil {
			return nil, err
		}
		return p.Graph.Importers(id, depth)
	}))
	graphCmd.AddCommand(graphQueryCmd("imports", "What this module imports", func(root, id string, depth int) ([]store.Node, error) {
		p, err := reg.Open(root)
		if err != nil {
			return nil, err
		}
		return p.Graph.Imports(id, depth)
	}))
	graphCmd.AddCommand(graphQueryCmd("superclasses", "Classes this class inherits from", func(root, id string, depth int) ([]store.Node, error) {
		p, err := reg.Open(root)
		if err != nil {
			return nil, err
		}
		return p.Graph.Superclasses(id, depth)
	}))
	graphCmd.AddCommand(graphQueryCmd("subclasses", "Classes that inherit from this class", func(root, id string, depth int) ([]store.Node, error) {
		p, err := reg.Open(root)
		if err != nil {
			return nil, err
		}
		return p.Graph.Subclasses(id, depth)
	}))
	graphCmd.AddCommand(graphResolveCmd)
}
