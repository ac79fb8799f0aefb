package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var capsuleDepth int

var capsuleCmd = &cobra.Command{
	Use:   "capsule <project-root> <node-id>",
	Short: "Render a bounded markdown capsule for one node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, id := args[0], args[1]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		depth := capsuleDepth
		if depth <= 0 {
			depth = cfg.DefaultDepth
		}
		doc, err := p.Capsule.Render(cmd.Context(), id, depth)
		if err != nil {
			return err
		}
		fmt.Print(doc)
		return nil
	},
}

func init() {
	capsuleCmd.Flags().IntVar(&capsuleDepth, "depth", 0, "Dependency/dependent traversal depth (0 = config default)")
}
