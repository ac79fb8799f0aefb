package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Add, list, or delete free-form observations",
}

var (
	observeNodeID string
	observeTags   string
	observeSource string
)

var observeAddCmd = &cobra.Command{
	Use:   "add <project-root> <content>",
	Short: "Record a new observation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, content := args[0], args[1]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		var tags []string
		if observeTags != "" {
			tags = strings.Split(observeTags, ",")
		}
		id, err := p.Observations.Add(content, observeNodeID, tags, observeSource)
		if err != nil {
			return err
		}
		fmt.Printf("observation %d recorded\n", id)
		return nil
	},
}

var observeListCmd = &cobra.Command{
	Use:   "list <project-root>",
	Short: "List observations, optionally filtered by node id or tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		tag := ""
		if observeTags != "" {
			tag = strings.Split(observeTags, ",")[0]
		}
		obs, err := p.Observations.List(observeNodeID, tag)
		if err != nil {
			return err
		}
		for _, o := range obs {
			fmt.Printf("[%d] (%s) %s — %s\n", o.ID, o.Source, o.NodeID, o.Content)
		}
		return nil
	},
}

var observeDeleteCmd = &cobra.Command{
	Use:   "delete <project-root> <id>",
	Short: "Delete an observation by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("observe delete: invalid id %q: %w", args[1], err)
		}
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		return p.Observations.Delete(id)
	},
}

func init() {
	observeAddCmd.Flags().StringVar(&observeNodeID, "node", "", "Node id to link the observation to (optional)")
	observeAddCmd.Flags().StringVar(&observeTags, "tags", "", "Comma-separated tags")
	observeAddCmd.Flags().StringVar(&observeSource, "source", "", "Observation source (default \"user\")")
	observeListCmd.Flags().StringVar(&observeNodeID, "node", "", "Filter by node id")
	observeListCmd.Flags().StringVar(&observeTags, "tags", "", "Filter by a single tag")

	observeCmd.AddCommand(observeAddCmd)
	observeCmd.AddCommand(observeListCmd)
	observeCmd.AddCommand(observeDeleteCmd)
}
