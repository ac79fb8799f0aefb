package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	indexForce       bool
	indexConcurrency int
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a project tree (or a single file) into its Store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		concurrency := indexConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Concurrency
		}
		paths, err := p.Indexer.IndexProject(cmd.Context(), root, indexForce, concurrency)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d files under %s\n", len(paths), root)
		return nil
	},
}

var indexFileCmd = &cobra.Command{
	Use:   "file <project-root> <path>",
	Short: "Index a single file, relative to its project root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, path := args[0], args[1]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		nodes, err := p.Indexer.IndexFile(context.Background(), root, path, indexForce)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %s: %d nodes\n", path, len(nodes))
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Reindex files even if their content hash is unchanged")
	indexCmd.Flags().IntVar(&indexConcurrency, "concurrency", 0, "Bound concurrent file parsing (0 = config default)")
	indexFileCmd.Flags().BoolVar(&indexForce, "force", false, "Reindex even if the content hash is unchanged")
	indexCmd.AddCommand(indexFileCmd)
}
