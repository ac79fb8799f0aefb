package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a project tree and incrementally reindex changed files",
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
		if _, err := p.Indexer.IndexProject(cmd.Context(), root, false, cfg.Concurrency); err != nil {
			return fmt.Errorf("watch: initial index: %w", err)
		}
		if err := p.Watcher.Start(); err != nil {
			return fmt.Errorf("watch: start: %w", err)
		}
		fmt.Printf("watching %s (ctrl-c to stop)\n", root)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		p.Watcher.Stop()
		return nil
	},
}
