// Package cmd is the ContextGraph CLI: a thin cobra layer over
// internal/project's per-root registry. Grounded on mache's cmd/mount.go
// (rootCmd/Execute/global-flags shape) and cmd/build.go (single-purpose
// subcommand pattern), restructured around index/watch/capsule/resume/
// observe/graph subcommands instead of the teacher's mount/build/agent
// surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrispaulintheory/ContextGraph/internal/config"
	"github.com/chrispaulintheory/ContextGraph/internal/project"
)

var (
	// Version is stamped at build time via -ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	dataDir string
	cfg     config.Config
	reg     *project.Registry
)

var rootCmd = &cobra.Command{
	Use:           "contextgraph",
	Short:         "A persistent, incrementally-updated code knowledge graph",
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Default()
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		reg = project.NewRegistry(cfg.DataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override the directory holding per-project Store files")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(capsuleCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(mcpCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contextgraph version %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
