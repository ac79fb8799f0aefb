package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	resumeBudget int
	resumeHours  int
)

var resumeCmd = &cobra.Command{
	Use:   "resume <project-root>",
	Short: "Render a token-budgeted session resume digest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		p, err := reg.Open(root)
		if err != nil {
			return err
		}
		budget := resumeBudget
		if budget <= 0 {
			budget = cfg.DefaultBudget
		}
		hours := resumeHours
		if hours <= 0 {
			hours = cfg.DefaultHours
		}
		doc, err := p.Resume.Render(cmd.Context(), budget, hours)
		if err != nil {
			return err
		}
		fmt.Print(doc)
		return nil
	},
}

func init() {
	resumeCmd.Flags().IntVar(&resumeBudget, "budget", 0, "Token budget (0 = config default)")
	resumeCmd.Flags().IntVar(&resumeHours, "hours", 0, "Lookback window in hours (0 = config default)")
}
