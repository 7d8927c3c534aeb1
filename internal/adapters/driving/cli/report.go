package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print an operational report",
	Long:  `Renders cumulative counters, derived metrics and recent errors.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if orchestrator == nil {
			return errors.New("orchestrator not configured")
		}
		cmd.Println(orchestrator.GenerateSystemReport())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
