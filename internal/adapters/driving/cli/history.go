package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ingestion runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if orchestrator == nil {
		return errors.New("orchestrator not configured")
	}

	records := orchestrator.GetExecutionHistory(historyLimit)

	if historyJSON {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, rec := range records {
		mark := "ok"
		if !rec.Success {
			mark = "FAIL"
		}
		cmd.Printf("%s  %-8s %-4s signals=%d duration=%s",
			rec.StartedAt.Format(time.RFC3339), rec.Source, mark,
			rec.Signals, rec.EndedAt.Sub(rec.StartedAt).Round(time.Millisecond))
		if rec.Error != "" {
			cmd.Printf(" error=%q", rec.Error)
		}
		cmd.Println()
	}
	return nil
}
