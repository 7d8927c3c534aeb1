package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

var (
	ingestMaxResults int
	ingestSince      string
	ingestUntil      string
	ingestLanguage   string
	ingestStrict     bool
	ingestJSON       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [source] [query]",
	Short: "Run one ingestion cycle for a source",
	Long: `Fetches signals matching the query from one provider and stores them.
Sources: twitter, news, github, youtube.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestMaxResults, "max-results", "n", 0, "cap fetched items (0 = connector default)")
	ingestCmd.Flags().StringVar(&ingestSince, "since", "", "only items published after this RFC3339 time")
	ingestCmd.Flags().StringVar(&ingestUntil, "until", "", "only items published before this RFC3339 time")
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "", "ISO language filter")
	ingestCmd.Flags().BoolVar(&ingestStrict, "strict", false, "abort the cycle on the first save failure")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return errors.New("orchestrator not configured")
	}

	source, err := domain.ParseSourceType(args[0])
	if err != nil {
		return err
	}
	query := args[1]

	opts := domain.DefaultCycleOptions()
	opts.MaxResults = ingestMaxResults
	opts.Language = ingestLanguage
	opts.ContinueOnError = !ingestStrict
	if opts.Since, err = parseTimeFlag(ingestSince); err != nil {
		return fmt.Errorf("invalid --since: %w", err)
	}
	if opts.Until, err = parseTimeFlag(ingestUntil); err != nil {
		return fmt.Errorf("invalid --until: %w", err)
	}

	ctx := context.Background()
	if err := orchestrator.Initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	result := orchestrator.RunIngestionCycle(ctx, source, query, opts)

	if ingestJSON {
		return printJSON(cmd, result)
	}
	printCycleResult(cmd, result)
	if !result.Success {
		return fmt.Errorf("ingestion cycle for %s failed", source)
	}
	return nil
}

func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printCycleResult(cmd *cobra.Command, result *domain.IngestionResult) {
	status := "OK"
	if !result.Success {
		status = "FAILED"
	}
	cmd.Printf("[%s] %s %q: found %d, saved %d, failed %d in %s\n",
		status, result.Source, result.Query,
		result.SignalsFound, result.SignalsSaved, result.SignalsFailed,
		result.Duration.Round(time.Millisecond))
	for _, cycleErr := range result.Errors {
		cmd.Printf("  %s: %s\n", cycleErr.Step, cycleErr.Message)
	}
}
