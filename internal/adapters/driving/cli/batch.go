package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

var (
	batchSources    string
	batchMaxResults int
	batchJSON       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [query]",
	Short: "Run concurrent ingestion cycles across sources",
	Long: `Runs one ingestion cycle per source concurrently with the same query.
One source failing never cancels the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchSources, "sources", "", "comma-separated sources (default: all)")
	batchCmd.Flags().IntVarP(&batchMaxResults, "max-results", "n", 0, "cap fetched items per source")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return errors.New("orchestrator not configured")
	}

	query := args[0]

	sources := domain.AllSourceTypes()
	if batchSources != "" {
		sources = sources[:0]
		for _, raw := range strings.Split(batchSources, ",") {
			source, err := domain.ParseSourceType(raw)
			if err != nil {
				return err
			}
			sources = append(sources, source)
		}
	}

	configs := make([]domain.CycleConfig, 0, len(sources))
	opts := domain.DefaultCycleOptions()
	opts.MaxResults = batchMaxResults
	for _, source := range sources {
		configs = append(configs, domain.CycleConfig{
			Source:  source,
			Query:   query,
			Options: opts,
		})
	}

	ctx := context.Background()
	if err := orchestrator.Initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	batch := orchestrator.RunBatchIngestion(ctx, configs)

	if batchJSON {
		return printJSON(cmd, batch)
	}

	for i := range batch.Results {
		printCycleResult(cmd, &batch.Results[i])
	}
	cmd.Printf("\nTotal: found %d, saved %d, failed %d across %d sources (%d ok, %d failed) in %s\n",
		batch.TotalFound, batch.TotalSaved, batch.TotalFailed,
		len(batch.Results), batch.SucceededRuns, batch.FailedRuns,
		batch.Duration.Round(time.Millisecond))

	if batch.FailedRuns > 0 {
		return fmt.Errorf("%d of %d cycles failed", batch.FailedRuns, len(batch.Results))
	}
	return nil
}
