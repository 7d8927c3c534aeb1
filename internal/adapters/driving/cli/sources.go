package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered signal sources",
	Long: `Lists every registered provider and whether it is enabled.
A source is enabled when its credential is configured.`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errors.New("registry not configured")
	}

	sources := registry.Sources()
	names := make([]string, 0, len(sources))
	for source := range sources {
		names = append(names, string(source))
	}
	sort.Strings(names)

	for _, name := range names {
		state := "disabled (no credential)"
		if sources[domain.SourceType(name)] {
			state = "enabled"
		}
		cmd.Printf("  %-8s %s\n", name, state)
	}
	return nil
}
