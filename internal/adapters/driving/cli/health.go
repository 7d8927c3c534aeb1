package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check engine and connector health",
	Long: `Checks store connectivity, the monitor's aggregate health and probes
every enabled connector with a minimal live API call.`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if orchestrator == nil || registry == nil {
		return errors.New("services not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	overall := orchestrator.HealthCheck(ctx)
	probes := registry.HealthCheckAll(ctx)

	if healthJSON {
		return printJSON(cmd, map[string]any{
			"overall":    overall,
			"connectors": probes,
		})
	}

	status := "HEALTHY"
	if !overall.Healthy {
		status = "UNHEALTHY"
	}
	cmd.Printf("Engine: %s (store: %v, monitor: %s)\n", status, overall.Store, overall.Monitor)
	if overall.Message != "" {
		cmd.Printf("  %s\n", overall.Message)
	}

	sources := make([]string, 0, len(probes))
	for source := range probes {
		sources = append(sources, string(source))
	}
	sort.Strings(sources)

	cmd.Println("\nConnectors:")
	for _, name := range sources {
		probe := probes[domain.SourceType(name)]
		mark := "ok"
		if !probe.IsHealthy {
			mark = "FAIL"
		}
		cmd.Printf("  %-8s %-4s latency=%s", name, mark, probe.Latency.Round(time.Millisecond))
		if probe.RateLimitRemaining >= 0 {
			cmd.Printf(" remaining=%d", probe.RateLimitRemaining)
		}
		if probe.Message != "" {
			cmd.Printf(" (%s)", probe.Message)
		}
		cmd.Println()
	}

	if !overall.Healthy {
		return fmt.Errorf("engine unhealthy")
	}
	return nil
}
