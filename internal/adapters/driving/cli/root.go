// Package cli provides the cobra command surface for the ingestion engine.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/adapters/driven/config/file"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/adapters/driven/storage/sqlite"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/connectors"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driving"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/services"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by initServices; tests inject their own.
var (
	orchestrator driving.Orchestrator
	registry     driving.ConnectorRegistry
	configStore  driven.ConfigStore
	signalStore  driven.SignalStore
)

var (
	configDir string
	dataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "leadboost",
	Short: "Multi-source lead signal ingestion engine",
	Long: `Collects text signals from Twitter, news outlets, GitHub and YouTube,
normalizes them into a unified schema and stores them idempotently for
downstream qualification.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !needsServices(cmd) {
			return nil
		}
		return initServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if !needsServices(cmd) {
			return nil
		}
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.leadboost)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.leadboost/data)")
}

// needsServices reports whether a command requires the wired service
// stack. Bare invocations, help, and version run without it.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "leadboost", "help", "version", "completion":
		return false
	}
	return true
}

// initServices wires the production stack. Idempotent so tests can
// pre-populate the service vars and skip the wiring.
func initServices() error {
	if orchestrator != nil {
		return nil
	}

	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = cfg

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		cfg.Close()
		return fmt.Errorf("opening signal store: %w", err)
	}
	signalStore = store

	connFactory := connectors.DefaultFactory(cfg)
	// Rotated credentials reach connectors built after the reload.
	cfg.Subscribe(func() {
		connectors.RegisterDefaults(connFactory, cfg)
	})

	reg := services.NewConnectorRegistry(connFactory)
	registry = reg

	orchestrator = services.NewIngestionOrchestrator(
		reg, store, services.NewHealthMonitor(), services.NewLimiterSet(rateLimits(connFactory)))
	return nil
}

// rateLimits resolves each registered provider's configured per-minute
// budget for the orchestrator's limiter set.
func rateLimits(f driven.ConnectorFactory) map[domain.SourceType]int {
	limits := make(map[domain.SourceType]int)
	for _, source := range f.SupportedSources() {
		reg, err := f.Registration(source)
		if err != nil || reg.Defaults.RateLimitPerMinute <= 0 {
			continue
		}
		limits[source] = reg.Defaults.RateLimitPerMinute
	}
	return limits
}

func closeServices() error {
	if configStore != nil {
		configStore.Close() //nolint:errcheck // shutdown path
	}
	if signalStore != nil {
		return signalStore.Close()
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
