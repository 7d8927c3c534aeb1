package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/services"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run and inspect scheduled ingestion",
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler until interrupted",
	Long: `Starts the task scheduler and blocks. Due tasks fire their ingestion
cycles unattended; Ctrl-C drains in-flight tasks and shuts down.`,
	RunE: runScheduleRun,
}

var scheduleTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the configured task catalogue",
	RunE:  runScheduleTasks,
}

func init() {
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleTasksCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleRun(cmd *cobra.Command, _ []string) error {
	if orchestrator == nil || configStore == nil {
		return errors.New("services not configured")
	}

	cfg := configStore.SchedulerConfig()
	if !cfg.Enabled {
		return errors.New("scheduler is disabled in configuration")
	}

	sched := services.NewScheduler(cfg, orchestrator)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Scheduler running with %d tasks. Ctrl-C to stop.\n", len(cfg.Tasks))
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := sched.Stop(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}

	for _, stats := range sched.TaskStats() {
		cmd.Printf("  %-16s runs=%d signals=%d", stats.Name, stats.Executions, stats.Signals)
		if !stats.LastSuccess.IsZero() {
			cmd.Printf(" last-success=%s", stats.LastSuccess.Format(time.RFC3339))
		}
		cmd.Println()
	}
	return nil
}

func runScheduleTasks(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("services not configured")
	}

	cfg := configStore.SchedulerConfig()
	state := "enabled"
	if !cfg.Enabled {
		state = "disabled"
	}
	cmd.Printf("Scheduler: %s\n", state)

	for _, task := range cfg.Tasks {
		source := "all sources"
		if task.Source != "" {
			source = string(task.Source)
		}
		mark := " "
		if !task.Enabled {
			mark = "off"
		}
		cmd.Printf("  %-16s %-12s every %-8s %q %s\n",
			task.Name, source, task.Interval, task.Query, mark)
	}
	return nil
}
