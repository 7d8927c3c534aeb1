// Command leadboost runs the multi-source lead signal ingestion engine.
package main

import (
	"fmt"
	"os"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/adapters/driving/cli"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

func main() {
	logger.Init(logger.Options{
		Level:  os.Getenv("LEADBOOST_LOG_LEVEL"),
		Format: os.Getenv("LEADBOOST_LOG_FORMAT"),
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
