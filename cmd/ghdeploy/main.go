package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ghdeploy/internal/executor"
	"ghdeploy/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ghdeploy <deploy.yaml>")
		os.Exit(1)
	}

	configPath := os.Args[1]

	// Setup context with manual signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()

	go func() {
		sig := <-sigChan
		slog.Info("interrupt received, shutting down gracefully...", "signal", sig)
		cancel()
	}()

	report, err := executor.RunFromConfig(ctx, configPath)
	if err != nil {
		slog.Error("deploy failed", "type", models.ClassifyError(err), "error", err)
		os.Exit(1)
	}

	// Print summary
	fmt.Printf("\nRepo: %s\n", report.Repo)
	fmt.Printf("Artifact: %s (id %d, updated %s)\n",
		report.ArtifactName, report.ArtifactID, report.ArtifactUpdated.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Staged files: %d\n", report.StagedFiles)
	fmt.Printf("Duration: %.2fs\n", report.TotalDurationSec)

	failed := report.FailedOps()
	if len(failed) > 0 {
		fmt.Printf("Failed operations: %d\n", len(failed))
		for _, op := range failed {
			fmt.Printf("  [%s] %s: %s\n", op.Phase, op.Subject, op.Error)
		}
	}

	if report.Degraded() {
		os.Exit(1)
	}
}
