package executor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ghdeploy/internal/models"
	"ghdeploy/internal/system"
)

// DefaultSettleDelay is how long the sequencer waits after starting
// services before querying their status.
const DefaultSettleDelay = 1500 * time.Millisecond

// Deployer runs the deployment sequence: stop services, copy staged files,
// start services, clean up staging, report status. Sequential, no rollback.
type Deployer struct {
	Runner      system.Runner
	SettleDelay time.Duration

	// Sleep is the settle-delay clock, replaceable in tests.
	Sleep func(time.Duration)
}

// NewDeployer creates a deployer backed by the given escalation runner.
func NewDeployer(runner system.Runner) *Deployer {
	return &Deployer{
		Runner:      runner,
		SettleDelay: DefaultSettleDelay,
		Sleep:       time.Sleep,
	}
}

// Deploy executes all phases and returns every operation outcome in
// execution order. Per-item failures are recorded and never abort the
// sequence; the caller inspects the results to decide the exit status.
//
// Staged temp files are removed on every exit path, including a panic in
// the copy phase.
func (d *Deployer) Deploy(ctx context.Context, staged []models.StagedFile, services []string) (ops []models.OpResult) {
	cleaned := false
	cleanup := func() {
		if cleaned {
			return
		}
		cleaned = true
		for _, sf := range staged {
			err := os.Remove(sf.TempPath)
			ops = record(ops, models.PhaseCleanup, sf.TempPath, err)
		}
	}
	defer cleanup()

	for _, name := range services {
		slog.Info("stopping service", "service", name)
		ops = record(ops, models.PhaseStop, name, d.Runner.Stop(ctx, name))
	}

	for _, sf := range staged {
		slog.Info("copying file", "target", sf.TargetPath)
		ops = record(ops, models.PhaseCopy, sf.TargetPath, d.Runner.Copy(ctx, sf.TempPath, sf.TargetPath))
	}

	for _, name := range services {
		slog.Info("starting service", "service", name)
		ops = record(ops, models.PhaseStart, name, d.Runner.Start(ctx, name))
	}

	cleanup()

	if len(services) > 0 {
		d.Sleep(d.SettleDelay)
		for _, name := range services {
			ops = record(ops, models.PhaseStatus, name, d.Runner.Status(ctx, name))
		}
	}

	return ops
}

func record(ops []models.OpResult, phase models.Phase, subject string, err error) []models.OpResult {
	op := models.OpResult{Phase: phase, Subject: subject}
	if err != nil {
		op.Error = err.Error()
		slog.Warn("operation failed", "phase", phase, "subject", subject, "error", err)
	}
	return append(ops, op)
}
