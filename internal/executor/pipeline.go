// Package executor orchestrates one deploy cycle end to end.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ghdeploy/internal/archive"
	"ghdeploy/internal/artifact"
	"ghdeploy/internal/config"
	"ghdeploy/internal/github"
	"ghdeploy/internal/models"
	"ghdeploy/internal/system"
)

// Options carries the injectable collaborators of a run. Zero values select
// the production implementations.
type Options struct {
	Credentials github.CredentialProvider // nil: netrc lookup
	Runner      system.Runner             // nil: chosen from spec.service_manager
	BaseURL     string                    // "": production API endpoint
	EUID        func() int                // nil: os.Geteuid
}

// Run performs one deploy cycle: policy gate, credential lookup, escalation
// priming, artifact selection, materialization, deployment. Any fatal error
// aborts the run at that point without rollback of prior side effects.
func Run(ctx context.Context, spec models.DeploySpec, opts Options) (*models.DeployReport, error) {
	startTime := time.Now()

	euid := opts.EUID
	if euid == nil {
		euid = os.Geteuid
	}
	if euid() == 0 && !spec.AllowRoot {
		return nil, models.ErrRootRefused
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = github.DefaultBaseURL
	}

	credProvider := opts.Credentials
	if credProvider == nil {
		credProvider = &github.NetrcProvider{}
	}

	host, err := github.Host(baseURL)
	if err != nil {
		return nil, err
	}
	creds, err := credProvider.Lookup(host)
	if err != nil {
		return nil, fmt.Errorf("looking up credentials: %w", err)
	}

	runner := opts.Runner
	if runner == nil {
		switch spec.ServiceManager {
		case models.ServiceManagerDBus:
			runner = system.NewDBusRunner()
		default:
			runner = system.NewSudoRunner()
		}
	}
	defer runner.Close()

	// Acquire escalation rights now so the deploy phase never prompts.
	if err := runner.Prime(ctx); err != nil {
		return nil, &models.PrivilegedOpError{Op: "priming escalation", Err: err}
	}

	// Short marker to differentiate success from failure-cooldown runs.
	slog.Info("here we go")

	client := github.NewClient(creds, time.Duration(spec.HTTPTimeoutSec*float64(time.Second)))
	client.BaseURL = baseURL

	chosen, err := artifact.NewLocator(client).Locate(ctx, spec)
	if err != nil {
		return nil, err
	}
	slog.Info("selected artifact",
		"name", chosen.Name,
		"id", chosen.ID,
		"updated_at", chosen.UpdatedAt,
		"branch", chosen.WorkflowRun.HeadBranch)

	zipBytes, err := client.DownloadArtifact(ctx, spec.Repo, chosen.ID)
	if err != nil {
		return nil, err
	}

	chunkSize, err := config.ParseByteSize(spec.ChunkSize)
	if err != nil || chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}

	staged, err := archive.NewMaterializer(chunkSize).Materialize(zipBytes, spec)
	if err != nil {
		return nil, err
	}

	report := &models.DeployReport{
		Repo:            spec.Repo,
		ArtifactName:    chosen.Name,
		ArtifactID:      chosen.ID,
		ArtifactUpdated: chosen.UpdatedAt,
		SourceBranch:    chosen.WorkflowRun.HeadBranch,
		StagedFiles:     len(staged),
		StartedAt:       startTime,
	}

	report.Operations = NewDeployer(runner).Deploy(ctx, staged, spec.SystemdServices)

	report.EndedAt = time.Now()
	report.TotalDurationSec = report.EndedAt.Sub(report.StartedAt).Seconds()

	return report, nil
}

// RunFromConfig loads a deploy spec file and performs the deploy cycle with
// production collaborators.
func RunFromConfig(ctx context.Context, configPath string) (*models.DeployReport, error) {
	spec, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	return Run(ctx, spec, Options{})
}
