package models

import "time"

// Phase names the deployment phase an operation belongs to.
type Phase string

const (
	PhaseStop    Phase = "stop"
	PhaseCopy    Phase = "copy"
	PhaseStart   Phase = "start"
	PhaseCleanup Phase = "cleanup"
	PhaseStatus  Phase = "status"
)

// OpResult records the outcome of one privileged operation. Subject is the
// service name for service phases and the target path for copy/cleanup.
type OpResult struct {
	Phase   Phase  `json:"phase"`
	Subject string `json:"subject"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the operation failed.
func (r OpResult) Failed() bool { return r.Error != "" }

// DeployReport contains the outcome of one deploy cycle.
type DeployReport struct {
	Repo             string     `json:"repo"`
	ArtifactName     string     `json:"artifact_name"`
	ArtifactID       int64      `json:"artifact_id"`
	ArtifactUpdated  time.Time  `json:"artifact_updated_at"`
	SourceBranch     string     `json:"source_branch,omitempty"`
	StagedFiles      int        `json:"staged_files"`
	Operations       []OpResult `json:"operations"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          time.Time  `json:"ended_at"`
	TotalDurationSec float64    `json:"total_duration_sec"`
}

// FailedOps returns the operations that failed, in execution order.
// Status-phase failures are informational and excluded.
func (r *DeployReport) FailedOps() []OpResult {
	var failed []OpResult
	for _, op := range r.Operations {
		if op.Failed() && op.Phase != PhaseStatus {
			failed = append(failed, op)
		}
	}
	return failed
}

// Degraded reports whether any stop/copy/start operation failed. A degraded
// run still completes all phases but the process must exit non-zero.
func (r *DeployReport) Degraded() bool {
	for _, op := range r.Operations {
		if !op.Failed() {
			continue
		}
		switch op.Phase {
		case PhaseStop, PhaseCopy, PhaseStart:
			return true
		}
	}
	return false
}
