package models

import "time"

// WorkflowRun identifies the CI run that produced an artifact.
type WorkflowRun struct {
	ID         int64  `json:"id"`
	HeadBranch string `json:"head_branch"`
	HeadSHA    string `json:"head_sha"`
}

// Artifact is one build artifact record from the provider listing.
// Produced by the API and immutable; used only for selection.
type Artifact struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	SizeInBytes int64       `json:"size_in_bytes"`
	Expired     bool        `json:"expired"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	WorkflowRun WorkflowRun `json:"workflow_run"`
}

// ArtifactsPage is one page of the provider's artifact listing.
type ArtifactsPage struct {
	TotalCount int        `json:"total_count"`
	Artifacts  []Artifact `json:"artifacts"`
}
