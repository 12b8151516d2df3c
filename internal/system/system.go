// Package system holds the privileged collaborators of a deploy: file
// copies into protected paths and service lifecycle control.
package system

import "context"

// FileCopier copies a staged file to its privileged destination.
type FileCopier interface {
	Copy(ctx context.Context, src, dst string) error
}

// ServiceManager controls managed services around a deployment.
type ServiceManager interface {
	Stop(ctx context.Context, name string) error
	Start(ctx context.Context, name string) error
	// Status reports the post-start state of a service for operator
	// visibility. Failures are informational.
	Status(ctx context.Context, name string) error
}

// Runner is the full escalation surface the pipeline needs.
type Runner interface {
	FileCopier
	ServiceManager

	// Prime acquires whatever the escalation mechanism needs up front
	// (sudo credential cache, bus connection) so later calls don't stall
	// mid-deploy.
	Prime(ctx context.Context) error

	// Close releases any held connections.
	Close() error
}
