package models

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrRootRefused is returned when the process runs with superuser identity
// without the explicit allow_root opt-in. A policy check, not a security
// boundary.
var ErrRootRefused = errors.New("refusing to run with superuser identity (set allow_root to override)")

// ErrorType identifies the category of error that occurred.
type ErrorType string

const (
	// Configuration and policy, before any network call
	ErrConfig     ErrorType = "config"
	ErrAuthPolicy ErrorType = "auth_policy"

	// Selection phase
	ErrAPI     ErrorType = "api"
	ErrNoMatch ErrorType = "no_match"

	// Materialization phase
	ErrEntryNotFound ErrorType = "archive_entry_not_found"
	ErrIO            ErrorType = "io"

	// Deployment phase, per item, non-fatal
	ErrPrivilegedOp ErrorType = "privileged_op"

	// Catch-all
	ErrInternal ErrorType = "internal_error"
)

// ClassifyError maps a fatal pipeline error to its report category.
func ClassifyError(err error) ErrorType {
	var (
		confErr  *ConfigError
		privErr  *PrivilegedOpError
		noMatch  *NoMatchError
		notFound *EntryNotFoundError
		apiErr   *APIError
		pathErr  *fs.PathError
	)

	switch {
	case errors.Is(err, ErrRootRefused):
		return ErrAuthPolicy
	case errors.As(err, &confErr):
		return ErrConfig
	case errors.As(err, &privErr):
		return ErrPrivilegedOp
	case errors.As(err, &noMatch):
		return ErrNoMatch
	case errors.As(err, &notFound):
		return ErrEntryNotFound
	case errors.As(err, &apiErr):
		return ErrAPI
	case errors.As(err, &pathErr):
		return ErrIO
	default:
		return ErrInternal
	}
}

// ConfigError reports a missing or invalid deploy configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "deploy config: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// PrivilegedOpError reports a failed escalation-mechanism invocation. Fatal
// only when it is the blocking step (priming); per-item failures during the
// deploy phases are recorded in the report instead.
type PrivilegedOpError struct {
	Op  string
	Err error
}

func (e *PrivilegedOpError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PrivilegedOpError) Unwrap() error { return e.Err }

// NoMatchError reports that no artifact satisfied the configured filters.
type NoMatchError struct {
	Repo     string
	Artifact string
	Branch   string
}

func (e *NoMatchError) Error() string {
	if e.Branch != "" {
		return fmt.Sprintf("no artifact named %q on branch %q in %s", e.Artifact, e.Branch, e.Repo)
	}
	return fmt.Sprintf("no artifact named %q in %s", e.Artifact, e.Repo)
}

// EntryNotFoundError reports that an explicit copy_files entry is absent
// from the downloaded archive.
type EntryNotFoundError struct {
	Path string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("archive entry not found: %s", e.Path)
}

// APIError reports a non-success HTTP status or a malformed payload from
// the provider.
type APIError struct {
	Status int
	URL    string
	Detail string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api request %s: status %d: %s", e.URL, e.Status, e.Detail)
	}
	return fmt.Sprintf("api request %s: %s", e.URL, e.Detail)
}
