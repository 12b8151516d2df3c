package system

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// SudoRunner performs every privileged operation through sudo, one
// subprocess per operation.
type SudoRunner struct{}

// NewSudoRunner creates a sudo-backed runner.
func NewSudoRunner() *SudoRunner {
	return &SudoRunner{}
}

// Prime refreshes the sudo credential cache, prompting for a password now
// rather than in the middle of the deploy.
func (r *SudoRunner) Prime(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("priming sudo credentials: %w", err)
	}
	return nil
}

// Copy copies src to dst with elevated rights.
func (r *SudoRunner) Copy(ctx context.Context, src, dst string) error {
	return runQuiet(ctx, CopyArgs(src, dst)...)
}

// Stop stops a systemd service.
func (r *SudoRunner) Stop(ctx context.Context, name string) error {
	return runQuiet(ctx, ServiceArgs("stop", name)...)
}

// Start starts a systemd service.
func (r *SudoRunner) Start(ctx context.Context, name string) error {
	return runQuiet(ctx, ServiceArgs("start", name)...)
}

// Status prints the service status to stdout. PAGER is cleared so systemctl
// never blocks on an interactive pager.
func (r *SudoRunner) Status(ctx context.Context, name string) error {
	argv := StatusArgs(name)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

// Close is a no-op; sudo holds no connection.
func (r *SudoRunner) Close() error { return nil }

// CopyArgs returns the argv for a privileged file copy.
func CopyArgs(src, dst string) []string {
	return []string{"sudo", "cp", src, dst}
}

// ServiceArgs returns the argv for a privileged service stop/start.
func ServiceArgs(verb, name string) []string {
	return []string{"sudo", "systemctl", verb, name}
}

// StatusArgs returns the argv for a non-interactive service status query.
func StatusArgs(name string) []string {
	return []string{"sudo", "env", "PAGER=", "systemctl", "status", name}
}

// runQuiet executes argv capturing stderr, surfacing it in the error.
func runQuiet(ctx context.Context, argv ...string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", strings.Join(argv, " "), err, msg)
		}
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}
