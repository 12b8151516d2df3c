package system

import (
	"context"
	"fmt"
	"log/slog"

	sdbus "github.com/coreos/go-systemd/v22/dbus"
)

// DBusRunner controls services directly over the systemd D-Bus API instead
// of shelling out through sudo. Useful when the process itself is privileged
// (allow_root deployments). File copies still go through sudo, since target
// paths are ordinary filesystem writes.
type DBusRunner struct {
	sudo SudoRunner
	conn *sdbus.Conn
}

// NewDBusRunner creates a D-Bus backed runner. The connection is opened by
// Prime.
func NewDBusRunner() *DBusRunner {
	return &DBusRunner{}
}

// Prime connects to the systemd bus and refreshes the sudo credential cache
// for the copy phase.
func (r *DBusRunner) Prime(ctx context.Context) error {
	conn, err := sdbus.NewWithContext(ctx)
	if err != nil {
		return fmt.Errorf("connecting to systemd: %w", err)
	}
	r.conn = conn

	return r.sudo.Prime(ctx)
}

// Copy copies src to dst with elevated rights.
func (r *DBusRunner) Copy(ctx context.Context, src, dst string) error {
	return r.sudo.Copy(ctx, src, dst)
}

// Stop stops a unit and waits for the queued job to finish.
func (r *DBusRunner) Stop(ctx context.Context, name string) error {
	return r.await(name, func(ch chan<- string) (int, error) {
		return r.conn.StopUnitContext(ctx, name, "replace", ch)
	})
}

// Start starts a unit and waits for the queued job to finish.
func (r *DBusRunner) Start(ctx context.Context, name string) error {
	return r.await(name, func(ch chan<- string) (int, error) {
		return r.conn.StartUnitContext(ctx, name, "replace", ch)
	})
}

// Status logs the unit's active and sub state.
func (r *DBusRunner) Status(ctx context.Context, name string) error {
	props, err := r.conn.GetUnitPropertiesContext(ctx, name)
	if err != nil {
		return fmt.Errorf("querying %s: %w", name, err)
	}

	slog.Info("service status",
		"service", name,
		"active_state", props["ActiveState"],
		"sub_state", props["SubState"])
	return nil
}

// Close drops the bus connection.
func (r *DBusRunner) Close() error {
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
	return nil
}

func (r *DBusRunner) await(name string, queue func(chan<- string) (int, error)) error {
	if r.conn == nil {
		return fmt.Errorf("systemd connection not primed")
	}

	done := make(chan string, 1)
	if _, err := queue(done); err != nil {
		return fmt.Errorf("queueing job for %s: %w", name, err)
	}

	if result := <-done; result != "done" {
		return fmt.Errorf("job for %s finished with result %q", name, result)
	}
	return nil
}
