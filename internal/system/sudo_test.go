package system_test

import (
	"slices"
	"testing"

	"ghdeploy/internal/system"
)

func TestCopyArgs(t *testing.T) {
	got := system.CopyArgs("/tmp/ghdeploy-123", "/opt/app/app")
	want := []string{"sudo", "cp", "/tmp/ghdeploy-123", "/opt/app/app"}
	if !slices.Equal(got, want) {
		t.Errorf("CopyArgs = %v, want %v", got, want)
	}
}

func TestServiceArgs(t *testing.T) {
	got := system.ServiceArgs("stop", "app.service")
	want := []string{"sudo", "systemctl", "stop", "app.service"}
	if !slices.Equal(got, want) {
		t.Errorf("ServiceArgs = %v, want %v", got, want)
	}
}

func TestStatusArgs(t *testing.T) {
	// PAGER is cleared so systemctl status cannot block on a pager.
	got := system.StatusArgs("app.service")
	want := []string{"sudo", "env", "PAGER=", "systemctl", "status", "app.service"}
	if !slices.Equal(got, want) {
		t.Errorf("StatusArgs = %v, want %v", got, want)
	}
}
