package models_test

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"ghdeploy/internal/models"
)

func TestClassifyError(t *testing.T) {
	_, pathErr := os.ReadFile("/no/such/file")

	cases := []struct {
		name string
		err  error
		want models.ErrorType
	}{
		{"root refused", models.ErrRootRefused, models.ErrAuthPolicy},
		{"root refused wrapped", fmt.Errorf("gate: %w", models.ErrRootRefused), models.ErrAuthPolicy},
		{"config", &models.ConfigError{Err: fmt.Errorf("'repo' is required")}, models.ErrConfig},
		{"no match", &models.NoMatchError{Repo: "o/w", Artifact: "widget"}, models.ErrNoMatch},
		{"entry not found", &models.EntryNotFoundError{Path: "bin/app"}, models.ErrEntryNotFound},
		{"api", &models.APIError{Status: 502, URL: "u"}, models.ErrAPI},
		{"privileged op", &models.PrivilegedOpError{Op: "priming escalation", Err: fmt.Errorf("sudo failed")}, models.ErrPrivilegedOp},
		{"io", fmt.Errorf("saving raw archive: %w", pathErr), models.ErrIO},
		{"unknown", fmt.Errorf("boom"), models.ErrInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := models.ClassifyError(tc.err); got != tc.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestNoMatchErrorMessage(t *testing.T) {
	err := &models.NoMatchError{Repo: "octo/widget", Artifact: "widget", Branch: "main"}
	msg := err.Error()
	for _, part := range []string{"widget", "octo/widget", "main"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error message should mention %q, got %q", part, msg)
		}
	}

	noBranch := &models.NoMatchError{Repo: "octo/widget", Artifact: "widget"}
	if strings.Contains(noBranch.Error(), "branch") {
		t.Errorf("branchless filter should not mention a branch: %q", noBranch.Error())
	}
}
