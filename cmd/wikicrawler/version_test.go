package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests the version fallbacks.
func TestGetVersion(t *testing.T) {
	t.Parallel()

	if v := getVersion(); v == "" {
		t.Error("expected non-empty version")
	}
	if c := getCommit(); c == "" {
		t.Error("expected non-empty commit")
	}
	if d := getDate(); d == "" {
		t.Error("expected non-empty date")
	}
	if c := getCommit(); len(c) > 7 && c != "unknown" {
		t.Errorf("expected short commit hash, got %q", c)
	}
}

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"wikicrawler version", "commit:", "built:"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}
