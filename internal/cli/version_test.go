package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd_Output(t *testing.T) {
	app := New()
	app.SetVersion("1.2.3", "abc1234", "2026-01-15T10:30:00Z")

	cmd := NewVersionCmd(app)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"harness version 1.2.3",
		"commit: abc1234",
		"built: 2026-01-15T10:30:00Z",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestVersionCmd_DefaultValues(t *testing.T) {
	app := New()

	cmd := NewVersionCmd(app)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "harness version dev") {
		t.Errorf("output should contain the default version, got %q", output)
	}
	if n := strings.Count(output, "unknown"); n != 2 {
		t.Errorf("expected 2 occurrences of 'unknown', got %d", n)
	}
}

func TestVersionCmd_ViaRoot(t *testing.T) {
	app := New()
	app.SetVersion("0.4.0", "", "")

	var stdout, stderr bytes.Buffer
	app.SetOutput(&stdout, &stderr)
	app.SetArgs([]string{"version"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "harness version 0.4.0\n") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}
