package cli

import (
	"strings"
	"testing"
)

func TestCommandRegistration(t *testing.T) {
	want := []string{
		"init",
		"add",
		"list",
		"focus",
		"timeline",
		"board",
		"matrix",
		"complete",
		"status",
		"move",
		"delete",
		"categories",
		"stats",
		"mcp",
		"completion",
		"version",
	}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("expected %q command to be registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() { SetVersionInfo(origVersion, origCommit, origDate) }()

	SetVersionInfo("1.2.3", "abc1234", "2025-06-15")

	output := captureStdout(t, func() {
		versionCmd.Run(versionCmd, nil)
	})

	if !strings.Contains(output, "quadro 1.2.3") {
		t.Errorf("version output should contain version, got: %s", output)
	}
	if !strings.Contains(output, "commit: abc1234") {
		t.Errorf("version output should contain commit, got: %s", output)
	}
	if !strings.Contains(output, "built:  2025-06-15") {
		t.Errorf("version output should contain build date, got: %s", output)
	}
}
