package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	stateDir   string
}

// setupCLITestEnv isolates HOME and writes a config pointing state at a temp
// directory. An empty install leaves install_root unset.
func setupCLITestEnv(t *testing.T, install string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("MAPASSIST_RELEASE_ROOT", "")
	t.Setenv("MAPASSIST_INSTALL_ROOT", "")

	stateDir := filepath.Join(base, "state")
	configPath := filepath.Join(base, "mapassist.toml")
	content := fmt.Sprintf("[paths]\nstate_dir = %q\ninstall_root = %q\n\n[watch]\ndebounce_ms = 50\n", stateDir, install)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, stateDir: stateDir}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exit error with code %#x, got %v", want, err)
	}
	if exitErr.code != want {
		t.Fatalf("exit code = %#x, want %#x", exitErr.code, want)
	}
}
