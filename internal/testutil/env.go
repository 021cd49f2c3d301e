// Package testutil provides utilities for testing the action in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the paths of an isolated runner environment.
type Env struct {
	Root      string
	Workspace string
	ToolCache string
	Temp      string
	EnvFile   string
	PathFile  string
}

// SetupTestEnv points the runner variables at a fresh temp directory so
// tests never touch a real tool cache or the job's env and path files.
//
// Cleanup is handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:      tmpDir,
		Workspace: filepath.Join(tmpDir, "workspace"),
		ToolCache: filepath.Join(tmpDir, "toolcache"),
		Temp:      filepath.Join(tmpDir, "temp"),
		EnvFile:   filepath.Join(tmpDir, "github_env"),
		PathFile:  filepath.Join(tmpDir, "github_path"),
	}

	for _, dir := range []string{env.Workspace, env.ToolCache, env.Temp} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	for _, file := range []string{env.EnvFile, env.PathFile} {
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatalf("failed to create test file %s: %v", file, err)
		}
	}

	t.Setenv("GITHUB_WORKSPACE", env.Workspace)
	t.Setenv("RUNNER_TOOL_CACHE", env.ToolCache)
	t.Setenv("RUNNER_TEMP", env.Temp)
	t.Setenv("GITHUB_ENV", env.EnvFile)
	t.Setenv("GITHUB_PATH", env.PathFile)

	return env
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
