package testutil_test

import (
	"os"
	"testing"

	"github.com/savesecrets/slv-action/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	vars := map[string]string{
		"GITHUB_WORKSPACE":  env.Workspace,
		"RUNNER_TOOL_CACHE": env.ToolCache,
		"RUNNER_TEMP":       env.Temp,
		"GITHUB_ENV":        env.EnvFile,
		"GITHUB_PATH":       env.PathFile,
	}
	for name, want := range vars {
		if got := os.Getenv(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	for _, dir := range []string{env.Workspace, env.ToolCache, env.Temp} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", dir)
		}
	}
	if got := testutil.ReadFile(t, env.EnvFile); got != "" {
		t.Errorf("env file not empty: %q", got)
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	var first string
	t.Run("first", func(t *testing.T) {
		first = testutil.SetupTestEnv(t).Root
	})
	t.Run("second", func(t *testing.T) {
		if root := testutil.SetupTestEnv(t).Root; root == first {
			t.Errorf("expected a fresh root, got %s twice", root)
		}
	})
}
