package slv

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("cannot create stub binary: %v", err)
	}
	return path
}

func TestOSExecutor_CapturesOutput(t *testing.T) {
	stub := writeStub(t, "echo out-$1\necho err >&2\n")
	var echo bytes.Buffer
	e := &OSExecutor{Echo: &echo}

	out, err := e.Run(context.Background(), stub, []string{"a"}, ExecOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Stdout != "out-a\n" || out.Stderr != "err\n" || out.ExitCode != 0 {
		t.Errorf("unexpected output: %+v", out)
	}
	if !strings.Contains(echo.String(), "[command]") || !strings.Contains(echo.String(), "out-a") {
		t.Errorf("expected echoed command and output, got %q", echo.String())
	}
}

func TestOSExecutor_Silent(t *testing.T) {
	stub := writeStub(t, "echo hidden\n")
	var echo bytes.Buffer
	e := &OSExecutor{Echo: &echo}

	if _, err := e.Run(context.Background(), stub, nil, ExecOptions{Silent: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if echo.Len() != 0 {
		t.Errorf("silent run echoed %q", echo.String())
	}
}

func TestOSExecutor_EnvOverride(t *testing.T) {
	stub := writeStub(t, "printf '%s' \"$SLV_ENV_SECRET_KEY\"\n")
	t.Setenv(SecretKeyEnv, "from-parent")

	e := &OSExecutor{}
	out, err := e.Run(context.Background(), stub, nil, ExecOptions{
		Env:    map[string]string{SecretKeyEnv: "scoped"},
		Silent: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Stdout != "scoped" {
		t.Errorf("stdout = %q, want scoped", out.Stdout)
	}
	if os.Getenv(SecretKeyEnv) != "from-parent" {
		t.Error("parent environment must not change")
	}
}

func TestOSExecutor_ExitCode(t *testing.T) {
	stub := writeStub(t, "echo boom >&2\nexit 3\n")
	e := &OSExecutor{}

	out, err := e.Run(context.Background(), stub, nil, ExecOptions{Silent: true})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 || out.ExitCode != 3 {
		t.Errorf("exit code = %d/%d, want 3", exitErr.ExitCode, out.ExitCode)
	}

	out, err = e.Run(context.Background(), stub, nil, ExecOptions{Silent: true, IgnoreReturnCode: true})
	if err != nil {
		t.Fatalf("IgnoreReturnCode should suppress the error, got %v", err)
	}
	if out.ExitCode != 3 || out.Stderr != "boom\n" {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestOSExecutor_MissingBinary(t *testing.T) {
	e := &OSExecutor{}
	_, err := e.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, ExecOptions{Silent: true, IgnoreReturnCode: true})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv([]string{"A=1"}, map[string]string{"C": "3", "B": "2"})
	want := []string{"A=1", "B=2", "C=3"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("mergeEnv() = %v, want %v", got, want)
	}
}

func TestRedactSensitiveInfo(t *testing.T) {
	msg := redactSensitiveInfo("key SLV_ESK_abc123 at /Users/bob/x and /home/carol/y, token tkn", "tkn")
	for _, leaked := range []string{"abc123", "bob", "carol", "tkn"} {
		if strings.Contains(msg, leaked) {
			t.Errorf("%q leaked in %q", leaked, msg)
		}
	}

	long := redactSensitiveInfo(strings.Repeat("x", 600))
	if !strings.HasSuffix(long, "...") || len(long) != 503 {
		t.Errorf("long message not truncated: len=%d", len(long))
	}
}
