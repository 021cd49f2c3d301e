package slv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// ExecOptions controls a single command invocation.
type ExecOptions struct {
	// Env holds variables added to the inherited environment of this
	// invocation only.
	Env map[string]string
	// Silent suppresses echoing the command line and its output.
	Silent bool
	// IgnoreReturnCode makes a non-zero exit a normal result instead of an
	// error. The exit code is still reported in ExecOutput.
	IgnoreReturnCode bool
}

// ExecOutput is what a finished command produced.
type ExecOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs external commands.
type Executor interface {
	Run(ctx context.Context, name string, args []string, opts ExecOptions) (*ExecOutput, error)
}

// ExitError reports a command that exited non-zero.
type ExitError struct {
	Name     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
}

// OSExecutor runs commands with os/exec.
type OSExecutor struct {
	// Echo receives the command line and output of non-silent runs.
	// Defaults to os.Stdout.
	Echo io.Writer
}

// Run executes name with args and waits for it to finish.
func (e *OSExecutor) Run(ctx context.Context, name string, args []string, opts ExecOptions) (*ExecOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(opts.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), opts.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	echo := e.echo()
	if !opts.Silent {
		fmt.Fprintf(echo, "[command]%s %s\n", name, strings.Join(args, " "))
		cmd.Stdout = io.MultiWriter(&stdout, echo)
		cmd.Stderr = io.MultiWriter(&stderr, echo)
	}

	err := cmd.Run()
	out := &ExecOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("run %s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		if opts.IgnoreReturnCode {
			return out, nil
		}
		return out, &ExitError{Name: name, ExitCode: out.ExitCode, Stderr: out.Stderr}
	}

	// Not started at all, e.g. the binary is not on PATH.
	return out, fmt.Errorf("run %s: %w", name, err)
}

func (e *OSExecutor) echo() io.Writer {
	if e == nil || e.Echo == nil {
		return os.Stdout
	}
	return e.Echo
}

// mergeEnv appends overrides to base. exec.Cmd keeps the last value for a
// duplicated key, so overrides win.
func mergeEnv(base []string, overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(keys))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
