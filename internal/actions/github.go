package actions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// GitHub implements Runner using GitHub Actions workflow commands.
type GitHub struct {
	out    io.Writer
	getenv func(string) string
	setenv func(string, string) error
	debug  bool
	failed bool
}

// NewGitHub creates a runner writing workflow commands to out.
func NewGitHub(out io.Writer) *GitHub {
	if out == nil {
		out = os.Stdout
	}
	return &GitHub{
		out:    out,
		getenv: os.Getenv,
		setenv: os.Setenv,
		debug:  os.Getenv("RUNNER_DEBUG") == "1",
	}
}

// SetDebug forces debug output on or off regardless of RUNNER_DEBUG.
func (g *GitHub) SetDebug(enabled bool) {
	g.debug = enabled
}

// Input returns the trimmed value of a step input.
func (g *GitHub) Input(name string) string {
	return strings.TrimSpace(g.getenv(InputEnvName(name)))
}

// Debug writes a debug line. The runner only shows it with step debugging
// enabled; with SetDebug(true) it is printed as a plain line as well.
func (g *GitHub) Debug(msg string, keysAndValues ...interface{}) {
	line := formatMessage(msg, keysAndValues...)
	if g.debug {
		fmt.Fprintln(g.out, line)
		return
	}
	g.command("debug", "", line)
}

// Info writes an informational line.
func (g *GitHub) Info(msg string, keysAndValues ...interface{}) {
	fmt.Fprintln(g.out, formatMessage(msg, keysAndValues...))
}

// Warn writes a warning annotation.
func (g *GitHub) Warn(msg string, keysAndValues ...interface{}) {
	g.command("warning", "", formatMessage(msg, keysAndValues...))
}

// Error writes an error annotation without failing the run.
func (g *GitHub) Error(msg string, keysAndValues ...interface{}) {
	g.command("error", "", formatMessage(msg, keysAndValues...))
}

// Success writes a highlighted informational line.
func (g *GitHub) Success(msg string) {
	fmt.Fprintln(g.out, color.GreenString(msg))
}

// Fail reports err as an error annotation and marks the run failed.
func (g *GitHub) Fail(err error) {
	if err == nil {
		return
	}
	g.failed = true
	g.command("error", "", err.Error())
}

// Failed reports whether Fail was called.
func (g *GitHub) Failed() bool {
	return g.failed
}

// Mask registers value with the runner's log redaction.
func (g *GitHub) Mask(value string) {
	if value == "" {
		return
	}
	g.command("add-mask", "", value)
}

// ExportVariable sets name in this process and appends it to GITHUB_ENV so
// later steps see it. Without GITHUB_ENV it falls back to the set-env
// command.
func (g *GitHub) ExportVariable(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("export variable: empty name")
	}
	if err := g.setenv(name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}

	envFile := g.getenv("GITHUB_ENV")
	if envFile == "" {
		g.command("set-env", "name="+escapeProperty(name), value)
		return nil
	}

	entry, err := fileCommandEntry(name, value)
	if err != nil {
		return err
	}
	return appendFile(envFile, entry)
}

// AddPath prepends dir to PATH for this process and appends it to
// GITHUB_PATH for later steps.
func (g *GitHub) AddPath(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("add path: empty directory")
	}
	current := g.getenv("PATH")
	updated := dir
	if current != "" {
		updated = dir + string(os.PathListSeparator) + current
	}
	if err := g.setenv("PATH", updated); err != nil {
		return fmt.Errorf("update PATH: %w", err)
	}

	pathFile := g.getenv("GITHUB_PATH")
	if pathFile == "" {
		g.command("add-path", "", dir)
		return nil
	}
	return appendFile(pathFile, dir+"\n")
}

func (g *GitHub) command(name, properties, message string) {
	if properties != "" {
		fmt.Fprintf(g.out, "::%s %s::%s\n", name, properties, escapeData(message))
		return
	}
	fmt.Fprintf(g.out, "::%s::%s\n", name, escapeData(message))
}

// fileCommandEntry renders a name<<delimiter block for GITHUB_ENV.
func fileCommandEntry(name, value string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate delimiter: %w", err)
	}
	delimiter := "ghadelimiter_" + hex.EncodeToString(buf)
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return "", fmt.Errorf("export %s: value contains the delimiter", name)
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter), nil
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}
