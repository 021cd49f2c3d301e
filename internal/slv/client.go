// Package slv wraps the slv command line tool: probing which version is on
// PATH and exporting the contents of a vault.
package slv

import (
	"context"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/savesecrets/slv-action/internal/config"
	"github.com/savesecrets/slv-action/internal/state"
)

const (
	// DefaultBinary is the executable name looked up on PATH.
	DefaultBinary = "slv"

	// SecretKeyEnv carries the vault decryption key to the export command.
	SecretKeyEnv = "SLV_ENV_SECRET_KEY"

	versionMarker = "slv version"
)

// Client invokes the slv binary.
type Client struct {
	bin    string
	exec   Executor
	run    *state.Run
	logger config.Logger
}

// NewClient creates a client that runs "slv" from PATH through executor.
// run caches the probed version for the rest of the run and may be nil.
func NewClient(executor Executor, run *state.Run, logger config.Logger) *Client {
	if executor == nil {
		executor = &OSExecutor{}
	}
	return &Client{
		bin:    DefaultBinary,
		exec:   executor,
		run:    run,
		logger: config.OrNop(logger),
	}
}

// InstalledVersion returns the version on PATH, using the run cache when a
// previous probe found one. Empty means not installed.
func (c *Client) InstalledVersion(ctx context.Context) string {
	if v, ok := c.run.InstalledVersion(); ok {
		return v
	}
	return c.ProbeVersion(ctx)
}

// ProbeVersion runs "slv --version" without consulting the cache and
// records the result. A missing binary, a failed run, output on stderr and
// output without a version line all yield "".
func (c *Client) ProbeVersion(ctx context.Context) string {
	out, err := c.exec.Run(ctx, c.bin, []string{"--version"}, ExecOptions{Silent: true})
	if err != nil {
		c.logger.Debug("version probe failed", "error", err)
		return ""
	}
	if strings.TrimSpace(out.Stderr) != "" {
		c.logger.Debug("version probe wrote to stderr", "stderr", out.Stderr)
		return ""
	}

	v := ParseVersionOutput(out.Stdout)
	c.run.SetInstalledVersion(v)
	return v
}

// ParseVersionOutput finds the line containing "slv version" (any case) and
// returns what follows its first colon, trimmed. When several lines match
// the last one wins.
func ParseVersionOutput(output string) string {
	var found string
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(strings.ToLower(line), versionMarker) {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) < 2 {
			found = ""
			continue
		}
		found = strings.TrimSpace(parts[1])
	}
	return found
}

// ExportVault decrypts vault and returns the raw JSON document printed by
// "slv vault export". The key is only placed in the environment of that
// one command.
func (c *Client) ExportVault(ctx context.Context, vault string, key *memguard.Enclave) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("decryption key is required")
	}
	buf, err := key.Open()
	if err != nil {
		return nil, fmt.Errorf("open secret key: %w", err)
	}
	defer buf.Destroy()
	secret := string(buf.Bytes())

	args := []string{"vault", "export", "-v", vault, "--format", "json"}
	out, err := c.exec.Run(ctx, c.bin, args, ExecOptions{
		Env:              map[string]string{SecretKeyEnv: secret},
		Silent:           true,
		IgnoreReturnCode: true,
	})
	if err != nil {
		return nil, newRedactedError(fmt.Errorf("%w: %w", ErrExportFailed, err), "", secret)
	}
	if out.ExitCode != 0 {
		return nil, newRedactedError(ErrExportFailed, out.Stderr, secret)
	}

	c.logger.Debug("exported vault", "vault", vault)
	return []byte(out.Stdout), nil
}
