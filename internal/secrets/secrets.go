// Package secrets decrypts a vault with slv and publishes its entries to
// the environment of later workflow steps.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/savesecrets/slv-action/internal/actions"
	"github.com/savesecrets/slv-action/internal/config"
)

var (
	// ErrMissingSecretKey is returned when a vault is set without a key.
	ErrMissingSecretKey = errors.New("SLV environment secret key is required")
	// ErrMalformedOutput is returned when the export output is not a flat
	// JSON object of scalar values.
	ErrMalformedOutput = errors.New("malformed secret output")
)

// VaultExporter runs the vault export and returns its JSON output.
type VaultExporter interface {
	ExportVault(ctx context.Context, vault string, key *memguard.Enclave) ([]byte, error)
}

// Options selects what to inject.
type Options struct {
	// Vault is the vault file. Empty makes Inject a no-op.
	Vault     string
	SecretKey *memguard.Enclave
	// Prefix is prepended to every exported name.
	Prefix string
}

// Result lists what was exported, in order.
type Result struct {
	Names []string
}

// Exporter injects vault secrets into the environment.
type Exporter struct {
	vault  VaultExporter
	env    actions.Environment
	logger config.Logger
}

// NewExporter creates an Exporter that publishes through env.
func NewExporter(vault VaultExporter, env actions.Environment, logger config.Logger) *Exporter {
	return &Exporter{vault: vault, env: env, logger: config.OrNop(logger)}
}

// Inject decrypts opts.Vault and exports every secret as Prefix+name. Each
// value is masked before it is exported. On error, variables exported
// before the failure stay exported.
func (e *Exporter) Inject(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	if opts.Vault == "" {
		return res, nil
	}
	if opts.SecretKey == nil {
		return res, ErrMissingSecretKey
	}

	out, err := e.vault.ExportVault(ctx, opts.Vault, opts.SecretKey)
	if err != nil {
		return res, err
	}

	secrets, err := Parse(out)
	if err != nil {
		return res, err
	}

	for _, s := range secrets {
		name := opts.Prefix + s.Name
		e.env.Mask(s.Value)
		if err := e.env.ExportVariable(name, s.Value); err != nil {
			return res, fmt.Errorf("export %s: %w", name, err)
		}
		res.Names = append(res.Names, name)
	}

	e.logger.Debug("injected secrets", "vault", opts.Vault, "count", len(res.Names))
	return res, nil
}
