package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/savesecrets/slv-action/internal/platform"
)

// InputSource supplies step inputs by name.
type InputSource interface {
	Input(name string) string
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Workspace is where the default config file is looked up.
	Workspace string
	// Detector provides the platform table for the Lua file.
	Detector platform.Detector
	// Logger receives warnings about the config file.
	Logger Logger
}

// Load resolves the configuration from inputs and the optional Lua file.
func Load(ctx context.Context, inputs InputSource, opts LoadOptions) (*Config, error) {
	if inputs == nil {
		return nil, fmt.Errorf("input source is required")
	}
	logger := OrNop(opts.Logger)

	file, source, err := loadFile(ctx, inputs.Input(InputConfig), opts, logger)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GitHubToken: inputs.Input(InputGitHubToken),
		Version:     firstNonEmpty(inputs.Input(InputVersion), file.Version, DefaultVersion),
		Vault:       firstNonEmpty(inputs.Input(InputVault), file.Vault),
		Prefix:      firstNonEmpty(inputs.Input(InputPrefix), file.Prefix),
		VerifyKey:   inputs.Input(InputVerifyKey),
		MinisignKey: inputs.Input(InputMinisignKey),
		Debug:       parseBool(inputs.Input(InputDebug)),
		Source:      source,
	}

	if key := inputs.Input(InputEnvSecretKey); key != "" {
		// NewEnclave wipes the buffer it is given.
		cfg.SecretKey = memguard.NewEnclave([]byte(key))
	}

	return cfg, nil
}

// loadFile evaluates the explicit config file, or the default one if it
// exists. A missing explicit file is an error; a missing default is not.
func loadFile(ctx context.Context, explicit string, opts LoadOptions, logger Logger) (*FileConfig, string, error) {
	path := strings.TrimSpace(explicit)
	required := path != ""
	if !required {
		path = filepath.Join(opts.Workspace, DefaultConfigFile)
	} else if !filepath.IsAbs(path) && opts.Workspace != "" {
		path = filepath.Join(opts.Workspace, path)
	}

	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return &FileConfig{}, "", nil
		}
		return nil, "", fmt.Errorf("read config file %s: %w", path, err)
	}

	fc, err := NewParser(opts.Detector, logger).ParseFile(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("parse config file %s: %w", path, err)
	}
	logger.Debug("loaded config file", "file", path)
	return fc, path, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
