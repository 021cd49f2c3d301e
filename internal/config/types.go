package config

import (
	"strconv"
	"strings"

	"github.com/awnumar/memguard"
)

// Config is the resolved configuration for one run.
type Config struct {
	// GitHubToken authenticates release feed requests. Optional.
	GitHubToken string
	// Version is the requested version spec ("latest", "1.2.3", "v1.2.3").
	Version string
	// Vault is the path to the encrypted vault file. Empty disables
	// secret injection.
	Vault string
	// SecretKey holds the vault decryption key. Nil when not supplied.
	SecretKey *memguard.Enclave
	// Prefix is prepended to every exported secret name.
	Prefix string
	// VerifyKey is an armored PGP public key used to check release
	// signatures. Optional.
	VerifyKey string
	// MinisignKey is a minisign public key used to check release
	// signatures. Optional.
	MinisignKey string
	// Debug enables verbose output.
	Debug bool
	// Source names the Lua file that contributed values, if any.
	Source string
}

// InjectSecrets reports whether a vault was configured.
func (c *Config) InjectSecrets() bool {
	return c != nil && strings.TrimSpace(c.Vault) != ""
}

// FileConfig is what a Lua config file may set.
type FileConfig struct {
	Version string
	Vault   string
	Prefix  string
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
