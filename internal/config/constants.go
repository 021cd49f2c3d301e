package config

import "time"

// Step input names.
const (
	InputGitHubToken  = "github-token"
	InputVersion      = "version"
	InputVault        = "vault"
	InputEnvSecretKey = "env-secret-key"
	InputPrefix       = "prefix"
	InputConfig       = "config"
	InputVerifyKey    = "verify-key"
	InputMinisignKey  = "minisign-key"
	InputDebug        = "debug"
)

// DefaultVersion is used when no version input is supplied.
const DefaultVersion = "latest"

// DefaultConfigFile is looked up in the workspace when the config input is
// empty.
const DefaultConfigFile = ".slv-action.lua"

// maxConfigSize bounds the Lua file we are willing to evaluate.
const maxConfigSize = 1 << 20

// DefaultParseTimeout applies when the caller's context has no deadline.
const DefaultParseTimeout = 5 * time.Second

// Lua schema names.
const (
	luaGlobalSLV    = "slv"
	luaFieldVersion = "version"
	luaFieldVault   = "vault"
	luaFieldPrefix  = "prefix"
	luaFieldSecret  = "env_secret_key"
)
