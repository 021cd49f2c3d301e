// Package config assembles the action's configuration.
//
// Values come from two places, in increasing precedence: an optional Lua
// file (default .slv-action.lua in the workspace) and the step inputs
// supplied by the CI platform.
//
// The Lua file runs in a sandboxed gopher-lua VM with the host platform
// injected as a read-only "platform" table, so it can pick values per
// runner:
//
//	slv = {
//	  version = platform.is_windows and "1.4.0" or "latest",
//	  vault   = ".slv/ci.slv.yaml",
//	  prefix  = "APP_",
//	}
//
// The decryption key is never accepted from the file. It is read from the
// env-secret-key input and sealed in a memguard enclave straight away.
package config
