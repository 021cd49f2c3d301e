// Package binary installs the slv command line tool from a release archive.
//
// # Install Flow
//
// An install resolves the release asset for the current platform, downloads
// it into the runner's temp directory, optionally verifies it and unpacks it
// into the tool cache. The unpacked directory is then put on PATH and the
// tool is asked for its version to confirm the install took.
//
// # Verification
//
// Verification runs only for what the release and the inputs provide:
//   - SHA256: when the release carries a checksums.txt asset
//   - PGP: when a verify-key input is set; a detached .sig or .asc asset is required
//   - minisign: when a minisign-key input is set; a .minisig asset is required
//
// A configured key without a matching signature asset fails the install.
//
// # Tool Cache
//
// Unpacked versions live under <cache>/slv/<version>/<arch>. A
// "<arch>.complete" marker next to the directory records a finished
// extraction so later runs on the same runner can reuse it. The cache root
// is RUNNER_TOOL_CACHE, or ~/.cache/slv-action outside of a hosted runner.
package binary
