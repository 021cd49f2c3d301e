// Package actions is the boundary between the action and the CI platform
// hosting it.
//
// It provides the capabilities the rest of the code needs from the host:
// reading step inputs, informational logging, a fatal-failure signal that
// marks the run failed without stopping it, masking of sensitive values,
// exporting environment variables to later steps, and adding directories to
// the executable search path.
//
// GitHub implements these on top of GitHub Actions workflow commands and
// the GITHUB_ENV and GITHUB_PATH files. Recorder keeps everything in memory
// and is what tests use.
package actions
