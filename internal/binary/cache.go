package binary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	// ToolName is the directory name used inside the tool cache.
	ToolName = "slv"

	fallbackCacheDir = "~/.cache/slv-action"
	completeSuffix   = ".complete"
)

// CacheRoot returns the tool cache root: RUNNER_TOOL_CACHE when set,
// otherwise a directory under the user's home.
func CacheRoot(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if dir := strings.TrimSpace(getenv("RUNNER_TOOL_CACHE")); dir != "" {
		return dir, nil
	}
	dir, err := homedir.Expand(fallbackCacheDir)
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	return dir, nil
}

// TempRoot returns where archives are downloaded: RUNNER_TEMP when set,
// otherwise the system temp directory.
func TempRoot(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if dir := strings.TrimSpace(getenv("RUNNER_TEMP")); dir != "" {
		return dir
	}
	return os.TempDir()
}

// ToolDir returns the cache directory for one version and architecture.
func ToolDir(root, version, arch string) string {
	return filepath.Join(root, ToolName, version, arch)
}

// isCached reports whether dir holds a completed extraction.
func isCached(dir string) bool {
	_, ok := readMarker(dir)
	return ok
}

// readMarker returns the checks recorded for a completed extraction, one
// per line (see Verifier.markerEntry). ok is false when dir is not complete.
func readMarker(dir string) (entries []string, ok bool) {
	data, err := os.ReadFile(dir + completeSuffix)
	if err != nil {
		return nil, false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries, true
}

// markComplete records dir as fully extracted and verified by entries.
func markComplete(dir string, entries []string) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(dir+completeSuffix, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("mark cache complete: %w", err)
	}
	return nil
}

func clearMarker(dir string) error {
	if err := os.Remove(dir + completeSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear cache marker: %w", err)
	}
	return nil
}

// binaryName is the executable file name on goos.
func binaryName(goos string) string {
	if goos == "windows" {
		return ToolName + ".exe"
	}
	return ToolName
}

// locateBinary returns the directory under root that holds the executable.
// Archives that nest the binary in a folder are handled; root is returned
// when nothing is found.
func locateBinary(root, name string) (string, bool) {
	if fileExists(filepath.Join(root, name)) {
		return root, true
	}
	var found string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = filepath.Dir(path)
			return filepath.SkipAll
		}
		return nil
	})
	if found == "" {
		return root, false
	}
	return found, true
}
