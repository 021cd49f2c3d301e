// Package version normalizes the version strings used by the action.
package version

import "strings"

// Latest is the version spec that asks for the newest published release.
const Latest = "latest"

// Normalize strips surrounding whitespace and every leading "v".
// It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(spec string) string {
	return strings.TrimLeft(strings.TrimSpace(spec), "v")
}

// IsLatest reports whether spec requests the latest release. A blank spec
// counts as latest.
func IsLatest(spec string) bool {
	trimmed := strings.TrimSpace(spec)
	return trimmed == "" || trimmed == Latest
}

// Tag returns the release tag for a normalized version.
func Tag(v string) string {
	return "v" + Normalize(v)
}

// Equal reports whether two versions are identical after normalization.
// An empty version never equals anything.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}
