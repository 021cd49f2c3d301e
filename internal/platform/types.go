// Package platform detects the runner's operating system and architecture
// and maps them onto the naming used by slv release assets.
//
// Raw identifiers come from the Go runtime and, where available, from
// gopsutil's kernel architecture report. They are translated through small
// static tables; anything not in a table passes through unchanged.
package platform

import "context"

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info contains platform detection information.
type Info struct {
	OS       string // release-feed OS name, e.g. "linux", "windows"
	Arch     string // release-feed arch name, e.g. "amd64", "386"
	OSRaw    string // identifier as reported by the host
	ArchRaw  string // identifier as reported by the host, e.g. "x86_64"
	Platform string // distro ID (Linux only)
	Family   string // canonical distro family (Linux only)
	Version  string // distro version (Linux only)
}

// Key returns the release-feed key for this platform.
func (i *Info) Key() Key {
	return Key{OS: i.OS, Arch: i.Arch}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// Key is the (os, arch) pair in release-feed vocabulary. It is computed once
// per run and never modified.
type Key struct {
	OS   string
	Arch string
}

// NewKey maps raw host identifiers into a Key.
func NewKey(rawOS, rawArch string) Key {
	return Key{OS: MapOS(rawOS), Arch: MapArch(rawArch)}
}

// String renders the key as "os-arch".
func (k Key) String() string {
	return k.OS + "-" + k.Arch
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
