package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// hostInfo is swapped in tests.
var hostInfo = host.InfoWithContext

// RealDetector implements Detector using the Go runtime and gopsutil.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect reports the host platform.
//
// The OS comes from runtime.GOOS. The architecture prefers the kernel
// architecture reported by gopsutil (e.g. "x86_64") and falls back to
// runtime.GOARCH when host inspection fails. Distribution details are
// best-effort and only filled in on Linux.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OSRaw:   runtime.GOOS,
		ArchRaw: runtime.GOARCH,
	}

	stat, err := hostInfo(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		stat = nil
	}

	if stat != nil {
		if arch := strings.TrimSpace(stat.KernelArch); arch != "" {
			info.ArchRaw = arch
		}
		if runtime.GOOS == "linux" && stat.Platform != "" {
			info.Platform = normalizePlatform(stat.Platform)
			info.Family = mapFamily(stat.PlatformFamily)
			info.Version = normalizePlatform(stat.PlatformVersion)
		}
	}

	info.OS = MapOS(info.OSRaw)
	info.Arch = MapArch(info.ArchRaw)
	return info, nil
}

// StaticDetector returns a fixed Info. It is used when the caller already
// knows the platform, e.g. from configuration overrides or in tests.
type StaticDetector struct {
	Info *Info
}

// Detect returns the configured Info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if s.Info == nil {
		return nil, fmt.Errorf("static detector has no platform info")
	}
	return s.Info, nil
}
