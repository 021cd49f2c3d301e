package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/savesecrets/slv-action/internal/config"
	"github.com/savesecrets/slv-action/internal/platform"
	"github.com/savesecrets/slv-action/internal/state"
	"github.com/savesecrets/slv-action/internal/version"
)

const (
	// AssetIdentifier must appear in the name of an installable asset.
	AssetIdentifier = "slv"
	// ArchiveMarker is the suffix of an installable asset name.
	ArchiveMarker = ".zip"
)

// Selection is the asset chosen for one version on one platform.
type Selection struct {
	Version string
	Release *Release
	Asset   Asset
}

// Resolver turns version specs into releases and platform assets.
type Resolver struct {
	feed   Feed
	key    platform.Key
	run    *state.Run
	logger config.Logger
}

// NewResolver creates a resolver for the platform key. run caches the
// latest version and may be nil.
func NewResolver(feed Feed, key platform.Key, run *state.Run, logger config.Logger) *Resolver {
	return &Resolver{
		feed:   feed,
		key:    key,
		run:    run,
		logger: config.OrNop(logger),
	}
}

// ResolveLatest returns the normalized version of the newest release.
func (r *Resolver) ResolveLatest(ctx context.Context) (string, error) {
	if v, ok := r.run.LatestVersion(); ok {
		return v, nil
	}

	r.logger.Info("Fetching latest release version from GitHub...")
	rel, err := r.feed.LatestRelease(ctx)
	if err != nil {
		return "", fmt.Errorf("retrieve latest release version: %w", err)
	}
	latest := version.Normalize(rel.TagName)
	if latest == "" {
		return "", fmt.Errorf("retrieve latest release version: %w", ErrReleaseNotFound)
	}

	r.run.SetLatestVersion(latest)
	return latest, nil
}

// ResolveAsset finds the asset for v on the resolver's platform. The first
// matching asset in feed order wins; additional matches are logged.
func (r *Resolver) ResolveAsset(ctx context.Context, v string) (*Selection, error) {
	v = version.Normalize(v)
	rel, err := r.feed.ReleaseByTag(ctx, version.Tag(v))
	if err != nil {
		return nil, fmt.Errorf("retrieve download URL for version %s: %w", v, err)
	}
	if len(rel.Assets) == 0 {
		return nil, fmt.Errorf("%w version %s", ErrNoAssets, v)
	}

	matches := MatchAssets(rel.Assets, r.key)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w (%s) in the release version %s", ErrNoMatchingAsset, r.key, v)
	}
	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, a := range matches {
			names[i] = a.Name
		}
		r.logger.Warn("multiple assets match the platform, using the first",
			"platform", r.key.String(), "version", v, "assets", strings.Join(names, ","))
	}

	return &Selection{Version: v, Release: rel, Asset: matches[0]}, nil
}

// MatchAssets returns, in order, the assets whose name contains the tool
// identifier, the OS name and the architecture name and ends with the
// archive marker. Detached signatures such as "slv_linux_amd64.zip.minisig"
// never match.
func MatchAssets(assets []Asset, key platform.Key) []Asset {
	var matches []Asset
	for _, a := range assets {
		if strings.Contains(a.Name, AssetIdentifier) &&
			strings.Contains(a.Name, key.OS) &&
			strings.Contains(a.Name, key.Arch) &&
			strings.HasSuffix(a.Name, ArchiveMarker) {
			matches = append(matches, a)
		}
	}
	return matches
}
