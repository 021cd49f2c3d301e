// Package release finds slv releases and the archive to install for the
// current platform.
package release

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrReleaseNotFound is returned when the feed has no release for a tag,
	// or no release at all.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrNoAssets is returned when a release carries no assets.
	ErrNoAssets = errors.New("no assets found in the release")
	// ErrNoMatchingAsset is returned when no asset fits the platform.
	ErrNoMatchingAsset = errors.New("no assets found for the current platform")
)

// Release is the subset of the release payload the action uses.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// FindAsset returns the asset with exactly the given name.
func (r *Release) FindAsset(name string) (Asset, bool) {
	if r == nil {
		return Asset{}, false
	}
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// Feed is the release source.
type Feed interface {
	LatestRelease(ctx context.Context) (*Release, error)
	ReleaseByTag(ctx context.Context, tag string) (*Release, error)
}

// RateLimitError indicates the release API refused the request because the
// caller ran out of quota. Supplying a token raises the limit.
type RateLimitError struct {
	StatusCode int
	Status     string
	Remaining  *int
}

func (e *RateLimitError) Error() string {
	remainingText := "unknown"
	if e.Remaining != nil {
		remainingText = fmt.Sprintf("%d", *e.Remaining)
	}
	return fmt.Sprintf("github api rate limit exceeded (%s, remaining=%s)", e.Status, remainingText)
}

// IsRateLimitError reports whether err represents a rate-limit condition.
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
