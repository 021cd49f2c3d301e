package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// Owner and Repo identify the repository slv releases are published to.
	Owner = "savesecrets"
	Repo  = "slv-release"

	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"

	// UserAgent is sent with every request.
	UserAgent = "slv-action"

	defaultTimeout = 30 * time.Second
)

// FeedConfig configures a GitHubFeed. Zero values select the defaults.
type FeedConfig struct {
	// BaseURL is the REST API root. Defaults to DefaultAPIURL; tests point it
	// at a local server.
	BaseURL string
	Owner   string
	Repo    string
	// Token authenticates requests for a higher rate limit. Optional.
	Token      string
	HTTPClient *http.Client
}

// GitHubFeed reads releases from the GitHub REST API.
type GitHubFeed struct {
	baseURL string
	owner   string
	repo    string
	token   string
	client  *http.Client
}

// NewGitHubFeed creates a feed for cfg.
func NewGitHubFeed(cfg FeedConfig) *GitHubFeed {
	f := &GitHubFeed{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		token:   strings.TrimSpace(cfg.Token),
		client:  cfg.HTTPClient,
	}
	if f.baseURL == "" {
		f.baseURL = DefaultAPIURL
	}
	if f.owner == "" {
		f.owner = Owner
	}
	if f.repo == "" {
		f.repo = Repo
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: defaultTimeout}
	}
	return f
}

// LatestRelease returns the most recent non-prerelease release.
func (f *GitHubFeed) LatestRelease(ctx context.Context) (*Release, error) {
	return f.get(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/latest", f.baseURL, f.owner, f.repo))
}

// ReleaseByTag returns the release tagged tag.
func (f *GitHubFeed) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	return f.get(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", f.baseURL, f.owner, f.repo, url.PathEscape(tag)))
}

func (f *GitHubFeed) get(ctx context.Context, endpoint string) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrReleaseNotFound
	default:
		if rateLimitErr := rateLimitErrorFromResponse(resp); rateLimitErr != nil {
			return nil, rateLimitErr
		}
		return nil, fmt.Errorf("fetch release: unexpected status %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &rel, nil
}

func rateLimitErrorFromResponse(resp *http.Response) *RateLimitError {
	if resp == nil {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// Unauthenticated exhaustion is a 403 with the remaining header at zero.
	if resp.StatusCode == http.StatusForbidden {
		remaining, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining")))
		if err != nil {
			return nil
		}
		if remaining == 0 {
			return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status, Remaining: &remaining}
		}
	}
	return nil
}
