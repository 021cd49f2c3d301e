package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/savesecrets/slv-action/internal/actions"
	"github.com/savesecrets/slv-action/internal/binary"
	"github.com/savesecrets/slv-action/internal/config"
	"github.com/savesecrets/slv-action/internal/platform"
	"github.com/savesecrets/slv-action/internal/release"
	"github.com/savesecrets/slv-action/internal/secrets"
	"github.com/savesecrets/slv-action/internal/setup"
	"github.com/savesecrets/slv-action/internal/slv"
	"github.com/savesecrets/slv-action/internal/state"
)

type step int

const (
	stepSetup step = 1 << iota
	stepInject
)

// deps are the host collaborators. Tests replace them.
type deps struct {
	newRunner  func(out io.Writer) actions.Runner
	getenv     func(string) string
	detector   platform.Detector
	executor   slv.Executor
	apiURL     string
	httpClient *http.Client
}

func defaultDeps() deps {
	return deps{
		newRunner: func(out io.Writer) actions.Runner { return actions.NewGitHub(out) },
		getenv:    os.Getenv,
		detector:  &platform.RealDetector{},
		executor:  &slv.OSExecutor{},
		apiURL:    release.DefaultAPIURL,
	}
}

// app is one action invocation.
type app struct {
	runner   actions.Runner
	deps     deps
	run      *state.Run
	cfg      *config.Config
	key      platform.Key
	client   *slv.Client
}

func newApp(d deps, out io.Writer) *app {
	a := &app{
		runner: d.newRunner(out),
		deps:   d,
		run:    state.New(),
	}
	a.client = slv.NewClient(d.executor, a.run, a.runner)
	return a
}

// Run executes the selected steps and reports whether the run succeeded.
// A failed step is reported and the next step still runs.
func (a *app) Run(ctx context.Context, steps step) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := a.load(ctx); err != nil {
		a.runner.Fail(err)
		return false
	}

	if steps&stepSetup != 0 {
		a.setup(ctx)
	}
	if steps&stepInject != 0 {
		a.inject(ctx)
	}
	return !a.runner.Failed()
}

func (a *app) load(ctx context.Context) error {
	cfg, err := config.Load(ctx, a.runner, config.LoadOptions{
		Workspace: a.deps.getenv("GITHUB_WORKSPACE"),
		Detector:  a.deps.detector,
		Logger:    a.runner,
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = cfg

	if cfg.Debug {
		if d, ok := a.runner.(interface{ SetDebug(bool) }); ok {
			d.SetDebug(true)
		}
	}
	if cfg.Source != "" {
		a.runner.Info("Using configuration from " + cfg.Source)
	}

	info, err := a.deps.detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}
	a.key = info.Key()
	a.runner.Debug("detected platform", "platform", a.key.String(), "distro", info.Platform)
	return nil
}

func (a *app) setup(ctx context.Context) {
	feed := release.NewGitHubFeed(release.FeedConfig{
		BaseURL:    a.deps.apiURL,
		Token:      a.cfg.GitHubToken,
		HTTPClient: a.deps.httpClient,
	})
	resolver := release.NewResolver(feed, a.key, a.run, a.runner)

	cacheDir, err := binary.CacheRoot(a.deps.getenv)
	if err != nil {
		a.runner.Fail(err)
		return
	}
	installer, err := binary.NewInstaller(binary.Config{
		Resolver:   resolver,
		Prober:     a.client,
		Paths:      a.runner,
		Platform:   a.key,
		CacheDir:   cacheDir,
		TempDir:    binary.TempRoot(a.deps.getenv),
		Downloader: binary.NewDownloader(a.deps.httpClient),
		Verifier:   binary.NewVerifier(a.cfg.VerifyKey, a.cfg.MinisignKey),
		Logger:     a.runner,
	})
	if err != nil {
		a.runner.Fail(err)
		return
	}

	res, err := setup.New(a.client, resolver, installer, a.runner).Run(ctx, a.cfg.Version)
	if err != nil {
		if release.IsRateLimitError(err) && a.cfg.GitHubToken == "" {
			a.runner.Warn("GitHub API rate limit reached; set the github-token input to raise it")
		}
		a.runner.Fail(err)
		return
	}
	if res.Installed() {
		a.runner.Debug("install details", "dir", res.Install.Dir, "cached", res.Install.Cached, "verified", res.Install.Verified)
		a.runner.Success(fmt.Sprintf("Successfully installed SLV version %s", res.Install.Version))
	}
}

func (a *app) inject(ctx context.Context) {
	if !a.cfg.InjectSecrets() {
		a.runner.Debug("no vault configured, skipping secret injection")
		return
	}

	exporter := secrets.NewExporter(a.client, a.runner, a.runner)
	res, err := exporter.Inject(ctx, secrets.Options{
		Vault:     a.cfg.Vault,
		SecretKey: a.cfg.SecretKey,
		Prefix:    a.cfg.Prefix,
	})
	if err != nil {
		a.runner.Fail(err)
		return
	}
	a.runner.Info(fmt.Sprintf("Exported %d secrets from %s", len(res.Names), a.cfg.Vault))
}
