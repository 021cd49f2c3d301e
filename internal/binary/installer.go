package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/savesecrets/slv-action/internal/actions"
	"github.com/savesecrets/slv-action/internal/config"
	"github.com/savesecrets/slv-action/internal/platform"
	"github.com/savesecrets/slv-action/internal/release"
	"github.com/savesecrets/slv-action/internal/version"
)

const checksumsAsset = "checksums.txt"

// AssetResolver finds the archive for a version.
type AssetResolver interface {
	ResolveAsset(ctx context.Context, v string) (*release.Selection, error)
}

// Prober reports the version of the tool on PATH, bypassing any cache.
type Prober interface {
	ProbeVersion(ctx context.Context) string
}

// Config holds configuration for the installer
type Config struct {
	Resolver AssetResolver
	Prober   Prober
	Paths    actions.PathRegistrar
	// Platform selects the cache subdirectory and executable name.
	Platform platform.Key
	// CacheDir is the tool cache root. See CacheRoot.
	CacheDir string
	// TempDir receives downloaded archives. See TempRoot.
	TempDir    string
	Downloader *Downloader
	Verifier   *Verifier
	Logger     config.Logger
	// LockWait bounds the wait for another install's lock. Zero selects
	// DefaultLockWait.
	LockWait time.Duration
}

// Installer downloads, verifies, unpacks and registers slv.
type Installer struct {
	resolver   AssetResolver
	prober     Prober
	paths      actions.PathRegistrar
	key        platform.Key
	cacheDir   string
	tempDir    string
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	logger     config.Logger
	lockWait   time.Duration
	goos       string
}

// NewInstaller creates an installer from cfg.
func NewInstaller(cfg Config) (*Installer, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("Resolver is required")
	}
	if cfg.Prober == nil {
		return nil, fmt.Errorf("Prober is required")
	}
	if cfg.Paths == nil {
		return nil, fmt.Errorf("Paths is required")
	}
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("CacheDir is required")
	}

	inst := &Installer{
		resolver:   cfg.Resolver,
		prober:     cfg.Prober,
		paths:      cfg.Paths,
		key:        cfg.Platform,
		cacheDir:   cfg.CacheDir,
		tempDir:    cfg.TempDir,
		downloader: cfg.Downloader,
		verifier:   cfg.Verifier,
		extractor:  NewExtractor(),
		logger:     config.OrNop(cfg.Logger),
		lockWait:   cfg.LockWait,
		goos:       runtime.GOOS,
	}
	if inst.lockWait <= 0 {
		inst.lockWait = DefaultLockWait
	}
	if inst.tempDir == "" {
		inst.tempDir = os.TempDir()
	}
	if inst.downloader == nil {
		inst.downloader = NewDownloader(nil)
	}
	if inst.verifier == nil {
		inst.verifier = NewVerifier("", "")
	}
	return inst, nil
}

// Install makes version v of slv available on PATH and confirms that the
// tool reports v afterwards.
func (i *Installer) Install(ctx context.Context, v string) (*InstallResult, error) {
	startTime := time.Now()
	v = version.Normalize(v)
	if v == "" {
		return nil, fmt.Errorf("version is required")
	}

	toolDir := ToolDir(i.cacheDir, v, i.key.Arch)
	result := &InstallResult{Version: v}

	if methods, ok := i.cachedMethods(toolDir); ok {
		i.logger.Debug("using cached slv", "version", v, "dir", toolDir)
		result.Cached = true
		result.Verified = methods
	} else {
		if err := i.populate(ctx, v, toolDir, result); err != nil {
			return nil, err
		}
	}

	binDir, found := locateBinary(toolDir, binaryName(i.goos))
	if found && i.goos != "windows" {
		if err := SetExecutable(filepath.Join(binDir, binaryName(i.goos))); err != nil {
			return nil, err
		}
	}
	result.Dir = binDir

	if err := i.paths.AddPath(binDir); err != nil {
		return nil, fmt.Errorf("add %s to PATH: %w", binDir, err)
	}

	installed := i.prober.ProbeVersion(ctx)
	if !version.Equal(installed, v) {
		return nil, fmt.Errorf("failed to install SLV version %s: %w (found %q)", v, ErrVersionMismatch, installed)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// cachedMethods returns the checks recorded for a completed extraction in
// toolDir. ok is false when there is none, or when a configured key was not
// used to verify it.
func (i *Installer) cachedMethods(toolDir string) ([]VerificationMethod, bool) {
	entries, ok := readMarker(toolDir)
	if !ok {
		return nil, false
	}
	recorded := make(map[string]bool, len(entries))
	for _, e := range entries {
		recorded[e] = true
	}
	for _, req := range i.verifier.Requirements() {
		if !recorded[req] {
			return nil, false
		}
	}

	methods := make([]VerificationMethod, 0, len(entries))
	for _, e := range entries {
		methods = append(methods, methodFromEntry(e))
	}
	return methods, true
}

// populate downloads and unpacks v into toolDir under the cache lock.
func (i *Installer) populate(ctx context.Context, v, toolDir string, result *InstallResult) error {
	lock, err := WaitLock(ctx, filepath.Dir(toolDir), i.lockWait)
	if err != nil {
		return fmt.Errorf("lock tool cache: %w", err)
	}
	defer lock.Release()

	// Another job may have finished the same install while we waited.
	if methods, ok := i.cachedMethods(toolDir); ok {
		i.logger.Debug("using slv cached by another install", "version", v, "dir", toolDir)
		result.Cached = true
		result.Verified = methods
		return nil
	}
	if isCached(toolDir) {
		i.logger.Info("Cached SLV was not verified with the configured key, reinstalling", "version", v)
	}
	if err := clearMarker(toolDir); err != nil {
		return err
	}

	sel, err := i.resolver.ResolveAsset(ctx, v)
	if err != nil {
		return err
	}
	result.Asset = sel.Asset.Name

	workDir, err := os.MkdirTemp(i.tempDir, "slv-download-")
	if err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	archivePath := filepath.Join(workDir, filepath.Base(sel.Asset.Name))
	i.logger.Info("Downloading SLV", "version", v, "asset", sel.Asset.Name)
	if err := i.downloader.DownloadToFile(ctx, sel.Asset.BrowserDownloadURL, archivePath); err != nil {
		return fmt.Errorf("download %s: %w", sel.Asset.Name, err)
	}

	methods, err := i.verify(ctx, sel.Release, archivePath, workDir)
	if err != nil {
		return err
	}
	result.Verified = methods

	if err := os.RemoveAll(toolDir); err != nil {
		return fmt.Errorf("clear tool dir: %w", err)
	}
	if err := i.extractor.Extract(archivePath, toolDir); err != nil {
		os.RemoveAll(toolDir)
		return fmt.Errorf("extract %s: %w", sel.Asset.Name, err)
	}
	return markComplete(toolDir, i.verifier.markerEntries(methods))
}

// verify runs every check the release and the configured keys allow.
func (i *Installer) verify(ctx context.Context, rel *release.Release, archivePath, workDir string) ([]VerificationMethod, error) {
	var methods []VerificationMethod
	name := filepath.Base(archivePath)

	if asset, ok := rel.FindAsset(checksumsAsset); ok {
		path, err := i.fetchSibling(ctx, asset, workDir)
		if err != nil {
			return nil, err
		}
		if err := i.verifier.VerifySHA256(archivePath, path); err != nil {
			return nil, err
		}
		methods = append(methods, VerificationSHA256)
	} else {
		i.logger.Debug("release has no checksums file", "asset", name)
	}

	if i.verifier.WantsPGP() {
		asset, ok := rel.FindAsset(name + ".sig")
		if !ok {
			asset, ok = rel.FindAsset(name + ".asc")
		}
		if !ok {
			return nil, fmt.Errorf("%w: no PGP signature published for %s", ErrVerification, name)
		}
		path, err := i.fetchSibling(ctx, asset, workDir)
		if err != nil {
			return nil, err
		}
		if err := i.verifier.VerifyPGP(archivePath, path); err != nil {
			return nil, err
		}
		methods = append(methods, VerificationGPG)
	}

	if i.verifier.WantsMinisign() {
		asset, ok := rel.FindAsset(name + ".minisig")
		if !ok {
			return nil, fmt.Errorf("%w: no minisign signature published for %s", ErrVerification, name)
		}
		path, err := i.fetchSibling(ctx, asset, workDir)
		if err != nil {
			return nil, err
		}
		if err := i.verifier.VerifyMinisign(archivePath, path); err != nil {
			return nil, err
		}
		methods = append(methods, VerificationMinisign)
	}

	if len(methods) == 0 {
		methods = append(methods, VerificationNone)
	}
	return methods, nil
}

func (i *Installer) fetchSibling(ctx context.Context, asset release.Asset, workDir string) (string, error) {
	path := filepath.Join(workDir, filepath.Base(asset.Name))
	if err := i.downloader.DownloadToFile(ctx, asset.BrowserDownloadURL, path); err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}
	return path, nil
}
