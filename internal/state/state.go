// Package state holds values discovered during a single action run so that
// repeated lookups do not spawn another subprocess or API call.
//
// A Run is passed explicitly to the components that need it. Each key is
// written at most once; later writes are ignored.
package state

// Run is the run-scoped cache. The zero value is ready to use. It is not
// safe for concurrent use; the action runs its steps sequentially.
type Run struct {
	installed    string
	installedSet bool
	latest       string
	latestSet    bool
}

// New returns an empty Run.
func New() *Run {
	return &Run{}
}

// InstalledVersion returns the cached installed version and whether one was
// recorded. An empty recorded value is treated as absent so that the next
// lookup probes again.
func (r *Run) InstalledVersion() (string, bool) {
	if r == nil || !r.installedSet || r.installed == "" {
		return "", false
	}
	return r.installed, true
}

// SetInstalledVersion records the installed version if none was recorded.
func (r *Run) SetInstalledVersion(v string) {
	if r == nil || (r.installedSet && r.installed != "") {
		return
	}
	r.installed = v
	r.installedSet = true
}

// LatestVersion returns the cached latest release version.
func (r *Run) LatestVersion() (string, bool) {
	if r == nil || !r.latestSet {
		return "", false
	}
	return r.latest, true
}

// SetLatestVersion records the latest release version if none was recorded.
func (r *Run) SetLatestVersion(v string) {
	if r == nil || r.latestSet || v == "" {
		return
	}
	r.latest = v
	r.latestSet = true
}
