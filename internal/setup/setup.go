// Package setup decides whether slv has to be installed and drives the
// install when it does.
//
// The decision runs as a small state machine:
//
//	CHECK_INSTALLED -> RESOLVE_REQUIRED -> SATISFIED | NEEDS_INSTALL -> INSTALL -> DONE
//
// DONE is reached on every path. Failures are returned to the caller, which
// reports them without stopping the rest of the action.
package setup

import (
	"context"
	"fmt"

	"github.com/savesecrets/slv-action/internal/binary"
	"github.com/savesecrets/slv-action/internal/config"
	"github.com/savesecrets/slv-action/internal/version"
)

// State is one step of the setup state machine.
type State string

const (
	StateCheckInstalled  State = "CHECK_INSTALLED"
	StateResolveRequired State = "RESOLVE_REQUIRED"
	StateSatisfied       State = "SATISFIED"
	StateNeedsInstall    State = "NEEDS_INSTALL"
	StateInstall         State = "INSTALL"
	StateDone            State = "DONE"
)

// Prober reports the installed version, "" when absent.
type Prober interface {
	InstalledVersion(ctx context.Context) string
}

// LatestResolver resolves the newest published version.
type LatestResolver interface {
	ResolveLatest(ctx context.Context) (string, error)
}

// Installer installs one version.
type Installer interface {
	Install(ctx context.Context, v string) (*binary.InstallResult, error)
}

// Result records what a setup run did.
type Result struct {
	// Found is the version on PATH before setup, "" when absent.
	Found string
	// Required is the normalized version setup aimed for.
	Required string
	// Install is set when an install ran and succeeded.
	Install *binary.InstallResult
	// Path lists the states visited, ending in StateDone.
	Path []State
}

// Installed reports whether this run installed slv.
func (r *Result) Installed() bool {
	return r != nil && r.Install != nil
}

// Orchestrator runs the setup state machine.
type Orchestrator struct {
	prober    Prober
	resolver  LatestResolver
	installer Installer
	logger    config.Logger
}

// New creates an Orchestrator.
func New(prober Prober, resolver LatestResolver, installer Installer, logger config.Logger) *Orchestrator {
	return &Orchestrator{
		prober:    prober,
		resolver:  resolver,
		installer: installer,
		logger:    config.OrNop(logger),
	}
}

// Run ensures the requested version is on PATH. requested may be blank,
// "latest", "1.2.3" or "v1.2.3". The returned Result is never nil and
// always ends in StateDone, even when err is set.
func (o *Orchestrator) Run(ctx context.Context, requested string) (*Result, error) {
	res := &Result{}
	state := StateCheckInstalled

	for {
		res.Path = append(res.Path, state)

		switch state {
		case StateCheckInstalled:
			res.Found = o.prober.InstalledVersion(ctx)
			if res.Found != "" {
				o.logger.Info(fmt.Sprintf("Installed version of SLV: %s", res.Found))
			}
			state = StateResolveRequired

		case StateResolveRequired:
			required, err := o.required(ctx, requested)
			if err != nil {
				res.Path = append(res.Path, StateDone)
				return res, err
			}
			res.Required = required
			if version.Equal(res.Found, required) {
				state = StateSatisfied
			} else {
				state = StateNeedsInstall
			}

		case StateSatisfied:
			o.logger.Info(fmt.Sprintf("Required version SLV %s is already installed", res.Required))
			state = StateDone

		case StateNeedsInstall:
			state = StateInstall

		case StateInstall:
			result, err := o.installer.Install(ctx, res.Required)
			if err != nil {
				res.Path = append(res.Path, StateDone)
				return res, err
			}
			res.Install = result
			state = StateDone

		case StateDone:
			return res, nil
		}
	}
}

// required turns the requested spec into a concrete version.
func (o *Orchestrator) required(ctx context.Context, requested string) (string, error) {
	if !version.IsLatest(requested) {
		return version.Normalize(requested), nil
	}
	latest, err := o.resolver.ResolveLatest(ctx)
	if err != nil {
		return "", err
	}
	return version.Normalize(latest), nil
}
