// Package installer applies an InstallPlan: it fetches every planned
// component, verifies it and records it, one component at a time.
package installer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ImSingee/go-ex/ee"
	"github.com/google/uuid"

	"github.com/ImSingee/uvm/internal/catalog"
	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/resolver"
	"github.com/ImSingee/uvm/internal/unity"
)

var ErrVerificationFailed = fmt.Errorf("verification failed")

// FetchRequest is what a Fetcher is asked to put in place.
type FetchRequest struct {
	RunID       string
	Version     unity.Version
	Component   unity.Component
	Destination string
	Platform    unity.Platform
}

// Fetcher downloads a component and unpacks it into the destination.
//
// Fetchers that also implement Unpacker only download in Fetch; the
// installer calls Unpack afterwards.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) error
}

type Unpacker interface {
	Unpack(ctx context.Context, req FetchRequest) error
}

// InstallError is returned for the first component that could not be
// installed. Components before it stay installed.
type InstallError struct {
	Component unity.Component
	Cause     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("cannot install %s: %v", e.Component, e.Cause)
}

func (e *InstallError) Unwrap() error {
	return e.Cause
}

type Installer struct {
	probe    index.Probe
	recorder index.Recorder
	fetcher  Fetcher
	catalog  *catalog.Catalog
	observer Observer
}

type Option func(*Installer)

func WithCatalog(c *catalog.Catalog) Option {
	return func(in *Installer) { in.catalog = c }
}

func WithObserver(o Observer) Option {
	return func(in *Installer) {
		if o != nil {
			in.observer = o
		}
	}
}

func New(probe index.Probe, recorder index.Recorder, fetcher Fetcher, options ...Option) *Installer {
	in := &Installer{
		probe:    probe,
		recorder: recorder,
		fetcher:  fetcher,
		catalog:  catalog.Default(),
		observer: nopObserver{},
	}
	for _, o := range options {
		o(in)
	}
	return in
}

type run struct {
	*Installer

	id          string
	log         *slog.Logger
	plan        *resolver.InstallPlan
	version     unity.Version
	destination string
	installed   unity.ComponentSet
	idx         *index.Index
}

// Apply installs everything plan.Fetch lists into plan.Destination and
// registers the result in idx (which may be nil).
//
// An AlreadySatisfied plan returns the existing installation without
// calling the fetcher.
func (in *Installer) Apply(ctx context.Context, plan *resolver.InstallPlan, idx *index.Index) (*unity.Installation, error) {
	if plan == nil {
		return nil, ee.New("no plan")
	}

	r := &run{
		Installer:   in,
		id:          uuid.NewString(),
		plan:        plan,
		version:     plan.Version,
		destination: plan.Destination,
		installed:   unity.NewComponentSet(),
		idx:         idx,
	}
	r.log = slog.With("run", r.id, "version", plan.Version.String(), "destination", plan.Destination)

	if plan.Existing != nil {
		r.version = plan.Existing.Version
		r.installed = plan.Existing.Components.Clone()
	}

	if plan.Kind == resolver.AlreadySatisfied {
		r.log.Debug("nothing to install")
		for _, c := range in.catalog.InstallOrder(plan.Requested) {
			r.notify(c, StateRegistered, nil)
		}
		if plan.Existing == nil {
			return nil, ee.New("satisfied plan without an installation")
		}
		return plan.Existing.Clone(), nil
	}

	for _, c := range plan.Fetch {
		r.notify(c, StatePlanned, nil)
	}

	r.log.Info("install start", "components", len(plan.Fetch))
	for _, c := range plan.Fetch {
		if err := r.installComponent(ctx, c); err != nil {
			r.notify(c, StateFailed, err)
			r.log.Error("install failed", "component", c.String(), "error", err)
			return nil, &InstallError{Component: c, Cause: err}
		}
	}
	r.log.Info("install done")

	return r.installation(), nil
}

func (r *run) installation() *unity.Installation {
	inst := unity.NewInstallation(r.destination, r.version)
	inst.Components = r.installed.Clone()
	return inst
}

func (r *run) request(c unity.Component) FetchRequest {
	return FetchRequest{
		RunID:       r.id,
		Version:     r.version,
		Component:   c,
		Destination: r.destination,
		Platform:    r.plan.Platform,
	}
}

func (r *run) installComponent(ctx context.Context, c unity.Component) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	present, err := r.probe.InstalledComponents(r.destination, r.plan.Platform)
	if err != nil {
		return ee.Wrapf(err, "cannot read components at %s", r.destination)
	}
	if present.Has(c) {
		if c == unity.Editor {
			if err := r.checkOccupant(); err != nil {
				return err
			}
		}
		r.log.Info("component already present", "component", c.String())
		return r.register(c)
	}

	req := r.request(c)

	r.notify(c, StateFetching, nil)
	r.log.Debug("fetch", "component", c.String())
	if err := r.fetcher.Fetch(ctx, req); err != nil {
		return err
	}

	r.notify(c, StateUnpacking, nil)
	if u, ok := r.fetcher.(Unpacker); ok {
		r.log.Debug("unpack", "component", c.String())
		if err := u.Unpack(ctx, req); err != nil {
			return err
		}
	}

	r.notify(c, StateVerifying, nil)
	if err := r.verify(c); err != nil {
		return err
	}

	return r.register(c)
}

// checkOccupant accepts an editor found at the destination before fetching
// only when it is the requested version.
func (r *run) checkOccupant() error {
	v, err := r.probe.ReadEditorVersion(r.destination)
	if err != nil {
		return ee.Wrapf(resolver.ErrDestinationOccupied, "%s holds an editor of unknown version: %v", r.destination, err)
	}
	if unity.Match(r.version, v) == unity.MatchNone {
		return ee.Wrapf(resolver.ErrDestinationOccupied, "%s holds %s, not %s", r.destination, v, r.version)
	}
	return nil
}

func (r *run) verify(c unity.Component) error {
	if c == unity.Editor {
		v, err := r.probe.ReadEditorVersion(r.destination)
		if ee.Is(err, index.ErrUnknownVersion) {
			// the executable is there; the record written next names the version
			r.log.Debug("editor version not readable before recording", "error", err)
			return nil
		}
		if err != nil {
			return ee.Wrapf(ErrVerificationFailed, "no editor at %s: %v", r.destination, err)
		}
		if unity.Match(r.version, v) == unity.MatchNone {
			return ee.Wrapf(ErrVerificationFailed, "expect editor %s at %s, got %s", r.version, r.destination, v)
		}
		return nil
	}

	marker, ok := r.catalog.Marker(c)
	if !ok {
		return nil
	}

	present, err := r.probe.InstalledComponents(r.destination, r.plan.Platform)
	if err != nil {
		return ee.Wrapf(err, "cannot read components at %s", r.destination)
	}
	if !present.Has(c) {
		return ee.Wrapf(ErrVerificationFailed, "%s not found at %s", marker, r.destination)
	}
	return nil
}

func (r *run) register(c unity.Component) error {
	r.installed.Add(c)

	if r.recorder != nil {
		if err := r.recorder.Record(r.destination, r.version, r.installed); err != nil {
			return ee.Wrapf(err, "cannot record %s", c)
		}
	}
	if r.idx != nil {
		r.idx.Register(r.installation())
	}

	r.notify(c, StateRegistered, nil)
	r.log.Info("component installed", "component", c.String())
	return nil
}

func (r *run) notify(c unity.Component, s State, err error) {
	r.observer.OnTransition(Event{
		RunID:       r.id,
		Version:     r.version,
		Destination: r.destination,
		Component:   c,
		State:       s,
		Err:         err,
	})
}
