// Package resolver decides what has to be fetched to satisfy a request for
// an editor version and a set of components.
package resolver

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/mr"

	"github.com/ImSingee/uvm/internal/catalog"
	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/unity"
)

var ErrNoDestination = fmt.Errorf("no destination for a new installation")

// ErrDestinationOccupied is returned when a new installation would go to a
// location that already holds another editor.
var ErrDestinationOccupied = fmt.Errorf("destination already holds an editor")

type PlanKind int

const (
	AlreadySatisfied PlanKind = iota
	Install
)

func (k PlanKind) String() string {
	if k == Install {
		return "install"
	}
	return "already-satisfied"
}

func (k PlanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Warning reports a requested component that will not be installed.
type Warning struct {
	Component unity.Component `json:"component"`
	Reason    string          `json:"reason"`
}

func (w Warning) String() string {
	return w.Component.String() + ": " + w.Reason
}

// InstallPlan is the outcome of Plan.
type InstallPlan struct {
	Kind PlanKind `json:"kind"`
	// Version is the version that is (or will be) installed. When a base
	// only request matched an installation that knows its revision, this is
	// the installation's version.
	Version     unity.Version       `json:"version"`
	Destination string              `json:"destination"`
	Existing    *unity.Installation `json:"existing,omitempty"`
	MatchKind   unity.MatchKind     `json:"matchKind"`
	Platform    unity.Platform      `json:"platform"`

	// Requested is the expanded component set.
	Requested unity.ComponentSet `json:"requested"`
	// Fetch lists what the installer has to fetch, in install order.
	Fetch    []unity.Component `json:"fetch"`
	Warnings []Warning         `json:"warnings,omitempty"`

	// Incomplete lists components implied by already installed requested
	// components that the release ships but the installation lacks. They
	// are not fetched unless asked for by name.
	Incomplete []unity.Component `json:"incomplete,omitempty"`
}

func (p *InstallPlan) String() string {
	var sb strings.Builder

	switch p.Kind {
	case AlreadySatisfied:
		fmt.Fprintf(&sb, "%s is already satisfied by %s (%s)", p.Version, p.Destination, p.MatchKind)
	default:
		fetch := mr.Map(p.Fetch, func(c unity.Component, _index int) string {
			return c.String()
		})
		if p.Existing != nil {
			fmt.Fprintf(&sb, "install [%s] into %s at %s (%s)", strings.Join(fetch, ", "), p.Version, p.Destination, p.MatchKind)
		} else {
			fmt.Fprintf(&sb, "install %s with [%s] at %s", p.Version, strings.Join(fetch, ", "), p.Destination)
		}
	}

	for _, w := range p.Warnings {
		sb.WriteString("\nwarning: ")
		sb.WriteString(w.String())
	}

	if len(p.Incomplete) != 0 {
		names := mr.Map(p.Incomplete, func(c unity.Component, _index int) string {
			return c.String()
		})
		fmt.Fprintf(&sb, "\nnote: %s missing from %s, name them to install", strings.Join(names, ", "), p.Destination)
	}

	return sb.String()
}

type Options struct {
	// AllowBaseOnly lets an installation that only matches on the base
	// version satisfy the request when no revision exact match exists.
	AllowBaseOnly bool
	// SkipChildComponents disables following implied components.
	SkipChildComponents bool
	// Destination is used for fresh installs instead of <first root>/<base>.
	Destination string
	// DestinationRoot puts fresh installs at <DestinationRoot>/<base>.
	// Destination wins over it.
	DestinationRoot string
}

// Resolver is stateless apart from its catalog.
type Resolver struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Resolver {
	if c == nil {
		c = catalog.Default()
	}
	return &Resolver{catalog: c}
}

// Plan computes the InstallPlan for requested and components against idx.
// It does not touch the filesystem, so calling it again with an unchanged
// index yields the same plan.
func (r *Resolver) Plan(requested unity.Version, components unity.ComponentSet, idx *index.Index, platform unity.Platform, opts Options) (*InstallPlan, error) {
	if requested.IsZero() {
		return nil, ee.New("no version requested")
	}
	if components == nil {
		components = unity.NewComponentSet()
	}

	existing := r.find(requested, idx, opts)

	installed := unity.NewComponentSet()
	if existing.Installation != nil {
		installed = existing.Installation.Components
	}

	expanded, warnings := r.expand(requested, components, installed, platform, opts)

	plan := &InstallPlan{
		Version:   requested,
		Platform:  platform,
		Requested: expanded,
		Warnings:  warnings,
	}

	if existing.Installation != nil {
		inst := existing.Installation
		plan.Existing = inst
		plan.MatchKind = existing.Kind
		plan.Destination = inst.Location
		if inst.Version.HasRevision() {
			plan.Version = inst.Version
		}

		plan.Incomplete = r.incomplete(requested, expanded, inst.Components, platform, opts)

		missing := expanded.Difference(inst.Components)
		if missing.Len() == 0 {
			plan.Kind = AlreadySatisfied
			plan.Fetch = []unity.Component{}
			slog.Debug("request already satisfied", "version", requested.String(), "location", inst.Location, "match", existing.Kind.String())
			return plan, nil
		}

		plan.Kind = Install
		plan.Fetch = r.catalog.InstallOrder(missing)
		return plan, nil
	}

	destination, err := r.destination(requested, idx, opts)
	if err != nil {
		return nil, err
	}
	if idx != nil {
		if occupant, ok := idx.FindByLocation(destination); ok {
			return nil, ee.Wrapf(ErrDestinationOccupied, "cannot install %s at %s, it holds %s", requested, destination, occupant.Version)
		}
	}

	fetch := expanded.Clone()
	fetch.Add(unity.Editor)

	plan.Kind = Install
	plan.Destination = destination
	plan.Fetch = r.catalog.InstallOrder(fetch)
	return plan, nil
}

func (r *Resolver) find(requested unity.Version, idx *index.Index, opts Options) index.Match {
	if idx == nil {
		return index.Match{}
	}

	if m, err := idx.FindByVersion(requested, index.RevisionExact); err == nil {
		return m
	}
	if opts.AllowBaseOnly {
		if m, err := idx.FindByVersion(requested, index.BaseOnly); err == nil {
			return m
		}
	}
	return index.Match{}
}

// expand follows implied components out of every requested component that
// is not installed yet, and keeps what the release ships on platform.
func (r *Resolver) expand(version unity.Version, requested, installed unity.ComponentSet, platform unity.Platform, opts Options) (unity.ComponentSet, []Warning) {
	var warnings []Warning

	out := unity.NewComponentSet()
	for _, c := range requested.Sorted() {
		if !r.catalog.IsAvailable(c, version, platform) {
			reason := fmt.Sprintf("not available for %s on %s", version.Base, platform)
			if !c.IsKnown() {
				reason = "unknown component"
			}
			slog.Warn("skip unavailable component", "component", c.String(), "reason", reason)
			warnings = append(warnings, Warning{Component: c, Reason: reason})
			continue
		}
		out.Add(c)
	}

	if opts.SkipChildComponents {
		return out, warnings
	}

	queue := out.Sorted()
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		if installed.Has(parent) {
			continue
		}

		for _, child := range r.catalog.ChildrenOf(parent, platform).Sorted() {
			if out.Has(child) {
				continue
			}
			if !r.catalog.IsAvailable(child, version, platform) {
				slog.Debug("drop unavailable child component", "parent", parent.String(), "component", child.String())
				continue
			}
			out.Add(child)
			queue = append(queue, child)
		}
	}

	return out, warnings
}

// incomplete returns the available components implied by installed members
// of requested that are neither installed nor about to be fetched.
func (r *Resolver) incomplete(version unity.Version, requested, installed unity.ComponentSet, platform unity.Platform, opts Options) []unity.Component {
	if opts.SkipChildComponents {
		return nil
	}

	parents := requested.Intersect(installed)
	implied := r.catalog.Closure(parents, platform).Difference(parents)

	out := unity.NewComponentSet()
	for c := range implied {
		if !installed.Has(c) && !requested.Has(c) && r.catalog.IsAvailable(c, version, platform) {
			out.Add(c)
		}
	}
	if out.Len() == 0 {
		return nil
	}
	return r.catalog.InstallOrder(out)
}

func (r *Resolver) destination(requested unity.Version, idx *index.Index, opts Options) (string, error) {
	if opts.Destination != "" {
		return filepath.Clean(opts.Destination), nil
	}
	if opts.DestinationRoot != "" {
		return filepath.Join(opts.DestinationRoot, requested.Base), nil
	}

	if idx != nil {
		roots, err := idx.Roots()
		if err != nil {
			return "", err
		}
		if len(roots) != 0 {
			return filepath.Join(roots[0], requested.Base), nil
		}
	}

	return "", ErrNoDestination
}
