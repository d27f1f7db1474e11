// Package uvm wires the version manager together: discovery, resolution
// and installation of editors.
package uvm

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/uvm/internal/catalog"
	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/installer"
	"github.com/ImSingee/uvm/internal/project"
	"github.com/ImSingee/uvm/internal/resolver"
	"github.com/ImSingee/uvm/internal/unity"
	"github.com/ImSingee/uvm/internal/unity/hashes"
)

type Options struct {
	Probe    index.Probe
	Fetcher  installer.Fetcher
	Recorder index.Recorder
	Catalog  *catalog.Catalog
	Hashes   hashes.Lookup
	Platform unity.Platform
	// Roots overrides the probe's default editor roots.
	Roots         []string
	AllowBaseOnly bool
	Observer      installer.Observer
	// OnScan is called with every fresh index.
	OnScan func(idx *index.Index)
}

// Manager is the entry point for the CLI. Calls are not serialized:
// concurrent installs to the same destination must be coordinated by the
// caller.
type Manager struct {
	opts     Options
	resolver *resolver.Resolver

	mu  sync.Mutex
	idx *index.Index
}

func New(opts Options) (*Manager, error) {
	if opts.Probe == nil {
		return nil, ee.New("no probe")
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Hashes == nil {
		opts.Hashes = hashes.Default()
	}
	if opts.Platform == "" {
		opts.Platform = unity.CurrentPlatform()
	}
	if opts.Recorder == nil {
		if r, ok := opts.Probe.(index.Recorder); ok {
			opts.Recorder = r
		}
	}

	return &Manager{
		opts:     opts,
		resolver: resolver.New(opts.Catalog),
	}, nil
}

func (m *Manager) Platform() unity.Platform {
	return m.opts.Platform
}

// Index returns the current index, scanning once if there is none yet.
func (m *Manager) Index(ctx context.Context) (*index.Index, error) {
	m.mu.Lock()
	idx := m.idx
	m.mu.Unlock()

	if idx != nil {
		return idx, nil
	}
	return m.Refresh(ctx)
}

// Refresh rescans every root and replaces the current index.
func (m *Manager) Refresh(ctx context.Context) (*index.Index, error) {
	idx, err := index.Scan(ctx, m.opts.Probe, m.opts.Roots, m.opts.Platform)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.idx = idx
	m.mu.Unlock()

	if m.opts.OnScan != nil {
		m.opts.OnScan(idx)
	}
	return idx, nil
}

// ParseVersion parses raw and attaches the known revision of its base when
// raw has none.
func (m *Manager) ParseVersion(raw string) (unity.Version, error) {
	v, err := unity.Parse(raw)
	if err != nil {
		return unity.Version{}, err
	}
	return m.withKnownRevision(v), nil
}

func (m *Manager) withKnownRevision(v unity.Version) unity.Version {
	if v.HasRevision() {
		return v
	}
	if hash, ok := m.opts.Hashes.HashForBase(v.Base); ok {
		return v.WithRevision(hash)
	}
	return v
}

type ResolveOptions struct {
	Destination         string
	// DestinationRoot holds fresh installs as <DestinationRoot>/<base>.
	DestinationRoot     string
	SkipChildComponents bool
	// StrictRevision disables base only matching for this call.
	StrictRevision bool
}

// Resolve rescans the host and plans what is needed for requested.
func (m *Manager) Resolve(ctx context.Context, requested unity.Version, components unity.ComponentSet, opts ResolveOptions) (*resolver.InstallPlan, error) {
	idx, err := m.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	requested = m.withKnownRevision(requested)

	plan, err := m.resolver.Plan(requested, components, idx, m.opts.Platform, resolver.Options{
		AllowBaseOnly:       m.opts.AllowBaseOnly && !opts.StrictRevision,
		SkipChildComponents: opts.SkipChildComponents,
		Destination:         opts.Destination,
		DestinationRoot:     opts.DestinationRoot,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("plan", "kind", plan.Kind.String(), "version", plan.Version.String(), "destination", plan.Destination, "fetch", len(plan.Fetch))
	return plan, nil
}

// Install applies plan against the current index.
func (m *Manager) Install(ctx context.Context, plan *resolver.InstallPlan) (*unity.Installation, error) {
	return m.InstallWithObserver(ctx, plan, nil)
}

// InstallWithObserver is Install with an extra observer for this call.
func (m *Manager) InstallWithObserver(ctx context.Context, plan *resolver.InstallPlan, observer installer.Observer) (*unity.Installation, error) {
	if plan == nil {
		return nil, ee.New("no plan")
	}
	if plan.Kind == resolver.Install && m.opts.Fetcher == nil {
		return nil, ee.New("no fetcher configured, set fetchCommand or downloadUrl")
	}

	idx, err := m.Index(ctx)
	if err != nil {
		return nil, err
	}

	in := installer.New(m.opts.Probe, m.opts.Recorder, m.opts.Fetcher,
		installer.WithCatalog(m.opts.Catalog),
		installer.WithObserver(installer.Observers{m.opts.Observer, observer}),
	)
	return in.Apply(ctx, plan, idx)
}

// InstallEditor resolves and installs in one call. It returns early when the
// request is already satisfied.
func (m *Manager) InstallEditor(ctx context.Context, requested unity.Version, components unity.ComponentSet, opts ResolveOptions) (*unity.Installation, error) {
	plan, err := m.Resolve(ctx, requested, components, opts)
	if err != nil {
		return nil, err
	}
	if plan.Kind == resolver.AlreadySatisfied {
		return plan.Existing.Clone(), nil
	}
	return m.Install(ctx, plan)
}

// ListInstalled scans roots (the configured ones when empty) and returns
// every installation in scan order.
func (m *Manager) ListInstalled(ctx context.Context, roots []string) ([]*unity.Installation, error) {
	if len(roots) == 0 {
		idx, err := m.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		return idx.All(), nil
	}

	idx, err := index.Scan(ctx, m.opts.Probe, roots, m.opts.Platform)
	if err != nil {
		return nil, err
	}
	return idx.All(), nil
}

// ListAvailableComponents returns the components shipped for version on
// platform, in install order.
func (m *Manager) ListAvailableComponents(version unity.Version, platform unity.Platform) []unity.Component {
	if platform == "" {
		platform = m.opts.Platform
	}
	return m.opts.Catalog.InstallOrder(m.opts.Catalog.AvailableFor(version, platform))
}

// DetectProjectVersion reads the editor version of the project at path.
func (m *Manager) DetectProjectVersion(projectPath string, withRevision bool) (unity.Version, error) {
	return project.DetectVersion(projectPath, withRevision, m.opts.Hashes)
}

// Locate finds the installation for version, preferring a revision exact
// match. It returns index.ErrNotFound when there is none.
func (m *Manager) Locate(ctx context.Context, version unity.Version) (*unity.Installation, unity.MatchKind, error) {
	idx, err := m.Refresh(ctx)
	if err != nil {
		return nil, unity.MatchNone, err
	}

	version = m.withKnownRevision(version)

	if found, err := idx.FindByVersion(version, index.RevisionExact); err == nil {
		return found.Installation, found.Kind, nil
	}
	if !m.opts.AllowBaseOnly {
		return nil, unity.MatchNone, ee.Wrapf(index.ErrNotFound, "%s", version)
	}

	found, err := idx.FindByVersion(version, index.BaseOnly)
	if err != nil {
		return nil, unity.MatchNone, err
	}
	return found.Installation, found.Kind, nil
}

// LocationAdjuster is implemented by probes that can map a path inside an
// installation (such as the executable) to the installation root.
type LocationAdjuster interface {
	AdjustLocation(path string) string
}

// ReadVersion reads the editor version at path, which may be the
// installation root or the editor executable.
func (m *Manager) ReadVersion(path string) (unity.Version, error) {
	if a, ok := m.opts.Probe.(LocationAdjuster); ok {
		path = a.AdjustLocation(path)
	}
	return m.opts.Probe.ReadEditorVersion(path)
}
