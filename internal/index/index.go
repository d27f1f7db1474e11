// Package index discovers editor installations on the host and answers
// "which installation satisfies this version" queries.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/ImSingee/go-ex/ee"
	"golang.org/x/sync/errgroup"

	"github.com/ImSingee/uvm/internal/unity"
)

var (
	ErrNotFound          = fmt.Errorf("no matching installation")
	ErrNotAnInstallation = fmt.Errorf("not an editor installation")
	// ErrUnknownVersion is returned for an installation whose editor is
	// present but whose version cannot be read.
	ErrUnknownVersion = fmt.Errorf("unknown editor version")
)

// Probe reads installations from the host. It must not modify anything.
type Probe interface {
	// EditorRoots lists the default directories holding installations.
	EditorRoots(platform unity.Platform) ([]string, error)
	// Candidates lists the locations under root that may be installations,
	// in a stable order. A missing root reports an fs.ErrNotExist error.
	Candidates(root string) ([]string, error)
	// ReadEditorVersion returns ErrNotAnInstallation when location holds no
	// editor and ErrUnknownVersion when it holds one of unknown version.
	ReadEditorVersion(location string) (unity.Version, error)
	InstalledComponents(location string, platform unity.Platform) (unity.ComponentSet, error)
}

// Recorder persists what has been installed at a location.
type Recorder interface {
	Record(location string, version unity.Version, components unity.ComponentSet) error
}

// Policy selects which match kinds FindByVersion accepts.
type Policy int

const (
	// RevisionExact accepts only installations with the same base and revision.
	RevisionExact Policy = iota
	// BaseOnly also accepts installations where either side lacks a revision.
	BaseOnly
)

func (p Policy) String() string {
	if p == BaseOnly {
		return "base-only"
	}
	return "revision-exact"
}

func (p Policy) accepts(k unity.MatchKind) bool {
	switch k {
	case unity.MatchRevisionExact:
		return true
	case unity.MatchBaseOnly:
		return p == BaseOnly
	}
	return false
}

// Match is an installation together with how it matched.
type Match struct {
	Installation *unity.Installation
	Kind         unity.MatchKind
}

// Index is the ordered list of installations found by a scan.
//
// The order is the scan order: roots in the given order, and within a root
// the order of Probe.Candidates. It is safe for concurrent use. Returned
// installations are copies.
type Index struct {
	probe    Probe
	roots    []string
	platform unity.Platform

	mu            sync.RWMutex
	installations []*unity.Installation
}

// New returns an empty index bound to probe. Use Refresh to fill it.
func New(probe Probe, roots []string, platform unity.Platform) *Index {
	return &Index{
		probe:    probe,
		roots:    append([]string(nil), roots...),
		platform: platform,
	}
}

// Scan probes roots and builds a new index.
// When roots is empty the probe's default editor roots are used.
func Scan(ctx context.Context, probe Probe, roots []string, platform unity.Platform) (*Index, error) {
	idx := New(probe, roots, platform)
	if err := idx.Refresh(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// Refresh rescans the roots and replaces the content of the index.
func (idx *Index) Refresh(ctx context.Context) error {
	roots, err := idx.Roots()
	if err != nil {
		return err
	}

	found := make([][]*unity.Installation, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			installations, err := idx.scanRoot(ctx, root)
			if err != nil {
				return ee.Wrapf(err, "cannot scan root %s", root)
			}
			found[i] = installations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var all []*unity.Installation
	for _, installations := range found {
		all = append(all, installations...)
	}

	idx.mu.Lock()
	idx.installations = all
	idx.mu.Unlock()

	slog.Debug("scan done", "roots", len(roots), "installations", len(all))
	return nil
}

// Roots returns the roots the index scans.
func (idx *Index) Roots() ([]string, error) {
	if len(idx.roots) != 0 {
		return append([]string(nil), idx.roots...), nil
	}
	if idx.probe == nil {
		return nil, nil
	}

	roots, err := idx.probe.EditorRoots(idx.platform)
	if err != nil {
		return nil, ee.Wrap(err, "cannot list editor roots")
	}
	return roots, nil
}

func (idx *Index) Platform() unity.Platform {
	return idx.platform
}

func (idx *Index) Probe() Probe {
	return idx.probe
}

func (idx *Index) scanRoot(ctx context.Context, root string) ([]*unity.Installation, error) {
	candidates, err := idx.probe.Candidates(root)
	if err != nil {
		if ee.Is(err, fs.ErrNotExist) {
			slog.Debug("skip missing root", "root", root)
			return nil, nil
		}
		return nil, err
	}

	var out []*unity.Installation
	for _, location := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		inst, err := ReadInstallation(idx.probe, location, idx.platform)
		if err != nil {
			if ee.Is(err, ErrNotAnInstallation) {
				slog.Debug("skip non installation", "location", location)
			} else {
				slog.Warn("skip unreadable installation", "location", location, "error", err)
			}
			continue
		}

		slog.Debug("found installation", "location", inst.Location, "version", inst.Version.String(), "components", inst.Components.String())
		out = append(out, inst)
	}

	return out, nil
}

// ReadInstallation reads the installation at location through probe.
func ReadInstallation(probe Probe, location string, platform unity.Platform) (*unity.Installation, error) {
	version, err := probe.ReadEditorVersion(location)
	if err != nil {
		return nil, err
	}

	components, err := probe.InstalledComponents(location, platform)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot read components of %s", location)
	}

	inst := unity.NewInstallation(location, version)
	inst.Components = components.Clone()
	return inst, nil
}

// FindByVersion returns the first installation in scan order that matches v
// under policy, or ErrNotFound.
func (idx *Index) FindByVersion(v unity.Version, policy Policy) (Match, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, inst := range idx.installations {
		if kind := unity.Match(v, inst.Version); policy.accepts(kind) {
			return Match{Installation: inst.Clone(), Kind: kind}, nil
		}
	}

	return Match{}, ee.Wrapf(ErrNotFound, "%s (%s)", v, policy)
}

// FindAll returns every matching installation in scan order.
func (idx *Index) FindAll(v unity.Version, policy Policy) []Match {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Match
	for _, inst := range idx.installations {
		if kind := unity.Match(v, inst.Version); policy.accepts(kind) {
			out = append(out, Match{Installation: inst.Clone(), Kind: kind})
		}
	}
	return out
}

// FindByLocation returns the installation at location.
func (idx *Index) FindByLocation(location string) (*unity.Installation, bool) {
	location = filepath.Clean(location)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, inst := range idx.installations {
		if inst.Location == location {
			return inst.Clone(), true
		}
	}
	return nil, false
}

func (idx *Index) All() []*unity.Installation {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*unity.Installation, len(idx.installations))
	for i, inst := range idx.installations {
		out[i] = inst.Clone()
	}
	return out
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.installations)
}

// Register inserts inst or updates the entry at the same location in place,
// keeping its position in the scan order.
func (idx *Index) Register(inst *unity.Installation) {
	inst = inst.Clone()
	inst.Location = filepath.Clean(inst.Location)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, existing := range idx.installations {
		if existing.Location != inst.Location {
			continue
		}
		if existing.Version == inst.Version {
			existing.Components = existing.Components.Union(inst.Components)
		} else {
			existing.Version = inst.Version
			existing.Components = inst.Components
		}
		return
	}

	idx.installations = append(idx.installations, inst)
}
