// Package indextest provides an in-memory index.Probe for tests.
package indextest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"

	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/unity"
)

type installation struct {
	version    unity.Version
	components unity.ComponentSet
}

// Probe keeps installations in memory. It implements index.Probe and
// index.Recorder.
type Probe struct {
	mu            sync.Mutex
	roots         []string
	candidates    map[string][]string
	installations map[string]*installation
	records       int
}

var (
	_ index.Probe    = (*Probe)(nil)
	_ index.Recorder = (*Probe)(nil)
)

func NewProbe(roots ...string) *Probe {
	p := &Probe{
		candidates:    map[string][]string{},
		installations: map[string]*installation{},
	}
	for _, r := range roots {
		p.addRoot(r)
	}
	return p
}

func (p *Probe) addRoot(root string) {
	root = filepath.Clean(root)
	if _, ok := p.candidates[root]; !ok {
		p.roots = append(p.roots, root)
		p.candidates[root] = nil
	}
}

func (p *Probe) addCandidate(location string) {
	root := filepath.Dir(location)
	p.addRoot(root)
	if !slices.Contains(p.candidates[root], location) {
		p.candidates[root] = append(p.candidates[root], location)
	}
}

// Add puts an installation at location; its root is filepath.Dir(location).
func (p *Probe) Add(location string, version string, components ...unity.Component) {
	p.mu.Lock()
	defer p.mu.Unlock()

	location = filepath.Clean(location)
	p.addCandidate(location)
	p.installations[location] = &installation{
		version:    unity.MustParse(version),
		components: unity.NewComponentSet(append(components, unity.Editor)...),
	}
}

// Install marks component as present at location, creating the
// installation when component is the editor.
func (p *Probe) Install(location string, version unity.Version, component unity.Component) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	location = filepath.Clean(location)
	inst, ok := p.installations[location]
	if !ok {
		if component != unity.Editor {
			return fmt.Errorf("no editor at %s", location)
		}
		p.addCandidate(location)
		inst = &installation{version: version, components: unity.NewComponentSet()}
		p.installations[location] = inst
	}
	inst.components.Add(component)
	return nil
}

// Remove deletes the installation at location.
func (p *Probe) Remove(location string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	location = filepath.Clean(location)
	delete(p.installations, location)
	root := filepath.Dir(location)
	p.candidates[root] = slices.DeleteFunc(p.candidates[root], func(s string) bool { return s == location })
}

// Records returns how many times Record was called.
func (p *Probe) Records() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.records
}

func (p *Probe) EditorRoots(unity.Platform) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.roots), nil
}

func (p *Probe) Candidates(root string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.candidates[filepath.Clean(root)]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", root, fs.ErrNotExist)
	}
	return slices.Clone(c), nil
}

func (p *Probe) ReadEditorVersion(location string) (unity.Version, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, ok := p.installations[filepath.Clean(location)]
	if !ok {
		return unity.Version{}, fmt.Errorf("%s: %w", location, index.ErrNotAnInstallation)
	}
	return inst.version, nil
}

func (p *Probe) InstalledComponents(location string, _ unity.Platform) (unity.ComponentSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, ok := p.installations[filepath.Clean(location)]
	if !ok {
		return unity.NewComponentSet(), nil
	}
	return inst.components.Clone(), nil
}

func (p *Probe) Record(location string, version unity.Version, components unity.ComponentSet) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records++

	location = filepath.Clean(location)
	inst, ok := p.installations[location]
	if !ok {
		return fmt.Errorf("record %s: %w", location, index.ErrNotAnInstallation)
	}
	inst.version = version
	inst.components = inst.components.Union(components)
	return nil
}
