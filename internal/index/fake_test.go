package index

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/ImSingee/uvm/internal/unity"
)

type fakeInstallation struct {
	version    unity.Version
	components unity.ComponentSet
}

// fakeProbe serves installations from memory. roots maps a root to its
// candidate locations in order.
type fakeProbe struct {
	mu            sync.Mutex
	roots         map[string][]string
	defaultRoots  []string
	installations map[string]fakeInstallation
	failing       map[string]error
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		roots:         map[string][]string{},
		installations: map[string]fakeInstallation{},
		failing:       map[string]error{},
	}
}

func (f *fakeProbe) add(root, location, version string, components ...unity.Component) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.roots[root] = append(f.roots[root], location)
	f.installations[location] = fakeInstallation{
		version:    unity.MustParse(version),
		components: unity.NewComponentSet(components...),
	}
}

func (f *fakeProbe) EditorRoots(unity.Platform) ([]string, error) {
	return f.defaultRoots, nil
}

func (f *fakeProbe) Candidates(root string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failing[root]; ok {
		return nil, err
	}
	c, ok := f.roots[root]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", root, fs.ErrNotExist)
	}
	return append([]string(nil), c...), nil
}

func (f *fakeProbe) ReadEditorVersion(location string) (unity.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inst, ok := f.installations[location]
	if !ok {
		return unity.Version{}, ErrNotAnInstallation
	}
	return inst.version, nil
}

func (f *fakeProbe) InstalledComponents(location string, _ unity.Platform) (unity.ComponentSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.installations[location].components.Clone(), nil
}
