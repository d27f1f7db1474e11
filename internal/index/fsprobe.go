package index

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/exjson"

	"github.com/ImSingee/uvm/internal/catalog"
	"github.com/ImSingee/uvm/internal/lib/glob"
	"github.com/ImSingee/uvm/internal/unity"
)

// ManifestFile is written into every installation root by the installer.
const ManifestFile = ".uvm.json"

// Manifest records what uvm installed at a location.
type Manifest struct {
	Version    string             `json:"version"`
	Revision   string             `json:"revision,omitempty"`
	Components unity.ComponentSet `json:"components"`
}

// FSProbe reads installations from the local filesystem.
//
// An installation is a directory holding the editor executable. Its version
// comes from the manifest, then the app bundle Info.plist (macOS), then the
// directory name (the Hub layout is <root>/<version>). Its components are the manifest components plus every
// component whose marker directory exists.
type FSProbe struct {
	Platform unity.Platform
	// Roots overrides the platform default editor roots.
	Roots []string
	// Patterns filter candidate directory names; nil accepts all.
	Patterns *glob.Patterns
	Catalog  *catalog.Catalog
}

func NewFSProbe(platform unity.Platform, roots []string, patterns *glob.Patterns) *FSProbe {
	return &FSProbe{
		Platform: platform,
		Roots:    roots,
		Patterns: patterns,
		Catalog:  catalog.Default(),
	}
}

// DefaultEditorRoots returns where the Unity Hub installs editors.
func DefaultEditorRoots(platform unity.Platform) []string {
	switch platform {
	case unity.PlatformMacOS:
		return []string{"/Applications/Unity/Hub/Editor"}
	case unity.PlatformWindows:
		return []string{`C:\Program Files\Unity\Hub\Editor`}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, "Unity", "Hub", "Editor")}
}

func (p *FSProbe) EditorRoots(platform unity.Platform) ([]string, error) {
	if len(p.Roots) != 0 {
		return p.Roots, nil
	}
	return DefaultEditorRoots(platform), nil
}

func (p *FSProbe) Candidates(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !p.Patterns.Match(e.Name()) {
			slog.Debug("skip directory not matching patterns", "root", root, "dir", e.Name())
			continue
		}
		out = append(out, filepath.Join(root, e.Name()))
	}
	return out, nil
}

func (p *FSProbe) ExecutablePath(location string) string {
	return filepath.Join(location, unity.ExecutableRelPath(p.Platform))
}

func (p *FSProbe) IsInstallation(location string) bool {
	info, err := os.Stat(p.ExecutablePath(location))
	return err == nil && !info.IsDir()
}

// AdjustLocation maps a path that points at the editor executable (or the
// macOS app bundle) back to the installation root.
func (p *FSProbe) AdjustLocation(path string) string {
	path = filepath.Clean(path)

	rel := unity.ExecutableRelPath(p.Platform)
	if strings.HasSuffix(path, string(filepath.Separator)+rel) {
		return strings.TrimSuffix(path, string(filepath.Separator)+rel)
	}

	if p.Platform == unity.PlatformMacOS && filepath.Base(path) == "Unity.app" {
		return filepath.Dir(path)
	}

	return path
}

func (p *FSProbe) ReadEditorVersion(location string) (unity.Version, error) {
	if !p.IsInstallation(location) {
		return unity.Version{}, ee.Wrapf(ErrNotAnInstallation, "%s", location)
	}

	m, ok, err := ReadManifest(location)
	if err != nil {
		return unity.Version{}, err
	}
	if ok && m.Version != "" {
		v, err := unity.Parse(m.Version)
		if err != nil {
			return unity.Version{}, ee.Wrapf(err, "invalid version in %s", filepath.Join(location, ManifestFile))
		}
		if m.Revision != "" && !v.HasRevision() {
			v = v.WithRevision(m.Revision)
		}
		return v, nil
	}

	if p.Platform == unity.PlatformMacOS {
		v, ok, err := ReadBundleVersion(location)
		if err != nil {
			return unity.Version{}, err
		}
		if ok {
			return v, nil
		}
	}

	v, err := unity.Parse(filepath.Base(location))
	if err != nil {
		return unity.Version{}, ee.Wrapf(ErrUnknownVersion, "%s: %v", location, err)
	}
	return v, nil
}

// dataDir is the directory the catalog markers are relative to.
func (p *FSProbe) dataDir(location string, platform unity.Platform) string {
	if platform == unity.PlatformMacOS {
		return location
	}
	return filepath.Join(location, "Editor", "Data")
}

func (p *FSProbe) catalog() *catalog.Catalog {
	if p.Catalog == nil {
		return catalog.Default()
	}
	return p.Catalog
}

func (p *FSProbe) InstalledComponents(location string, platform unity.Platform) (unity.ComponentSet, error) {
	out := unity.NewComponentSet()

	if p.IsInstallation(location) {
		out.Add(unity.Editor)
	}

	m, ok, err := ReadManifest(location)
	if err != nil {
		return nil, err
	}
	if ok {
		out = out.Union(m.Components)
	}

	data := p.dataDir(location, platform)
	for comp, marker := range p.catalog().Markers() {
		if info, err := os.Stat(filepath.Join(data, filepath.FromSlash(marker))); err == nil && info.IsDir() {
			out.Add(comp)
		}
	}

	return out, nil
}

// Record rewrites the manifest at location. The file is replaced atomically.
func (p *FSProbe) Record(location string, version unity.Version, components unity.ComponentSet) error {
	m := Manifest{
		Version:    version.Base,
		Revision:   version.Revision,
		Components: components,
	}
	return WriteManifest(location, m)
}

// ReadManifest reads the manifest at location. ok is false when there is none.
func ReadManifest(location string) (m Manifest, ok bool, err error) {
	filename := filepath.Join(location, ManifestFile)

	if _, err := os.Stat(filename); err != nil {
		if ee.Is(err, fs.ErrNotExist) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, ee.Wrapf(err, "cannot stat %s", filename)
	}

	if err := exjson.Read(filename, &m); err != nil {
		return Manifest{}, false, ee.Wrapf(err, "cannot read %s", filename)
	}
	if m.Components == nil {
		m.Components = unity.NewComponentSet()
	}
	return m, true, nil
}

func WriteManifest(location string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return ee.Wrap(err, "cannot encode manifest")
	}

	if err := os.MkdirAll(location, 0755); err != nil {
		return ee.Wrapf(err, "cannot create %s", location)
	}

	tmp, err := os.CreateTemp(location, ManifestFile+".*")
	if err != nil {
		return ee.Wrap(err, "cannot create temp manifest")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return ee.Wrap(err, "cannot write temp manifest")
	}
	if err := tmp.Close(); err != nil {
		return ee.Wrap(err, "cannot write temp manifest")
	}

	if err := os.Rename(tmp.Name(), filepath.Join(location, ManifestFile)); err != nil {
		return ee.Wrap(err, "cannot replace manifest")
	}
	return nil
}
