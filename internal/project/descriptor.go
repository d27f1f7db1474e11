package project

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"gopkg.in/yaml.v3"

	"github.com/ImSingee/uvm/internal/unity"
	"github.com/ImSingee/uvm/internal/unity/hashes"
)

const (
	SettingsDir    = "ProjectSettings"
	VersionFile    = "ProjectVersion.txt"
	VersionFileRel = SettingsDir + string(filepath.Separator) + VersionFile
)

var ErrNoDescriptor = ee.New("project version file not found")

// Descriptor is the content of ProjectSettings/ProjectVersion.txt.
//
//	m_EditorVersion: 2020.3.38f1
//	m_EditorVersionWithRevision: 2020.3.38f1 (8f5fde82e2dc)
//
// Projects saved by older editors only have m_EditorVersion.
type Descriptor struct {
	Path string `yaml:"-"`

	EditorVersion             string `yaml:"m_EditorVersion"`
	EditorVersionWithRevision string `yaml:"m_EditorVersionWithRevision"`
}

// DescriptorPath returns the version file of the project at projectPath.
// projectPath may also point at the version file itself.
func DescriptorPath(projectPath string) string {
	if strings.EqualFold(filepath.Base(projectPath), VersionFile) {
		return projectPath
	}
	if strings.EqualFold(filepath.Base(projectPath), SettingsDir) {
		return filepath.Join(projectPath, VersionFile)
	}
	return filepath.Join(projectPath, VersionFileRel)
}

func ReadDescriptor(projectPath string) (Descriptor, error) {
	p := DescriptorPath(projectPath)
	slog.Debug("read project descriptor", "path", p)

	data, err := os.ReadFile(p)
	if err != nil {
		if ee.Is(err, fs.ErrNotExist) {
			return Descriptor{}, ee.Wrapf(ErrNoDescriptor, "%s", p)
		}
		return Descriptor{}, ee.Wrapf(err, "cannot read %s", p)
	}

	d, err := ParseDescriptor(data)
	if err != nil {
		return Descriptor{}, ee.Wrapf(err, "invalid project version file %s", p)
	}
	d.Path = p

	return d, nil
}

func ParseDescriptor(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, ee.Wrap(err, "cannot parse yaml")
	}

	d.EditorVersion = strings.TrimSpace(d.EditorVersion)
	d.EditorVersionWithRevision = strings.TrimSpace(d.EditorVersionWithRevision)

	if d.EditorVersion == "" && d.EditorVersionWithRevision == "" {
		return Descriptor{}, ee.New("neither m_EditorVersion nor m_EditorVersionWithRevision is set")
	}

	return d, nil
}

// ResolveVersion returns the editor version the descriptor asks for.
//
// The revision qualified field wins when present. Otherwise the base
// version is used and the revision is taken from lookup when it knows one.
func ResolveVersion(d Descriptor, lookup hashes.Lookup) (unity.Version, error) {
	if d.EditorVersionWithRevision != "" {
		v, err := unity.Parse(d.EditorVersionWithRevision)
		if err != nil {
			return unity.Version{}, err
		}
		return v, nil
	}

	v, err := unity.Parse(d.EditorVersion)
	if err != nil {
		return unity.Version{}, err
	}

	if lookup == nil {
		return v, nil
	}
	if hash, ok := lookup.HashForBase(v.Base); ok {
		slog.Debug("attach known revision", "version", v.Base, "revision", hash)
		return v.WithRevision(hash), nil
	}

	return v, nil
}

// DetectVersion reads and resolves the editor version of a project.
// With withRevision == false the revision is stripped from the result.
func DetectVersion(projectPath string, withRevision bool, lookup hashes.Lookup) (unity.Version, error) {
	d, err := ReadDescriptor(projectPath)
	if err != nil {
		return unity.Version{}, err
	}

	v, err := ResolveVersion(d, lookup)
	if err != nil {
		return unity.Version{}, ee.Wrapf(err, "invalid editor version in %s", d.Path)
	}

	if !withRevision {
		return v.BaseVersion(), nil
	}
	return v, nil
}
