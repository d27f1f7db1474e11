package unity

import (
	"path/filepath"
)

// Installation is an editor found (or created) at a concrete location.
//
// Two installations are the same installation when location and version
// are equal; the same version at two locations is two installations.
type Installation struct {
	Location   string       `json:"location"`
	Version    Version      `json:"version"`
	Components ComponentSet `json:"components"`
}

type InstallationKey struct {
	Location string
	Version  Version
}

func NewInstallation(location string, version Version, components ...Component) *Installation {
	return &Installation{
		Location:   filepath.Clean(location),
		Version:    version,
		Components: NewComponentSet(components...),
	}
}

func (i *Installation) Key() InstallationKey {
	return InstallationKey{Location: filepath.Clean(i.Location), Version: i.Version}
}

func (i *Installation) Equal(other *Installation) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Key() == other.Key()
}

// HasComponents reports whether every given component is installed.
func (i *Installation) HasComponents(components ComponentSet) bool {
	return components.SubsetOf(i.Components)
}

// Clone returns a copy that does not share the component set.
func (i *Installation) Clone() *Installation {
	c := *i
	c.Components = i.Components.Clone()
	return &c
}

// Executable returns the path of the editor executable for the platform.
func (i *Installation) Executable(platform Platform) string {
	return filepath.Join(i.Location, ExecutableRelPath(platform))
}

// ExecutableRelPath is the editor executable path relative to an installation root.
func ExecutableRelPath(platform Platform) string {
	switch platform {
	case PlatformMacOS:
		return filepath.Join("Unity.app", "Contents", "MacOS", "Unity")
	case PlatformWindows:
		return filepath.Join("Editor", "Unity.exe")
	default:
		return filepath.Join("Editor", "Unity")
	}
}
