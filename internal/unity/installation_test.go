package unity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallationIdentity(t *testing.T) {
	v := MustParse("2020.3.38f1")

	a := NewInstallation("/opt/unity/2020.3.38f1", v, Android)
	b := NewInstallation("/opt/unity/2020.3.38f1/", v)
	c := NewInstallation("/home/ci/unity/2020.3.38f1", v, Android)

	assert.True(t, a.Equal(b), "components do not take part in identity")
	assert.False(t, a.Equal(c), "same version at another location is another installation")
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(nil))
}

func TestInstallationClone(t *testing.T) {
	a := NewInstallation("/opt/unity/2020.3.38f1", MustParse("2020.3.38f1"), Android)
	c := a.Clone()
	c.Components.Add(Ios)

	assert.False(t, a.Components.Has(Ios))
	assert.True(t, a.HasComponents(NewComponentSet(Android)))
	assert.False(t, a.HasComponents(NewComponentSet(Android, Ios)))
}

func TestExecutable(t *testing.T) {
	i := NewInstallation("/u", MustParse("2020.3.38f1"))

	assert.Equal(t, filepath.Join("/u", "Editor", "Unity"), i.Executable(PlatformLinux))
	assert.Equal(t, filepath.Join("/u", "Editor", "Unity.exe"), i.Executable(PlatformWindows))
	assert.Equal(t, filepath.Join("/u", "Unity.app", "Contents", "MacOS", "Unity"), i.Executable(PlatformMacOS))
}

func TestParsePlatform(t *testing.T) {
	for in, want := range map[string]Platform{
		"linux":   PlatformLinux,
		"macOS":   PlatformMacOS,
		"darwin":  PlatformMacOS,
		"Windows": PlatformWindows,
		"win":     PlatformWindows,
	} {
		p, err := ParsePlatform(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, p, in)
		assert.True(t, p.IsSupported())
	}

	_, err := ParsePlatform("plan9")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.False(t, Platform("plan9").IsSupported())
}
