package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/uvm/internal/lib/glob"
	"github.com/ImSingee/uvm/internal/unity"
)

func makeEditor(t *testing.T, location string, markers ...string) {
	t.Helper()

	exe := filepath.Join(location, unity.ExecutableRelPath(unity.PlatformLinux))
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0755))
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))

	for _, m := range markers {
		require.NoError(t, os.MkdirAll(filepath.Join(location, "Editor", "Data", filepath.FromSlash(m)), 0755))
	}
}

func TestFSProbeReadsHubLayout(t *testing.T) {
	root := t.TempDir()
	makeEditor(t, filepath.Join(root, "2020.3.38f1"), "PlaybackEngines/AndroidPlayer")
	makeEditor(t, filepath.Join(root, "2019.4.40f1"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	p := NewFSProbe(unity.PlatformLinux, []string{root}, nil)

	idx, err := Scan(context.Background(), p, nil, unity.PlatformLinux)
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())

	all := idx.All()
	assert.Equal(t, "2019.4.40f1", all[0].Version.String())
	assert.Equal(t, "2020.3.38f1", all[1].Version.String())
	tt.AssertEqual(t, unity.NewComponentSet(unity.Editor, unity.Android), all[1].Components)

	_, err = p.ReadEditorVersion(filepath.Join(root, "empty"))
	assert.True(t, ee.Is(err, ErrNotAnInstallation))
}

func TestFSProbePatterns(t *testing.T) {
	root := t.TempDir()
	makeEditor(t, filepath.Join(root, "2020.3.38f1"))
	makeEditor(t, filepath.Join(root, "2021.3.5f1"))

	p := NewFSProbe(unity.PlatformLinux, nil, glob.MustCompile("2021.*"))
	candidates, err := p.Candidates(root)
	require.NoError(t, err)
	tt.AssertEqual(t, []string{filepath.Join(root, "2021.3.5f1")}, candidates)

	_, err = p.Candidates(filepath.Join(root, "missing"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSProbeManifest(t *testing.T) {
	location := filepath.Join(t.TempDir(), "custom-name")
	makeEditor(t, location)

	p := NewFSProbe(unity.PlatformLinux, nil, nil)

	// no manifest and no version in the directory name
	_, err := p.ReadEditorVersion(location)
	assert.True(t, ee.Is(err, ErrUnknownVersion))
	assert.False(t, ee.Is(err, ErrNotAnInstallation))

	v := unity.MustParse("2020.3.38f1 (8f5fde82e2dc)")
	require.NoError(t, p.Record(location, v, unity.NewComponentSet(unity.Editor, unity.WebGl)))

	got, err := p.ReadEditorVersion(location)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	components, err := p.InstalledComponents(location, unity.PlatformLinux)
	require.NoError(t, err)
	tt.AssertEqual(t, unity.NewComponentSet(unity.Editor, unity.WebGl), components)

	// no temp files are left behind
	entries, err := os.ReadDir(location)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Editor", ManifestFile}, names)
}

const unityInfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.unity3d.UnityEditor5.x</string>
	<key>CFBundleShortVersionString</key>
	<string>Unity version 2020.3.38f1 (8f5fde82e2dc)</string>
	<key>CFBundleVersion</key>
	<string>2020.3.38f1</string>
	<key>UnityBuildNumber</key>
	<string>8f5fde82e2dc</string>
</dict>
</plist>
`

func makeMacEditor(t *testing.T, location, plist string) {
	t.Helper()

	exe := filepath.Join(location, unity.ExecutableRelPath(unity.PlatformMacOS))
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0755))
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))
	if plist != "" {
		require.NoError(t, os.WriteFile(filepath.Join(location, BundleInfoPath), []byte(plist), 0644))
	}
}

func TestFSProbeReadsBundleVersion(t *testing.T) {
	root := t.TempDir()
	renamed := filepath.Join(root, "Unity LTS")
	makeMacEditor(t, renamed, unityInfoPlist)

	p := NewFSProbe(unity.PlatformMacOS, []string{root}, nil)

	v, err := p.ReadEditorVersion(renamed)
	require.NoError(t, err)
	assert.Equal(t, "2020.3.38f1 (8f5fde82e2dc)", v.String())

	// the bundle is found by a scan even though the directory is not named after the version
	idx, err := Scan(context.Background(), p, nil, unity.PlatformMacOS)
	require.NoError(t, err)
	found, err := idx.FindByVersion(unity.MustParse("2020.3.38f1 (8f5fde82e2dc)"), RevisionExact)
	require.NoError(t, err)
	assert.Equal(t, renamed, found.Installation.Location)

	// the manifest wins over the bundle
	require.NoError(t, p.Record(renamed, unity.MustParse("2020.3.39f1"), unity.NewComponentSet(unity.Editor)))
	v, err = p.ReadEditorVersion(renamed)
	require.NoError(t, err)
	assert.Equal(t, "2020.3.39f1", v.String())

	// without a plist the directory name is the last resort
	hub := filepath.Join(root, "2021.3.5f1")
	makeMacEditor(t, hub, "")
	v, err = p.ReadEditorVersion(hub)
	require.NoError(t, err)
	assert.Equal(t, "2021.3.5f1", v.String())

	broken := filepath.Join(root, "broken")
	makeMacEditor(t, broken, "<plist><dict><key>CFBundleVersion</key><string>not a version</string></dict></plist>")
	_, err = p.ReadEditorVersion(broken)
	assert.True(t, ee.Is(err, unity.ErrInvalidFormat))
}

func TestManifestUnknownComponents(t *testing.T) {
	location := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(location, ManifestFile),
		[]byte(`{"version": "2021.3.5f1", "components": [0, 4242, "webGl", "futurePlatform"]}`), 0644))

	m, ok, err := ReadManifest(location)
	require.NoError(t, err)
	require.True(t, ok)
	tt.AssertEqual(t, unity.NewComponentSet(unity.Android, unity.WebGl, unity.Unknown), m.Components)

	_, ok, err = ReadManifest(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdjustLocation(t *testing.T) {
	linux := NewFSProbe(unity.PlatformLinux, nil, nil)
	assert.Equal(t, filepath.FromSlash("/opt/unity/2020.3.38f1"), linux.AdjustLocation(filepath.FromSlash("/opt/unity/2020.3.38f1/Editor/Unity")))
	assert.Equal(t, filepath.FromSlash("/opt/unity/2020.3.38f1"), linux.AdjustLocation(filepath.FromSlash("/opt/unity/2020.3.38f1/")))

	mac := NewFSProbe(unity.PlatformMacOS, nil, nil)
	assert.Equal(t, filepath.FromSlash("/Applications/2020.3.38f1"), mac.AdjustLocation(filepath.FromSlash("/Applications/2020.3.38f1/Unity.app")))
	assert.Equal(t, filepath.FromSlash("/Applications/2020.3.38f1"), mac.AdjustLocation(filepath.FromSlash("/Applications/2020.3.38f1/Unity.app/Contents/MacOS/Unity")))
}
