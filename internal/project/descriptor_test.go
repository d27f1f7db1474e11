package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ImSingee/go-ex/ee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/uvm/internal/unity"
	"github.com/ImSingee/uvm/internal/unity/hashes"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, SettingsDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, SettingsDir, VersionFile), []byte(content), 0644))

	return root
}

func TestReadDescriptor(t *testing.T) {
	root := writeProject(t, "m_EditorVersion: 2020.3.38f1\nm_EditorVersionWithRevision: 2020.3.38f1 (8f5fde82e2dc)\n")

	d, err := ReadDescriptor(root)
	require.NoError(t, err)
	assert.Equal(t, "2020.3.38f1", d.EditorVersion)
	assert.Equal(t, "2020.3.38f1 (8f5fde82e2dc)", d.EditorVersionWithRevision)
	assert.Equal(t, filepath.Join(root, SettingsDir, VersionFile), d.Path)

	// the file itself and the settings dir are accepted too
	d2, err := ReadDescriptor(d.Path)
	require.NoError(t, err)
	assert.Equal(t, d, d2)

	d3, err := ReadDescriptor(filepath.Join(root, SettingsDir))
	require.NoError(t, err)
	assert.Equal(t, d, d3)
}

func TestReadDescriptorMissing(t *testing.T) {
	_, err := ReadDescriptor(t.TempDir())
	require.Error(t, err)
	assert.True(t, ee.Is(err, ErrNoDescriptor))
}

func TestParseDescriptorInvalid(t *testing.T) {
	_, err := ParseDescriptor([]byte("foo: bar\n"))
	assert.Error(t, err)

	_, err = ParseDescriptor([]byte("m_EditorVersion: [1, 2\n"))
	assert.Error(t, err)
}

func TestResolveVersion(t *testing.T) {
	table := hashes.Table{"2020.3.38f1": "8f5fde82e2dc"}

	t.Run("base only with known hash", func(t *testing.T) {
		v, err := ResolveVersion(Descriptor{EditorVersion: "2020.3.38f1"}, table)
		require.NoError(t, err)
		assert.Equal(t, unity.MustParse("2020.3.38f1 (8f5fde82e2dc)"), v)
	})

	t.Run("base only with unknown hash", func(t *testing.T) {
		v, err := ResolveVersion(Descriptor{EditorVersion: "2021.1.0f1"}, table)
		require.NoError(t, err)
		assert.Equal(t, unity.MustParse("2021.1.0f1"), v)
		assert.False(t, v.HasRevision())
	})

	t.Run("revision field wins over the table", func(t *testing.T) {
		v, err := ResolveVersion(Descriptor{
			EditorVersion:             "2020.3.38f1",
			EditorVersionWithRevision: "2020.3.38f1 (aaaaaaaaaaaa)",
		}, table)
		require.NoError(t, err)
		assert.Equal(t, unity.MustParse("2020.3.38f1 (aaaaaaaaaaaa)"), v)
	})

	t.Run("revision field equal to the table", func(t *testing.T) {
		v, err := ResolveVersion(Descriptor{EditorVersionWithRevision: "2020.3.38f1 (8f5fde82e2dc)"}, hashes.None)
		require.NoError(t, err)
		assert.Equal(t, "8f5fde82e2dc", v.Revision)
	})

	t.Run("nil lookup", func(t *testing.T) {
		v, err := ResolveVersion(Descriptor{EditorVersion: "2020.3.38f1"}, nil)
		require.NoError(t, err)
		assert.False(t, v.HasRevision())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ResolveVersion(Descriptor{EditorVersion: "2020.3"}, table)
		assert.ErrorIs(t, err, unity.ErrInvalidFormat)

		_, err = ResolveVersion(Descriptor{EditorVersionWithRevision: "2020.3.38f1 (zz)"}, table)
		assert.ErrorIs(t, err, unity.ErrInvalidFormat)
	})
}

func TestDetectVersion(t *testing.T) {
	root := writeProject(t, "m_EditorVersion: 2020.3.38f1\n")
	table := hashes.Table{"2020.3.38f1": "8f5fde82e2dc"}

	v, err := DetectVersion(root, true, table)
	require.NoError(t, err)
	assert.Equal(t, "2020.3.38f1 (8f5fde82e2dc)", v.String())

	v, err = DetectVersion(root, false, table)
	require.NoError(t, err)
	assert.Equal(t, "2020.3.38f1", v.String())
}
