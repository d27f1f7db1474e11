package index

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
	"howett.net/plist"

	"github.com/ImSingee/uvm/internal/unity"
)

// BundleInfoPath is the Info.plist of the macOS editor bundle, relative to
// the installation root.
var BundleInfoPath = filepath.Join("Unity.app", "Contents", "Info.plist")

type bundleInfo struct {
	BundleVersion string `plist:"CFBundleVersion"`
	BuildNumber   string `plist:"UnityBuildNumber"`
}

// ReadBundleVersion reads the editor version the macOS app bundle carries.
// ok is false when there is no Info.plist or it names no version.
func ReadBundleVersion(location string) (v unity.Version, ok bool, err error) {
	filename := filepath.Join(location, BundleInfoPath)

	data, err := os.ReadFile(filename)
	if err != nil {
		if ee.Is(err, fs.ErrNotExist) {
			return unity.Version{}, false, nil
		}
		return unity.Version{}, false, ee.Wrapf(err, "cannot read %s", filename)
	}

	var info bundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return unity.Version{}, false, ee.Wrapf(err, "invalid %s", filename)
	}
	if info.BundleVersion == "" {
		return unity.Version{}, false, nil
	}

	v, err = unity.Parse(info.BundleVersion)
	if err != nil {
		return unity.Version{}, false, ee.Wrapf(err, "invalid CFBundleVersion in %s", filename)
	}
	if info.BuildNumber != "" && !v.HasRevision() {
		v = v.WithRevision(info.BuildNumber)
	}
	return v, true, nil
}
