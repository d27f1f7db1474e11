package catalog

import (
	"github.com/ImSingee/uvm/internal/unity"
)

var (
	allDesktop  = []unity.Platform{unity.PlatformMacOS, unity.PlatformWindows}
	windowsOnly = []unity.Platform{unity.PlatformWindows}
	macOnly     = []unity.Platform{unity.PlatformMacOS}
	nonWindows  = []unity.Platform{unity.PlatformMacOS, unity.PlatformLinux}
	nonMac      = []unity.Platform{unity.PlatformWindows, unity.PlatformLinux}
)

const androidPlayer = "PlaybackEngines/AndroidPlayer"

// DefaultEntries returns the built-in component table.
//
// Markers are relative to the editor data directory (Editor/Data on linux
// and windows, the installation root on macOS).
func DefaultEntries() []Entry {
	return []Entry{
		{Component: unity.Editor},
		{Component: unity.Mono},
		{Component: unity.Documentation, Marker: "Documentation"},
		{Component: unity.StandardAssets, Until: Release{2019, 4}},
		{Component: unity.ExampleProject},
		{Component: unity.Example},
		{Component: unity.MonoDevelop, Until: Release{2017, 4}},
		{Component: unity.VisualStudio, Platforms: allDesktop},
		{Component: unity.VisualStudioProfessionalUnityWorkload, Platforms: windowsOnly},
		{Component: unity.VisualStudioEnterpriseUnityWorkload, Platforms: windowsOnly},

		{
			Component: unity.Android,
			Children:  []unity.Component{unity.AndroidSdkNdkTools, unity.AndroidOpenJdk},
			Marker:    androidPlayer,
		},
		{
			Component: unity.AndroidSdkNdkTools,
			Since:     Release{2019, 1},
			Children: []unity.Component{
				unity.AndroidSdkPlatforms,
				unity.AndroidSdkPlatformTools,
				unity.AndroidSdkBuildTools,
				unity.AndroidNdk,
			},
			Marker: androidPlayer + "/SDK",
		},
		{Component: unity.AndroidSdkPlatforms, Since: Release{2021, 1}, Marker: androidPlayer + "/SDK/platforms"},
		{Component: unity.AndroidSdkPlatformTools, Since: Release{2021, 1}, Marker: androidPlayer + "/SDK/platform-tools"},
		{Component: unity.AndroidSdkBuildTools, Since: Release{2021, 1}, Marker: androidPlayer + "/SDK/build-tools"},
		{Component: unity.AndroidNdk, Since: Release{2021, 1}, Marker: androidPlayer + "/NDK"},
		{Component: unity.AndroidOpenJdk, Since: Release{2019, 2}, Marker: androidPlayer + "/OpenJDK"},

		{Component: unity.Ios, Platforms: allDesktop, Marker: "PlaybackEngines/iOSSupport"},
		{Component: unity.TvOs, Platforms: allDesktop},
		{Component: unity.AppleTV, Platforms: allDesktop, Marker: "PlaybackEngines/AppleTVSupport"},
		{Component: unity.WebGl, Marker: "PlaybackEngines/WebGLSupport"},

		{Component: unity.Linux, Marker: "PlaybackEngines/LinuxStandaloneSupport"},
		{Component: unity.LinuxMono},
		{Component: unity.Windows, Platforms: nonWindows, Marker: "PlaybackEngines/WindowsStandaloneSupport"},
		{Component: unity.WindowsMono, Platforms: nonWindows},
		{Component: unity.WindowsIL2CCP, Platforms: windowsOnly},
		{Component: unity.Mac, Platforms: nonMac, Marker: "PlaybackEngines/MacStandaloneSupport"},
		{Component: unity.MacIL2CPP, Platforms: macOnly},
		{Component: unity.MacMono, Platforms: nonMac},

		{Component: unity.Metro, Platforms: windowsOnly},
		{Component: unity.UwpIL2CPP, Platforms: windowsOnly},
		{Component: unity.UwpNet, Platforms: windowsOnly},
		{Component: unity.UniversalWindowsPlatform, Platforms: windowsOnly, Marker: "PlaybackEngines/MetroSupport"},

		{Component: unity.Samsungtv, Until: Release{2017, 2}},
		{Component: unity.SamsungTV, Until: Release{2017, 2}},
		{Component: unity.Tizen, Until: Release{2017, 2}},

		{Component: unity.Vuforia, Until: Release{2017, 1}},
		{Component: unity.VuforiaAR, Since: Release{2017, 2}},

		{Component: unity.Facebook, Until: Release{2019, 3}},
		{Component: unity.FacebookGames, Until: Release{2019, 3}},
		{Component: unity.FacebookGameRoom, Platforms: windowsOnly, Until: Release{2019, 3}},

		{Component: unity.Lumin, Since: Release{2018, 4}, Until: Release{2022, 1}, Marker: "PlaybackEngines/LuminSupport"},
	}
}
