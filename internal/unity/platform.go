package unity

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform is the host operating system an editor is installed for.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "darwin"
	PlatformWindows Platform = "windows"
)

var ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")

func CurrentPlatform() Platform {
	return Platform(runtime.GOOS)
}

// ParsePlatform accepts GOOS names and the common aliases (macos, mac, osx, win).
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linux":
		return PlatformLinux, nil
	case "darwin", "macos", "mac", "osx":
		return PlatformMacOS, nil
	case "windows", "win":
		return PlatformWindows, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
}

func (p Platform) IsSupported() bool {
	switch p {
	case PlatformLinux, PlatformMacOS, PlatformWindows:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}
