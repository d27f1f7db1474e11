package version

import (
	"fmt"
	"runtime"
)

// set with -ldflags "-X github.com/ImSingee/uvm/internal/version.version=..."
var (
	version = "DEV"
	commit  = ""
	buildAt = ""
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

func BuildAt() string {
	return buildAt
}

func GetVersionString() string {
	return fmt.Sprintf("%s\nCommit: %s\nBuild At: %s\nPlatform: %s/%s", version, commit, buildAt, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every download request.
func UserAgent() string {
	return fmt.Sprintf("uvm/%s (%s; %s)", version, runtime.GOOS, runtime.GOARCH)
}
