// Package shells converts between command lines and argument lists.
package shells

import (
	"strings"

	"github.com/alessio/shellescape"
	"github.com/google/shlex"
)

func Quote(arg string) string {
	return shellescape.Quote(arg)
}

func Join(cmdAndArgs []string) string {
	return shellescape.QuoteCommand(cmdAndArgs)
}

// Line renders env and args the way they would be typed in a shell,
// e.g. `UVM_COMPONENT=android installer --module android`.
// Malformed env entries (no "=") are left out.
func Line(env []string, cmdAndArgs []string) string {
	parts := make([]string, 0, len(env)+1)
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		parts = append(parts, k+"="+Quote(v))
	}
	parts = append(parts, Join(cmdAndArgs))
	return strings.Join(parts, " ")
}

// Split splits cmd with shell quoting rules. It never runs a shell.
func Split(cmd string) ([]string, error) {
	return shlex.Split(cmd)
}
