package glob

import (
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/gobwas/glob"
)

// Patterns is a list of compiled glob patterns. A name matches when any
// pattern matches it.
//
// Patterns containing a "/" are matched against the whole (slash separated)
// name, the others only against its base name.
type Patterns struct {
	sources []string
	globs   []glob.Glob
}

func Compile(patterns ...string) (*Patterns, error) {
	p := &Patterns{}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, ee.Wrapf(err, "invalid pattern %q", pattern)
		}
		p.sources = append(p.sources, pattern)
		p.globs = append(p.globs, g)
	}
	return p, nil
}

func MustCompile(patterns ...string) *Patterns {
	p, err := Compile(patterns...)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether name matches any pattern.
// An empty pattern list matches everything.
func (p *Patterns) Match(name string) bool {
	if p == nil || len(p.globs) == 0 {
		return true
	}

	name = filepath.ToSlash(name)
	for i, g := range p.globs {
		if Match(p.sources[i], g, name) {
			return true
		}
	}
	return false
}

func (p *Patterns) Sources() []string {
	if p == nil {
		return nil
	}
	return p.sources
}

func Match(pattern string, g glob.Glob, name string) bool {
	if strings.Contains(pattern, "/") {
		return g.Match(name)
	}
	return g.Match(filepath.Base(name))
}
