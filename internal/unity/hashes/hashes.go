// Package hashes knows the revision hashes of released editor versions.
//
// Project descriptors written by older editors only carry the base version;
// the table here lets callers attach the best known revision to it.
package hashes

import (
	"strings"
)

type Lookup interface {
	// HashForBase returns the revision hash of the given base version
	// (e.g. "2020.3.38f1"), if it is known.
	HashForBase(base string) (string, bool)
}

// Table is a static base version -> revision hash mapping.
type Table map[string]string

func (t Table) HashForBase(base string) (string, bool) {
	h, ok := t[strings.TrimSpace(base)]
	if !ok || h == "" {
		return "", false
	}
	return h, true
}

// Merge returns a lookup that consults overrides first and t second.
func (t Table) Merge(overrides map[string]string) Table {
	merged := make(Table, len(t)+len(overrides))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[strings.TrimSpace(k)] = strings.ToLower(strings.TrimSpace(v))
	}
	return merged
}

// Default returns the built-in table of released versions.
func Default() Table {
	return Table(released).Merge(nil)
}

// None is a lookup that knows nothing.
var None Lookup = Table(nil)
