// Package catalog knows which components exist for an editor release and
// how they depend on each other.
package catalog

import (
	"fmt"
	"slices"

	"ocm.software/open-component-model/bindings/go/dag"

	"github.com/ImSingee/uvm/internal/unity"
)

// Release is a year.minor pair used to gate components by editor version.
// The zero value means unbounded.
type Release struct {
	Year  int
	Minor int
}

func (r Release) IsZero() bool {
	return r.Year == 0 && r.Minor == 0
}

func (r Release) String() string {
	if r.IsZero() {
		return "*"
	}
	return fmt.Sprintf("%d.%d", r.Year, r.Minor)
}

// Entry describes one component of the catalog.
type Entry struct {
	Component unity.Component

	// Platforms the component can be installed on; empty means every platform.
	Platforms []unity.Platform
	// Since and Until bound the releases that ship the component, inclusive.
	Since Release
	Until Release

	// Children are the components this one implies.
	Children []unity.Component

	// Marker is the directory, relative to the installation root, whose
	// presence proves the component is installed.
	Marker string
}

func (e *Entry) supports(p unity.Platform) bool {
	return len(e.Platforms) == 0 || slices.Contains(e.Platforms, p)
}

func (e *Entry) ships(v unity.Version) bool {
	if !e.Since.IsZero() && !v.AtLeast(e.Since.Year, e.Since.Minor) {
		return false
	}
	if !e.Until.IsZero() && v.AtLeast(e.Until.Year, e.Until.Minor+1) {
		return false
	}
	return true
}

// Catalog is immutable after New and safe for concurrent reads.
type Catalog struct {
	entries map[unity.Component]*Entry
	graph   *dag.DirectedAcyclicGraph[unity.Component]
	depth   map[unity.Component]int
}

var defaultCatalog = New(DefaultEntries())

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// New builds a catalog from entries. It panics if the entries do not form
// an acyclic graph or reference a component without an entry.
func New(entries []Entry) *Catalog {
	c, err := build(entries)
	if err != nil {
		panic(err)
	}
	return c
}

func build(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[unity.Component]*Entry, len(entries)),
		graph:   dag.NewDirectedAcyclicGraph[unity.Component](),
		depth:   make(map[unity.Component]int, len(entries)),
	}

	for i := range entries {
		e := entries[i]
		if _, ok := c.entries[e.Component]; ok {
			return nil, fmt.Errorf("duplicate catalog entry for %s", e.Component)
		}
		c.entries[e.Component] = &e
		if err := c.graph.AddVertex(e.Component); err != nil {
			return nil, fmt.Errorf("cannot add %s: %w", e.Component, err)
		}
	}

	for _, e := range c.entries {
		for _, child := range e.Children {
			if _, ok := c.entries[child]; !ok {
				return nil, fmt.Errorf("%s implies %s which has no catalog entry", e.Component, child)
			}
			if err := c.graph.AddEdge(e.Component, child); err != nil {
				return nil, fmt.Errorf("cannot add edge %s -> %s: %w", e.Component, child, err)
			}
		}
	}

	order, err := c.graph.TopologicalSort()
	if err != nil {
		return nil, err
	}
	// order lists children before their parents
	slices.Reverse(order)
	for _, parent := range order {
		for _, child := range c.children(parent) {
			c.depth[child] = max(c.depth[child], c.depth[parent]+1)
		}
	}

	return c, nil
}

func (c *Catalog) children(parent unity.Component) []unity.Component {
	v, ok := c.graph.GetVertex(parent)
	if !ok {
		return nil
	}

	var out []unity.Component
	v.Edges.Range(func(key, _ any) bool {
		out = append(out, key.(unity.Component))
		return true
	})
	slices.Sort(out)
	return out
}

// Entry returns the catalog entry of a component.
func (c *Catalog) Entry(component unity.Component) (Entry, bool) {
	e, ok := c.entries[component]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Marker returns the marker directory of a component, if it has one.
func (c *Catalog) Marker(component unity.Component) (string, bool) {
	e, ok := c.entries[component]
	if !ok || e.Marker == "" {
		return "", false
	}
	return e.Marker, true
}

// Markers returns every component that has a marker directory.
func (c *Catalog) Markers() map[unity.Component]string {
	out := make(map[unity.Component]string)
	for comp, e := range c.entries {
		if e.Marker != "" {
			out[comp] = e.Marker
		}
	}
	return out
}

// ChildrenOf returns the components directly implied by component that can
// be installed on platform.
func (c *Catalog) ChildrenOf(component unity.Component, platform unity.Platform) unity.ComponentSet {
	out := unity.NewComponentSet()
	for _, child := range c.children(component) {
		if c.entries[child].supports(platform) {
			out.Add(child)
		}
	}
	return out
}

// AvailableFor returns the components shipped for version on platform.
func (c *Catalog) AvailableFor(version unity.Version, platform unity.Platform) unity.ComponentSet {
	out := unity.NewComponentSet()
	for comp, e := range c.entries {
		if e.supports(platform) && e.ships(version) {
			out.Add(comp)
		}
	}
	return out
}

// IsAvailable reports whether component is shipped for version on platform.
func (c *Catalog) IsAvailable(component unity.Component, version unity.Version, platform unity.Platform) bool {
	e, ok := c.entries[component]
	return ok && e.supports(platform) && e.ships(version)
}

// Closure returns set plus everything it implies on platform, transitively.
func (c *Catalog) Closure(set unity.ComponentSet, platform unity.Platform) unity.ComponentSet {
	out := set.Clone()
	queue := set.Sorted()
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, child := range c.ChildrenOf(next, platform).Sorted() {
			if !out.Has(child) {
				out.Add(child)
				queue = append(queue, child)
			}
		}
	}
	return out
}

// InstallOrder sorts components so that editor comes first and every parent
// comes before its children. Components at the same depth are ordered by id.
func (c *Catalog) InstallOrder(set unity.ComponentSet) []unity.Component {
	out := set.Sorted()
	rank := func(comp unity.Component) int {
		if comp == unity.Editor {
			return -1
		}
		return c.depth[comp]
	}
	slices.SortStableFunc(out, func(a, b unity.Component) int {
		return rank(a) - rank(b)
	})
	return out
}
