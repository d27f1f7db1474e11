package unity

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/ImSingee/go-ex/mr"
)

// ComponentSet is an unordered set of components.
//
// The zero value is an empty set ready for reads; use NewComponentSet
// (or Add on a non-nil set) for writes.
type ComponentSet map[Component]struct{}

func NewComponentSet(components ...Component) ComponentSet {
	s := make(ComponentSet, len(components))
	for _, c := range components {
		s[c] = struct{}{}
	}
	return s
}

func (s ComponentSet) Add(components ...Component) {
	for _, c := range components {
		s[c] = struct{}{}
	}
}

func (s ComponentSet) Has(c Component) bool {
	_, ok := s[c]
	return ok
}

func (s ComponentSet) Len() int {
	return len(s)
}

func (s ComponentSet) Clone() ComponentSet {
	c := make(ComponentSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Sorted returns the members ordered by numeric id.
func (s ComponentSet) Sorted() []Component {
	out := make([]Component, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Difference returns s - other.
func (s ComponentSet) Difference(other ComponentSet) ComponentSet {
	d := make(ComponentSet)
	for c := range s {
		if !other.Has(c) {
			d[c] = struct{}{}
		}
	}
	return d
}

func (s ComponentSet) Union(other ComponentSet) ComponentSet {
	u := s.Clone()
	for c := range other {
		u[c] = struct{}{}
	}
	return u
}

func (s ComponentSet) Intersect(other ComponentSet) ComponentSet {
	i := make(ComponentSet)
	for c := range s {
		if other.Has(c) {
			i[c] = struct{}{}
		}
	}
	return i
}

// SubsetOf reports whether every member of s is in other.
func (s ComponentSet) SubsetOf(other ComponentSet) bool {
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

func (s ComponentSet) Equal(other ComponentSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

func (s ComponentSet) String() string {
	names := mr.Map(s.Sorted(), func(c Component, _index int) string {
		return c.String()
	})
	return "{" + strings.Join(names, ", ") + "}"
}

// MarshalJSON encodes the set as an array of numeric ids ordered by id.
func (s ComponentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *ComponentSet) UnmarshalJSON(data []byte) error {
	var list []Component
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewComponentSet(list...)
	return nil
}
