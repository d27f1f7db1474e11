package unity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var ErrInvalidFormat = fmt.Errorf("invalid version format")

// ParseError is returned for malformed version tokens.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidFormat, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidFormat
}

// ReleaseType is the single letter between the patch number and the build
// number, e.g. the "f" in 2020.3.38f1.
type ReleaseType byte

const (
	Experimental ReleaseType = 'x'
	Alpha        ReleaseType = 'a'
	Beta         ReleaseType = 'b'
	Final        ReleaseType = 'f'
	Patch        ReleaseType = 'p'
	China        ReleaseType = 'c'
)

var releaseRank = map[ReleaseType]int{
	Experimental: 0,
	Alpha:        1,
	Beta:         2,
	Final:        3,
	Patch:        4,
	China:        5,
}

func (r ReleaseType) String() string {
	return string(r)
}

// Version identifies an editor release: a base version such as 2020.3.38f1
// and, optionally, the revision hash of the build.
//
// Version is a comparable value type; two versions are == only when the
// base and the revision are both equal.
type Version struct {
	Base     string
	Revision string

	year, minor, patch int
	release            ReleaseType
	build              int
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)([a-z])(\d+)(?:\s*\(\s*([^)]*?)\s*\))?$`)
var revisionPattern = regexp.MustCompile(`^[0-9a-fA-F]{6,40}$`)

// Parse parses `<year>.<minor>.<patch><releaseType><build>` with an optional
// trailing `(<hex-hash>)`.
func Parse(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Version{}, &ParseError{Input: raw, Reason: "empty version"}
	}

	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &ParseError{Input: raw, Reason: "expected <year>.<minor>.<patch><type><build> [(<hash>)]"}
	}

	release := ReleaseType(m[4][0])
	if _, ok := releaseRank[release]; !ok {
		return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("unknown release type %q", m[4])}
	}

	nums := make([]int, 0, 4)
	for _, part := range []string{m[1], m[2], m[3], m[5]} {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("number %q out of range", part)}
		}
		nums = append(nums, n)
	}

	v := newVersion(nums[0], nums[1], nums[2], release, nums[3])

	if strings.Contains(s, "(") {
		hash := m[6]
		if !revisionPattern.MatchString(hash) {
			return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("invalid revision hash %q", hash)}
		}
		v.Revision = strings.ToLower(hash)
	}

	return v, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func newVersion(year, minor, patch int, release ReleaseType, build int) Version {
	return Version{
		Base:    fmt.Sprintf("%d.%d.%d%c%d", year, minor, patch, release, build),
		year:    year,
		minor:   minor,
		patch:   patch,
		release: release,
		build:   build,
	}
}

func (v Version) IsZero() bool {
	return v.Base == ""
}

func (v Version) HasRevision() bool {
	return v.Revision != ""
}

// BaseVersion returns v without its revision.
func (v Version) BaseVersion() Version {
	v.Revision = ""
	return v
}

// WithRevision returns v carrying the given revision hash.
// An empty hash drops the revision.
func (v Version) WithRevision(hash string) Version {
	v.Revision = strings.ToLower(strings.TrimSpace(hash))
	return v
}

func (v Version) Year() int                { return v.year }
func (v Version) Minor() int               { return v.minor }
func (v Version) Patch() int               { return v.patch }
func (v Version) ReleaseType() ReleaseType { return v.release }
func (v Version) Build() int               { return v.build }

// AtLeast reports whether v is year.minor or newer.
func (v Version) AtLeast(year, minor int) bool {
	if v.year != year {
		return v.year > year
	}
	return v.minor >= minor
}

func (v Version) String() string {
	if v.Revision == "" {
		return v.Base
	}
	return v.Base + " (" + v.Revision + ")"
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Compare orders versions by year.minor.patch, then release type, then build
// number. Revisions do not take part in ordering.
func Compare(a, b Version) int {
	sa := semver.New(uint64(a.year), uint64(a.minor), uint64(a.patch), "", "")
	sb := semver.New(uint64(b.year), uint64(b.minor), uint64(b.patch), "", "")
	if c := sa.Compare(sb); c != 0 {
		return c
	}

	if ra, rb := releaseRank[a.release], releaseRank[b.release]; ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch {
	case a.build < b.build:
		return -1
	case a.build > b.build:
		return 1
	}
	return 0
}

// MatchKind tells how an installed version matched a requested one.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchBaseOnly
	MatchRevisionExact
)

func (k MatchKind) String() string {
	switch k {
	case MatchBaseOnly:
		return "base-only"
	case MatchRevisionExact:
		return "revision-exact"
	default:
		return "none"
	}
}

func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Match compares a requested version against a candidate.
//
// Equal bases with equal revisions on both sides are a revision-exact match.
// Equal bases where either side lacks a revision are a base-only match.
// Two different revisions of the same base are different builds and do not
// match at all.
func Match(requested, candidate Version) MatchKind {
	if requested.Base != candidate.Base || requested.IsZero() {
		return MatchNone
	}

	if requested.HasRevision() && candidate.HasRevision() {
		if requested.Revision == candidate.Revision {
			return MatchRevisionExact
		}
		return MatchNone
	}

	return MatchBaseOnly
}
