// Package path canonicalizes DM type paths.
//
// Every type path has two spellings. The absolute form is rooted at one of
// the built-in base types (usually /datum). The relative form is the shortest
// spelling a user could write, using the abbreviations DM allows for the obj,
// mob, area, turf and atom categories. Paths compare and hash by their
// absolute form, so /obj/item and /datum/atom/movable/obj/item are the same
// path.
package path

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/coregex"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPath is the sentinel wrapped by every untrusted-path failure.
var ErrInvalidPath = errors.New("invalid path")

// Error describes why a raw path string was rejected.
type Error struct {
	Raw    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Raw)
}

// Unwrap lets errors.Is match ErrInvalidPath.
func (e *Error) Unwrap() error { return ErrInvalidPath }

var (
	objPrefix  = []string{"datum", "atom", "movable", "obj"}
	mobPrefix  = []string{"datum", "atom", "movable", "mob"}
	areaPrefix = []string{"datum", "atom", "area"}
	turfPrefix = []string{"datum", "atom", "turf"}
	atomPrefix = []string{"datum", "atom"}

	// Tried in order when shortening an absolute path.
	implicitPrefixes = [][]string{objPrefix, mobPrefix, areaPrefix, turfPrefix, atomPrefix}
)

// coreTypes are built-ins rooted directly at "/" rather than under /datum.
var coreTypes = map[string]bool{
	"datum":              true,
	"image":              true,
	"mutable_appearance": true,
	"sound":              true,
	"icon":               true,
	"matrix":             true,
	"database":           true,
	"exception":          true,
	"regex":              true,
	"dm_filter":          true,
	"generator":          true,
	"particles":          true,
}

var validSegment = mustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("path: compile %q: %v", pattern, err))
	}
	return re
}

// Path is an immutable DM type path.
type Path struct {
	abs string
	rel string
}

// Root returns the root path "/".
func Root() Path {
	return Path{abs: "/", rel: "/"}
}

// MakeTrusted builds a Path from a spelling already known to be legal, such
// as one produced by the object tree. It never fails.
func MakeTrusted(raw string) Path {
	rel := ToRelative(raw)
	return Path{abs: ToAbsolute(rel), rel: rel}
}

// FromTreePath builds a trusted Path from bare segments, e.g. the
// ["obj", "item"] type path of a var declaration.
func FromTreePath(segments []string) Path {
	return MakeTrusted("/" + strings.Join(segments, "/"))
}

// MakeUntrusted validates raw against the path grammar before canonicalizing.
func MakeUntrusted(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "/" {
		return Root(), nil
	}
	if trimmed == "" {
		return Path{}, &Error{Raw: raw, Reason: "empty path"}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Path{}, &Error{Raw: raw, Reason: "invalid path"}
	}

	// The leading "/" yields one empty part; any other empty part is an error.
	parts := strings.Split(trimmed, "/")
	for _, part := range parts[1:] {
		if part == "" {
			return Path{}, &Error{Raw: raw, Reason: "path contains empty parts"}
		}
	}
	for _, part := range parts[1:] {
		if !validSegment.MatchString(part) {
			return Path{}, &Error{Raw: raw, Reason: "path contains invalid parts"}
		}
	}
	return MakeTrusted(trimmed), nil
}

// MustParse is MakeUntrusted for literals; it panics on error.
func MustParse(raw string) Path {
	p, err := MakeUntrusted(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// segments splits a path spelling into its non-empty parts.
func segments(value string) []string {
	raw := strings.Split(value, "/")
	out := raw[:0:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasPrefix(parts, prefix []string) bool {
	if len(parts) < len(prefix) {
		return false
	}
	for i := range prefix {
		if parts[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ToRelative strips the implicit ancestor chain of the abbreviable
// categories, keeping the category name itself: /datum/atom/movable/obj/x
// becomes /obj/x. Other spellings are returned unchanged.
func ToRelative(value string) string {
	parts := segments(value)
	for _, prefix := range implicitPrefixes {
		if hasPrefix(parts, prefix) {
			return "/" + strings.Join(parts[len(prefix)-1:], "/")
		}
	}
	return value
}

// ToAbsolute prepends the implicit ancestor chain selected by the first
// segment. Root maps to itself.
func ToAbsolute(value string) string {
	parts := segments(value)
	if len(parts) == 0 {
		return "/"
	}
	joined := strings.Join(parts, "/")
	switch first := parts[0]; {
	case first == "area", first == "turf":
		return "/datum/atom/" + joined
	case first == "atom":
		return "/datum/" + joined
	case first == "obj", first == "mob":
		return "/datum/atom/movable/" + joined
	case coreTypes[first]:
		return "/" + joined
	default:
		return "/datum/" + joined
	}
}

// Abs returns the fully-qualified spelling.
func (p Path) Abs() string { return p.abs }

// Rel returns the abbreviated spelling.
func (p Path) Rel() string { return p.rel }

// String returns the relative spelling, which is how DM code writes paths.
func (p Path) String() string { return p.rel }

// IsZero reports whether p is the zero value rather than a constructed path.
func (p Path) IsZero() bool { return p.abs == "" }

// IsRoot reports whether p is "/".
func (p Path) IsRoot() bool { return p.abs == "/" }

// Equal compares the absolute forms.
func (p Path) Equal(other Path) bool { return p.abs == other.abs }

// EqualString compares p against a spelling in either form.
func (p Path) EqualString(s string) bool { return p.abs == ToAbsolute(s) }

// Compare orders paths by their absolute forms.
func (p Path) Compare(other Path) int { return strings.Compare(p.abs, other.abs) }

// Key is a map key that identifies p regardless of spelling.
func (p Path) Key() string { return p.abs }

// Stem returns the final segment of the absolute path ("" for root).
func (p Path) Stem() string {
	i := strings.LastIndexByte(p.abs, '/')
	return p.abs[i+1:]
}

// Parent returns the enclosing type path. The root is its own parent.
func (p Path) Parent() Path {
	if p.IsRoot() {
		return p
	}
	parts := segments(p.abs)
	if len(parts) <= 1 {
		return Root()
	}
	return MakeTrusted("/" + strings.Join(parts[:len(parts)-1], "/"))
}

// ChildOf reports whether p lies beneath other (self under other), so
// Root().ChildOf(deep, false) is false and Root().ParentOf(deep, false) is
// true. A non-strict comparison also accepts equality.
func (p Path) ChildOf(other string, strict bool) bool {
	oabs := ToAbsolute(other)
	if p.abs == oabs {
		return !strict
	}
	if oabs == "/" {
		return true
	}
	parts := strings.Split(p.abs, "/")
	oparts := strings.Split(oabs, "/")
	if len(parts) < len(oparts) {
		return false
	}
	for i := range oparts {
		if parts[i] != oparts[i] {
			return false
		}
	}
	return true
}

// ParentOf reports whether other lies beneath p. A non-strict comparison
// also accepts equality.
func (p Path) ParentOf(other string, strict bool) bool {
	oabs := ToAbsolute(other)
	if p.abs == oabs {
		return !strict
	}
	if p.IsRoot() {
		return true
	}
	parts := strings.Split(p.abs, "/")
	oparts := strings.Split(oabs, "/")
	if len(parts) > len(oparts) {
		return false
	}
	for i := range parts {
		if parts[i] != oparts[i] {
			return false
		}
	}
	return true
}

// IsChildOf is ChildOf against another Path.
func (p Path) IsChildOf(other Path, strict bool) bool { return p.ChildOf(other.abs, strict) }

// IsParentOf is ParentOf against another Path.
func (p Path) IsParentOf(other Path, strict bool) bool { return p.ParentOf(other.abs, strict) }

// Join appends a segment (or a slash-separated run of segments), the
// equivalent of DM's p / "seg". The result is validated.
func (p Path) Join(segment string) (Path, error) {
	base := p.abs
	if p.IsRoot() {
		base = ""
	}
	return MakeUntrusted(base + "/" + strings.TrimPrefix(segment, "/"))
}

// JoinPath appends the relative spelling of other to p.
func (p Path) JoinPath(other Path) (Path, error) {
	if p.IsRoot() {
		return MakeUntrusted(other.rel)
	}
	return MakeUntrusted(p.abs + other.rel)
}

// MarshalText emits the relative spelling.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.rel), nil
}

// UnmarshalText parses an untrusted spelling.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := MakeUntrusted(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML emits the relative spelling.
func (p Path) MarshalYAML() (any, error) {
	return p.rel, nil
}

// UnmarshalYAML parses an untrusted spelling from a scalar node.
func (p *Path) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(raw))
}
