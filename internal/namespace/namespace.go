package namespace

import (
	"errors"
	"fmt"
	"strings"
)

// Namespace is a hierarchical event name using dot notation.
// Examples: "file.save", "system.io.opened", "file.*"
type Namespace string

const (
	// Separator is the character used to separate namespace segments.
	Separator = "."

	// Wildcard is the reserved trailing segment. A namespace ending in it
	// matches its base namespace and everything nested below it.
	Wildcard = "*"
)

// ErrMalformed is returned when a namespace fails structural validation.
var ErrMalformed = errors.New("malformed namespace")

// Parse validates a raw string and returns it as a Namespace.
// A valid namespace:
//   - Is not empty
//   - Does not start or end with a separator
//   - Does not contain empty segments (no consecutive separators)
//   - Uses the wildcard only as a complete, final segment
func Parse(s string) (Namespace, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrMalformed)
	}

	segments := strings.Split(s, Separator)
	for i, seg := range segments {
		if seg == "" {
			return "", fmt.Errorf("%w: %q contains an empty segment", ErrMalformed, s)
		}
		if strings.Contains(seg, Wildcard) {
			if seg != Wildcard {
				return "", fmt.Errorf("%w: %q mixes wildcard with segment text", ErrMalformed, s)
			}
			if i != len(segments)-1 {
				return "", fmt.Errorf("%w: %q uses wildcard before the final segment", ErrMalformed, s)
			}
		}
	}

	return Namespace(s), nil
}

// String returns the namespace as a string.
func (n Namespace) String() string {
	return string(n)
}

// Segments returns the namespace split by the separator.
func (n Namespace) Segments() []string {
	if n == "" {
		return nil
	}
	return strings.Split(string(n), Separator)
}

// SegmentCount returns the number of segments in the namespace.
func (n Namespace) SegmentCount() int {
	if n == "" {
		return 0
	}
	return strings.Count(string(n), Separator) + 1
}

// IsWildcard returns true if the namespace ends in the wildcard segment.
func (n Namespace) IsWildcard() bool {
	return n == Wildcard || strings.HasSuffix(string(n), Separator+Wildcard)
}

// Base returns the namespace with a trailing wildcard segment removed.
// For concrete namespaces it returns the namespace unchanged.
//
// Example: "file.*" -> "file", "*" -> ""
func (n Namespace) Base() Namespace {
	if n == Wildcard {
		return ""
	}
	if n.IsWildcard() {
		return n[:len(n)-2]
	}
	return n
}

// Child returns a child namespace by appending a segment.
func (n Namespace) Child(segment string) Namespace {
	if n == "" {
		return Namespace(segment)
	}
	return Namespace(string(n) + Separator + segment)
}

// Matches reports whether this pattern matches the given concrete target.
// A concrete pattern matches only itself. A wildcard pattern matches its
// base namespace and every namespace nested below the base.
func (n Namespace) Matches(target Namespace) bool {
	if !n.IsWildcard() {
		return n == target
	}
	base := n.Base()
	if base == "" {
		return true
	}
	if target == base {
		return true
	}
	return strings.HasPrefix(string(target), string(base)+Separator)
}
