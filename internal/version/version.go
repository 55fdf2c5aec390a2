// Package version parses dot-separated numeric versions out of object keys
// and orders them.
package version

import (
	"slices"
	"strconv"
	"strings"

	"github.com/koustreak/s3-resource/internal/errs"
)

// Version is a tuple of non-negative integers, e.g. "2.10.1" → [2 10 1].
type Version []int

// Unversioned sorts before every parsed Version. Patterns without a capture
// group produce it so that ordering stays total.
var Unversioned = Version{-1}

// Parse splits s on "." and parses every segment as a base-10 integer.
// Any empty or non-numeric segment is an ErrKindInvalidVersion error.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || strings.ContainsAny(p, "+-") {
			return nil, errs.Wrap(errs.ErrKindInvalidVersion, "invalid version "+strconv.Quote(s), err)
		}
		v[i] = n
	}
	return v, nil
}

// Compare orders a and b lexicographically without padding: the first
// differing element decides, and when one tuple is a prefix of the other the
// shorter one is smaller ([1 2] < [1 2 0]).
func Compare(a, b Version) int {
	return slices.Compare(a, b)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return Compare(v, o) < 0
}

// AtLeast reports whether v is not less than threshold.
func (v Version) AtLeast(threshold Version) bool {
	return Compare(v, threshold) >= 0
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
