// Package selector picks the object versions a pipeline should see.
//
// A listing is first narrowed to the keys matching a regexp (anchored at
// the start of the key, trailing characters allowed), then reduced by a
// version policy:
//
//	every    all matching keys, in listing order
//	latest   the single key with the greatest version (the default)
//	"2.1"    every matching key whose version is >= 2.1, in listing order
//
// The version of a key is read from the capture group named "version", or
// from the only capture group when there is exactly one. Patterns without
// groups give every key the same lowest version.
//
// Selection performs no I/O and is deterministic for a given listing.
package selector

import (
	"regexp"
	"strconv"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/filestore"
	"github.com/koustreak/s3-resource/internal/version"
)

const (
	PolicyLatest = "latest"
	PolicyEvery  = "every"

	// VersionGroup is the capture group name that carries the version.
	VersionGroup = "version"
)

// Config is the filter part of a resource's source.
type Config struct {
	// Pattern is matched against object keys from their first character.
	// An empty Pattern selects nothing.
	Pattern string

	// Policy is PolicyLatest, PolicyEvery, or a minimum version such as "2.1".
	// Empty means PolicyLatest.
	Policy string

	// Prefix restricts the listing the selection runs over.
	Prefix string
}

// Selected is the only object shape exposed to the pipeline.
type Selected struct {
	Key string `json:"key"`

	// Dir marks folder-marker objects, which have no content to fetch.
	Dir bool `json:"-"`
}

// group positions returned by versionGroup
const (
	noGroup        = 0
	ambiguousGroup = -1
)

// Filter is a compiled Config.
type Filter struct {
	pattern string
	re      *regexp.Regexp
	policy  string
	group   int
}

// Compile validates cfg.Pattern. A pattern that does not compile is an
// ErrKindMalformedFilter error. Version policies are checked lazily by
// Select so that an empty listing never fails.
func Compile(cfg Config) (*Filter, error) {
	f := &Filter{pattern: cfg.Pattern, policy: cfg.Policy}
	if cfg.Pattern == "" {
		return f, nil
	}

	re, err := regexp.Compile(`^(?:` + cfg.Pattern + `)`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMalformedFilter, "invalid regexp "+strconv.Quote(cfg.Pattern), err)
	}
	f.re = re
	f.group = versionGroup(re)
	return f, nil
}

// Select runs cfg over objects in one step.
func Select(objects []filestore.ObjectInfo, cfg Config) ([]Selected, error) {
	f, err := Compile(cfg)
	if err != nil {
		return nil, err
	}
	return f.Select(objects)
}

// Empty reports whether the filter has no pattern and so selects nothing.
func (f *Filter) Empty() bool {
	return f.re == nil
}

// Matches reports whether key satisfies the filter's pattern.
func (f *Filter) Matches(key string) bool {
	return f.re != nil && f.re.MatchString(key)
}

// Select applies the filter to objects. The result is never nil.
func (f *Filter) Select(objects []filestore.ObjectInfo) ([]Selected, error) {
	if f.Empty() || len(objects) == 0 {
		return []Selected{}, nil
	}

	var matched []filestore.ObjectInfo
	for _, obj := range objects {
		if f.Matches(obj.Key) {
			matched = append(matched, obj)
		}
	}

	switch f.policy {
	case PolicyEvery:
		return project(matched), nil
	case PolicyLatest, "":
		return f.latest(matched)
	default:
		threshold, err := version.Parse(f.policy)
		if err != nil {
			return nil, err
		}
		return f.atLeast(matched, threshold)
	}
}

// latest folds matched down to the entry with the greatest version. Equal
// versions go to the later LastModified; a full tie keeps the earlier entry.
func (f *Filter) latest(matched []filestore.ObjectInfo) ([]Selected, error) {
	var (
		best    *filestore.ObjectInfo
		bestVer version.Version
	)
	for i := range matched {
		v, err := f.versionOf(matched[i].Key)
		if err != nil {
			return nil, err
		}
		if best == nil {
			best, bestVer = &matched[i], v
			continue
		}
		switch c := version.Compare(v, bestVer); {
		case c > 0, c == 0 && matched[i].LastModified.After(best.LastModified):
			best, bestVer = &matched[i], v
		}
	}

	if best == nil {
		return []Selected{}, nil
	}
	return []Selected{{Key: best.Key, Dir: best.IsDir}}, nil
}

func (f *Filter) atLeast(matched []filestore.ObjectInfo, threshold version.Version) ([]Selected, error) {
	kept := make([]filestore.ObjectInfo, 0, len(matched))
	for _, obj := range matched {
		v, err := f.versionOf(obj.Key)
		if err != nil {
			return nil, err
		}
		if v.AtLeast(threshold) {
			kept = append(kept, obj)
		}
	}
	return project(kept), nil
}

// versionOf extracts the version of a key already known to match.
func (f *Filter) versionOf(key string) (version.Version, error) {
	switch f.group {
	case noGroup:
		return version.Unversioned, nil
	case ambiguousGroup:
		return nil, errs.Newf(errs.ErrKindMalformedFilter,
			"regexp %s has %d capture groups and none is named %q",
			strconv.Quote(f.pattern), f.re.NumSubexp(), VersionGroup)
	}

	m := f.re.FindStringSubmatch(key)
	if m == nil {
		return nil, errs.Newf(errs.ErrKindMalformedFilter, "key %s does not match %s", strconv.Quote(key), strconv.Quote(f.pattern))
	}
	v, err := version.Parse(m[f.group])
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidVersion, "cannot read version of "+strconv.Quote(key), err)
	}
	return v, nil
}

// versionGroup returns the submatch index holding the version, noGroup when
// the pattern captures nothing, or ambiguousGroup when it cannot tell.
func versionGroup(re *regexp.Regexp) int {
	if i := re.SubexpIndex(VersionGroup); i > 0 {
		return i
	}
	switch re.NumSubexp() {
	case 0:
		return noGroup
	case 1:
		return 1
	default:
		return ambiguousGroup
	}
}

func project(objs []filestore.ObjectInfo) []Selected {
	out := make([]Selected, len(objs))
	for i, obj := range objs {
		out[i] = Selected{Key: obj.Key, Dir: obj.IsDir}
	}
	return out
}
