package filestore

import "time"

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "book/m1/index.cnxml").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ETag is the object's entity tag, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	LastModified time.Time

	// IsDir is true for virtual directories (common prefixes) and for
	// folder-marker objects whose key ends in "/".
	IsDir bool
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	// Use "" to list everything in the bucket.
	Prefix string

	// Recursive, when true, lists all objects under the prefix without
	// grouping by virtual directories. When false, common prefixes
	// (virtual "folders") are returned as IsDir entries.
	Recursive bool
}
