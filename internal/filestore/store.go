// Package filestore defines the interface the resource uses to reach an
// object store.
//
// Providers (currently MinIO / any S3-compatible endpoint) implement Store.
// The resource actions depend only on this package, never on a provider.
//
// Usage:
//
//	cfg, err := filestore.ConfigFromEndpoint("https://s3.amazonaws.com", key, secret, "us-east-1")
//	if err != nil { ... }
//	store, err := minio.New(cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	objects, err := store.ListObjects(ctx, "artifacts", filestore.ListOptions{Recursive: true})
package filestore

import "context"

// Store is the single interface all storage providers implement.
type Store interface {
	// Close releases any held resources.
	Close() error

	// ListObjects returns the objects in bucket that match opts, in the
	// order the backend lists them (lexical by key for S3).
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// DownloadFile writes the object at key to the local path dest,
	// creating missing parent directories and replacing any existing file.
	DownloadFile(ctx context.Context, bucket, key, dest string) error

	// UploadFile stores the local file src as key inside bucket.
	UploadFile(ctx context.Context, bucket, key, src string) (*ObjectInfo, error)
}
