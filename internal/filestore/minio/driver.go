// Package minio provides a MinIO / S3 implementation of filestore.Store.
//
// Usage:
//
//	cfg, err := filestore.ConfigFromEndpoint("http://localhost:9000", "minioadmin", "minioadmin", "")
//	if err != nil { ... }
//	store, err := minio.New(cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	objects, err := store.ListObjects(ctx, "artifacts", filestore.ListOptions{Recursive: true})
package minio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

var _ filestore.Store = (*Driver)(nil)

// New builds a Driver from cfg. No request is made until the first call.
func New(cfg *filestore.Config) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to create minio client", err)
	}
	return &Driver{client: client}, nil
}

// --- filestore.Store implementation ---

// Close is a no-op for MinIO; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// ListObjects returns objects in bucket that match opts.
func (d *Driver) ListObjects(ctx context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	listOpts := miniogo.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: opts.Recursive,
	}

	// Cancelling stops the SDK's listing goroutine on an early return.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var results []filestore.ObjectInfo
	for obj := range d.client.ListObjects(ctx, bucket, listOpts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, errs.ErrKindConnectionFailed, "failed to list objects")
		}

		results = append(results, filestore.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			IsDir:        strings.HasSuffix(obj.Key, "/"),
		})
	}

	return results, nil
}

// DownloadFile writes the object at key to dest, creating parent directories.
func (d *Driver) DownloadFile(ctx context.Context, bucket, key, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errs.Wrap(errs.ErrKindIOFailed, "failed to create destination directory", err)
	}

	if err := d.client.FGetObject(ctx, bucket, key, dest, miniogo.GetObjectOptions{}); err != nil {
		return mapError(err, errs.ErrKindTransferFailed, "failed to download "+key)
	}
	return nil
}

// UploadFile stores the local file src as key.
func (d *Driver) UploadFile(ctx context.Context, bucket, key, src string) (*filestore.ObjectInfo, error) {
	info, err := d.client.FPutObject(ctx, bucket, key, src, miniogo.PutObjectOptions{})
	if err != nil {
		return nil, mapError(err, errs.ErrKindTransferFailed, "failed to upload "+key)
	}

	return &filestore.ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}
