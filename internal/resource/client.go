// Package resource implements the check, in and out actions of the s3
// resource on top of a filestore.Store.
package resource

import (
	"context"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/filestore"
	"github.com/koustreak/s3-resource/internal/logger"
	"github.com/koustreak/s3-resource/internal/selector"
)

// Client binds a store to the bucket named by the source. It is built
// fresh for every invocation.
type Client struct {
	store  filestore.Store
	bucket string
}

// NewClient returns a Client for bucket.
func NewClient(store filestore.Store, bucket string) *Client {
	return &Client{store: store, bucket: bucket}
}

// Bucket returns the bucket the client works on.
func (c *Client) Bucket() string {
	return c.bucket
}

// Close releases the underlying store.
func (c *Client) Close() error {
	return c.store.Close()
}

// ListObjects lists every object under prefix. A missing bucket is not an
// error: it just has no versions.
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]filestore.ObjectInfo, error) {
	log := logger.FromContext(ctx)

	objs, err := c.store.ListObjects(ctx, c.bucket, filestore.ListOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	if errs.IsNotFound(err) {
		log.Warnf("No versions found - bucket %q does not exist", c.bucket)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		log.Warnf("No versions found - nothing under prefix %q", prefix)
	}
	return objs, nil
}

// ListFiltered lists the bucket and runs the selector over the result.
func (c *Client) ListFiltered(ctx context.Context, filters Filters) ([]selector.Selected, error) {
	f, err := selector.Compile(filters.SelectorConfig())
	if err != nil {
		return nil, err
	}
	if f.Empty() {
		logger.FromContext(ctx).Warn("No versions found - no regexp")
		return []selector.Selected{}, nil
	}

	objs, err := c.ListObjects(ctx, filters.Prefix)
	if err != nil {
		return nil, err
	}
	return f.Select(objs)
}

// Download copies key to the local path dest, replacing any existing file.
func (c *Client) Download(ctx context.Context, key, dest string) error {
	logger.FromContext(ctx).Debugf("downloading %s to %s", key, dest)
	return c.store.DownloadFile(ctx, c.bucket, key, dest)
}

// Upload copies the local file src to key.
func (c *Client) Upload(ctx context.Context, key, src string) error {
	logger.FromContext(ctx).Debugf("uploading %s as %s", src, key)
	_, err := c.store.UploadFile(ctx, c.bucket, key, src)
	return err
}
