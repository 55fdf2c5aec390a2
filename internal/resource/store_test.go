package resource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/filestore"
)

// memStore is an in-memory filestore.Store that records transfers.
type memStore struct {
	mu        sync.Mutex
	bucket    string
	objects   []filestore.ObjectInfo
	contents  map[string]string
	listErr   error
	lists     int
	downloads []string
	uploads   map[string]string
}

func newMemStore(bucket string, keys ...string) *memStore {
	s := &memStore{
		bucket:   bucket,
		contents: make(map[string]string),
		uploads:  make(map[string]string),
	}
	for _, k := range keys {
		s.add(k, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC))
	}
	return s
}

func (s *memStore) add(key string, mod time.Time) {
	s.objects = append(s.objects, filestore.ObjectInfo{
		Key:          key,
		LastModified: mod,
		IsDir:        strings.HasSuffix(key, "/"),
	})
	s.contents[key] = "content of " + key
}

func (s *memStore) Close() error { return nil }

func (s *memStore) ListObjects(_ context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	if bucket != s.bucket {
		return nil, errs.New(errs.ErrKindNotFound, "no such bucket")
	}
	var out []filestore.ObjectInfo
	for _, o := range s.objects {
		if len(o.Key) >= len(opts.Prefix) && o.Key[:len(opts.Prefix)] == opts.Prefix {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) DownloadFile(_ context.Context, bucket, key, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.contents[key]
	if bucket != s.bucket || !ok {
		return errs.New(errs.ErrKindNotFound, "no such key "+key)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	s.downloads = append(s.downloads, key)
	return os.WriteFile(dest, []byte(body), 0o644)
}

func (s *memStore) UploadFile(_ context.Context, bucket, key, src string) (*filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, err := os.ReadFile(src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindIOFailed, "read", err)
	}
	s.uploads[key] = string(body)
	return &filestore.ObjectInfo{Key: key, Size: int64(len(body))}, nil
}
