// Package s3fake serves the small slice of the S3 REST API the resource
// uses (ListObjectsV2, HEAD/GET/PUT object, bucket location) from memory.
//
// It exists so the MinIO driver can be exercised end to end with
// httptest, without a running object store:
//
//	fake := s3fake.New()
//	fake.CreateBucket("artifacts")
//	srv := httptest.NewServer(fake)
//	defer srv.Close()
package s3fake

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const s3Namespace = "http://s3.amazonaws.com/doc/2006-03-01/"

type object struct {
	body    []byte
	etag    string
	modTime time.Time
}

// Fake is an in-memory S3 endpoint. It is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	buckets map[string]map[string]object
	router  chi.Router

	// Now stamps uploaded objects. Defaults to time.Now.
	Now func() time.Time
}

// New returns an empty Fake with no buckets.
func New() *Fake {
	f := &Fake{
		buckets: make(map[string]map[string]object),
		Now:     time.Now,
	}

	r := chi.NewRouter()
	r.Get("/{bucket}", f.handleBucket)
	r.Head("/{bucket}/*", f.handleGet)
	r.Get("/{bucket}/*", f.handleGet)
	r.Put("/{bucket}/*", f.handlePut)
	f.router = r
	return f
}

// ServeHTTP implements http.Handler.
func (f *Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.router.ServeHTTP(w, r)
}

// CreateBucket adds an empty bucket. Existing buckets are left untouched.
func (f *Fake) CreateBucket(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[name]; !ok {
		f.buckets[name] = make(map[string]object)
	}
}

// Put stores body under key, creating the bucket if needed.
func (f *Fake) Put(bucket, key string, body []byte, modTime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putLocked(bucket, key, body, modTime)
}

// Get returns the stored body of key.
func (f *Fake) Get(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.buckets[bucket][key]
	return obj.body, ok
}

// Keys lists the keys of bucket in lexical order.
func (f *Fake) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedKeysLocked(bucket)
}

func (f *Fake) putLocked(bucket, key string, body []byte, modTime time.Time) {
	objs, ok := f.buckets[bucket]
	if !ok {
		objs = make(map[string]object)
		f.buckets[bucket] = objs
	}
	sum := md5.Sum(body)
	objs[key] = object{
		body:    body,
		etag:    hex.EncodeToString(sum[:]),
		modTime: modTime.UTC().Truncate(time.Second),
	}
}

func (f *Fake) sortedKeysLocked(bucket string) []string {
	keys := make([]string, 0, len(f.buckets[bucket]))
	for k := range f.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- handlers ---

type listEntry struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type commonPrefix struct {
	Prefix string `xml:"Prefix"`
}

type listResult struct {
	XMLName        xml.Name       `xml:"ListBucketResult"`
	Xmlns          string         `xml:"xmlns,attr"`
	Name           string         `xml:"Name"`
	Prefix         string         `xml:"Prefix"`
	Delimiter      string         `xml:"Delimiter,omitempty"`
	KeyCount       int            `xml:"KeyCount"`
	MaxKeys        int            `xml:"MaxKeys"`
	IsTruncated    bool           `xml:"IsTruncated"`
	Contents       []listEntry    `xml:"Contents"`
	CommonPrefixes []commonPrefix `xml:"CommonPrefixes"`
}

type locationResult struct {
	XMLName xml.Name `xml:"LocationConstraint"`
	Xmlns   string   `xml:"xmlns,attr"`
}

type errorResult struct {
	XMLName    xml.Name `xml:"Error"`
	Code       string   `xml:"Code"`
	Message    string   `xml:"Message"`
	BucketName string   `xml:"BucketName,omitempty"`
	Key        string   `xml:"Key,omitempty"`
	Resource   string   `xml:"Resource"`
	RequestID  string   `xml:"RequestId"`
}

func (f *Fake) handleBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.buckets[bucket]; !ok {
		writeError(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist", bucket, "")
		return
	}

	if _, ok := q["location"]; ok {
		writeXML(w, http.StatusOK, locationResult{Xmlns: s3Namespace})
		return
	}

	prefix, delim := q.Get("prefix"), q.Get("delimiter")
	res := listResult{
		Xmlns:     s3Namespace,
		Name:      bucket,
		Prefix:    prefix,
		Delimiter: delim,
		MaxKeys:   1000,
	}

	seen := make(map[string]bool)
	for _, key := range f.sortedKeysLocked(bucket) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if delim != "" {
			if i := strings.Index(key[len(prefix):], delim); i >= 0 {
				p := key[:len(prefix)+i+len(delim)]
				if !seen[p] {
					seen[p] = true
					res.CommonPrefixes = append(res.CommonPrefixes, commonPrefix{Prefix: p})
				}
				continue
			}
		}
		obj := f.buckets[bucket][key]
		res.Contents = append(res.Contents, listEntry{
			Key:          key,
			LastModified: obj.modTime.Format("2006-01-02T15:04:05.000Z"),
			ETag:         strconv.Quote(obj.etag),
			Size:         int64(len(obj.body)),
			StorageClass: "STANDARD",
		})
	}
	res.KeyCount = len(res.Contents) + len(res.CommonPrefixes)

	writeXML(w, http.StatusOK, res)
}

func (f *Fake) handleGet(w http.ResponseWriter, r *http.Request) {
	bucket, key := chi.URLParam(r, "bucket"), objectKey(r)
	if key == "" {
		f.handleBucket(w, r)
		return
	}

	f.mu.Lock()
	objs, bucketOK := f.buckets[bucket]
	obj, ok := objs[key]
	f.mu.Unlock()

	switch {
	case !bucketOK:
		writeError(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist", bucket, "")
		return
	case !ok:
		writeError(w, r, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.", bucket, key)
		return
	}

	w.Header().Set("ETag", strconv.Quote(obj.etag))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(w, r, key, obj.modTime, bytes.NewReader(obj.body))
}

func (f *Fake) handlePut(w http.ResponseWriter, r *http.Request) {
	bucket, key := chi.URLParam(r, "bucket"), objectKey(r)

	body, err := readPayload(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "IncompleteBody", err.Error(), bucket, key)
		return
	}

	f.mu.Lock()
	if _, ok := f.buckets[bucket]; !ok {
		f.mu.Unlock()
		writeError(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist", bucket, "")
		return
	}
	f.putLocked(bucket, key, body, f.Now())
	obj := f.buckets[bucket][key]
	f.mu.Unlock()

	w.Header().Set("ETag", strconv.Quote(obj.etag))
	w.Header().Set("Last-Modified", obj.modTime.Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
}

// readPayload returns the object bytes of a PUT, undoing aws-chunked
// framing when the client streamed a signed or trailing-checksum payload.
func readPayload(r *http.Request) ([]byte, error) {
	sha := r.Header.Get("X-Amz-Content-Sha256")
	chunked := strings.HasPrefix(sha, "STREAMING-") ||
		r.Header.Get("X-Amz-Decoded-Content-Length") != "" ||
		strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked")
	if !chunked {
		return io.ReadAll(r.Body)
	}

	var out bytes.Buffer
	br := bufio.NewReader(r.Body)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		n, err := strconv.ParseInt(line, 16, 64)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Trailers (checksums) follow; they are not stored.
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, n); err != nil {
			return nil, err
		}
		if _, err := br.ReadString('\n'); err != nil {
			return nil, err
		}
	}
}

func objectKey(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if key, err := url.PathUnescape(raw); err == nil {
		return key
	}
	return raw
}

func writeXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, xml.Header)
	_ = xml.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg, bucket, key string) {
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	writeXML(w, status, errorResult{
		Code:       code,
		Message:    msg,
		BucketName: bucket,
		Key:        key,
		Resource:   r.URL.Path,
		RequestID:  "s3fake",
	})
}
