package filestore

import (
	"net/url"
	"strings"

	"github.com/koustreak/s3-resource/internal/errs"
)

// DefaultEndpoint is used when a source does not name one.
const DefaultEndpoint = "http://s3.amazonaws.com"

// Config holds all settings needed to connect to a storage backend.
type Config struct {
	// Endpoint is the host[:port] of the storage server, without scheme.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID.
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region pins the bucket region. When empty the backend looks it up.
	Region string
}

// ConfigFromEndpoint builds a Config from an endpoint URL as written in a
// pipeline source. The scheme picks TLS; a bare host means https. An empty
// endpoint falls back to DefaultEndpoint. Paths other than "/" are rejected.
func ConfigFromEndpoint(endpoint, accessKey, secretKey, region string) (*Config, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid endpoint "+endpoint, err)
	}
	if u.Host == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "endpoint has no host: "+endpoint)
	}
	// The client addresses buckets from the host root, so a path would be lost.
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "endpoint must not carry a path or query: "+endpoint)
	}

	var secure bool
	switch u.Scheme {
	case "https":
		secure = true
	case "http":
		secure = false
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unsupported endpoint scheme "+u.Scheme)
	}

	return &Config{
		Endpoint:  u.Host,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    secure,
		Region:    region,
	}, nil
}
