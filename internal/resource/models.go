package resource

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/filestore"
	"github.com/koustreak/s3-resource/internal/selector"
)

// Request is the JSON document the runner writes to stdin for every action.
type Request struct {
	Source  Source   `json:"source" yaml:"source"`
	Version *Version `json:"version,omitempty" yaml:"version"`
	Params  Params   `json:"params" yaml:"params"`
}

// Source is the resource's declared configuration.
type Source struct {
	Service     Service     `json:"service" yaml:"service"`
	Credentials Credentials `json:"credentials" yaml:"credentials"`
	Filters     Filters     `json:"filters" yaml:"filters"`
}

type Service struct {
	Region   string `json:"region,omitempty" yaml:"region"`
	Bucket   string `json:"bucket" yaml:"bucket"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint"`
}

type Credentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// Filters select which objects are versions of the resource.
type Filters struct {
	Prefix  string `json:"prefix,omitempty" yaml:"prefix"`
	Regexp  string `json:"regexp,omitempty" yaml:"regexp"`
	Version string `json:"version,omitempty" yaml:"version"`
}

// SelectorConfig converts the filters for the selector.
func (f Filters) SelectorConfig() selector.Config {
	return selector.Config{
		Pattern: f.Regexp,
		Policy:  f.Version,
		Prefix:  f.Prefix,
	}
}

// Params are the per-step parameters of in and out.
type Params struct {
	Mode Mode   `json:"mode,omitempty" yaml:"mode"`
	Glob string `json:"glob,omitempty" yaml:"glob"`
}

// Version identifies one object. It is also what check emits.
type Version struct {
	Key string `json:"key" yaml:"key"`
}

// VersionKey returns the supplied version key, or "" when there is none.
func (r Request) VersionKey() string {
	if r.Version == nil {
		return ""
	}
	return r.Version.Key
}

// StoreConfig builds the storage connection settings for s.
func (s Source) StoreConfig() (*filestore.Config, error) {
	return filestore.ConfigFromEndpoint(
		strings.TrimSpace(s.Service.Endpoint),
		s.Credentials.AccessKeyID,
		s.Credentials.SecretAccessKey,
		s.Service.Region,
	)
}

// Validate checks what every action needs from a source.
func (s Source) Validate() error {
	if s.Service.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "source.service.bucket is required")
	}
	return nil
}

// CheckResponse lists versions oldest-first as selected.
type CheckResponse []Version

// InResponse is {} when no mode was requested.
type InResponse struct {
	Version *Version `json:"version,omitempty"`
}

type OutResponse struct {
	Version Version `json:"version"`
}

// DecodeRequest reads a request document from r. Unknown fields are
// ignored so newer runner payloads keep working.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, errs.Wrap(errs.ErrKindInvalidInput, "failed to decode request JSON", err)
	}
	return req, nil
}

// EncodeResponse writes v as a single JSON document.
func EncodeResponse(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return errs.Wrap(errs.ErrKindIOFailed, "failed to encode response JSON", err)
	}
	return nil
}
