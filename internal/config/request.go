package config

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/resource"
)

// LoadRequestFile reads a request document from path. The file may be
// JSON or YAML, so a pipeline's source block can be pasted as-is.
func LoadRequestFile(path string) (resource.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resource.Request{}, errs.Wrap(errs.ErrKindIOFailed, "failed to read request file", err)
	}

	var req resource.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return resource.Request{}, errs.Wrap(errs.ErrKindInvalidInput, "failed to decode request file "+path, err)
	}
	return req, nil
}
