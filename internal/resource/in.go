package resource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/logger"
)

// In fetches objects into destDir according to req.Params.Mode.
//
// The version echoed in ModeAll is the one the runner supplied, whatever
// was actually downloaded. Pipelines depend on that, so it stays.
func In(ctx context.Context, c *Client, destDir string, req Request) (InResponse, error) {
	log := logger.FromContext(ctx)
	log.Infof("Mode: %s", req.Params.Mode)
	log.Infof("Check version: %s", req.VersionKey())

	switch req.Params.Mode {
	case ModeSingle:
		return inSingle(ctx, c, destDir, req)
	case ModeAll:
		return inAll(ctx, c, destDir, req)
	case ModeNone, ModeUnknown:
		log.Warn("No mode requested - nothing downloaded")
		return InResponse{}, nil
	default:
		return InResponse{}, errs.Newf(errs.ErrKindInvalidInput, "unhandled mode %d", int(req.Params.Mode))
	}
}

func inSingle(ctx context.Context, c *Client, destDir string, req Request) (InResponse, error) {
	key := req.VersionKey()
	if key == "" {
		return InResponse{}, errs.New(errs.ErrKindInvalidInput, "version.key is required in single mode")
	}

	dest, err := destination(destDir, key)
	if err != nil {
		return InResponse{}, err
	}
	if err := c.Download(ctx, key, dest); err != nil {
		return InResponse{}, err
	}

	logger.FromContext(ctx).Infof("Object downloaded: %s", key)
	return InResponse{Version: &Version{Key: key}}, nil
}

func inAll(ctx context.Context, c *Client, destDir string, req Request) (InResponse, error) {
	selected, err := c.ListFiltered(ctx, req.Source.Filters)
	if err != nil {
		return InResponse{}, err
	}

	log := logger.FromContext(ctx)
	downloaded := make([]string, 0, len(selected))
	for _, s := range selected {
		if s.Dir {
			log.Debugf("skipping folder marker %s", s.Key)
			continue
		}
		dest, err := destination(destDir, s.Key)
		if err != nil {
			return InResponse{}, err
		}

		switch _, err := os.Stat(dest); {
		case err == nil:
			log.Debugf("skipping %s, already present", s.Key)
			continue
		case !os.IsNotExist(err):
			return InResponse{}, errs.Wrap(errs.ErrKindIOFailed, "cannot inspect "+dest, err)
		}

		if err := c.Download(ctx, s.Key, dest); err != nil {
			return InResponse{}, err
		}
		downloaded = append(downloaded, s.Key)
	}

	log.With().Int("count", len(downloaded)).Logger().
		Infof("Objects downloaded: %v", downloaded)
	return InResponse{Version: &Version{Key: req.VersionKey()}}, nil
}

// destination maps key below root and refuses keys that would escape it.
func destination(root, key string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.Newf(errs.ErrKindInvalidInput, "key %q does not name a file below %s", key, root)
	}
	return dest, nil
}
