package resource

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/logger"
)

// NoUploadKey is echoed by Out when the glob matched no files.
const NoUploadKey = "None"

// Out uploads every regular file below srcDir matching req.Params.Glob.
// Keys are the slash-separated paths relative to srcDir. The response
// carries the last uploaded key, which is not a meaningful version.
func Out(ctx context.Context, c *Client, srcDir string, req Request) (OutResponse, error) {
	if req.Params.Glob == "" {
		return OutResponse{}, errs.New(errs.ErrKindInvalidInput, "params.glob is required")
	}

	matches, err := doublestar.Glob(os.DirFS(srcDir), req.Params.Glob, doublestar.WithFilesOnly())
	if err != nil {
		return OutResponse{}, errs.Wrap(errs.ErrKindInvalidInput, "invalid glob "+req.Params.Glob, err)
	}
	sort.Strings(matches)

	log := logger.FromContext(ctx)
	key := NoUploadKey
	for _, m := range matches {
		if err := c.Upload(ctx, m, filepath.Join(srcDir, filepath.FromSlash(m))); err != nil {
			return OutResponse{}, err
		}
		key = m
	}

	if len(matches) == 0 {
		log.Warnf("No files below %s match %q", srcDir, req.Params.Glob)
	}
	log.With().Int("count", len(matches)).Logger().
		Infof("Uploaded objects: %v", matches)
	return OutResponse{Version: Version{Key: key}}, nil
}
