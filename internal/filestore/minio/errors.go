package minio

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/koustreak/s3-resource/internal/errs"
	minioErr "github.com/minio/minio-go/v7"
)

// mapError translates a MinIO SDK error into a *errs.Error. Errors the SDK
// does not classify get the fallback kind.
func mapError(err error, fallback errs.ErrKind, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	// Local file the SDK could not open or write
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return errs.Wrap(errs.ErrKindIOFailed, msg, err)
	}

	// MinIO SDK exposes a typed ErrorResponse for S3-protocol errors
	var resp minioErr.ErrorResponse
	if errors.As(err, &resp) {
		// S3 codes first: some proxies send them with unhelpful statuses.
		switch resp.Code {
		case "NoSuchBucket", "NoSuchKey", "NotFound":
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError":
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		case "RequestTimeout", "SlowDown":
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case http.StatusBadRequest:
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		}
	}

	return errs.Wrap(fallback, msg, err)
}
