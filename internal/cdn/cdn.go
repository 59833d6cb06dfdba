package cdn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// UploadResult is what a successful upload resolves to. Width/Height are zero
// for non-image payloads and for formats the server cannot decode.
type UploadResult struct {
	URL          string
	ThumbnailURL string
	Width        int
	Height       int
}

// Client is the external upload provider. Upload must be safe to retry with
// the same key: the key is derived from the asset id, so a repeated call is
// an idempotent overwrite. Delete treats a missing object as success.
type Client interface {
	Upload(ctx context.Context, data []byte, contentType, key string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// TransientError marks a failure worth retrying (network, timeout, 5xx).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient upload error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a rejected payload. No retry will succeed.
type PermanentError struct {
	Reason string
}

func (e *PermanentError) Error() string {
	return "permanent upload error: " + e.Reason
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

func imageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
